package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveWord is returned for input or help with no word in play
	ErrNoActiveWord = errors.New("no active word")
	// ErrGameNotStarted is returned for actions before StartGame
	ErrGameNotStarted = errors.New("game not started")
)

// LevelNotFoundError reports a requested level outside a theme's range
type LevelNotFoundError struct {
	ThemeID string
	Level   int
}

func (e *LevelNotFoundError) Error() string {
	return fmt.Sprintf("theme %q has no level %d", e.ThemeID, e.Level)
}
