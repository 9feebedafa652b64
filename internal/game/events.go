package game

import "spellstar/internal/models"

// LetterEvent carries the slot index and letter for a letter-level signal
type LetterEvent struct {
	Index  int
	Letter rune
}

// SessionEvents are the signals a word session emits to its subscriber.
// Nil handlers are skipped. Handlers run outside the session's lock, so
// they may call back into the session.
type SessionEvents struct {
	// LetterCorrect fires when a typed letter matches its slot
	LetterCorrect func(e LetterEvent)
	// LetterIncorrect fires immediately on a mismatch, before the
	// feedback flash clears
	LetterIncorrect func(e LetterEvent)
	// LetterRevealed fires for each slot revealed by the help flow
	LetterRevealed func(e LetterEvent)
	// FocusPrevious fires when backspace is pressed in an empty slot
	FocusPrevious func(index int)
	// WordComplete fires exactly once when every slot is terminal
	WordComplete func()
}

// Events are the signals the session controller emits to the UI layer
type Events struct {
	// WordStarted fires when a new word is presented
	WordStarted func(word models.Word, index, total int)
	// LetterCorrect, LetterIncorrect and LetterRevealed are forwarded from
	// the word session
	LetterCorrect   func(e LetterEvent)
	LetterIncorrect func(e LetterEvent)
	LetterRevealed  func(e LetterEvent)
	// FocusPrevious fires when backspace moves focus back from an empty slot
	FocusPrevious func(index int)
	// Celebration fires after a word is scored. When awaitContinue is
	// true the controller waits for Continue before advancing.
	Celebration func(word string, points, sessionScore int, awaitContinue bool)
	// LevelComplete fires with the final score and star rating
	LevelComplete func(score, stars int)
}

// Navigator moves the player between screens. The controller only signals
// a semantic route; it never inspects routing internals.
type Navigator interface {
	Navigate(route string, params map[string]string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(route string, params map[string]string)

func (f NavigatorFunc) Navigate(route string, params map[string]string) {
	f(route, params)
}
