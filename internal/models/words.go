package models

// Word is a single spelling word with an example sentence
type Word struct {
	Word     string `json:"word"`
	Sentence string `json:"sentence"`
}

// Level is an ordered set of words of similar difficulty within a theme
type Level struct {
	Level         int    `json:"level"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	StarsRequired int    `json:"stars_required"`
	Words         []Word `json:"words"`
}

// Theme holds display metadata for a themed collection of levels
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// WordList is the complete content for one theme as loaded from a word file
type WordList struct {
	Theme  *Theme  `json:"theme"`
	Levels []Level `json:"levels"`
}

// LevelCount returns the number of levels in the list
func (wl *WordList) LevelCount() int {
	return len(wl.Levels)
}

// LevelAt returns the 1-based level, or nil if out of range
func (wl *WordList) LevelAt(level int) *Level {
	if level < 1 || level > len(wl.Levels) {
		return nil
	}
	return &wl.Levels[level-1]
}
