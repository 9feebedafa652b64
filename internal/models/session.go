package models

// GameState is the in-memory state of one level play-through.
// It is owned by the session controller, created at level start and
// discarded at level end after its score is persisted.
type GameState struct {
	CurrentTheme     string
	CurrentLevel     int
	CurrentWordIndex int
	SessionScore     int
	CurrentWord      *Word
	RevealedLetters  []bool
	HelpUsed         bool
	// ReshuffleQueue collects words that needed help. Nothing consumes it
	// yet; it is kept so saved-state shape stays stable for a future
	// re-practice mode.
	ReshuffleQueue  []Word
	InReshuffleMode bool
}

// NewGameState returns session state with initial values
func NewGameState() *GameState {
	return &GameState{
		CurrentLevel:    1,
		ReshuffleQueue:  []Word{},
		RevealedLetters: []bool{},
	}
}

// BeginWord resets the per-word fields for a new current word
func (gs *GameState) BeginWord(word *Word) {
	gs.CurrentWord = word
	gs.RevealedLetters = make([]bool, len(word.Word))
	gs.HelpUsed = false
}
