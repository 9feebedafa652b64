package game

import "unicode"

// SlotState is the state of one letter-input slot
type SlotState int

const (
	// SlotEmpty accepts input
	SlotEmpty SlotState = iota
	// SlotCorrect is terminal; the slot no longer accepts input
	SlotCorrect
	// SlotIncorrect is a transient feedback state that reverts to empty
	// after the feedback flash
	SlotIncorrect
)

// InputOutcome is the result of offering a keystroke to a slot
type InputOutcome int

const (
	// OutcomeIgnored means the slot did not consume the keystroke
	OutcomeIgnored InputOutcome = iota
	// OutcomeCorrect means the keystroke matched the expected letter
	OutcomeCorrect
	// OutcomeIncorrect means the keystroke did not match
	OutcomeIncorrect
)

// Slot is the state machine for a single letter position. It is a plain
// synchronous unit: the owning word session serializes access and runs
// the feedback-revert timing.
type Slot struct {
	index    int
	expected rune
	state    SlotState
	typed    rune
}

// NewSlot creates a slot expecting one letter at the given position
func NewSlot(index int, expected rune) *Slot {
	return &Slot{index: index, expected: expected}
}

// Index returns the slot's position within its word
func (s *Slot) Index() int {
	return s.index
}

// Expected returns the letter the slot accepts
func (s *Slot) Expected() rune {
	return s.expected
}

// State returns the slot's current state
func (s *Slot) State() SlotState {
	return s.state
}

// Typed returns the letter currently shown in the slot, or 0 when empty
func (s *Slot) Typed() rune {
	return s.typed
}

// IsTerminal reports whether the slot has its correct letter
func (s *Slot) IsTerminal() bool {
	return s.state == SlotCorrect
}

// Input offers a keystroke to the slot. Comparison is case-insensitive.
// A terminal slot ignores input; an incorrect-flash slot accepts a new
// keystroke, replacing the pending feedback.
func (s *Slot) Input(ch rune) InputOutcome {
	if s.state == SlotCorrect {
		return OutcomeIgnored
	}

	if unicode.ToLower(ch) == unicode.ToLower(s.expected) {
		s.state = SlotCorrect
		s.typed = s.expected
		return OutcomeCorrect
	}

	s.state = SlotIncorrect
	s.typed = ch
	return OutcomeIncorrect
}

// ClearFeedback reverts an incorrect flash back to empty. No-op in any
// other state, so a stale timer cannot clobber a later keystroke.
func (s *Slot) ClearFeedback() {
	if s.state == SlotIncorrect {
		s.state = SlotEmpty
		s.typed = 0
	}
}

// Reveal forces the slot into its terminal state with the expected
// letter, bypassing player input
func (s *Slot) Reveal() {
	s.state = SlotCorrect
	s.typed = s.expected
}
