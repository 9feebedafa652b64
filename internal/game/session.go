package game

import (
	"context"
	"log"
	"sync"
	"time"

	"spellstar/internal/audio"
	"spellstar/internal/speech"
)

const (
	// DefaultFeedbackDelay is how long an incorrect letter stays visible
	DefaultFeedbackDelay = 300 * time.Millisecond
	// DefaultRevealDelay is the pacing between letters during reveal-all
	DefaultRevealDelay = 300 * time.Millisecond
)

// SessionConfig carries the collaborators and timing for a word session
type SessionConfig struct {
	Speech        speech.Synthesizer
	Audio         audio.Player
	SpeechOpts    speech.Options
	Events        SessionEvents
	FeedbackDelay time.Duration
	RevealDelay   time.Duration
}

// WordSession coordinates the letter slots for one word: it routes
// keystrokes to the focused slot, advances focus on correct input,
// detects completion, and runs the reveal-all help flow. A session is
// single-use; construct a new one for each word.
type WordSession struct {
	mu     sync.Mutex
	word   string
	slots  []*Slot
	focus  int
	events SessionEvents

	speech     speech.Synthesizer
	audio      audio.Player
	speechOpts speech.Options

	feedbackDelay time.Duration
	revealDelay   time.Duration

	complete  bool
	revealing bool
	closed    bool

	revertTimer *time.Timer
}

// NewWordSession creates a session for a target word, one slot per
// letter, with focus on the first slot
func NewWordSession(word string, cfg SessionConfig) *WordSession {
	if cfg.Speech == nil {
		cfg.Speech = speech.Null{}
	}
	if cfg.Audio == nil {
		cfg.Audio = audio.Null{}
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = DefaultFeedbackDelay
	}
	if cfg.RevealDelay <= 0 {
		cfg.RevealDelay = DefaultRevealDelay
	}

	runes := []rune(word)
	slots := make([]*Slot, len(runes))
	for i, r := range runes {
		slots[i] = NewSlot(i, r)
	}

	return &WordSession{
		word:          word,
		slots:         slots,
		events:        cfg.Events,
		speech:        cfg.Speech,
		audio:         cfg.Audio,
		speechOpts:    cfg.SpeechOpts,
		feedbackDelay: cfg.FeedbackDelay,
		revealDelay:   cfg.RevealDelay,
	}
}

// Word returns the session's target word
func (ws *WordSession) Word() string {
	return ws.word
}

// Focus returns the index of the focused slot
func (ws *WordSession) Focus() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.focus
}

// CorrectCount returns how many slots hold their correct letter
func (ws *WordSession) CorrectCount() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	count := 0
	for _, slot := range ws.slots {
		if slot.IsTerminal() {
			count++
		}
	}
	return count
}

// IsComplete reports whether every slot is terminal
func (ws *WordSession) IsComplete() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.complete
}

// SlotView is a snapshot of one slot for rendering
type SlotView struct {
	Index   int
	State   SlotState
	Typed   string
	Focused bool
}

// View returns a snapshot of all slots
func (ws *WordSession) View() []SlotView {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	views := make([]SlotView, len(ws.slots))
	for i, slot := range ws.slots {
		typed := ""
		if slot.Typed() != 0 {
			typed = string(slot.Typed())
		}
		views[i] = SlotView{
			Index:   i,
			State:   slot.State(),
			Typed:   typed,
			Focused: i == ws.focus && !ws.complete,
		}
	}
	return views
}

// Input offers a keystroke to the focused slot. A correct letter plays
// the correct cue, speaks the letter, advances focus and checks for
// completion; an incorrect letter plays the incorrect cue and flashes
// before reverting. Input during the reveal-all flow is ignored.
func (ws *WordSession) Input(ch rune) {
	ws.mu.Lock()
	if ws.closed || ws.complete || ws.revealing || len(ws.slots) == 0 {
		ws.mu.Unlock()
		return
	}

	slot := ws.slots[ws.focus]
	index := slot.Index()
	outcome := slot.Input(ch)

	var wordComplete bool
	switch outcome {
	case OutcomeCorrect:
		ws.stopRevertTimer()
		if ws.focus+1 < len(ws.slots) {
			ws.focus++
		}
		wordComplete = ws.checkComplete()
	case OutcomeIncorrect:
		ws.scheduleRevert(index)
	}
	ws.mu.Unlock()

	switch outcome {
	case OutcomeCorrect:
		ws.audio.Play(audio.CueCorrect)
		ws.speakAsync(string(slot.Expected()))
		ws.emitLetterCorrect(LetterEvent{Index: index, Letter: slot.Expected()})
		if wordComplete {
			ws.emitWordComplete()
		}
	case OutcomeIncorrect:
		ws.audio.Play(audio.CueIncorrect)
		ws.speakAsync("Try again!")
		ws.emitLetterIncorrect(LetterEvent{Index: index, Letter: ch})
	}
}

// Backspace signals focus-previous when the focused slot is empty.
// It never mutates slot state.
func (ws *WordSession) Backspace() {
	ws.mu.Lock()
	if ws.closed || ws.complete || ws.revealing || len(ws.slots) == 0 {
		ws.mu.Unlock()
		return
	}

	index := ws.focus
	empty := ws.slots[index].State() == SlotEmpty
	if empty && index > 0 {
		ws.focus = index - 1
	}
	ws.mu.Unlock()

	if empty && ws.events.FocusPrevious != nil {
		ws.events.FocusPrevious(index)
	}
}

// RevealAll reveals every remaining slot left to right, speaking each
// letter with a pacing delay between reveals, then runs the normal
// completion check so WordComplete still fires exactly once. Returns
// early without error if the context is cancelled.
func (ws *WordSession) RevealAll(ctx context.Context) error {
	ws.mu.Lock()
	if ws.closed || ws.revealing {
		ws.mu.Unlock()
		return ErrNoActiveWord
	}
	ws.revealing = true
	ws.stopRevertTimer()
	ws.mu.Unlock()

	for i := range ws.slots {
		ws.mu.Lock()
		slot := ws.slots[i]
		if slot.IsTerminal() {
			ws.mu.Unlock()
			continue
		}
		slot.ClearFeedback()
		slot.Reveal()
		ws.focus = i
		ws.mu.Unlock()

		ws.emitLetterRevealed(LetterEvent{Index: i, Letter: slot.Expected()})
		if err := ws.speech.Speak(ctx, string(slot.Expected()), ws.speechOpts); err != nil {
			log.Printf("Speech failed during reveal: %v", err)
		}

		select {
		case <-ctx.Done():
			ws.mu.Lock()
			ws.revealing = false
			ws.mu.Unlock()
			return nil
		case <-time.After(ws.revealDelay):
		}
	}

	ws.mu.Lock()
	ws.revealing = false
	wordComplete := ws.checkComplete()
	ws.mu.Unlock()

	if wordComplete {
		ws.emitWordComplete()
	}
	return nil
}

// Reset tears the session down. The session cannot be reused afterward.
func (ws *WordSession) Reset() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.closed = true
	ws.stopRevertTimer()
}

// checkComplete latches the completion flag on the transition to all
// slots terminal. Caller holds ws.mu. Returns true only on the
// transition, never on a re-check.
func (ws *WordSession) checkComplete() bool {
	if ws.complete {
		return false
	}
	for _, slot := range ws.slots {
		if !slot.IsTerminal() {
			return false
		}
	}
	ws.complete = true
	return true
}

// scheduleRevert arms the feedback timer for an incorrect flash. Caller
// holds ws.mu. Focus stays on the slot, so only one timer is ever needed.
func (ws *WordSession) scheduleRevert(index int) {
	ws.stopRevertTimer()
	ws.revertTimer = time.AfterFunc(ws.feedbackDelay, func() {
		ws.mu.Lock()
		if !ws.closed {
			ws.slots[index].ClearFeedback()
		}
		ws.mu.Unlock()
	})
}

// stopRevertTimer cancels a pending feedback revert. Caller holds ws.mu.
func (ws *WordSession) stopRevertTimer() {
	if ws.revertTimer != nil {
		ws.revertTimer.Stop()
		ws.revertTimer = nil
	}
}

// speakAsync speaks short per-letter feedback without blocking input
func (ws *WordSession) speakAsync(text string) {
	go func() {
		if err := ws.speech.Speak(context.Background(), text, ws.speechOpts); err != nil {
			log.Printf("Speech failed: %v", err)
		}
	}()
}

func (ws *WordSession) emitLetterCorrect(e LetterEvent) {
	if ws.events.LetterCorrect != nil {
		ws.events.LetterCorrect(e)
	}
}

func (ws *WordSession) emitLetterIncorrect(e LetterEvent) {
	if ws.events.LetterIncorrect != nil {
		ws.events.LetterIncorrect(e)
	}
}

func (ws *WordSession) emitLetterRevealed(e LetterEvent) {
	if ws.events.LetterRevealed != nil {
		ws.events.LetterRevealed(e)
	}
}

func (ws *WordSession) emitWordComplete() {
	if ws.events.WordComplete != nil {
		ws.events.WordComplete()
	}
}
