// Package speech defines the text-to-speech collaborator used for word and
// sentence narration. Cancelling an in-flight utterance is not an error:
// implementations return nil when superseded, and real failures degrade the
// game to silence rather than stopping play.
package speech

import (
	"context"
	"fmt"
)

// Options controls how an utterance is spoken
type Options struct {
	Rate  float64
	Pitch float64
}

// DefaultOptions returns the narration settings used until a player
// adjusts them
func DefaultOptions() Options {
	return Options{Rate: 0.85, Pitch: 1.1}
}

// Synthesizer speaks text aloud. Speak blocks until the utterance finishes
// or the context is cancelled; cancellation returns nil. Cancel stops any
// in-flight utterance.
type Synthesizer interface {
	Speak(ctx context.Context, text string, opts Options) error
	Cancel()
}

// Error reports a synthesis failure other than interruption
type Error struct {
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("speech synthesis failed for %q: %v", e.Text, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Null is a synthesizer that says nothing, used when speech is disabled
type Null struct{}

func (Null) Speak(ctx context.Context, text string, opts Options) error {
	return nil
}

func (Null) Cancel() {}
