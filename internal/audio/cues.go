// Package audio plays short feedback cues. Cues are fire-and-forget: the
// game never waits on one and a playback failure is silent.
package audio

// Cue identifies one of the fixed feedback sounds
type Cue string

const (
	CueCorrect   Cue = "correct"
	CueIncorrect Cue = "incorrect"
	CueComplete  Cue = "complete"
	CueLevelUp   Cue = "levelup"
	CueClick     Cue = "click"
)

// Cues lists every cue the game can request
var Cues = []Cue{CueCorrect, CueIncorrect, CueComplete, CueLevelUp, CueClick}

// Valid reports whether a cue name is one of the fixed set
func (c Cue) Valid() bool {
	switch c {
	case CueCorrect, CueIncorrect, CueComplete, CueLevelUp, CueClick:
		return true
	}
	return false
}

// Player plays a cue without blocking
type Player interface {
	Play(cue Cue)
}

// Null is a player that stays silent, used when sound is disabled
type Null struct{}

func (Null) Play(cue Cue) {}

// Multi fans each cue out to several players
type Multi []Player

func (m Multi) Play(cue Cue) {
	for _, p := range m {
		p.Play(cue)
	}
}

// Recorder captures played cues in order, for tests and for the web layer
// which forwards cue names to the browser
type Recorder struct {
	Played []Cue
}

func (r *Recorder) Play(cue Cue) {
	r.Played = append(r.Played, cue)
}
