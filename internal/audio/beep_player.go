package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// BeepPlayer synthesizes cue sounds through the system speaker. It backs
// desktop and kiosk builds; the web front end plays cues in the browser.
type BeepPlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewBeepPlayer creates an uninitialized player; call Initialize before use
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{mixer: &beep.Mixer{}}
}

// Initialize sets up the audio output device
func (p *BeepPlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup stops all sounds
func (p *BeepPlayer) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	p.mixer.Clear()
	p.initialized = false
}

// Play queues the tone sequence for a cue. Unknown cues and an
// uninitialized player are ignored.
func (p *BeepPlayer) Play(cue Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	var seq beep.Streamer
	switch cue {
	case CueCorrect:
		// Rising major third
		seq = beep.Seq(tone(523.25, 90*time.Millisecond), tone(659.25, 120*time.Millisecond))
	case CueIncorrect:
		// Low buzz
		seq = tone(146.83, 250*time.Millisecond)
	case CueComplete:
		// Triumphant arpeggio
		seq = beep.Seq(
			tone(523.25, 100*time.Millisecond),
			tone(659.25, 100*time.Millisecond),
			tone(783.99, 100*time.Millisecond),
			tone(1046.50, 220*time.Millisecond),
		)
	case CueLevelUp:
		seq = beep.Seq(
			tone(392.00, 120*time.Millisecond),
			tone(523.25, 120*time.Millisecond),
			tone(659.25, 120*time.Millisecond),
			tone(783.99, 280*time.Millisecond),
		)
	case CueClick:
		seq = tone(880.00, 35*time.Millisecond)
	default:
		return
	}

	p.mixer.Add(seq)
}

// tone produces a single enveloped sine note
func tone(freq float64, duration time.Duration) beep.Streamer {
	total := sampleRate.N(duration)
	attack := sampleRate.N(5 * time.Millisecond)
	release := sampleRate.N(30 * time.Millisecond)
	return &note{freq: freq, total: total, attack: attack, release: release}
}

// note streams an attack/release shaped sine wave
type note struct {
	freq     float64
	phase    float64
	position int
	total    int
	attack   int
	release  int
}

func (n *note) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if n.position >= n.total {
			return i, false
		}

		val := math.Sin(2 * math.Pi * n.phase)

		// Envelope shaping to avoid clicks at note boundaries
		gain := 0.4
		if n.position < n.attack {
			gain *= float64(n.position) / float64(n.attack)
		} else if remaining := n.total - n.position; remaining < n.release {
			gain *= float64(remaining) / float64(n.release)
		}

		samples[i][0] = val * gain
		samples[i][1] = val * gain

		n.phase += n.freq / float64(sampleRate)
		n.phase -= math.Floor(n.phase)
		n.position++
	}
	return len(samples), true
}

func (n *note) Err() error { return nil }
