package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"spellstar/internal/audio"
	"spellstar/internal/catalog"
	"spellstar/internal/models"
	"spellstar/internal/progress"
	"spellstar/internal/scoring"
	"spellstar/internal/speech"
)

// maxPointsPerWord is the heuristic used to set a level's maximum score
// when computing the star rating
const maxPointsPerWord = 100

// Phase is the controller's position in the level state machine
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseLoading
	PhasePlaying
	PhaseAwaitingContinue
	PhaseLevelComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhaseAwaitingContinue:
		return "awaiting_continue"
	case PhaseLevelComplete:
		return "level_complete"
	}
	return "unknown"
}

// RouteLevelSelect is the navigation target after a level ends
const RouteLevelSelect = "level-select"

// ControllerConfig carries the controller's collaborators. Catalog and
// Progress are required; the rest default to silent no-ops.
type ControllerConfig struct {
	Catalog  *catalog.Catalog
	Progress *progress.Store
	Speech   speech.Synthesizer
	Audio    audio.Player
	Nav      Navigator
	Events   Events

	FeedbackDelay time.Duration
	RevealDelay   time.Duration
}

// Controller runs one level of the spelling game: it walks the level's
// words in order, owns the per-word sessions, scores completed words,
// and writes results back to the progress store.
type Controller struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	progress *progress.Store
	speech   speech.Synthesizer
	audio    audio.Player
	nav      Navigator
	events   Events

	feedbackDelay time.Duration
	revealDelay   time.Duration

	phase   Phase
	state   *models.GameState
	words   []models.Word
	session *WordSession

	// lettersBeforeHelp is the count of correctly typed slots at the
	// moment help was requested, used for partial credit
	lettersBeforeHelp int
	wordsHelped       []string

	announceCancel context.CancelFunc
}

// NewController creates a session controller with injected collaborators
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Speech == nil {
		cfg.Speech = speech.Null{}
	}
	if cfg.Audio == nil {
		cfg.Audio = audio.Null{}
	}
	if cfg.Nav == nil {
		cfg.Nav = NavigatorFunc(func(route string, params map[string]string) {})
	}

	return &Controller{
		catalog:       cfg.Catalog,
		progress:      cfg.Progress,
		speech:        cfg.Speech,
		audio:         cfg.Audio,
		nav:           cfg.Nav,
		events:        cfg.Events,
		feedbackDelay: cfg.FeedbackDelay,
		revealDelay:   cfg.RevealDelay,
		phase:         PhaseNotStarted,
		state:         models.NewGameState(),
	}
}

// Phase returns the controller's current phase
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns a copy of the session state for rendering
func (c *Controller) State() models.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.state
}

// Session returns the active word session, or nil between words
func (c *Controller) Session() *WordSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// StartGame loads a theme's word list and begins the requested level.
// The session score resumes from any previously stored score for the
// same theme and level.
func (c *Controller) StartGame(ctx context.Context, themeID string, level int) error {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.mu.Unlock()

	list, err := c.catalog.LoadTheme(ctx, themeID)
	if err != nil {
		c.mu.Lock()
		c.phase = PhaseNotStarted
		c.mu.Unlock()
		return err
	}

	lvl := list.LevelAt(level)
	if lvl == nil {
		c.mu.Lock()
		c.phase = PhaseNotStarted
		c.mu.Unlock()
		return &LevelNotFoundError{ThemeID: themeID, Level: level}
	}

	sessionScore := 0
	if lp := c.progress.LevelProgressFor(themeID, level); lp != nil {
		sessionScore = lp.Score
	}

	c.mu.Lock()
	c.state = models.NewGameState()
	c.state.CurrentTheme = themeID
	c.state.CurrentLevel = level
	c.state.SessionScore = sessionScore
	c.words = lvl.Words
	c.wordsHelped = nil
	c.mu.Unlock()

	c.loadWord(ctx)
	return nil
}

// loadWord presents the word at the current index, or completes the
// level when the index is past the end
func (c *Controller) loadWord(ctx context.Context) {
	c.mu.Lock()
	if c.state.CurrentWordIndex >= len(c.words) {
		c.mu.Unlock()
		c.completeLevel()
		return
	}

	word := c.words[c.state.CurrentWordIndex]
	c.state.BeginWord(&word)
	c.lettersBeforeHelp = 0

	if c.session != nil {
		c.session.Reset()
	}
	c.session = NewWordSession(word.Word, SessionConfig{
		Speech:        c.speech,
		Audio:         c.audio,
		SpeechOpts:    c.speechOptions(),
		FeedbackDelay: c.feedbackDelay,
		RevealDelay:   c.revealDelay,
		Events: SessionEvents{
			LetterCorrect:   c.onLetterCorrect,
			LetterIncorrect: c.onLetterIncorrect,
			LetterRevealed:  c.onLetterRevealed,
			FocusPrevious:   c.onFocusPrevious,
			WordComplete:    c.onWordComplete,
		},
	})
	c.phase = PhasePlaying
	index := c.state.CurrentWordIndex
	total := len(c.words)
	c.mu.Unlock()

	if c.events.WordStarted != nil {
		c.events.WordStarted(word, index, total)
	}

	c.announce(word)
}

// announce speaks the word prompt and then its sentence, sequentially.
// A newer announcement supersedes one still in flight: last request wins.
func (c *Controller) announce(word models.Word) {
	c.mu.Lock()
	if c.announceCancel != nil {
		c.announceCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.announceCancel = cancel
	opts := c.speechOptions()
	c.mu.Unlock()

	c.speech.Cancel()

	go func() {
		defer cancel()
		prompt := fmt.Sprintf("Spell the word: %s.", word.Word)
		if err := c.speech.Speak(ctx, prompt, opts); err != nil {
			log.Printf("Word announcement failed: %v", err)
		}
		if ctx.Err() != nil {
			return
		}
		if err := c.speech.Speak(ctx, word.Sentence, opts); err != nil {
			log.Printf("Sentence announcement failed: %v", err)
		}
	}()
}

func (c *Controller) speechOptions() speech.Options {
	opts := speech.DefaultOptions()
	if rate := c.progress.Load().Settings.SpeechRate; rate > 0 {
		opts.Rate = rate
	}
	return opts
}

// Input forwards a keystroke to the active word session
func (c *Controller) Input(ch rune) error {
	session := c.Session()
	if session == nil {
		return ErrNoActiveWord
	}
	session.Input(ch)
	return nil
}

// Backspace forwards a backspace to the active word session
func (c *Controller) Backspace() error {
	session := c.Session()
	if session == nil {
		return ErrNoActiveWord
	}
	session.Backspace()
	return nil
}

func (c *Controller) onLetterCorrect(e LetterEvent) {
	if c.events.LetterCorrect != nil {
		c.events.LetterCorrect(e)
	}
}

func (c *Controller) onLetterIncorrect(e LetterEvent) {
	if c.events.LetterIncorrect != nil {
		c.events.LetterIncorrect(e)
	}
}

func (c *Controller) onFocusPrevious(index int) {
	if c.events.FocusPrevious != nil {
		c.events.FocusPrevious(index)
	}
}

func (c *Controller) onLetterRevealed(e LetterEvent) {
	c.mu.Lock()
	if e.Index >= 0 && e.Index < len(c.state.RevealedLetters) {
		c.state.RevealedLetters[e.Index] = true
	}
	c.mu.Unlock()

	if c.events.LetterRevealed != nil {
		c.events.LetterRevealed(e)
	}
}

// onWordComplete scores the finished word, persists the running score,
// and either waits for a Continue acknowledgment or, when the word was
// finished by the help reveal, advances automatically.
func (c *Controller) onWordComplete() {
	c.mu.Lock()
	if c.phase != PhasePlaying || c.state.CurrentWord == nil {
		c.mu.Unlock()
		return
	}

	word := *c.state.CurrentWord
	points := scoring.PointsForWord(
		c.state.CurrentLevel,
		len([]rune(word.Word)),
		c.lettersBeforeHelp,
		c.state.HelpUsed,
	)
	c.state.SessionScore += points
	sessionScore := c.state.SessionScore
	helpUsed := c.state.HelpUsed
	themeID := c.state.CurrentTheme
	level := c.state.CurrentLevel
	wordsHelped := append([]string(nil), c.wordsHelped...)
	c.phase = PhaseAwaitingContinue
	c.mu.Unlock()

	patch := progress.LevelPatch{Score: &sessionScore}
	if len(wordsHelped) > 0 {
		patch.WordsHelped = wordsHelped
	}
	c.progress.UpdateLevelProgress(themeID, level, patch)

	c.audio.Play(audio.CueComplete)

	if c.events.Celebration != nil {
		c.events.Celebration(word.Word, points, sessionScore, !helpUsed)
	}

	// Help bypasses the Continue acknowledgment
	if helpUsed {
		c.advanceWord()
	}
}

// Continue acknowledges the word celebration and advances to the next
// word. Ignored outside the awaiting-continue phase.
func (c *Controller) Continue(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseAwaitingContinue {
		c.mu.Unlock()
		return
	}
	c.phase = PhasePlaying
	c.mu.Unlock()

	c.advanceWordCtx(ctx)
}

// RequestHelp reveals the rest of the current word at a score penalty.
// Letters already typed keep partial credit. The word advances on its
// own once the reveal finishes.
func (c *Controller) RequestHelp(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhasePlaying || c.session == nil || c.state.CurrentWord == nil {
		c.mu.Unlock()
		return ErrNoActiveWord
	}

	session := c.session
	if !c.state.HelpUsed {
		c.state.HelpUsed = true
		c.lettersBeforeHelp = 0
		for _, view := range session.View() {
			if view.State == SlotCorrect {
				c.lettersBeforeHelp++
			}
		}
		word := *c.state.CurrentWord
		c.state.ReshuffleQueue = append(c.state.ReshuffleQueue, word)
		c.wordsHelped = append(c.wordsHelped, word.Word)
	}
	c.mu.Unlock()

	c.audio.Play(audio.CueClick)
	return session.RevealAll(ctx)
}

// HearAgain re-announces the current word and sentence without touching
// any state. A prior announcement still speaking is superseded.
func (c *Controller) HearAgain() error {
	c.mu.Lock()
	if c.state.CurrentWord == nil {
		c.mu.Unlock()
		return ErrNoActiveWord
	}
	word := *c.state.CurrentWord
	c.mu.Unlock()

	c.announce(word)
	return nil
}

// advanceWord moves to the next word, or completes the level when the
// last word is done
func (c *Controller) advanceWord() {
	c.advanceWordCtx(context.Background())
}

func (c *Controller) advanceWordCtx(ctx context.Context) {
	c.mu.Lock()
	c.state.CurrentWordIndex++
	c.phase = PhasePlaying
	c.mu.Unlock()

	c.loadWord(ctx)
}

// completeLevel computes the star rating, persists the final result,
// and hands control back to the navigator
func (c *Controller) completeLevel() {
	c.mu.Lock()
	score := c.state.SessionScore
	themeID := c.state.CurrentTheme
	level := c.state.CurrentLevel
	wordsHelped := append([]string(nil), c.wordsHelped...)
	maxScore := len(c.words) * maxPointsPerWord
	c.phase = PhaseLevelComplete
	if c.session != nil {
		c.session.Reset()
		c.session = nil
	}
	c.mu.Unlock()

	stars := scoring.StarsForLevel(score, maxScore)

	completed := true
	patch := progress.LevelPatch{
		Completed: &completed,
		Score:     &score,
		Stars:     &stars,
	}
	if len(wordsHelped) > 0 {
		patch.WordsHelped = wordsHelped
	}
	c.progress.UpdateLevelProgress(themeID, level, patch)

	c.audio.Play(audio.CueLevelUp)

	if c.events.LevelComplete != nil {
		c.events.LevelComplete(score, stars)
	}

	c.nav.Navigate(RouteLevelSelect, map[string]string{"theme": themeID})
}

// HandleBack leaves the level early, keeping the score earned so far
// without marking the level completed or rated
func (c *Controller) HandleBack() {
	c.mu.Lock()
	themeID := c.state.CurrentTheme
	level := c.state.CurrentLevel
	score := c.state.SessionScore
	started := themeID != ""
	if c.announceCancel != nil {
		c.announceCancel()
		c.announceCancel = nil
	}
	if c.session != nil {
		c.session.Reset()
		c.session = nil
	}
	c.phase = PhaseNotStarted
	c.mu.Unlock()

	c.speech.Cancel()

	if started {
		c.progress.UpdateLevelProgress(themeID, level, progress.LevelPatch{Score: &score})
	}

	c.nav.Navigate(RouteLevelSelect, map[string]string{"theme": themeID})
}
