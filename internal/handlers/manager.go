package handlers

import (
	"context"
	"sync"

	"spellstar/internal/audio"
	"spellstar/internal/catalog"
	"spellstar/internal/game"
	"spellstar/internal/models"
	"spellstar/internal/progress"
	"spellstar/internal/speech"
)

// eventSink buffers game signals fired between HTTP requests. The browser
// drains it with each response and replays cues and narration client-side.
type eventSink struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (s *eventSink) add(event map[string]interface{}) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *eventSink) drain() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []map[string]interface{}{}
	}
	return events
}

// Play implements audio.Player by forwarding cue names to the browser
func (s *eventSink) Play(cue audio.Cue) {
	s.add(map[string]interface{}{
		"type": "cue",
		"cue":  string(cue),
	})
}

// narrator implements speech.Synthesizer for the web front end: it makes
// sure the narration MP3 exists on disk and queues its URL for the browser
// to play. Nothing plays server-side, so Cancel is a no-op.
type narrator struct {
	tts  *speech.TTSService
	sink *eventSink
}

func (n *narrator) Speak(ctx context.Context, text string, opts speech.Options) error {
	filename, err := n.tts.GenerateAudioFile(ctx, text)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return &speech.Error{Text: text, Err: err}
	}
	n.sink.add(map[string]interface{}{
		"type": "speech",
		"text": text,
		"url":  "/static/audio/" + filename,
		"rate": opts.Rate,
	})
	return nil
}

func (n *narrator) Cancel() {}

// PlayerGame bundles one player's controller with their progress store and
// the event buffer their browser drains
type PlayerGame struct {
	Controller *game.Controller
	Store      *progress.Store
	sink       *eventSink
}

// DrainEvents returns and clears the buffered game signals
func (pg *PlayerGame) DrainEvents() []map[string]interface{} {
	return pg.sink.drain()
}

// GameManager holds one game per player, created on first use. All players
// share the catalog and the save-data backend; each player's record lives
// under its own key.
type GameManager struct {
	mu    sync.Mutex
	games map[string]*PlayerGame

	catalog    *catalog.Catalog
	kv         progress.KeyValue
	tts        *speech.TTSService
	localAudio audio.Player
}

// SetLocalAudio also routes cues to a server-side player, for kiosk setups
// where the machine running the server drives the speakers
func (m *GameManager) SetLocalAudio(p audio.Player) {
	m.mu.Lock()
	m.localAudio = p
	m.mu.Unlock()
}

// NewGameManager creates a game manager. tts may be nil when narration is
// disabled; players then get a silent synthesizer.
func NewGameManager(cat *catalog.Catalog, kv progress.KeyValue, tts *speech.TTSService) *GameManager {
	return &GameManager{
		games:   make(map[string]*PlayerGame),
		catalog: cat,
		kv:      kv,
		tts:     tts,
	}
}

// Game returns the player's game, creating it on first access
func (m *GameManager) Game(playerID string) *PlayerGame {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pg, ok := m.games[playerID]; ok {
		return pg
	}

	sink := &eventSink{}
	store := progress.NewStoreForKey(m.kv, progress.SaveKey+":"+playerID)

	var player audio.Player = sink
	if m.localAudio != nil {
		player = audio.Multi{sink, m.localAudio}
	}

	var synth speech.Synthesizer = speech.Null{}
	if m.tts != nil {
		synth = &narrator{tts: m.tts, sink: sink}
	}

	ctrl := game.NewController(game.ControllerConfig{
		Catalog:  m.catalog,
		Progress: store,
		Speech:   synth,
		Audio:    player,
		Nav: game.NavigatorFunc(func(route string, params map[string]string) {
			event := map[string]interface{}{
				"type":  "navigate",
				"route": route,
			}
			for k, v := range params {
				event[k] = v
			}
			sink.add(event)
		}),
		Events: game.Events{
			WordStarted: func(word models.Word, index, total int) {
				sink.add(map[string]interface{}{
					"type":       "wordStarted",
					"wordLength": len([]rune(word.Word)),
					"wordIndex":  index,
					"totalWords": total,
				})
			},
			LetterCorrect: func(e game.LetterEvent) {
				sink.add(map[string]interface{}{
					"type":   "letterCorrect",
					"index":  e.Index,
					"letter": string(e.Letter),
				})
			},
			LetterIncorrect: func(e game.LetterEvent) {
				sink.add(map[string]interface{}{
					"type":  "letterIncorrect",
					"index": e.Index,
				})
			},
			LetterRevealed: func(e game.LetterEvent) {
				sink.add(map[string]interface{}{
					"type":   "letterRevealed",
					"index":  e.Index,
					"letter": string(e.Letter),
				})
			},
			FocusPrevious: func(index int) {
				sink.add(map[string]interface{}{
					"type":  "focusPrevious",
					"index": index,
				})
			},
			Celebration: func(word string, points, sessionScore int, awaitContinue bool) {
				sink.add(map[string]interface{}{
					"type":          "celebration",
					"word":          word,
					"points":        points,
					"sessionScore":  sessionScore,
					"awaitContinue": awaitContinue,
				})
			},
			LevelComplete: func(score, stars int) {
				sink.add(map[string]interface{}{
					"type":  "levelComplete",
					"score": score,
					"stars": stars,
				})
			},
		},
	})

	pg := &PlayerGame{Controller: ctrl, Store: store, sink: sink}
	m.games[playerID] = pg
	return pg
}
