package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"spellstar/internal/catalog"
	"spellstar/internal/game"
)

// GameHandler exposes the spelling game over a JSON API. Each request acts
// on the calling player's controller and returns the game signals fired
// while handling it; the browser renders slots from the state snapshot and
// replays cues and narration from the event list.
type GameHandler struct {
	manager *GameManager
}

// NewGameHandler creates a new game handler
func NewGameHandler(manager *GameManager) *GameHandler {
	return &GameHandler{manager: manager}
}

func (h *GameHandler) playerGame(w http.ResponseWriter, r *http.Request) *PlayerGame {
	playerID := GetPlayerFromContext(r.Context())
	if playerID == "" {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return nil
	}
	return h.manager.Game(playerID)
}

func (h *GameHandler) respondWithGameState(w http.ResponseWriter, pg *PlayerGame) {
	state := pg.Controller.State()

	var slots []game.SlotView
	if session := pg.Controller.Session(); session != nil {
		slots = session.View()
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"phase":        pg.Controller.Phase().String(),
		"theme":        state.CurrentTheme,
		"level":        state.CurrentLevel,
		"wordIndex":    state.CurrentWordIndex,
		"sessionScore": state.SessionScore,
		"slots":        slots,
		"events":       pg.DrainEvents(),
	})
}

// StartLevel begins a theme's level for the calling player
func (h *GameHandler) StartLevel(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		Theme string `json:"theme"`
		Level int    `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if !pg.Store.IsLevelUnlocked(req.Theme, req.Level) {
		http.Error(w, "Level is locked", http.StatusForbidden)
		return
	}

	if err := pg.Controller.StartGame(r.Context(), req.Theme, req.Level); err != nil {
		var notFound *game.LevelNotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Level not found", http.StatusNotFound)
			return
		}
		var loadErr *catalog.ContentLoadError
		if errors.As(err, &loadErr) {
			respondWithError(w, http.StatusBadGateway, "Failed to load theme content", "Theme load failed", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to start level", err)
		return
	}

	h.respondWithGameState(w, pg)
}

// Keystroke offers one typed letter to the current word
func (h *GameHandler) Keystroke(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if utf8.RuneCountInString(req.Letter) != 1 {
		http.Error(w, "letter must be a single character", http.StatusBadRequest)
		return
	}

	ch, _ := utf8.DecodeRuneInString(req.Letter)
	if err := pg.Controller.Input(ch); err != nil {
		http.Error(w, "No active word", http.StatusConflict)
		return
	}

	h.respondWithGameState(w, pg)
}

// Backspace moves focus back to the previous slot
func (h *GameHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	if err := pg.Controller.Backspace(); err != nil {
		http.Error(w, "No active word", http.StatusConflict)
		return
	}

	h.respondWithGameState(w, pg)
}

// Help reveals the rest of the current word at a score penalty. The reveal
// runs to completion before responding, so the response already carries the
// revealed letters and the celebration.
func (h *GameHandler) Help(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	if err := pg.Controller.RequestHelp(r.Context()); err != nil {
		http.Error(w, "No active word", http.StatusConflict)
		return
	}

	h.respondWithGameState(w, pg)
}

// HearAgain re-announces the current word and sentence
func (h *GameHandler) HearAgain(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	if err := pg.Controller.HearAgain(); err != nil {
		http.Error(w, "No active word", http.StatusConflict)
		return
	}

	h.respondWithGameState(w, pg)
}

// Continue acknowledges a word celebration and moves to the next word
func (h *GameHandler) Continue(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	pg.Controller.Continue(r.Context())
	h.respondWithGameState(w, pg)
}

// Back leaves the level early, keeping the score earned so far
func (h *GameHandler) Back(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	pg.Controller.HandleBack()
	h.respondWithGameState(w, pg)
}

// GetState returns the current game snapshot and drains pending events.
// The browser polls this while narration generated after a response is
// still arriving.
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	h.respondWithGameState(w, pg)
}
