package handlers

import (
	"encoding/json"
	"net/http"

	"spellstar/internal/catalog"
	"spellstar/internal/progress"
	"spellstar/internal/security"
	"spellstar/internal/service"
)

// ProgressHandler serves the level-select data and the grown-up operations:
// settings, the optional PIN, progress reset and the emailed report
type ProgressHandler struct {
	manager *GameManager
	catalog *catalog.Catalog
	reports *service.ReportService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(manager *GameManager, cat *catalog.Catalog, reports *service.ReportService) *ProgressHandler {
	return &ProgressHandler{
		manager: manager,
		catalog: cat,
		reports: reports,
	}
}

func (h *ProgressHandler) playerGame(w http.ResponseWriter, r *http.Request) *PlayerGame {
	playerID := GetPlayerFromContext(r.Context())
	if playerID == "" {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return nil
	}
	return h.manager.Game(playerID)
}

// checkPIN enforces the grown-up PIN when one is set. Returns false after
// writing the error response.
func (h *ProgressHandler) checkPIN(w http.ResponseWriter, pg *PlayerGame, pin string) bool {
	hash := pg.Store.Load().Settings.PINHash
	if hash == "" {
		return true
	}
	if !security.CheckPIN(hash, pin) {
		http.Error(w, ErrWrongPIN, http.StatusForbidden)
		return false
	}
	return true
}

// ListThemes returns every theme with its levels, each level's unlock state
// and any stored results, for the level-select screen
func (h *ProgressHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	themes := []map[string]interface{}{}
	for _, themeID := range h.catalog.ListThemeIDs() {
		list, err := h.catalog.LoadTheme(r.Context(), themeID)
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Failed to load theme content", "Theme load failed", err)
			return
		}

		levels := make([]map[string]interface{}, 0, len(list.Levels))
		for _, lvl := range list.Levels {
			entry := map[string]interface{}{
				"level":       lvl.Level,
				"name":        lvl.Name,
				"description": lvl.Description,
				"wordCount":   len(lvl.Words),
				"unlocked":    pg.Store.IsLevelUnlocked(themeID, lvl.Level),
			}
			if lp := pg.Store.LevelProgressFor(themeID, lvl.Level); lp != nil {
				entry["completed"] = lp.Completed
				entry["score"] = lp.Score
				entry["stars"] = lp.Stars
			}
			levels = append(levels, entry)
		}

		theme := map[string]interface{}{
			"id":     themeID,
			"levels": levels,
		}
		if list.Theme != nil {
			theme["name"] = list.Theme.Name
			theme["icon"] = list.Theme.Icon
			theme["description"] = list.Theme.Description
		}
		themes = append(themes, theme)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
}

// GetSettings returns the player's settings. The PIN hash itself never
// leaves the server; only whether a PIN is set.
func (h *ProgressHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	settings := pg.Store.Load().Settings
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"soundEnabled":  settings.SoundEnabled,
		"speechEnabled": settings.SpeechEnabled,
		"speechRate":    settings.SpeechRate,
		"pinSet":        settings.PINHash != "",
	})
}

// UpdateSettings merges the submitted settings. When a PIN is set the
// request must carry it.
func (h *ProgressHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		PIN           string   `json:"pin"`
		SoundEnabled  *bool    `json:"soundEnabled"`
		SpeechEnabled *bool    `json:"speechEnabled"`
		SpeechRate    *float64 `json:"speechRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if !h.checkPIN(w, pg, req.PIN) {
		return
	}
	if req.SpeechRate != nil && (*req.SpeechRate < 0.5 || *req.SpeechRate > 2.0) {
		http.Error(w, "speechRate must be between 0.5 and 2.0", http.StatusBadRequest)
		return
	}

	pg.Store.UpdateSettings(progress.SettingsPatch{
		SoundEnabled:  req.SoundEnabled,
		SpeechEnabled: req.SpeechEnabled,
		SpeechRate:    req.SpeechRate,
	})
	h.GetSettings(w, r)
}

// SetPIN sets or changes the grown-up PIN. Changing an existing PIN
// requires the current one.
func (h *ProgressHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		CurrentPIN string `json:"currentPin"`
		NewPIN     string `json:"newPin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if len(req.NewPIN) < 4 {
		http.Error(w, "PIN must be at least 4 characters", http.StatusBadRequest)
		return
	}
	if !h.checkPIN(w, pg, req.CurrentPIN) {
		return
	}

	hash, err := security.HashPIN(req.NewPIN)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to hash PIN", err)
		return
	}

	pg.Store.UpdateSettings(progress.SettingsPatch{PINHash: &hash})
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"pinSet": true})
}

// ResetProgress deletes the player's save record. PIN-gated when one is set.
func (h *ProgressHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if !h.checkPIN(w, pg, req.PIN) {
		return
	}

	pg.Store.Clear()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"reset": true})
}

// SendReport emails a progress summary to the submitted address
func (h *ProgressHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	pg := h.playerGame(w, r)
	if pg == nil {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}
	if !h.reports.IsEnabled() {
		http.Error(w, "Progress reports are not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.reports.SendProgressReport(r.Context(), req.Email, pg.Store.Load()); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to send report", "Progress report failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sent": true})
}
