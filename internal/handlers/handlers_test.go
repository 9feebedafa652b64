package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spellstar/internal/catalog"
	"spellstar/internal/security"
)

const testContent = `{
	"theme": {"id": "fantasy", "name": "Fantasy", "icon": "castle", "description": "Magical words"},
	"levels": [
		{
			"level": 1,
			"name": "First Steps",
			"description": "Short words",
			"stars_required": 0,
			"words": [
				{"word": "cat", "sentence": "The cat sat on the mat."},
				{"word": "dog", "sentence": "The dog wagged its tail."}
			]
		},
		{
			"level": 2,
			"name": "Bigger Words",
			"description": "Four letters",
			"stars_required": 1,
			"words": [
				{"word": "frog", "sentence": "The frog jumped in the pond."}
			]
		},
		{
			"level": 3,
			"name": "Tricky Words",
			"description": "Five letters",
			"stars_required": 2,
			"words": [
				{"word": "troll", "sentence": "The troll lived under the bridge."}
			]
		}
	]
}`

type testFetcher struct{}

func (testFetcher) Fetch(ctx context.Context, themeID string) ([]byte, error) {
	switch themeID {
	case "fantasy", "scifi":
		return []byte(testContent), nil
	}
	return nil, errors.New("no such theme")
}

type memKV struct {
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: make(map[string]string)} }

func (kv *memKV) Get(key string) (string, bool, error) {
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *memKV) Set(key, value string) error {
	kv.data[key] = value
	return nil
}

func (kv *memKV) Remove(key string) error {
	delete(kv.data, key)
	return nil
}

func newTestManager() *GameManager {
	return NewGameManager(catalog.New(testFetcher{}), newMemKV(), nil)
}

// playerRequest builds a request already carrying a player identity, as the
// session middleware would leave it
func playerRequest(method, target, body, playerID string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), PlayerContextKey, playerID)
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func eventTypes(body map[string]interface{}) []string {
	events, _ := body["events"].([]interface{})
	types := make([]string, 0, len(events))
	for _, e := range events {
		event, _ := e.(map[string]interface{})
		if name, ok := event["type"].(string); ok {
			types = append(types, name)
		}
	}
	return types
}

func hasEvent(body map[string]interface{}, eventType string) bool {
	for _, name := range eventTypes(body) {
		if name == eventType {
			return true
		}
	}
	return false
}

func TestPlayerSessionMintsIdentity(t *testing.T) {
	signer := security.NewTokenSigner("test-secret", time.Hour)
	mw := NewMiddleware(signer, time.Hour)

	var gotPlayerID string
	handler := mw.PlayerSession(func(w http.ResponseWriter, r *http.Request) {
		gotPlayerID = GetPlayerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "http://example.com/api/game/state", nil))

	if gotPlayerID == "" {
		t.Fatal("no player ID attached to context")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == PlayerCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set for a fresh visitor")
	}

	// The cookie round-trips to the same player ID
	id, err := signer.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("minted cookie does not verify: %v", err)
	}
	if id != gotPlayerID {
		t.Errorf("cookie player ID %q, context player ID %q", id, gotPlayerID)
	}
}

func TestPlayerSessionKeepsExistingIdentity(t *testing.T) {
	signer := security.NewTokenSigner("test-secret", time.Hour)
	mw := NewMiddleware(signer, time.Hour)

	playerID := security.GeneratePlayerID()
	token, err := signer.Sign(playerID)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	var gotPlayerID string
	handler := mw.PlayerSession(func(w http.ResponseWriter, r *http.Request) {
		gotPlayerID = GetPlayerFromContext(r.Context())
	})

	r := httptest.NewRequest("GET", "http://example.com/api/game/state", nil)
	r.AddCookie(&http.Cookie{Name: PlayerCookieName, Value: token})
	w := httptest.NewRecorder()
	handler(w, r)

	if gotPlayerID != playerID {
		t.Errorf("context player ID = %q, want %q", gotPlayerID, playerID)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("a valid session must not be re-minted")
	}
}

func TestStartLevel(t *testing.T) {
	handler := NewGameHandler(newTestManager())
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerID))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["phase"] != "playing" {
		t.Errorf("phase = %v, want playing", body["phase"])
	}
	if !hasEvent(body, "wordStarted") {
		t.Errorf("events = %v, want a wordStarted event", eventTypes(body))
	}
	slots, _ := body["slots"].([]interface{})
	if len(slots) != 3 {
		t.Errorf("got %d slots for cat, want 3", len(slots))
	}
}

func TestStartLevelErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"locked level", `{"theme":"fantasy","level":3}`, http.StatusForbidden},
		{"missing level", `{"theme":"fantasy","level":99}`, http.StatusForbidden},
		{"unknown theme", `{"theme":"underwater","level":1}`, http.StatusBadGateway},
		{"bad body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewGameHandler(newTestManager())
			w := httptest.NewRecorder()
			handler.StartLevel(w, playerRequest("POST", "/api/game/start", tt.body, security.GeneratePlayerID()))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestKeystrokeFlow(t *testing.T) {
	handler := NewGameHandler(newTestManager())
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("start failed: %s", w.Body.String())
	}

	var body map[string]interface{}
	for _, letter := range []string{"c", "a", "t"} {
		w = httptest.NewRecorder()
		handler.Keystroke(w, playerRequest("POST", "/api/game/key", `{"letter":"`+letter+`"}`, playerID))
		if w.Code != http.StatusOK {
			t.Fatalf("keystroke %q failed: %s", letter, w.Body.String())
		}
		body = decodeBody(t, w)
	}

	if body["phase"] != "awaiting_continue" {
		t.Errorf("phase = %v after finishing the word, want awaiting_continue", body["phase"])
	}
	if !hasEvent(body, "celebration") {
		t.Errorf("events = %v, want a celebration event", eventTypes(body))
	}
	if body["sessionScore"] != float64(10) {
		t.Errorf("sessionScore = %v, want 10", body["sessionScore"])
	}

	w = httptest.NewRecorder()
	handler.Continue(w, playerRequest("POST", "/api/game/continue", "", playerID))
	body = decodeBody(t, w)
	if body["phase"] != "playing" || body["wordIndex"] != float64(1) {
		t.Errorf("after continue: phase = %v wordIndex = %v, want playing and 1", body["phase"], body["wordIndex"])
	}
}

func TestBackspaceEmitsFocusPrevious(t *testing.T) {
	handler := NewGameHandler(newTestManager())
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("start failed: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.Keystroke(w, playerRequest("POST", "/api/game/key", `{"letter":"c"}`, playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("keystroke failed: %s", w.Body.String())
	}

	// Backspace on the now-focused empty slot moves focus back; the
	// browser gets that as an explicit event, not just a state snapshot
	w = httptest.NewRecorder()
	handler.Backspace(w, playerRequest("POST", "/api/game/backspace", "", playerID))
	body := decodeBody(t, w)
	if !hasEvent(body, "focusPrevious") {
		t.Fatalf("events = %v, want a focusPrevious event", eventTypes(body))
	}
	for _, raw := range body["events"].([]interface{}) {
		event := raw.(map[string]interface{})
		if event["type"] == "focusPrevious" && event["index"] != float64(1) {
			t.Errorf("focusPrevious index = %v, want 1", event["index"])
		}
	}
}

func TestKeystrokeValidation(t *testing.T) {
	handler := NewGameHandler(newTestManager())
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerID))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"multi-character", `{"letter":"ca"}`, http.StatusBadRequest},
		{"empty", `{"letter":""}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Keystroke(w, playerRequest("POST", "/api/game/key", tt.body, playerID))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestKeystrokeWithoutGame(t *testing.T) {
	handler := NewGameHandler(newTestManager())

	w := httptest.NewRecorder()
	handler.Keystroke(w, playerRequest("POST", "/api/game/key", `{"letter":"a"}`, security.GeneratePlayerID()))
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestHelpFlow(t *testing.T) {
	handler := NewGameHandler(newTestManager())
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerID))

	w = httptest.NewRecorder()
	handler.Help(w, playerRequest("POST", "/api/game/help", "", playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("help failed: %s", w.Body.String())
	}

	body := decodeBody(t, w)
	// The reveal runs to completion before the response, so the reveal
	// events, the celebration and the next word all arrive together
	for _, want := range []string{"letterRevealed", "celebration", "wordStarted"} {
		if !hasEvent(body, want) {
			t.Errorf("events = %v, want %s", eventTypes(body), want)
		}
	}
	if body["phase"] != "playing" {
		t.Errorf("phase = %v after helped word, want playing (auto-advanced)", body["phase"])
	}
}

func TestPlayersAreIsolated(t *testing.T) {
	manager := newTestManager()
	handler := NewGameHandler(manager)
	playerA := security.GeneratePlayerID()
	playerB := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.StartLevel(w, playerRequest("POST", "/api/game/start", `{"theme":"fantasy","level":1}`, playerA))
	if w.Code != http.StatusOK {
		t.Fatalf("start failed: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.GetState(w, playerRequest("GET", "/api/game/state", "", playerB))
	body := decodeBody(t, w)
	if body["phase"] != "not_started" {
		t.Errorf("player B phase = %v, want not_started", body["phase"])
	}
}

func TestSettingsPINGate(t *testing.T) {
	manager := newTestManager()
	handler := NewProgressHandler(manager, catalog.New(testFetcher{}), nil)
	playerID := security.GeneratePlayerID()

	// No PIN yet: set one
	w := httptest.NewRecorder()
	handler.SetPIN(w, playerRequest("POST", "/api/settings/pin", `{"newPin":"1234"}`, playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("SetPIN failed: %s", w.Body.String())
	}

	t.Run("update without pin is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UpdateSettings(w, playerRequest("POST", "/api/settings", `{"soundEnabled":false}`, playerID))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("update with pin succeeds", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UpdateSettings(w, playerRequest("POST", "/api/settings", `{"pin":"1234","soundEnabled":false}`, playerID))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["soundEnabled"] != false {
			t.Errorf("soundEnabled = %v, want false", body["soundEnabled"])
		}
	})

	t.Run("reset with wrong pin is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ResetProgress(w, playerRequest("POST", "/api/progress/reset", `{"pin":"9999"}`, playerID))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestListThemes(t *testing.T) {
	manager := newTestManager()
	handler := NewProgressHandler(manager, catalog.New(testFetcher{}), nil)
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.ListThemes(w, playerRequest("GET", "/api/themes", "", playerID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	themes, _ := body["themes"].([]interface{})
	if len(themes) != 2 {
		t.Fatalf("got %d themes, want 2", len(themes))
	}

	first, _ := themes[0].(map[string]interface{})
	levels, _ := first["levels"].([]interface{})
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(levels))
	}

	// Level 1 starts unlocked, level 3 locked, with no progress recorded
	lvl1, _ := levels[0].(map[string]interface{})
	lvl3, _ := levels[2].(map[string]interface{})
	if lvl1["unlocked"] != true {
		t.Error("level 1 should start unlocked")
	}
	if lvl3["unlocked"] != false {
		t.Error("level 3 should start locked")
	}
	if _, ok := lvl1["score"]; ok {
		t.Error("unplayed level should carry no stored score")
	}
}

func TestSpeechRateValidation(t *testing.T) {
	manager := newTestManager()
	handler := NewProgressHandler(manager, catalog.New(testFetcher{}), nil)
	playerID := security.GeneratePlayerID()

	w := httptest.NewRecorder()
	handler.UpdateSettings(w, playerRequest("POST", "/api/settings", `{"speechRate":5.0}`, playerID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
