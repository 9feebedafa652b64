package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"spellstar/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const PlayerContextKey ContextKey = "player"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	signer          *security.TokenSigner
	sessionDuration time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(signer *security.TokenSigner, sessionDuration time.Duration) *Middleware {
	return &Middleware{
		signer:          signer,
		sessionDuration: sessionDuration,
	}
}

// PlayerSession attaches a player ID to the request context. A missing or
// invalid session cookie is not an error: a fresh player identity is minted
// and set, so a first visit lands straight in the game with an empty save.
func (m *Middleware) PlayerSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := ""
		if cookie, err := r.Cookie(PlayerCookieName); err == nil {
			if id, err := m.signer.Verify(cookie.Value); err == nil {
				playerID = id
			}
		}

		if playerID == "" {
			playerID = security.GeneratePlayerID()
			token, err := m.signer.Sign(playerID)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to sign player token", err)
				return
			}
			expires := time.Now().Add(m.sessionDuration)
			http.SetCookie(w, security.CreateSessionCookie(r, PlayerCookieName, token, expires))
		}

		ctx := context.WithValue(r.Context(), PlayerContextKey, playerID)
		next(w, r.WithContext(ctx))
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetPlayerFromContext retrieves the player ID from the request context
func GetPlayerFromContext(ctx context.Context) string {
	playerID, ok := ctx.Value(PlayerContextKey).(string)
	if !ok {
		return ""
	}
	return playerID
}
