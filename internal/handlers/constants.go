package handlers

const (
	PlayerCookieName = "player_session"

	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrWrongPIN            = "Incorrect PIN"
)
