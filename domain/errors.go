package domain

import "errors"

// Action-level errors, returned synchronously to the caller. The HTTP
// boundary maps each to a stable string code; none are retried
// server-side.
var (
	ErrInvalidSession       = errors.New("invalid-session")
	ErrNotAuthorized        = errors.New("not-authorized")
	ErrRoomNotFound         = errors.New("room-not-found")
	ErrGameInProgress       = errors.New("game-in-progress")
	ErrRoomFull             = errors.New("room-full")
	ErrInvalidWordSelection = errors.New("invalid-word-selection")
	ErrValidation           = errors.New("validation-error")
	ErrInvalidScore         = errors.New("invalid-score")
	ErrRateLimited          = errors.New("rate-limited")
)

// Storage-level sentinels.
var (
	ErrPlayerNotFound  = errors.New("player-not-found")
	ErrSessionNotFound = errors.New("session-not-found")

	UnexpectedDatabaseError = errors.New("unexpected-database-error")
)
