package quiz

import "errors"

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPhase    = errors.New("action not valid in current phase")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAlreadyAnswered = errors.New("already answered this round")
	ErrUnauthorized    = errors.New("host-only action")
	ErrRoomFull        = errors.New("room is full")
	ErrNoPlayers       = errors.New("room has no players")
	ErrNoSongs         = errors.New("room needs at least one song")
)
