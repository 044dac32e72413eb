package room

import (
	"errors"

	"tunequiz/server/internal/quiz"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrCapacityExceeded = errors.New("active room limit reached")
)

// ErrorCode maps the error taxonomy to wire error codes.
func ErrorCode(err error) int32 {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, quiz.ErrPlayerNotFound):
		return 404
	case errors.Is(err, quiz.ErrUnauthorized):
		return 403
	case errors.Is(err, quiz.ErrUsernameTaken):
		return 409
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return 410
	case errors.Is(err, quiz.ErrInvalidPhase), errors.Is(err, quiz.ErrNoPlayers), errors.Is(err, quiz.ErrNoSongs):
		return 412
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, quiz.ErrRoomFull):
		return 503
	default:
		return 500
	}
}
