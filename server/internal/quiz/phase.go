package quiz

import "fmt"

// Phase is the room's state-machine state. Values are shared with the wire
// protocol.
type Phase int32

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseReveal
	PhaseLeaderboard
	PhaseAnswersReview
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhasePlaying:
		return "PLAYING"
	case PhaseReveal:
		return "REVEAL"
	case PhaseLeaderboard:
		return "LEADERBOARD"
	case PhaseAnswersReview:
		return "ANSWERS_REVIEW"
	case PhaseFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("PHASE(%d)", int32(p))
	}
}

// Next returns the natural successor used when an advance request names no
// explicit target. From the leaderboard and review phases the successor is
// PhasePlaying; Advance turns that into PhaseFinished when no songs remain.
func (p Phase) Next() Phase {
	switch p {
	case PhaseLobby:
		return PhasePlaying
	case PhasePlaying:
		return PhaseReveal
	case PhaseReveal:
		return PhaseLeaderboard
	case PhaseLeaderboard, PhaseAnswersReview:
		return PhasePlaying
	default:
		return PhaseFinished
	}
}
