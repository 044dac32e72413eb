package room

import "tunequiz/server/internal/quiz"

type EventType int

const (
	EventJoin EventType = iota
	EventRejoin
	EventLeave
	EventSubmit
	EventAdvance
	EventEnd
)

// Event is one inbound action for a room. All room mutations, player-driven
// and host-driven alike, enter the actor loop as events; deadline expiry is
// the only other input and is owned by the loop itself.
type Event struct {
	Type     EventType
	PlayerID string
	Username string
	Emoji    string
	Text     string
	Target   quiz.Phase
}
