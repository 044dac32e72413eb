package room

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tunequiz/pkg/protocol"
	"tunequiz/server/internal/quiz"
	"tunequiz/server/internal/store"
)

func newTestManager(t *testing.T, opts Options) (*Manager, *fakeSender, *fakeBinder) {
	t.Helper()
	if opts.IdleTTL == 0 {
		opts.IdleTTL = time.Hour
	}
	if opts.FinishedGrace == 0 {
		opts.FinishedGrace = time.Hour
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = time.Hour
	}
	sender := &fakeSender{}
	binder := newFakeBinder()
	m := NewManager(opts, sender, binder, store.NewMemoryIdem(), nil, nil, zap.NewNop(), nil)
	t.Cleanup(m.Close)
	return m, sender, binder
}

func TestCreateRoom(t *testing.T) {
	m, _, binder := newTestManager(t, Options{})

	code, gameID, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(2))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{4}$`), code)
	assert.NotEmpty(t, gameID)
	assert.Equal(t, code, binder.roomOf("conn-host"))

	r, ok := m.Get(code)
	require.True(t, ok)
	assert.Equal(t, quiz.PhaseLobby, r.Phase())
	assert.Equal(t, 1, r.ConnectedCount())
	assert.Equal(t, 1, m.Count())
}

func TestCreateRoomUniqueCodes(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, _, err := m.CreateRoom("conn", "host", "🎧", roomSongs(1))
		require.NoError(t, err)
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestCreateRoomRequiresSongs(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	_, _, err := m.CreateRoom("conn-host", "host", "🎧", nil)
	assert.ErrorIs(t, err, quiz.ErrNoSongs)
	assert.Zero(t, m.Count())
}

func TestCreateRoomCapacity(t *testing.T) {
	m, _, _ := newTestManager(t, Options{RoomLimit: 1})

	_, _, err := m.CreateRoom("conn-a", "alice", "🎧", roomSongs(1))
	require.NoError(t, err)

	_, _, err = m.CreateRoom("conn-b", "bob", "🎧", roomSongs(1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, m.Count())
}

func TestRoomMembershipCap(t *testing.T) {
	m, sender, _ := newTestManager(t, Options{MaxPlayers: 1})
	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	// The host already holds the only seat.
	m.SendEvent(code, Event{Type: EventJoin, PlayerID: "conn-bob", Username: "bob", Emoji: "🎸"})
	require.Eventually(t, func() bool {
		msg, ok := sender.last(protocol.MsgErrorResp)
		return ok && msg.msg.(*protocol.ErrorResp).Code == ErrorCode(quiz.ErrRoomFull)
	}, time.Second, 5*time.Millisecond)

	r, ok := m.Get(code)
	require.True(t, ok)
	assert.Equal(t, 1, r.ConnectedCount())
}

func TestSendEventUnknownRoom(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	assert.False(t, m.SendEvent("00000", Event{Type: EventAdvance}))
}

func TestRemoveIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	m.Remove(code)
	_, ok := m.Get(code)
	assert.False(t, ok)
	assert.Zero(t, m.Count())

	m.Remove(code) // second removal is a no-op
	assert.Zero(t, m.Count())
}

func TestSweepIdleAbandonedRoom(t *testing.T) {
	m, _, _ := newTestManager(t, Options{IdleTTL: time.Minute})
	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	r, ok := m.Get(code)
	require.True(t, ok)
	r.connected.Store(0) // last connection dropped

	// Still within the TTL.
	m.sweep(time.Now().Add(30 * time.Second))
	_, ok = m.Get(code)
	assert.True(t, ok)

	// Idle past the TTL with nobody connected, reclaimed regardless of phase.
	m.sweep(time.Now().Add(2 * time.Minute))
	_, ok = m.Get(code)
	assert.False(t, ok)
}

func TestSweepSparesOccupiedRoom(t *testing.T) {
	m, _, _ := newTestManager(t, Options{IdleTTL: time.Minute})
	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	// Long quiet stretch, but the host connection is still live: the room
	// must survive the sweep.
	m.sweep(time.Now().Add(24 * time.Hour))
	_, ok := m.Get(code)
	assert.True(t, ok)
}

func TestSweepFinishedRoomAfterGrace(t *testing.T) {
	m, _, _ := newTestManager(t, Options{IdleTTL: time.Hour, FinishedGrace: time.Minute})
	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	r, ok := m.Get(code)
	require.True(t, ok)
	r.phase.Store(int32(quiz.PhaseFinished))

	m.sweep(time.Now().Add(2 * time.Minute))
	_, ok = m.Get(code)
	assert.False(t, ok)
}

func TestRemoveNotifiesClose(t *testing.T) {
	sender := &fakeSender{}
	binder := newFakeBinder()
	closed := make(chan []string, 1)
	m := NewManager(Options{IdleTTL: time.Hour, FinishedGrace: time.Hour, SweepInterval: time.Hour},
		sender, binder, store.NewMemoryIdem(), nil, nil, zap.NewNop(),
		func(code string, playerIDs []string) { closed <- playerIDs },
	)
	t.Cleanup(m.Close)

	code, _, err := m.CreateRoom("conn-host", "host", "🎧", roomSongs(1))
	require.NoError(t, err)

	m.Remove(code)
	select {
	case ids := <-closed:
		assert.Equal(t, []string{"conn-host"}, ids)
	case <-time.After(time.Second):
		t.Fatal("room close callback never fired")
	}
}
