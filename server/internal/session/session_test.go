package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tunequiz/pkg/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	fail   bool
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) decoded(t *testing.T) []*protocol.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := protocol.DecodeEnvelope(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestManager() *Manager {
	return NewManager(time.Hour, nil, zap.NewNop())
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager()
	conn := &fakeConn{}
	s := m.Create("p1", "alice", "🎧", "tok-1", conn)

	got, ok := m.Get("p1")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, m.IsOnline("p1"))

	_, ok = m.Get("missing")
	assert.False(t, ok)
	assert.False(t, m.IsOnline("missing"))
}

func TestSendCarriesSequenceNumbers(t *testing.T) {
	m := newTestManager()
	conn := &fakeConn{}
	m.Create("p1", "alice", "🎧", "tok-1", conn)

	require.NoError(t, m.Send("p1", protocol.MsgPong, &protocol.Pong{}))
	require.NoError(t, m.Send("p1", protocol.MsgPong, &protocol.Pong{}))

	envs := conn.decoded(t)
	require.Len(t, envs, 2)
	assert.Equal(t, protocol.MsgPong, envs[0].Type)
	assert.Equal(t, uint64(1), envs[0].Seq)
	assert.Equal(t, uint64(2), envs[1].Seq)
	assert.Equal(t, int32(protocol.CurrentVersion), envs[0].Version)
}

func TestSendOfflineSession(t *testing.T) {
	m := newTestManager()
	conn := &fakeConn{}
	m.Create("p1", "alice", "🎧", "tok-1", conn)
	m.MarkOffline("p1")

	assert.Error(t, m.Send("p1", protocol.MsgPong, &protocol.Pong{}))
	assert.False(t, m.IsOnline("p1"))

	err := m.Send("missing", protocol.MsgPong, &protocol.Pong{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBindReplacesConnection(t *testing.T) {
	m := newTestManager()
	old := &fakeConn{}
	m.Create("p1", "alice", "🎧", "tok-1", old)
	m.MarkOffline("p1")

	fresh := &fakeConn{}
	s, ok := m.Bind("p1", fresh)
	require.True(t, ok)
	assert.True(t, m.IsOnline("p1"))

	// Sequence numbers continue, they do not restart per connection.
	require.NoError(t, s.Send(protocol.MsgPong, &protocol.Pong{}))
	require.NoError(t, s.Send(protocol.MsgPong, &protocol.Pong{}))
	envs := fresh.decoded(t)
	require.Len(t, envs, 2)
	assert.Equal(t, uint64(1), envs[0].Seq)

	_, ok = m.Bind("missing", fresh)
	assert.False(t, ok)
}

func TestBindClosesSupersededConnection(t *testing.T) {
	m := newTestManager()
	old := &fakeConn{}
	m.Create("p1", "alice", "🎧", "tok-1", old)

	fresh := &fakeConn{}
	_, ok := m.Bind("p1", fresh)
	require.True(t, ok)
	assert.True(t, old.isClosed())
	assert.False(t, fresh.isClosed())
}

func TestSetRoom(t *testing.T) {
	m := newTestManager()
	m.Create("p1", "alice", "🎧", "tok-1", &fakeConn{})

	m.SetRoom("p1", "12345")
	s, ok := m.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "12345", s.GetRoomCode())

	m.SetRoom("p1", "")
	assert.Empty(t, s.GetRoomCode())

	m.SetRoom("missing", "12345") // unknown players are ignored
}

func TestBroadcastBestEffort(t *testing.T) {
	m := newTestManager()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	m.Create("p1", "alice", "🎧", "tok-1", bad)
	m.Create("p2", "bob", "🎸", "tok-2", good)

	m.Broadcast([]string{"p1", "ghost", "p2"}, protocol.MsgPong, &protocol.Pong{})

	// Failures upstream in the list never starve later recipients.
	assert.Len(t, good.decoded(t), 1)
	assert.Empty(t, bad.frames)
}

func TestRemove(t *testing.T) {
	m := newTestManager()
	m.Create("p1", "alice", "🎧", "tok-1", &fakeConn{})
	m.Remove("p1")
	_, ok := m.Get("p1")
	assert.False(t, ok)
}
