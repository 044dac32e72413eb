package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tunequiz/server/internal/metrics"
	"tunequiz/server/internal/quiz"
	"tunequiz/server/internal/store"
)

const (
	codeSpaceMin     = 10000
	codeSpaceSize    = 90000
	codeGenAttempts  = 50
	defaultSweepTick = 30 * time.Second
)

// Options bounds the registry, per-room membership, and the background sweep.
type Options struct {
	RoomLimit     int
	MaxPlayers    int
	IdleTTL       time.Duration
	FinishedGrace time.Duration
	SweepInterval time.Duration
}

// Manager is the process-wide room registry: code generation, lookup, and
// garbage collection of abandoned rooms. The rooms map is the only structure
// shared across rooms.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	opts    Options
	sender  Sender
	binder  Binder
	idem    store.Idempotency
	results ResultWriter
	metrics *metrics.Metrics
	log     *zap.Logger

	onRoomClosed func(code string, playerIDs []string)
	done         chan struct{}
	closeOnce    sync.Once
}

func NewManager(opts Options, sender Sender, binder Binder, idem store.Idempotency, results ResultWriter, m *metrics.Metrics, log *zap.Logger, onRoomClosed func(code string, playerIDs []string)) *Manager {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepTick
	}
	mgr := &Manager{
		rooms:        make(map[string]*Room),
		opts:         opts,
		sender:       sender,
		binder:       binder,
		idem:         idem,
		results:      results,
		metrics:      m,
		log:          log,
		onRoomClosed: onRoomClosed,
		done:         make(chan struct{}),
	}
	go mgr.sweepLoop()
	return mgr
}

// CreateRoom builds a room in LOBBY with the creating host as its first
// player, starts its actor, and returns the room code and game instance id.
func (m *Manager) CreateRoom(hostID, hostUsername, hostEmoji string, songs []quiz.Song) (string, string, error) {
	if len(songs) == 0 {
		return "", "", quiz.ErrNoSongs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.RoomLimit > 0 && len(m.rooms) >= m.opts.RoomLimit {
		return "", "", ErrCapacityExceeded
	}
	code, err := m.generateCode()
	if err != nil {
		return "", "", err
	}

	gameID := uuid.NewString()
	state := quiz.NewState(code, gameID, songs)
	state.MaxPlayers = m.opts.MaxPlayers
	room := NewRoom(state, m.sender, m.binder, m.idem, m.results, m.metrics, m.log, m.closeRoom)
	if err := room.seedHost(hostID, hostUsername, hostEmoji); err != nil {
		return "", "", err
	}

	m.rooms[code] = room
	m.publishGauge()
	room.Start()

	m.log.Info("room created",
		zap.String("room", code),
		zap.String("host", hostUsername),
		zap.Int("songs", len(songs)),
	)
	return code, gameID, nil
}

// Get looks up an active room by code.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// SendEvent routes an event to a room; reports false for unknown codes.
func (m *Manager) SendEvent(code string, ev Event) bool {
	r, ok := m.Get(code)
	if !ok {
		return false
	}
	r.SendEvent(ev)
	return true
}

// Remove stops a room and drops it from the registry. Idempotent: removing an
// already-removed code is a no-op.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	r, ok := m.rooms[code]
	delete(m.rooms, code)
	m.publishGauge()
	m.mu.Unlock()
	if ok {
		r.Stop()
	}
}

// Count reports the number of active rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Close stops the sweep loop and every active room.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })

	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.publishGauge()
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
}

// closeRoom is the actor's onClose callback: drop the registry entry and let
// the app clear session bindings.
func (m *Manager) closeRoom(code string, playerIDs []string) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.publishGauge()
	m.mu.Unlock()
	if m.onRoomClosed != nil {
		m.onRoomClosed(code, playerIDs)
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep removes finished rooms past the grace period and abandoned rooms,
// idle past the TTL with nobody connected. A quiet room with live connections
// is never reclaimed. Stopping the actor cancels its pending timers.
func (m *Manager) sweep(now time.Time) {
	m.mu.RLock()
	var stale []*Room
	for _, r := range m.rooms {
		idle := r.IdleSince(now)
		switch {
		case r.Phase() == quiz.PhaseFinished && idle > m.opts.FinishedGrace:
			stale = append(stale, r)
		case r.ConnectedCount() == 0 && idle > m.opts.IdleTTL:
			stale = append(stale, r)
		}
	}
	m.mu.RUnlock()

	for _, r := range stale {
		m.log.Info("sweeping idle room",
			zap.String("room", r.Code()),
			zap.Stringer("phase", r.Phase()),
		)
		m.Remove(r.Code())
		if m.metrics != nil {
			m.metrics.SweptRooms.Inc()
		}
	}
}

// generateCode draws 5-digit numeric codes until one is free among active
// rooms. Caller holds m.mu.
func (m *Manager) generateCode() (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(codeSpaceSize))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%05d", codeSpaceMin+n.Int64())
		if _, taken := m.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("room code space exhausted after %d attempts", codeGenAttempts)
}

func (m *Manager) publishGauge() {
	if m.metrics != nil {
		m.metrics.RoomsGauge.Set(float64(len(m.rooms)))
	}
}
