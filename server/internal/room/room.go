package room

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gogo/protobuf/proto"
	"go.uber.org/zap"

	"tunequiz/pkg/protocol"
	"tunequiz/server/internal/metrics"
	"tunequiz/server/internal/quiz"
	"tunequiz/server/internal/store"
)

// Sender delivers messages to player sessions.
type Sender interface {
	Send(playerID string, msgType protocol.MsgType, msg proto.Message) error
	Broadcast(playerIDs []string, msgType protocol.MsgType, msg proto.Message)
}

// Binder records which room a player session belongs to.
type Binder interface {
	SetRoom(playerID, roomCode string)
}

// ResultWriter persists final standings after a room finishes.
type ResultWriter interface {
	SaveResult(ctx context.Context, code, gameID string, standings []*protocol.StandingEntry) error
}

// Room owns one quiz session. All state mutations run on the actor goroutine
// started by Start; external callers only enqueue events.
type Room struct {
	code    string
	state   *quiz.State
	events  chan Event
	sender  Sender
	binder  Binder
	idem    store.Idempotency
	results ResultWriter
	metrics *metrics.Metrics
	log     *zap.Logger
	done    chan struct{}
	onClose func(code string, playerIDs []string)

	// playerID currently holding host control; updated when the host rejoins
	// on a fresh connection.
	hostID string

	// Round timing, loop-owned. The deadline timer pauses while the host is
	// disconnected: remaining time is preserved, not reset.
	deadline    *time.Timer
	deadlineAt  time.Time
	roundStart  time.Time
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
	pausedLeft  time.Duration

	// Mirrors readable outside the loop, for the registry sweep.
	lastActive atomic.Int64
	connected  atomic.Int32
	phase      atomic.Int32
	settled    atomic.Bool
}

func NewRoom(state *quiz.State, sender Sender, binder Binder, idem store.Idempotency, results ResultWriter, m *metrics.Metrics, log *zap.Logger, onClose func(code string, playerIDs []string)) *Room {
	r := &Room{
		code:    state.Code,
		state:   state,
		events:  make(chan Event, 128),
		sender:  sender,
		binder:  binder,
		idem:    idem,
		results: results,
		metrics: m,
		log:     log,
		done:    make(chan struct{}),
		onClose: onClose,
	}
	r.touch()
	return r
}

func (r *Room) Code() string { return r.code }

func (r *Room) Start() {
	go r.loop()
}

func (r *Room) Stop() {
	select {
	case <-r.done:
		return
	default:
		close(r.done)
	}
}

// SendEvent enqueues an event for the actor. Events are dropped, not blocked
// on, when the room's queue is saturated.
func (r *Room) SendEvent(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn("room event dropped", zap.String("room", r.code))
	}
}

// Phase reports the room's phase as last published by the actor.
func (r *Room) Phase() quiz.Phase { return quiz.Phase(r.phase.Load()) }

// ConnectedCount reports live connections as last published by the actor.
func (r *Room) ConnectedCount() int { return int(r.connected.Load()) }

// IdleSince reports how long the room has gone without any event.
func (r *Room) IdleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, r.lastActive.Load()))
}

func (r *Room) loop() {
	defer r.closeRoom()

	for {
		var deadlineC <-chan time.Time
		if r.deadline != nil {
			deadlineC = r.deadline.C
		}
		select {
		case ev := <-r.events:
			start := time.Now()
			r.handleEvent(ev)
			if r.metrics != nil {
				r.metrics.EventHandleDelay.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
			}
		case <-deadlineC:
			r.deadline = nil
			r.handleDeadline()
		case <-r.done:
			return
		}
	}
}

func (r *Room) handleEvent(ev Event) {
	r.touch()
	switch ev.Type {
	case EventJoin:
		r.handleJoin(ev)
	case EventRejoin:
		r.handleRejoin(ev)
	case EventLeave:
		r.handleLeave(ev)
	case EventSubmit:
		r.handleSubmit(ev)
	case EventAdvance:
		r.handleAdvance(ev)
	case EventEnd:
		r.handleEnd(ev)
	}
}

// seedHost registers the creating host before the actor starts. Called by the
// registry only, never after Start.
func (r *Room) seedHost(playerID, username, emoji string) error {
	if _, _, err := r.state.Join(username, emoji, playerID); err != nil {
		return err
	}
	r.hostID = playerID
	r.binder.SetRoom(playerID, r.code)
	r.connected.Store(1)
	return nil
}

func (r *Room) handleJoin(ev Event) {
	p, rejoined, err := r.state.Join(ev.Username, ev.Emoji, ev.PlayerID)
	if err != nil {
		r.sendErr(ev.PlayerID, err)
		return
	}
	if rejoined {
		r.afterRejoin(p)
		return
	}

	r.binder.SetRoom(ev.PlayerID, r.code)
	r.connected.Add(1)
	roster := r.state.Roster()
	_ = r.sender.Send(ev.PlayerID, protocol.MsgJoinRoomResp, &protocol.JoinRoomResp{
		Code: r.code,
		You: &protocol.PlayerInfo{
			Username:  p.Username,
			Emoji:     p.Emoji,
			Score:     int32(p.Score),
			Connected: true,
		},
		Roster: roster.Players,
	})
	r.broadcast(protocol.MsgPlayerListUpdate, roster)
}

func (r *Room) handleRejoin(ev Event) {
	p, err := r.state.Rejoin(ev.Username, ev.PlayerID)
	if err != nil {
		r.sendErr(ev.PlayerID, err)
		return
	}
	r.afterRejoin(p)
}

func (r *Room) afterRejoin(p *quiz.Player) {
	r.binder.SetRoom(p.PlayerID, r.code)
	r.connected.Add(1)

	if r.state.IsHost(p.Username) {
		r.hostID = p.PlayerID
		r.resumeDeadline()
	}

	snap := r.state.Snapshot(p.Username)
	snap.Paused = r.paused
	if !r.deadlineAt.IsZero() && r.deadline != nil {
		snap.DeadlineMs = r.deadlineAt.UnixMilli()
	}
	_ = r.sender.Send(p.PlayerID, protocol.MsgRoomSnapshot, snap)

	r.broadcast(protocol.MsgPlayerReconnected, &protocol.PlayerReconnected{Username: p.Username})
	r.broadcast(protocol.MsgPlayerListUpdate, r.state.Roster())

	// An early advance held back during a host pause fires once the round
	// is live again and everyone connected has an answer in.
	if r.state.Phase == quiz.PhasePlaying && !r.paused && r.state.AllConnectedAnswered() {
		if err := r.advance(quiz.PhaseReveal); err != nil {
			r.log.Warn("early advance failed", zap.String("room", r.code), zap.Error(err))
		}
	}
}

func (r *Room) handleLeave(ev Event) {
	p, ok := r.state.Disconnect(ev.PlayerID)
	if !ok {
		return
	}
	r.connected.Add(-1)

	if r.state.IsHost(p.Username) {
		r.pauseDeadline()
	}
	r.broadcast(protocol.MsgPlayerDisconnected, &protocol.PlayerDisconnected{Username: p.Username})
	r.broadcast(protocol.MsgPlayerListUpdate, r.state.Roster())
}

func (r *Room) handleSubmit(ev Event) {
	p, ok := r.state.PlayerByID(ev.PlayerID)
	if !ok {
		r.sendErr(ev.PlayerID, quiz.ErrPlayerNotFound)
		return
	}
	ans, err := r.state.SubmitAnswer(p.Username, ev.Text, r.elapsed(time.Now()))
	if err != nil {
		r.sendErr(ev.PlayerID, err)
		return
	}
	if r.metrics != nil {
		r.metrics.AnswersTotal.Inc()
	}
	_ = r.sender.Send(ev.PlayerID, protocol.MsgAnswerResult, &protocol.AnswerResult{
		Classification: int32(ans.Classification),
		Points:         int32(ans.Points),
		Text:           ans.Text,
	})

	// Early advance: no reason to run out the clock once every connected
	// player has answered. Never while the host is away; the phase holds
	// until the host returns.
	if !r.paused && r.state.AllConnectedAnswered() {
		if err := r.advance(quiz.PhaseReveal); err != nil {
			r.log.Warn("early advance failed", zap.String("room", r.code), zap.Error(err))
		}
	}
}

func (r *Room) handleAdvance(ev Event) {
	if ev.PlayerID != r.hostID {
		r.sendErr(ev.PlayerID, quiz.ErrUnauthorized)
		return
	}
	if err := r.advance(ev.Target); err != nil {
		r.sendErr(ev.PlayerID, err)
	}
}

func (r *Room) handleEnd(ev Event) {
	if ev.PlayerID != r.hostID {
		r.sendErr(ev.PlayerID, quiz.ErrUnauthorized)
		return
	}
	if err := r.advance(quiz.PhaseFinished); err != nil {
		r.sendErr(ev.PlayerID, err)
	}
}

func (r *Room) handleDeadline() {
	r.touch()
	if r.state.Phase != quiz.PhasePlaying || r.paused {
		return
	}
	if err := r.advance(quiz.PhaseReveal); err != nil {
		r.log.Warn("deadline advance failed", zap.String("room", r.code), zap.Error(err))
	}
}

// advance runs one state-machine transition and emits the broadcasts the new
// phase requires. Failed transitions leave state and timers untouched.
func (r *Room) advance(target quiz.Phase) error {
	next, err := r.state.Advance(target)
	if err != nil {
		return err
	}
	r.phase.Store(int32(next))

	switch next {
	case quiz.PhasePlaying:
		r.beginRound()
	case quiz.PhaseReveal:
		r.stopDeadline()
		song := r.state.Song()
		r.broadcast(protocol.MsgRoundRevealed, &protocol.RoundRevealed{
			SongIndex: int32(r.state.Current),
			Title:     song.Title,
			Artist:    song.Artist,
		})
	case quiz.PhaseLeaderboard:
		r.broadcast(protocol.MsgLeaderboardUpdate, &protocol.LeaderboardUpdate{Standings: r.state.Standings()})
	case quiz.PhaseAnswersReview:
		r.broadcast(protocol.MsgAnswersReview, r.state.Review())
	case quiz.PhaseFinished:
		r.finish()
	}
	return nil
}

func (r *Room) beginRound() {
	song := r.state.Song()
	now := time.Now()
	r.roundStart = now
	r.paused = false
	r.pausedTotal = 0
	r.pausedLeft = 0
	r.deadlineAt = now.Add(song.GuessLimit)
	r.stopDeadline()
	r.deadline = time.NewTimer(song.GuessLimit)

	r.broadcast(protocol.MsgRoundStarted, &protocol.RoundStarted{
		SongIndex:    int32(r.state.Current),
		SongCount:    int32(len(r.state.Songs)),
		PreviewUrl:   song.PreviewURL,
		ArtworkUrl:   song.ArtworkURL,
		GuessLimitMs: song.GuessLimit.Milliseconds(),
		DeadlineMs:   r.deadlineAt.UnixMilli(),
	})
}

func (r *Room) finish() {
	r.stopDeadline()
	standings := r.state.Standings()
	r.broadcast(protocol.MsgRoomFinished, &protocol.RoomFinished{
		Code:      r.code,
		Standings: standings,
	})
	if r.settled.CompareAndSwap(false, true) {
		go r.settle(standings)
	}
}

// settle is the write-behind of final results; it runs off the actor
// goroutine and never blocks the loop.
func (r *Room) settle(standings []*protocol.StandingEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "settle:" + r.state.GameID
	ok, err := r.idem.SetIfNotExists(ctx, key, 5*time.Minute)
	if err != nil {
		r.log.Warn("idempotent settle failed", zap.Error(err), zap.String("room", r.code))
		ok = true
	}
	if !ok {
		return
	}
	if r.results == nil {
		return
	}
	if err := r.results.SaveResult(ctx, r.code, r.state.GameID, standings); err != nil {
		r.log.Warn("result write-behind failed", zap.Error(err), zap.String("room", r.code))
	}
}

// pauseDeadline suspends the countdown while the host is away. No-op outside
// an armed PLAYING round.
func (r *Room) pauseDeadline() {
	if r.state.Phase != quiz.PhasePlaying || r.paused || r.deadline == nil {
		return
	}
	now := time.Now()
	r.pausedLeft = r.deadlineAt.Sub(now)
	if r.pausedLeft < 0 {
		r.pausedLeft = 0
	}
	r.stopDeadline()
	r.paused = true
	r.pausedAt = now
	r.broadcast(protocol.MsgHostPaused, &protocol.HostPaused{RemainingMs: r.pausedLeft.Milliseconds()})
}

// resumeDeadline restarts the countdown with the remaining time preserved.
func (r *Room) resumeDeadline() {
	if !r.paused {
		return
	}
	now := time.Now()
	r.paused = false
	r.pausedTotal += now.Sub(r.pausedAt)
	r.deadlineAt = now.Add(r.pausedLeft)
	r.deadline = time.NewTimer(r.pausedLeft)
	r.pausedLeft = 0
	r.broadcast(protocol.MsgHostResumed, &protocol.HostResumed{DeadlineMs: r.deadlineAt.UnixMilli()})
}

func (r *Room) stopDeadline() {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
}

// elapsed is the scoring clock for the current round: wall time since round
// start minus any host-paused intervals.
func (r *Room) elapsed(now time.Time) time.Duration {
	if r.roundStart.IsZero() {
		return 0
	}
	if r.paused {
		now = r.pausedAt
	}
	e := now.Sub(r.roundStart) - r.pausedTotal
	if e < 0 {
		e = 0
	}
	return e
}

func (r *Room) broadcast(msgType protocol.MsgType, msg proto.Message) {
	r.sender.Broadcast(r.connectedPlayerIDs(), msgType, msg)
}

func (r *Room) connectedPlayerIDs() []string {
	ids := make([]string, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		if p.Connected && p.PlayerID != "" {
			ids = append(ids, p.PlayerID)
		}
	}
	return ids
}

func (r *Room) sendErr(playerID string, err error) {
	r.log.Debug("room action rejected",
		zap.String("room", r.code),
		zap.String("player", playerID),
		zap.Error(err),
	)
	_ = r.sender.Send(playerID, protocol.MsgErrorResp, &protocol.ErrorResp{
		Code:    ErrorCode(err),
		Message: err.Error(),
	})
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

func (r *Room) closeRoom() {
	r.stopDeadline()
	if r.onClose != nil {
		r.onClose(r.code, r.connectedPlayerIDs())
	}
}
