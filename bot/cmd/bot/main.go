package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/gorilla/websocket"

	"tunequiz/pkg/protocol"
)

type Stats struct {
	connected int64
	rooms     int64
	joined    int64
	answers   int64
	finished  int64
	errors    int64
}

// codeBoard hands room codes from each group's host to its members.
type codeBoard struct {
	mu    sync.Mutex
	codes map[int]string
	cond  *sync.Cond
}

func newCodeBoard() *codeBoard {
	b := &codeBoard{codes: make(map[int]string)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *codeBoard) Publish(group int, code string) {
	b.mu.Lock()
	b.codes[group] = code
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *codeBoard) Wait(group int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.codes[group] == "" {
		b.cond.Wait()
	}
	return b.codes[group]
}

var demoSongs = []*protocol.SongInfo{
	{Title: "Dancing Queen", Artist: "ABBA", GuessLimitMs: 8000, LyricsAnswers: []string{"you can dance you can jive"}},
	{Title: "Bohemian Rhapsody", Artist: "Queen", GuessLimitMs: 8000, LyricsAnswers: []string{"is this the real life"}},
	{Title: "Billie Jean", Artist: "Michael Jackson", GuessLimitMs: 8000},
}

type Bot struct {
	id    int
	group int
	host  bool
	addr  string
	conn  *websocket.Conn
	out   chan []byte
	stats *Stats
	board *codeBoard
	rng   *rand.Rand

	mu       sync.RWMutex
	playerID string
	roomCode string
}

func main() {
	addr := flag.String("addr", "ws://127.0.0.1:8080/ws", "websocket address")
	bots := flag.Int("bots", 40, "number of bots")
	groupSize := flag.Int("group", 4, "players per room")
	flag.Parse()

	stats := &Stats{}
	board := newCodeBoard()

	for i := 0; i < *bots; i++ {
		go func(id int) {
			bot := NewBot(id, id / *groupSize, id%*groupSize == 0, *addr, stats, board)
			if err := bot.Run(); err != nil {
				atomic.AddInt64(&stats.errors, 1)
			}
		}(i)
		time.Sleep(5 * time.Millisecond)
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		fmt.Printf("connected=%d rooms=%d joined=%d answers=%d finished=%d errors=%d\n",
			atomic.LoadInt64(&stats.connected),
			atomic.LoadInt64(&stats.rooms),
			atomic.LoadInt64(&stats.joined),
			atomic.LoadInt64(&stats.answers),
			atomic.LoadInt64(&stats.finished),
			atomic.LoadInt64(&stats.errors),
		)
	}
}

func NewBot(id, group int, host bool, addr string, stats *Stats, board *codeBoard) *Bot {
	return &Bot{
		id:    id,
		group: group,
		host:  host,
		addr:  addr,
		out:   make(chan []byte, 128),
		stats: stats,
		board: board,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
	}
}

func (b *Bot) Run() error {
	conn, _, err := websocket.DefaultDialer.Dial(b.addr, nil)
	if err != nil {
		return err
	}
	b.conn = conn
	atomic.AddInt64(&b.stats.connected, 1)

	go b.writeLoop()

	if err := b.send(protocol.MsgLoginReq, &protocol.LoginReq{
		Username: fmt.Sprintf("bot-%d", b.id),
		Emoji:    "🎵",
	}); err != nil {
		return err
	}

	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			return err
		}
		b.handleMessage(data)
	}
}

func (b *Bot) send(msgType protocol.MsgType, msg proto.Message) error {
	payload, err := protocol.Encode(msgType, msg, 0)
	if err != nil {
		return err
	}
	select {
	case b.out <- payload:
	default:
	}
	return nil
}

func (b *Bot) handleMessage(data []byte) {
	msgType, _, msg, err := protocol.DecodeMessage(data)
	if err != nil {
		atomic.AddInt64(&b.stats.errors, 1)
		return
	}

	switch msgType {
	case protocol.MsgLoginResp:
		resp := msg.(*protocol.LoginResp)
		b.mu.Lock()
		b.playerID = resp.PlayerId
		b.mu.Unlock()
		if b.host {
			_ = b.send(protocol.MsgCreateRoomReq, &protocol.CreateRoomReq{Songs: demoSongs})
		} else {
			go func() {
				code := b.board.Wait(b.group)
				_ = b.send(protocol.MsgJoinRoomReq, &protocol.JoinRoomReq{Code: code})
			}()
		}

	case protocol.MsgCreateRoomResp:
		resp := msg.(*protocol.CreateRoomResp)
		atomic.AddInt64(&b.stats.rooms, 1)
		b.mu.Lock()
		b.roomCode = resp.Code
		b.mu.Unlock()
		b.board.Publish(b.group, resp.Code)
		// Give groupmates a moment to join, then start the first round.
		b.advanceAfter(2 * time.Second)

	case protocol.MsgJoinRoomResp:
		atomic.AddInt64(&b.stats.joined, 1)

	case protocol.MsgRoundStarted:
		started := msg.(*protocol.RoundStarted)
		delay := time.Duration(200+b.rng.Intn(int(started.GuessLimitMs/2))) * time.Millisecond
		time.AfterFunc(delay, func() {
			_ = b.send(protocol.MsgSubmitAnswerReq, &protocol.SubmitAnswerReq{Text: b.pickAnswer()})
		})

	case protocol.MsgAnswerResult:
		atomic.AddInt64(&b.stats.answers, 1)

	case protocol.MsgRoundRevealed, protocol.MsgLeaderboardUpdate:
		if b.host {
			b.advanceAfter(500 * time.Millisecond)
		}

	case protocol.MsgRoomFinished:
		atomic.AddInt64(&b.stats.finished, 1)

	case protocol.MsgErrorResp:
		atomic.AddInt64(&b.stats.errors, 1)
	}
}

// pickAnswer guesses a real title or artist most of the time, noise otherwise.
func (b *Bot) pickAnswer() string {
	song := demoSongs[b.rng.Intn(len(demoSongs))]
	switch b.rng.Intn(4) {
	case 0:
		return song.Title
	case 1:
		return song.Artist
	case 2:
		if len(song.LyricsAnswers) > 0 {
			return song.LyricsAnswers[0]
		}
		return song.Title
	default:
		return fmt.Sprintf("wild guess %d", b.rng.Intn(1000))
	}
}

func (b *Bot) advanceAfter(d time.Duration) {
	time.AfterFunc(d, func() {
		_ = b.send(protocol.MsgAdvancePhaseReq, &protocol.AdvancePhaseReq{})
	})
}

func (b *Bot) writeLoop() {
	for data := range b.out {
		_ = b.conn.WriteMessage(websocket.BinaryMessage, data)
	}
}
