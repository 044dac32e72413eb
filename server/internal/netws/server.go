package netws

import (
	"net/http"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tunequiz/pkg/protocol"
	"tunequiz/server/internal/auth"
	"tunequiz/server/internal/config"
	"tunequiz/server/internal/metrics"
	"tunequiz/server/internal/quiz"
	"tunequiz/server/internal/room"
	"tunequiz/server/internal/session"
)

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	auth     *auth.Manager
	sessions *session.Manager
	rooms    *room.Manager
}

func NewServer(cfg config.Config, log *zap.Logger, m *metrics.Metrics, auth *auth.Manager, sessions *session.Manager, rooms *room.Manager) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		auth:     auth,
		sessions: sessions,
		rooms:    rooms,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, s.cfg.SendQueueSize, s.cfg.ReadLimitBytes, s.metrics, s.log)
	go client.WriteLoop()
	client.ReadLoop(func(data []byte) {
		s.handleMessage(client, data)
	})

	client.CloseSend()
	_ = client.Close()
	if pid := client.PlayerID(); pid != "" {
		if sess, ok := s.sessions.Get(pid); ok {
			if code := sess.GetRoomCode(); code != "" {
				s.rooms.SendEvent(code, room.Event{Type: room.EventLeave, PlayerID: pid})
			}
		}
		s.sessions.MarkOffline(pid)
	}
}

func (s *Server) handleMessage(c *Client, data []byte) {
	if !c.AllowMessage(s.cfg.MaxMsgPerSecond) {
		s.sendError(c, 429, "rate limited")
		return
	}

	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		s.sendError(c, 400, "bad envelope")
		return
	}
	if env.Version != 0 && env.Version != protocol.CurrentVersion {
		s.sendError(c, 426, "protocol version mismatch")
		return
	}

	switch env.Type {
	case protocol.MsgPing:
		req := &protocol.Ping{}
		if err := proto.Unmarshal(env.Body, req); err != nil {
			s.sendError(c, 400, "bad ping")
			return
		}
		pong := &protocol.Pong{ClientTs: req.ClientTs, ServerTs: time.Now().UnixMilli()}
		s.sendDirect(c, protocol.MsgPong, pong)
		return
	case protocol.MsgLoginReq:
		s.handleLogin(c, env.Body)
		return
	case protocol.MsgReconnectReq:
		s.handleReconnect(c, env.Body)
		return
	}

	playerID := c.PlayerID()
	if playerID == "" {
		s.sendError(c, 401, "not logged in")
		return
	}
	sess, ok := s.sessions.Get(playerID)
	if !ok {
		s.sendError(c, 401, "session expired")
		return
	}

	switch env.Type {
	case protocol.MsgCreateRoomReq:
		s.handleCreateRoom(c, sess, env.Body)
	case protocol.MsgJoinRoomReq:
		var req protocol.JoinRoomReq
		if err := proto.Unmarshal(env.Body, &req); err != nil {
			s.sendError(c, 400, "bad join")
			return
		}
		s.forwardToRoom(c, req.Code, room.Event{
			Type:     room.EventJoin,
			PlayerID: playerID,
			Username: sess.GetUsername(),
			Emoji:    sess.Emoji,
		})
	case protocol.MsgRejoinRoomReq:
		var req protocol.RejoinRoomReq
		if err := proto.Unmarshal(env.Body, &req); err != nil {
			s.sendError(c, 400, "bad rejoin")
			return
		}
		s.forwardToRoom(c, req.Code, room.Event{
			Type:     room.EventRejoin,
			PlayerID: playerID,
			Username: sess.GetUsername(),
		})
	case protocol.MsgSubmitAnswerReq:
		var req protocol.SubmitAnswerReq
		if err := proto.Unmarshal(env.Body, &req); err != nil {
			s.sendError(c, 400, "bad answer")
			return
		}
		s.forwardToRoom(c, sess.GetRoomCode(), room.Event{
			Type:     room.EventSubmit,
			PlayerID: playerID,
			Text:     req.Text,
		})
	case protocol.MsgAdvancePhaseReq:
		var req protocol.AdvancePhaseReq
		if err := proto.Unmarshal(env.Body, &req); err != nil {
			s.sendError(c, 400, "bad advance")
			return
		}
		s.forwardToRoom(c, sess.GetRoomCode(), room.Event{
			Type:     room.EventAdvance,
			PlayerID: playerID,
			Target:   quiz.Phase(req.Target),
		})
	case protocol.MsgEndRoomReq:
		s.forwardToRoom(c, sess.GetRoomCode(), room.Event{
			Type:     room.EventEnd,
			PlayerID: playerID,
		})
	default:
		s.sendError(c, 400, "unknown message")
	}
}

func (s *Server) handleLogin(c *Client, body []byte) {
	var req protocol.LoginReq
	if err := proto.Unmarshal(body, &req); err != nil {
		s.sendError(c, 400, "bad login")
		return
	}
	if req.Username == "" {
		req.Username = "player-" + uuid.NewString()[:8]
	}

	playerID := uuid.NewString()
	accessToken, _ := s.auth.GenerateAccessToken(playerID, req.Username, 10*time.Minute)
	reconnectToken, _ := s.auth.GenerateReconnectToken(playerID, s.cfg.ReconnectTTL)

	s.sessions.Create(playerID, req.Username, req.Emoji, reconnectToken, c)
	c.SetPlayerID(playerID)

	resp := &protocol.LoginResp{
		PlayerId:       playerID,
		AccessToken:    accessToken,
		ReconnectToken: reconnectToken,
	}
	_ = s.sessions.Send(playerID, protocol.MsgLoginResp, resp)
}

func (s *Server) handleReconnect(c *Client, body []byte) {
	var req protocol.ReconnectReq
	if err := proto.Unmarshal(body, &req); err != nil {
		s.sendError(c, 400, "bad reconnect")
		return
	}
	playerID, err := s.auth.ParseReconnectToken(req.ReconnectToken)
	if err != nil {
		s.sendDirect(c, protocol.MsgReconnectResp, &protocol.ReconnectResp{Ok: false, Reason: "invalid token"})
		return
	}

	sess, ok := s.sessions.Bind(playerID, c)
	if !ok {
		s.sendDirect(c, protocol.MsgReconnectResp, &protocol.ReconnectResp{Ok: false, Reason: "session not found"})
		return
	}
	c.SetPlayerID(playerID)

	code := sess.GetRoomCode()
	s.sendDirect(c, protocol.MsgReconnectResp, &protocol.ReconnectResp{
		PlayerId: playerID,
		RoomCode: code,
		Ok:       true,
	})
	if code != "" {
		s.rooms.SendEvent(code, room.Event{
			Type:     room.EventRejoin,
			PlayerID: playerID,
			Username: sess.GetUsername(),
		})
	}
}

func (s *Server) handleCreateRoom(c *Client, sess *session.Session, body []byte) {
	var req protocol.CreateRoomReq
	if err := proto.Unmarshal(body, &req); err != nil {
		s.sendError(c, 400, "bad create room")
		return
	}
	songs := quiz.SongsFromInfo(req.Songs)

	code, gameID, err := s.rooms.CreateRoom(sess.PlayerID, sess.GetUsername(), sess.Emoji, songs)
	if err != nil {
		s.sendError(c, room.ErrorCode(err), err.Error())
		return
	}
	s.sendDirect(c, protocol.MsgCreateRoomResp, &protocol.CreateRoomResp{
		Code:   code,
		GameId: gameID,
	})
}

func (s *Server) forwardToRoom(c *Client, code string, ev room.Event) {
	if code == "" || !s.rooms.SendEvent(code, ev) {
		s.sendError(c, room.ErrorCode(room.ErrRoomNotFound), room.ErrRoomNotFound.Error())
	}
}

func (s *Server) sendError(c *Client, code int32, message string) {
	_ = s.sendDirect(c, protocol.MsgErrorResp, &protocol.ErrorResp{Code: code, Message: message})
}

func (s *Server) sendDirect(c *Client, msgType protocol.MsgType, msg proto.Message) error {
	payload, err := protocol.Encode(msgType, msg, 0)
	if err != nil {
		return err
	}
	return c.Send(payload)
}
