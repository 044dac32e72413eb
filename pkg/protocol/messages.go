package protocol

import (
	"fmt"
)

// MsgType defines top-level envelope message types.
type MsgType int32

const (
	MsgUnknown            MsgType = 0
	MsgPing               MsgType = 1
	MsgPong               MsgType = 2
	MsgLoginReq           MsgType = 10
	MsgLoginResp          MsgType = 11
	MsgReconnectReq       MsgType = 12
	MsgReconnectResp      MsgType = 13
	MsgCreateRoomReq      MsgType = 20
	MsgCreateRoomResp     MsgType = 21
	MsgJoinRoomReq        MsgType = 22
	MsgJoinRoomResp       MsgType = 23
	MsgRejoinRoomReq      MsgType = 24
	MsgRoomSnapshot       MsgType = 25
	MsgSubmitAnswerReq    MsgType = 30
	MsgAnswerResult       MsgType = 31
	MsgAdvancePhaseReq    MsgType = 32
	MsgEndRoomReq         MsgType = 33
	MsgPlayerListUpdate   MsgType = 40
	MsgRoundStarted       MsgType = 41
	MsgRoundRevealed      MsgType = 42
	MsgLeaderboardUpdate  MsgType = 43
	MsgAnswersReview      MsgType = 44
	MsgRoomFinished       MsgType = 45
	MsgPlayerDisconnected MsgType = 46
	MsgPlayerReconnected  MsgType = 47
	MsgHostPaused         MsgType = 48
	MsgHostResumed        MsgType = 49
	MsgErrorResp          MsgType = 90
)

const CurrentVersion = 1

func (t MsgType) String() string {
	switch t {
	case MsgPing:
		return "PING"
	case MsgPong:
		return "PONG"
	case MsgLoginReq:
		return "LOGIN_REQ"
	case MsgLoginResp:
		return "LOGIN_RESP"
	case MsgReconnectReq:
		return "RECONNECT_REQ"
	case MsgReconnectResp:
		return "RECONNECT_RESP"
	case MsgCreateRoomReq:
		return "CREATE_ROOM_REQ"
	case MsgCreateRoomResp:
		return "CREATE_ROOM_RESP"
	case MsgJoinRoomReq:
		return "JOIN_ROOM_REQ"
	case MsgJoinRoomResp:
		return "JOIN_ROOM_RESP"
	case MsgRejoinRoomReq:
		return "REJOIN_ROOM_REQ"
	case MsgRoomSnapshot:
		return "ROOM_SNAPSHOT"
	case MsgSubmitAnswerReq:
		return "SUBMIT_ANSWER_REQ"
	case MsgAnswerResult:
		return "ANSWER_RESULT"
	case MsgAdvancePhaseReq:
		return "ADVANCE_PHASE_REQ"
	case MsgEndRoomReq:
		return "END_ROOM_REQ"
	case MsgPlayerListUpdate:
		return "PLAYER_LIST_UPDATE"
	case MsgRoundStarted:
		return "ROUND_STARTED"
	case MsgRoundRevealed:
		return "ROUND_REVEALED"
	case MsgLeaderboardUpdate:
		return "LEADERBOARD_UPDATE"
	case MsgAnswersReview:
		return "ANSWERS_REVIEW"
	case MsgRoomFinished:
		return "ROOM_FINISHED"
	case MsgPlayerDisconnected:
		return "PLAYER_DISCONNECTED"
	case MsgPlayerReconnected:
		return "PLAYER_RECONNECTED"
	case MsgHostPaused:
		return "HOST_PAUSED"
	case MsgHostResumed:
		return "HOST_RESUMED"
	case MsgErrorResp:
		return "ERROR_RESP"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", t)
	}
}

// Envelope wraps all payloads to allow a single decoder.
type Envelope struct {
	Type    MsgType `protobuf:"varint,1,opt,name=type,proto3,enum=protocol.MsgType" json:"type,omitempty"`
	Seq     uint64  `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	Body    []byte  `protobuf:"bytes,3,opt,name=body,proto3" json:"body,omitempty"`
	Version int32   `protobuf:"varint,4,opt,name=version,proto3" json:"version,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return "Envelope" }
func (*Envelope) ProtoMessage()    {}

// Ping/Pong

type Ping struct {
	ClientTs int64 `protobuf:"varint,1,opt,name=client_ts,json=clientTs,proto3" json:"client_ts,omitempty"`
}

func (m *Ping) Reset()         { *m = Ping{} }
func (m *Ping) String() string { return "Ping" }
func (*Ping) ProtoMessage()    {}

type Pong struct {
	ClientTs int64 `protobuf:"varint,1,opt,name=client_ts,json=clientTs,proto3" json:"client_ts,omitempty"`
	ServerTs int64 `protobuf:"varint,2,opt,name=server_ts,json=serverTs,proto3" json:"server_ts,omitempty"`
}

func (m *Pong) Reset()         { *m = Pong{} }
func (m *Pong) String() string { return "Pong" }
func (*Pong) ProtoMessage()    {}

// Login

type LoginReq struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	Emoji    string `protobuf:"bytes,2,opt,name=emoji,proto3" json:"emoji,omitempty"`
}

func (m *LoginReq) Reset()         { *m = LoginReq{} }
func (m *LoginReq) String() string { return "LoginReq" }
func (*LoginReq) ProtoMessage()    {}

type LoginResp struct {
	PlayerId       string `protobuf:"bytes,1,opt,name=player_id,json=playerId,proto3" json:"player_id,omitempty"`
	AccessToken    string `protobuf:"bytes,2,opt,name=access_token,json=accessToken,proto3" json:"access_token,omitempty"`
	ReconnectToken string `protobuf:"bytes,3,opt,name=reconnect_token,json=reconnectToken,proto3" json:"reconnect_token,omitempty"`
}

func (m *LoginResp) Reset()         { *m = LoginResp{} }
func (m *LoginResp) String() string { return "LoginResp" }
func (*LoginResp) ProtoMessage()    {}

type ReconnectReq struct {
	ReconnectToken string `protobuf:"bytes,1,opt,name=reconnect_token,json=reconnectToken,proto3" json:"reconnect_token,omitempty"`
}

func (m *ReconnectReq) Reset()         { *m = ReconnectReq{} }
func (m *ReconnectReq) String() string { return "ReconnectReq" }
func (*ReconnectReq) ProtoMessage()    {}

type ReconnectResp struct {
	PlayerId string `protobuf:"bytes,1,opt,name=player_id,json=playerId,proto3" json:"player_id,omitempty"`
	RoomCode string `protobuf:"bytes,2,opt,name=room_code,json=roomCode,proto3" json:"room_code,omitempty"`
	Ok       bool   `protobuf:"varint,3,opt,name=ok,proto3" json:"ok,omitempty"`
	Reason   string `protobuf:"bytes,4,opt,name=reason,proto3" json:"reason,omitempty"`
}

func (m *ReconnectResp) Reset()         { *m = ReconnectResp{} }
func (m *ReconnectResp) String() string { return "ReconnectResp" }
func (*ReconnectResp) ProtoMessage()    {}

// Room creation. SongInfo carries the full answer key; it is accepted inbound
// only and never echoed back to clients before the reveal.

type SongInfo struct {
	Title         string   `protobuf:"bytes,1,opt,name=title,proto3" json:"title,omitempty"`
	Artist        string   `protobuf:"bytes,2,opt,name=artist,proto3" json:"artist,omitempty"`
	PreviewUrl    string   `protobuf:"bytes,3,opt,name=preview_url,json=previewUrl,proto3" json:"preview_url,omitempty"`
	ArtworkUrl    string   `protobuf:"bytes,4,opt,name=artwork_url,json=artworkUrl,proto3" json:"artwork_url,omitempty"`
	GuessLimitMs  int64    `protobuf:"varint,5,opt,name=guess_limit_ms,json=guessLimitMs,proto3" json:"guess_limit_ms,omitempty"`
	TitleAnswers  []string `protobuf:"bytes,6,rep,name=title_answers,json=titleAnswers,proto3" json:"title_answers,omitempty"`
	ArtistAnswers []string `protobuf:"bytes,7,rep,name=artist_answers,json=artistAnswers,proto3" json:"artist_answers,omitempty"`
	LyricsAnswers []string `protobuf:"bytes,8,rep,name=lyrics_answers,json=lyricsAnswers,proto3" json:"lyrics_answers,omitempty"`
}

func (m *SongInfo) Reset()         { *m = SongInfo{} }
func (m *SongInfo) String() string { return "SongInfo" }
func (*SongInfo) ProtoMessage()    {}

type CreateRoomReq struct {
	Songs []*SongInfo `protobuf:"bytes,1,rep,name=songs,proto3" json:"songs,omitempty"`
}

func (m *CreateRoomReq) Reset()         { *m = CreateRoomReq{} }
func (m *CreateRoomReq) String() string { return "CreateRoomReq" }
func (*CreateRoomReq) ProtoMessage()    {}

type CreateRoomResp struct {
	Code   string `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	GameId string `protobuf:"bytes,2,opt,name=game_id,json=gameId,proto3" json:"game_id,omitempty"`
}

func (m *CreateRoomResp) Reset()         { *m = CreateRoomResp{} }
func (m *CreateRoomResp) String() string { return "CreateRoomResp" }
func (*CreateRoomResp) ProtoMessage()    {}

// Join / rejoin

type JoinRoomReq struct {
	Code string `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
}

func (m *JoinRoomReq) Reset()         { *m = JoinRoomReq{} }
func (m *JoinRoomReq) String() string { return "JoinRoomReq" }
func (*JoinRoomReq) ProtoMessage()    {}

type JoinRoomResp struct {
	Code   string        `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	You    *PlayerInfo   `protobuf:"bytes,2,opt,name=you,proto3" json:"you,omitempty"`
	Roster []*PlayerInfo `protobuf:"bytes,3,rep,name=roster,proto3" json:"roster,omitempty"`
}

func (m *JoinRoomResp) Reset()         { *m = JoinRoomResp{} }
func (m *JoinRoomResp) String() string { return "JoinRoomResp" }
func (*JoinRoomResp) ProtoMessage()    {}

type RejoinRoomReq struct {
	Code string `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
}

func (m *RejoinRoomReq) Reset()         { *m = RejoinRoomReq{} }
func (m *RejoinRoomReq) String() string { return "RejoinRoomReq" }
func (*RejoinRoomReq) ProtoMessage()    {}

// RoomSnapshot lets a returning player resume without replaying history.

type RoomSnapshot struct {
	Code         string           `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	Phase        int32            `protobuf:"varint,2,opt,name=phase,proto3" json:"phase,omitempty"`
	SongIndex    int32            `protobuf:"varint,3,opt,name=song_index,json=songIndex,proto3" json:"song_index,omitempty"`
	SongCount    int32            `protobuf:"varint,4,opt,name=song_count,json=songCount,proto3" json:"song_count,omitempty"`
	PreviewUrl   string           `protobuf:"bytes,5,opt,name=preview_url,json=previewUrl,proto3" json:"preview_url,omitempty"`
	ArtworkUrl   string           `protobuf:"bytes,6,opt,name=artwork_url,json=artworkUrl,proto3" json:"artwork_url,omitempty"`
	DeadlineMs   int64            `protobuf:"varint,7,opt,name=deadline_ms,json=deadlineMs,proto3" json:"deadline_ms,omitempty"`
	Paused       bool             `protobuf:"varint,8,opt,name=paused,proto3" json:"paused,omitempty"`
	Roster       []*PlayerInfo    `protobuf:"bytes,9,rep,name=roster,proto3" json:"roster,omitempty"`
	YourAnswer   *AnswerResult    `protobuf:"bytes,10,opt,name=your_answer,json=yourAnswer,proto3" json:"your_answer,omitempty"`
	Standings    []*StandingEntry `protobuf:"bytes,11,rep,name=standings,proto3" json:"standings,omitempty"`
	HostUsername string           `protobuf:"bytes,12,opt,name=host_username,json=hostUsername,proto3" json:"host_username,omitempty"`
}

func (m *RoomSnapshot) Reset()         { *m = RoomSnapshot{} }
func (m *RoomSnapshot) String() string { return "RoomSnapshot" }
func (*RoomSnapshot) ProtoMessage()    {}

// Answers

type SubmitAnswerReq struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *SubmitAnswerReq) Reset()         { *m = SubmitAnswerReq{} }
func (m *SubmitAnswerReq) String() string { return "SubmitAnswerReq" }
func (*SubmitAnswerReq) ProtoMessage()    {}

type AnswerResult struct {
	Classification int32  `protobuf:"varint,1,opt,name=classification,proto3" json:"classification,omitempty"`
	Points         int32  `protobuf:"varint,2,opt,name=points,proto3" json:"points,omitempty"`
	Text           string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *AnswerResult) Reset()         { *m = AnswerResult{} }
func (m *AnswerResult) String() string { return "AnswerResult" }
func (*AnswerResult) ProtoMessage()    {}

// Phase control

type AdvancePhaseReq struct {
	// Target phase; zero means the natural next phase for the current one.
	Target int32 `protobuf:"varint,1,opt,name=target,proto3" json:"target,omitempty"`
}

func (m *AdvancePhaseReq) Reset()         { *m = AdvancePhaseReq{} }
func (m *AdvancePhaseReq) String() string { return "AdvancePhaseReq" }
func (*AdvancePhaseReq) ProtoMessage()    {}

type EndRoomReq struct {
}

func (m *EndRoomReq) Reset()         { *m = EndRoomReq{} }
func (m *EndRoomReq) String() string { return "EndRoomReq" }
func (*EndRoomReq) ProtoMessage()    {}

// Broadcasts

type PlayerInfo struct {
	Username  string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	Emoji     string `protobuf:"bytes,2,opt,name=emoji,proto3" json:"emoji,omitempty"`
	Score     int32  `protobuf:"varint,3,opt,name=score,proto3" json:"score,omitempty"`
	Connected bool   `protobuf:"varint,4,opt,name=connected,proto3" json:"connected,omitempty"`
}

func (m *PlayerInfo) Reset()         { *m = PlayerInfo{} }
func (m *PlayerInfo) String() string { return "PlayerInfo" }
func (*PlayerInfo) ProtoMessage()    {}

type PlayerListUpdate struct {
	Players      []*PlayerInfo `protobuf:"bytes,1,rep,name=players,proto3" json:"players,omitempty"`
	HostUsername string        `protobuf:"bytes,2,opt,name=host_username,json=hostUsername,proto3" json:"host_username,omitempty"`
}

func (m *PlayerListUpdate) Reset()         { *m = PlayerListUpdate{} }
func (m *PlayerListUpdate) String() string { return "PlayerListUpdate" }
func (*PlayerListUpdate) ProtoMessage()    {}

// RoundStarted deliberately omits title, artist and the answer sets.

type RoundStarted struct {
	SongIndex    int32  `protobuf:"varint,1,opt,name=song_index,json=songIndex,proto3" json:"song_index,omitempty"`
	SongCount    int32  `protobuf:"varint,2,opt,name=song_count,json=songCount,proto3" json:"song_count,omitempty"`
	PreviewUrl   string `protobuf:"bytes,3,opt,name=preview_url,json=previewUrl,proto3" json:"preview_url,omitempty"`
	ArtworkUrl   string `protobuf:"bytes,4,opt,name=artwork_url,json=artworkUrl,proto3" json:"artwork_url,omitempty"`
	GuessLimitMs int64  `protobuf:"varint,5,opt,name=guess_limit_ms,json=guessLimitMs,proto3" json:"guess_limit_ms,omitempty"`
	DeadlineMs   int64  `protobuf:"varint,6,opt,name=deadline_ms,json=deadlineMs,proto3" json:"deadline_ms,omitempty"`
}

func (m *RoundStarted) Reset()         { *m = RoundStarted{} }
func (m *RoundStarted) String() string { return "RoundStarted" }
func (*RoundStarted) ProtoMessage()    {}

type RoundRevealed struct {
	SongIndex int32  `protobuf:"varint,1,opt,name=song_index,json=songIndex,proto3" json:"song_index,omitempty"`
	Title     string `protobuf:"bytes,2,opt,name=title,proto3" json:"title,omitempty"`
	Artist    string `protobuf:"bytes,3,opt,name=artist,proto3" json:"artist,omitempty"`
}

func (m *RoundRevealed) Reset()         { *m = RoundRevealed{} }
func (m *RoundRevealed) String() string { return "RoundRevealed" }
func (*RoundRevealed) ProtoMessage()    {}

type StandingEntry struct {
	Rank     int32  `protobuf:"varint,1,opt,name=rank,proto3" json:"rank,omitempty"`
	Username string `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
	Emoji    string `protobuf:"bytes,3,opt,name=emoji,proto3" json:"emoji,omitempty"`
	Score    int32  `protobuf:"varint,4,opt,name=score,proto3" json:"score,omitempty"`
}

func (m *StandingEntry) Reset()         { *m = StandingEntry{} }
func (m *StandingEntry) String() string { return "StandingEntry" }
func (*StandingEntry) ProtoMessage()    {}

type LeaderboardUpdate struct {
	Standings []*StandingEntry `protobuf:"bytes,1,rep,name=standings,proto3" json:"standings,omitempty"`
}

func (m *LeaderboardUpdate) Reset()         { *m = LeaderboardUpdate{} }
func (m *LeaderboardUpdate) String() string { return "LeaderboardUpdate" }
func (*LeaderboardUpdate) ProtoMessage()    {}

type ReviewEntry struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	Text     string `protobuf:"bytes,2,opt,name=text,proto3" json:"text,omitempty"`
	Points   int32  `protobuf:"varint,3,opt,name=points,proto3" json:"points,omitempty"`
}

func (m *ReviewEntry) Reset()         { *m = ReviewEntry{} }
func (m *ReviewEntry) String() string { return "ReviewEntry" }
func (*ReviewEntry) ProtoMessage()    {}

type AnswerGroup struct {
	Classification int32          `protobuf:"varint,1,opt,name=classification,proto3" json:"classification,omitempty"`
	Entries        []*ReviewEntry `protobuf:"bytes,2,rep,name=entries,proto3" json:"entries,omitempty"`
}

func (m *AnswerGroup) Reset()         { *m = AnswerGroup{} }
func (m *AnswerGroup) String() string { return "AnswerGroup" }
func (*AnswerGroup) ProtoMessage()    {}

type AnswersReview struct {
	SongIndex int32          `protobuf:"varint,1,opt,name=song_index,json=songIndex,proto3" json:"song_index,omitempty"`
	Groups    []*AnswerGroup `protobuf:"bytes,2,rep,name=groups,proto3" json:"groups,omitempty"`
}

func (m *AnswersReview) Reset()         { *m = AnswersReview{} }
func (m *AnswersReview) String() string { return "AnswersReview" }
func (*AnswersReview) ProtoMessage()    {}

type RoomFinished struct {
	Code      string           `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	Standings []*StandingEntry `protobuf:"bytes,2,rep,name=standings,proto3" json:"standings,omitempty"`
}

func (m *RoomFinished) Reset()         { *m = RoomFinished{} }
func (m *RoomFinished) String() string { return "RoomFinished" }
func (*RoomFinished) ProtoMessage()    {}

type PlayerDisconnected struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *PlayerDisconnected) Reset()         { *m = PlayerDisconnected{} }
func (m *PlayerDisconnected) String() string { return "PlayerDisconnected" }
func (*PlayerDisconnected) ProtoMessage()    {}

type PlayerReconnected struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *PlayerReconnected) Reset()         { *m = PlayerReconnected{} }
func (m *PlayerReconnected) String() string { return "PlayerReconnected" }
func (*PlayerReconnected) ProtoMessage()    {}

type HostPaused struct {
	RemainingMs int64 `protobuf:"varint,1,opt,name=remaining_ms,json=remainingMs,proto3" json:"remaining_ms,omitempty"`
}

func (m *HostPaused) Reset()         { *m = HostPaused{} }
func (m *HostPaused) String() string { return "HostPaused" }
func (*HostPaused) ProtoMessage()    {}

type HostResumed struct {
	DeadlineMs int64 `protobuf:"varint,1,opt,name=deadline_ms,json=deadlineMs,proto3" json:"deadline_ms,omitempty"`
}

func (m *HostResumed) Reset()         { *m = HostResumed{} }
func (m *HostResumed) String() string { return "HostResumed" }
func (*HostResumed) ProtoMessage()    {}

// Error

type ErrorResp struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *ErrorResp) Reset()         { *m = ErrorResp{} }
func (m *ErrorResp) String() string { return "ErrorResp" }
func (*ErrorResp) ProtoMessage()    {}
