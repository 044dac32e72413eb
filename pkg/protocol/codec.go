package protocol

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
)

// Encode wraps a payload into an Envelope and marshals it.
func Encode(msgType MsgType, body proto.Message, seq uint64) ([]byte, error) {
	var raw []byte
	var err error
	if body != nil {
		raw, err = proto.Marshal(body)
		if err != nil {
			return nil, err
		}
	}
	env := &Envelope{
		Type:    msgType,
		Seq:     seq,
		Body:    raw,
		Version: CurrentVersion,
	}
	return proto.Marshal(env)
}

// DecodeEnvelope unmarshals an Envelope from raw bytes.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodeMessage unmarshals Envelope and payload into a concrete type.
func DecodeMessage(data []byte) (MsgType, uint64, proto.Message, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return MsgUnknown, 0, nil, err
	}
	msg, err := UnmarshalBody(env.Type, env.Body)
	if err != nil {
		return env.Type, env.Seq, nil, err
	}
	return env.Type, env.Seq, msg, nil
}

// UnmarshalBody decodes the body according to MsgType.
func UnmarshalBody(msgType MsgType, body []byte) (proto.Message, error) {
	switch msgType {
	case MsgPing:
		var m Ping
		return &m, proto.Unmarshal(body, &m)
	case MsgPong:
		var m Pong
		return &m, proto.Unmarshal(body, &m)
	case MsgLoginReq:
		var m LoginReq
		return &m, proto.Unmarshal(body, &m)
	case MsgLoginResp:
		var m LoginResp
		return &m, proto.Unmarshal(body, &m)
	case MsgReconnectReq:
		var m ReconnectReq
		return &m, proto.Unmarshal(body, &m)
	case MsgReconnectResp:
		var m ReconnectResp
		return &m, proto.Unmarshal(body, &m)
	case MsgCreateRoomReq:
		var m CreateRoomReq
		return &m, proto.Unmarshal(body, &m)
	case MsgCreateRoomResp:
		var m CreateRoomResp
		return &m, proto.Unmarshal(body, &m)
	case MsgJoinRoomReq:
		var m JoinRoomReq
		return &m, proto.Unmarshal(body, &m)
	case MsgJoinRoomResp:
		var m JoinRoomResp
		return &m, proto.Unmarshal(body, &m)
	case MsgRejoinRoomReq:
		var m RejoinRoomReq
		return &m, proto.Unmarshal(body, &m)
	case MsgRoomSnapshot:
		var m RoomSnapshot
		return &m, proto.Unmarshal(body, &m)
	case MsgSubmitAnswerReq:
		var m SubmitAnswerReq
		return &m, proto.Unmarshal(body, &m)
	case MsgAnswerResult:
		var m AnswerResult
		return &m, proto.Unmarshal(body, &m)
	case MsgAdvancePhaseReq:
		var m AdvancePhaseReq
		return &m, proto.Unmarshal(body, &m)
	case MsgEndRoomReq:
		var m EndRoomReq
		return &m, proto.Unmarshal(body, &m)
	case MsgPlayerListUpdate:
		var m PlayerListUpdate
		return &m, proto.Unmarshal(body, &m)
	case MsgRoundStarted:
		var m RoundStarted
		return &m, proto.Unmarshal(body, &m)
	case MsgRoundRevealed:
		var m RoundRevealed
		return &m, proto.Unmarshal(body, &m)
	case MsgLeaderboardUpdate:
		var m LeaderboardUpdate
		return &m, proto.Unmarshal(body, &m)
	case MsgAnswersReview:
		var m AnswersReview
		return &m, proto.Unmarshal(body, &m)
	case MsgRoomFinished:
		var m RoomFinished
		return &m, proto.Unmarshal(body, &m)
	case MsgPlayerDisconnected:
		var m PlayerDisconnected
		return &m, proto.Unmarshal(body, &m)
	case MsgPlayerReconnected:
		var m PlayerReconnected
		return &m, proto.Unmarshal(body, &m)
	case MsgHostPaused:
		var m HostPaused
		return &m, proto.Unmarshal(body, &m)
	case MsgHostResumed:
		var m HostResumed
		return &m, proto.Unmarshal(body, &m)
	case MsgErrorResp:
		var m ErrorResp
		return &m, proto.Unmarshal(body, &m)
	default:
		return nil, fmt.Errorf("unknown msg type: %d", msgType)
	}
}
