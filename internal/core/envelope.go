package core

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/domain"
)

// Frame is a raw wire payload, one JSON envelope per frame.
type Frame []byte

type EnvelopeType string

const (
	TypeAuthenticate EnvelopeType = "authenticate"
	TypeAuthOK       EnvelopeType = "auth-ok"
	TypeJoinRoom     EnvelopeType = "join-room"
	TypeRoomJoined   EnvelopeType = "room-joined"
	TypeUserJoined   EnvelopeType = "user-joined"
	TypeUserLeft     EnvelopeType = "user-left"
	TypeOffer        EnvelopeType = "offer"
	TypeAnswer       EnvelopeType = "answer"
	TypeICECandidate EnvelopeType = "ice-candidate"
	TypeChatMessage  EnvelopeType = "chat-message"
	TypeTyping       EnvelopeType = "typing"
	TypeMuteAudio    EnvelopeType = "mute-audio"
	TypeMuteVideo    EnvelopeType = "mute-video"
	TypeScreenShare  EnvelopeType = "screen-share"
	TypeError        EnvelopeType = "error"
)

// Error codes carried on TypeError envelopes.
const (
	CodeRoomFull      = "room-full"
	CodeRoomPrivate   = "room-private"
	CodeAlreadyInRoom = "already-in-room"
	CodeAuthFailed    = "auth-failed"
	CodeBadEnvelope   = "bad-envelope"
)

// Envelope is the bidirectional wire message. Payload is opaque to the
// server: relay types carry it through unmodified.
type Envelope struct {
	Type      EnvelopeType    `json:"type"`
	Token     string          `json:"token,omitempty"`
	RoomID    domain.RoomID   `json:"roomId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	SenderID  string          `json:"senderId,omitempty"`
	TargetID  string          `json:"targetId,omitempty"`
	UserName  string          `json:"userName,omitempty"`
	Message   string          `json:"message,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Muted     *bool           `json:"muted,omitempty"`
	Sharing   *bool           `json:"sharing,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Existing  []MemberDTO     `json:"existingUsers,omitempty"`
	Capacity  int             `json:"capacity,omitempty"`
	Code      string          `json:"code,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Envelope) Encode() (Frame, error) {
	return json.Marshal(e)
}

// IsRelay reports whether t is forwarded to exactly one named target.
func (t EnvelopeType) IsRelay() bool {
	switch t {
	case TypeOffer, TypeAnswer, TypeICECandidate:
		return true
	}
	return false
}

// IsBroadcast reports whether t fans out to the sender's room, sender excluded.
func (t EnvelopeType) IsBroadcast() bool {
	switch t {
	case TypeChatMessage, TypeTyping, TypeMuteAudio, TypeMuteVideo, TypeScreenShare:
		return true
	}
	return false
}

func ErrorEnvelope(code, msg string) *Envelope {
	return &Envelope{Type: TypeError, Code: code, Error: msg}
}
