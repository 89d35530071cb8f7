package realtime

import (
	"encoding/json"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
)

// MessageType constants for the websocket protocol.
const (
	// Client -> Server
	TypeCheck   = "check"
	TypeRefresh = "refresh"

	// Server -> Client
	TypeState      = "state"
	TypeRiddle     = "riddle"
	TypeScramble   = "scramble"
	TypeTimer      = "timer"
	TypeResetInput = "reset_input"
	TypeNotice     = "notice"
	TypeVerdict    = "verdict"
	TypeError      = "error"
)

// CodeSessionClosed is the error code sent when the server ends a session.
const CodeSessionClosed = "session_closed"

// Message wraps all websocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client messages (incoming)

type CheckPayload struct {
	Guess string `json:"guess"`
}

// Server messages (outgoing)

type RiddlePayload struct {
	Text string `json:"text"`
}

type ScramblePayload struct {
	Cells []string `json:"cells"`
}

type TimerPayload struct {
	Remaining int `json:"remaining"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// View is the latest rendered state of every display surface.
type View struct {
	Riddle        string       `json:"riddle"`
	Scrambled     []string     `json:"scrambled"`
	TimeRemaining int          `json:"timeRemaining"`
	LastNotice    *game.Notice `json:"lastNotice,omitempty"`
}

// NewMessage marshals payload under the given type.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
