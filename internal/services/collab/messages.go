package collab

import (
	"encoding/json"
	"errors"
	"time"
)

// Client to server event names.
const (
	EventJoinNote      = "join-note"
	EventLeaveNote     = "leave-note"
	EventBlockCreate   = "block-create"
	EventBlockUpdate   = "block-update"
	EventBlockDelete   = "block-delete"
	EventBlocksReorder = "blocks-reorder"
)

// ErrMalformedFrame is returned for frames that are not a JSON envelope with an event name.
var ErrMalformedFrame = errors.New("malformed message")

// Envelope is the wire shape of every frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserPresence is the user-joined and user-left payload.
type UserPresence struct {
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorPayload is sent to the requesting connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode builds a server frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Decode parses a client frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, ErrMalformedFrame
	}
	if env.Event == "" {
		return Envelope{}, ErrMalformedFrame
	}
	return env, nil
}
