package communication

import (
	"encoding/json"
	"fmt"

	"gobang/experiments/metrics"
)

// Message types, client to server
const (
	TypeNewGame  = "new_game"
	TypeFindMove = "find_move"
)

// Message types, server to client
const (
	TypeReady = "ready"
	TypeMove  = "move"
	TypeError = "error"
)

// Message is the envelope of every frame exchanged with a remote agent.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewGame starts a game on the connection, dropping any previous one.
type NewGame struct {
	Players int `json:"players"`
	X       int `json:"x"`
	Y       int `json:"y"`
	Z       int `json:"z"`
	Join    int `json:"join"`
}

// FindMove asks for the next move after Moves, the moves played since the
// agent's previous turn in "x y z" form.
type FindMove struct {
	Moves []string `json:"moves"`
}

type MoveReply struct {
	Move   string               `json:"move"`
	Metric metrics.SearchMetric `json:"metric"`
}

type ErrorReply struct {
	Message string `json:"message"`
}

func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Decode unmarshals the payload into out.
func (m Message) Decode(out any) error {
	if err := json.Unmarshal(m.Payload, out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}
