package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gobang/communication"
	"gobang/experiments/metrics"
	"gobang/game"

	"github.com/gorilla/websocket"
)

var ErrRemote = errors.New("remote agent error")

// RemoteAgent plays the moves of an AgentServer. One RemoteAgent plays one
// game at a time.
type RemoteAgent struct {
	conn *websocket.Conn
}

// Dial connects to the agent server at url and starts a game there.
func Dial(ctx context.Context, url string, setup communication.NewGame) (*RemoteAgent, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	a := &RemoteAgent{conn: conn}
	if _, err := a.roundTrip(ctx, communication.TypeNewGame, setup, communication.TypeReady); err != nil {
		conn.Close()
		return nil, err
	}
	return a, nil
}

func (a *RemoteAgent) FindMove(ctx context.Context, state *game.GameState, updates []*game.GameState) (game.Move, metrics.SearchMetric, error) {
	req := communication.FindMove{Moves: make([]string, len(updates))}
	for i, u := range updates {
		req.Moves[i] = u.LastMove().String()
	}

	reply, err := a.roundTrip(ctx, communication.TypeFindMove, req, communication.TypeMove)
	if err != nil {
		return game.NoMove, metrics.SearchMetric{}, err
	}
	var mr communication.MoveReply
	if err := reply.Decode(&mr); err != nil {
		return game.NoMove, metrics.SearchMetric{}, err
	}
	move, err := game.ParseMove(mr.Move)
	if err != nil {
		return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	return move, mr.Metric, nil
}

// Close ends the game and the connection.
func (a *RemoteAgent) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := a.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err != nil {
		err = fmt.Errorf("failed to send close frame: %w", err)
	}
	return errors.Join(err, a.conn.Close())
}

func (a *RemoteAgent) roundTrip(ctx context.Context, msgType string, payload any, want string) (communication.Message, error) {
	// Zero without a deadline, which clears it
	deadline, _ := ctx.Deadline()
	a.conn.SetWriteDeadline(deadline)
	a.conn.SetReadDeadline(deadline)

	req, err := communication.NewMessage(msgType, payload)
	if err != nil {
		return communication.Message{}, err
	}
	if err := a.conn.WriteJSON(req); err != nil {
		return communication.Message{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	var reply communication.Message
	if err := a.conn.ReadJSON(&reply); err != nil {
		return communication.Message{}, fmt.Errorf("failed to read %s reply: %w", msgType, err)
	}
	switch reply.Type {
	case want:
		return reply, nil
	case communication.TypeError:
		var er communication.ErrorReply
		if err := reply.Decode(&er); err != nil {
			return communication.Message{}, err
		}
		return communication.Message{}, fmt.Errorf("%w: %s", ErrRemote, er.Message)
	default:
		return communication.Message{}, fmt.Errorf("%w: unexpected %q reply to %s", ErrRemote, reply.Type, msgType)
	}
}
