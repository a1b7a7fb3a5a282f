package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gobang/agent"
	"gobang/communication"
	"gobang/game"
	"gobang/searcher"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrNoGame = errors.New("no game started")

// AgentServer serves a search agent over websocket. Every connection plays
// its own games with its own session, so trees are retained between the
// turns of a game.
type AgentServer struct {
	threads  int
	options  searcher.ComputeOptions
	upgrader websocket.Upgrader
}

func NewAgentServer(threads int, options searcher.ComputeOptions) *AgentServer {
	return &AgentServer{
		threads:  threads,
		options:  options,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// connGame is the game played on one connection.
type connGame struct {
	state *game.GameState
	agent agent.Agent
}

func (s *AgentServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade agent connection")
		return
	}
	defer conn.Close()
	logger := log.With().Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("agent connection opened")

	g := &connGame{}
	for {
		var msg communication.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("agent connection lost")
			} else {
				logger.Info().Msg("agent connection closed")
			}
			return
		}

		reply, err := s.handle(r.Context(), g, msg)
		if err != nil {
			logger.Debug().Err(err).Str("type", msg.Type).Msg("rejected request")
			reply, _ = communication.NewMessage(communication.TypeError, communication.ErrorReply{Message: err.Error()})
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("failed to write reply")
			return
		}
	}
}

func (s *AgentServer) handle(ctx context.Context, g *connGame, msg communication.Message) (communication.Message, error) {
	switch msg.Type {
	case communication.TypeNewGame:
		var setup communication.NewGame
		if err := msg.Decode(&setup); err != nil {
			return communication.Message{}, err
		}
		if err := validate(setup); err != nil {
			return communication.Message{}, err
		}
		g.state = game.NewGameState(setup.Players, setup.X, setup.Y, setup.Z, &game.Rules{Join: setup.Join})
		session := searcher.NewSession[game.Move, *game.GameState](s.threads, searcher.WithMetrics())
		g.agent = agent.NewMCTSAgent(session, s.options)
		return communication.NewMessage(communication.TypeReady, nil)

	case communication.TypeFindMove:
		if g.state == nil {
			return communication.Message{}, ErrNoGame
		}
		var req communication.FindMove
		if err := msg.Decode(&req); err != nil {
			return communication.Message{}, err
		}

		// The board only advances once every move of the request is legal
		next := g.state.Clone()
		updates := make([]*game.GameState, 0, len(req.Moves))
		for _, text := range req.Moves {
			move, err := game.ParseMove(text)
			if err != nil {
				return communication.Message{}, err
			}
			if err := next.Validate(move); err != nil {
				return communication.Message{}, err
			}
			next.Play(move)
			updates = append(updates, next.Clone())
		}
		g.state = next
		if !g.state.HasMoves() {
			return communication.Message{}, game.ErrNoLegalMove
		}

		move, metric, err := g.agent.FindMove(ctx, g.state, updates)
		if err != nil {
			return communication.Message{}, err
		}
		return communication.NewMessage(communication.TypeMove, communication.MoveReply{Move: move.String(), Metric: metric})

	default:
		return communication.Message{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func validate(setup communication.NewGame) error {
	if setup.Players < 2 || setup.Players > game.MAX_PLAYERS {
		return fmt.Errorf("players must be between 2 and %d, got %d", game.MAX_PLAYERS, setup.Players)
	}
	if err := game.ValidateSize(setup.X, setup.Y, setup.Z); err != nil {
		return err
	}
	if setup.Join < 1 {
		return fmt.Errorf("join must be positive, got %d", setup.Join)
	}
	return nil
}
