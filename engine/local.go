package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gobang/agent"
	"gobang/experiments/metrics"
	"gobang/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrIllegalMove = errors.New("illegal move")

type LocalEngine struct {
	State    *game.GameState
	Agents   []agent.Agent // One per player index
	MaxTurns int

	// States played since each agent's previous turn
	updates [][]*game.GameState
}

func NewLocalEngine(state *game.GameState, agents []agent.Agent) *LocalEngine {
	if len(agents) != state.NumPlayers() {
		panic("number of players does not match number of agents")
	}
	if len(agents) < 2 {
		panic("need at least two players")
	}

	return &LocalEngine{
		State:    state,
		Agents:   agents,
		MaxTurns: MaxMoves,
		updates:  make([][]*game.GameState, len(agents)),
	}
}

// Play applies move for the player to move and queues the resulting state
// for every agent.
func (e *LocalEngine) Play(move game.Move) error {
	if err := e.State.Validate(move); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}

	e.State.Play(move)
	snapshot := e.State.Clone()
	for i := range e.updates {
		e.updates[i] = append(e.updates[i], snapshot)
	}
	return nil
}

// Run executes the entire game loop until the game is over.
func (e *LocalEngine) Run(ctx context.Context) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:             uuid.NewString(),
		Players:        e.State.NumPlayers(),
		StartingPlayer: e.State.PlayerToMove(),
		Winner:         -1,
		StartTime:      time.Now(),
	}
	logger := log.With().Str("game", gameMetric.ID).Logger()
	logger.Info().Msgf("player %c is starting", game.PlayerMarkers[gameMetric.StartingPlayer])

	turn := 1
	var moveMetrics []metrics.MoveMetric
	for e.State.HasMoves() && turn <= e.MaxTurns {
		player := e.State.PlayerToMove()

		move, searchMetric, err := e.Agents[player].FindMove(ctx, e.State, e.updates[player])
		if err != nil {
			return -1, e.complete(gameMetric, turn-1), moveMetrics, fmt.Errorf("player %d failed to find a move: %w", player, err)
		}
		e.updates[player] = nil

		if err := e.Play(move); err != nil {
			return -1, e.complete(gameMetric, turn-1), moveMetrics, fmt.Errorf("player %d: %w", player, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         turn,
			Player:       player,
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		logger.Debug().
			Int("step", turn).
			Int("player", player).
			Stringer("move", move).
			Int("episodes", searchMetric.Episodes).
			Dur("duration", searchMetric.Duration).
			Msg("move played")

		turn++
	}

	gameMetric = e.complete(gameMetric, turn-1)
	if gameMetric.Winner >= 0 {
		logger.Info().Msgf("player %c won after %d moves", game.PlayerMarkers[gameMetric.Winner], gameMetric.TotalMoves)
	} else if e.State.HasMoves() {
		logger.Info().Msgf("stopped after %d moves (no winner yet)", gameMetric.TotalMoves)
	} else {
		logger.Info().Msgf("draw after %d moves", gameMetric.TotalMoves)
	}
	return gameMetric.Winner, gameMetric, moveMetrics, nil
}

func (e *LocalEngine) complete(gameMetric metrics.GameMetric, moves int) metrics.GameMetric {
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = moves
	gameMetric.Winner = e.State.Winner()
	return gameMetric
}
