package agent

import (
	"context"

	"gobang/experiments/metrics"
	"gobang/game"
)

type Agent interface {
	// FindMove returns the move to play in state and the search metrics (if
	// collected). updates holds the state after every move played since the
	// agent's previous turn, oldest first, so the last one is state itself.
	FindMove(ctx context.Context, state *game.GameState, updates []*game.GameState) (game.Move, metrics.SearchMetric, error)
}
