package engine

import (
	"context"

	"gobang/experiments/metrics"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till it is decided, drawn, or a max number of moves is
	// reached. winner is -1 unless a player won.
	Run(ctx context.Context) (winner int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
