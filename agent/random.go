package agent

import (
	"context"

	"gobang/experiments/metrics"
	"gobang/game"

	"golang.org/x/exp/rand"
)

// randomAgent picks a legal move uniformly at random.
type randomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(ctx context.Context, state *game.GameState, updates []*game.GameState) (game.Move, metrics.SearchMetric, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.NoMove, metrics.SearchMetric{}, game.ErrNoLegalMove
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}
