package agent

import (
	"context"

	"gobang/experiments/metrics"
	"gobang/game"
	"gobang/searcher"
)

type mctsAgent struct {
	session *searcher.Session[game.Move, *game.GameState]
	options searcher.ComputeOptions
}

// NewMCTSAgent returns an agent that searches with its own session. Use one
// agent per player per game.
func NewMCTSAgent(session *searcher.Session[game.Move, *game.GameState], options searcher.ComputeOptions) Agent {
	return &mctsAgent{session: session, options: options}
}

func (a *mctsAgent) FindMove(ctx context.Context, state *game.GameState, updates []*game.GameState) (game.Move, metrics.SearchMetric, error) {
	// ComputeMove promotes the last update itself
	for i := 0; i < len(updates)-1; i++ {
		a.session.NotifyMovePlayed(updates[i])
	}
	return a.session.ComputeMove(ctx, state, a.options)
}
