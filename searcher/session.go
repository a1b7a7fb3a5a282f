package searcher

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gobang/experiments/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Option func(o *options)

type options struct {
	logger  zerolog.Logger
	metrics metrics.Collector
}

// WithLogger sets where verbose search diagnostics go.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics() Option {
	return func(o *options) {
		o.metrics = metrics.NewCollector()
	}
}

// Session keeps one search tree per worker slot alive across the moves of a
// single game, so every search starts from the subtree of the move actually
// played. A Session is not safe for concurrent use.
type Session[M Move[M], S State[M, S]] struct {
	threads int
	trees   []*tree[M, S]
	logger  zerolog.Logger
	metrics metrics.Collector
}

func NewSession[M Move[M], S State[M, S]](threads int, opts ...Option) *Session[M, S] {
	if threads <= 0 {
		panic("number of threads must be positive")
	}
	o := &options{ // Default values
		logger:  log.Logger,
		metrics: metrics.NewDummyCollector(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Session[M, S]{
		threads: threads,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

func (s *Session[M, S]) Threads() int {
	return s.threads
}

// Reset drops every retained tree. The next call starts from scratch.
func (s *Session[M, S]) Reset() {
	s.trees = nil
}

// NotifyMovePlayed moves the retained trees onto state, which must be the
// position right after state.LastMove(). Call it for every move that is not
// followed by a ComputeMove on the resulting position, e.g. before a human
// player picks a move.
func (s *Session[M, S]) NotifyMovePlayed(state S) {
	s.retain(state)
}

// retain promotes each slot's root child matching the last move, or starts
// that slot over when the move was never expanded. It returns how many
// slots kept their tree.
func (s *Session[M, S]) retain(state S) int {
	if s.trees == nil {
		s.trees = make([]*tree[M, S], s.threads)
		for i := range s.trees {
			s.trees[i] = newTree[M, S](state)
		}
		return 0
	}

	reused := 0
	move := state.LastMove()
	for _, t := range s.trees {
		if t.promote(move) {
			reused++
		} else {
			t.reset(state)
		}
	}
	return reused
}

// ComputeMove searches state with one worker per slot and returns the move
// with the best merged score for the player to move. state is never
// mutated. It panics when state has no legal moves.
func (s *Session[M, S]) ComputeMove(ctx context.Context, state S, options ComputeOptions) (M, metrics.SearchMetric, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		panic("cannot compute a move without legal moves")
	}

	s.metrics.Start(s.threads, options.MaxIterations)
	s.metrics.AddReusedTrees(s.retain(state))

	if len(moves) == 1 {
		s.metrics.SetShortCircuit()
		return moves[0], s.metrics.Complete(), nil
	}

	var best M
	if err := s.search(ctx, state, options.MaxIterations); err != nil {
		// Trees may be half-updated
		s.Reset()
		return best, s.metrics.Complete(), err
	}

	candidates, played := s.merge()
	if len(candidates) == 0 {
		return best, s.metrics.Complete(), ErrNoCandidates
	}
	best = s.pick(candidates, played, state, options.Verbose)
	return best, s.metrics.Complete(), nil
}

// search fans out one worker per retained tree and waits for all of them.
// Any worker failure fails the whole search.
func (s *Session[M, S]) search(ctx context.Context, state S, maxIterations int) error {
	g, ctx := errgroup.WithContext(ctx)
	workers := make([]*worker[M, S], len(s.trees))
	seed := uint64(time.Now().UnixNano())
	for slot, t := range s.trees {
		slot := slot
		workers[slot] = newWorker(t, seed+uint64(slot)*0x9e3779b97f4a7c15)
		root := state.Clone()
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: slot %d: %v", ErrWorkerFailed, slot, r)
				}
			}()
			return workers[slot].search(ctx, root, maxIterations)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, w := range workers {
		s.metrics.AddEpisodes(w.stats.episodes)
		s.metrics.AddForcedWins(w.stats.forcedWins)
		s.metrics.AddLockedReplies(w.stats.lockedReplies)
	}
	return nil
}

type candidate[M any] struct {
	move   M
	visits float64
	wins   []float64
}

// merge sums the root children of every tree by move, in ascending move
// order. It also returns the total root visits.
func (s *Session[M, S]) merge() ([]candidate[M], float64) {
	byMove := make(map[M]*candidate[M])
	played := 0.0
	for _, t := range s.trees {
		root := t.get(t.root)
		played += root.visits
		for _, c := range root.children {
			child := t.get(c)
			merged, ok := byMove[child.move]
			if !ok {
				merged = &candidate[M]{move: child.move, wins: make([]float64, t.players)}
				byMove[child.move] = merged
			}
			merged.visits += child.visits
			for i, w := range child.wins {
				merged.wins[i] += w
			}
		}
	}

	candidates := make([]candidate[M], 0, len(byMove))
	for _, c := range byMove {
		candidates = append(candidates, *c)
	}
	slices.SortFunc(candidates, func(a, b candidate[M]) int {
		return a.move.Compare(b.move)
	})
	return candidates, played
}

// pick returns the candidate with the strictly greatest expected success,
// the lowest move on ties.
func (s *Session[M, S]) pick(candidates []candidate[M], played float64, state S, verbose bool) M {
	toMove := (state.PlayerMoved() + 1) % state.NumPlayers()
	best := candidates[0]
	bestScore := expectedSuccess(best.wins, best.visits, toMove)
	for _, c := range candidates[1:] {
		if score := expectedSuccess(c.wins, c.visits, toMove); score > bestScore {
			best = c
			bestScore = score
		}
	}

	if verbose {
		for _, c := range candidates {
			s.logger.Info().
				Str("move", fmt.Sprint(c.move)).
				Float64("visits_pct", 100.0*c.visits/played).
				Float64("wins", c.wins[toMove]).
				Float64("visits", c.visits).
				Float64("win_pct", 100.0*c.wins[toMove]/c.visits).
				Msg("candidate")
		}
		s.logger.Info().
			Str("move", fmt.Sprint(best.move)).
			Float64("visits_pct", 100.0*best.visits/played).
			Float64("win_pct", 100.0*best.wins[toMove]/best.visits).
			Float64("score", bestScore).
			Msg("best")
	}
	return best.move
}

type ChildStats[M any] struct {
	Move   M
	Visits float64
	Wins   []float64
}

// RootStats returns the root children of every retained tree, per slot.
func (s *Session[M, S]) RootStats() [][]ChildStats[M] {
	stats := make([][]ChildStats[M], len(s.trees))
	for slot, t := range s.trees {
		root := t.get(t.root)
		for _, c := range root.children {
			child := t.get(c)
			stats[slot] = append(stats[slot], ChildStats[M]{
				Move:   child.move,
				Visits: child.visits,
				Wins:   slices.Clone(child.wins),
			})
		}
	}
	return stats
}
