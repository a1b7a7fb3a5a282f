package searcher

import (
	"context"

	"golang.org/x/exp/rand"
)

type workerStats struct {
	episodes      int
	forcedWins    int
	lockedReplies int
}

// worker runs single-threaded MCTS over a tree nobody else touches.
type worker[M Move[M], S State[M, S]] struct {
	tree  *tree[M, S]
	rand  *rand.Rand
	stats workerStats
}

func newWorker[M Move[M], S State[M, S]](t *tree[M, S], seed uint64) *worker[M, S] {
	return &worker[M, S]{
		tree: t,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// search runs up to maxIterations episodes from state, or until ctx is done
// when maxIterations is negative.
func (w *worker[M, S]) search(ctx context.Context, state S, maxIterations int) error {
	done := ctx.Done()
	result := make([]float64, w.tree.players)
	for i := 0; maxIterations < 0 || i < maxIterations; i++ {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		w.simulate(state.Clone(), result)
		w.stats.episodes++
	}
	return nil
}

func (w *worker[M, S]) simulate(state S, result []float64) {
	newNode := w.selectThenExpand(state)
	depth := w.rollout(state)
	if state.HasWinner() {
		w.pruneForcedOutcome(newNode, state, depth)
	}
	w.backup(newNode, state, result)
}

// selectThenExpand descends by UCT while the tree is fully expanded, then
// adds one untried move. state follows the path.
func (w *worker[M, S]) selectThenExpand(state S) nodeID {
	t := w.tree
	id := t.root
	for !t.hasUntriedMoves(id) && t.hasChildren(id) {
		id = t.selectChildUCT(id)
		state.Play(t.get(id).move)
	}

	if t.hasUntriedMoves(id) {
		move := t.sampleUntriedMove(id, w.rand)
		state.Play(move)
		id = t.addChild(id, move, state)
	}
	return id
}

// rollout plays random moves till the game is over and returns how many it
// took.
func (w *worker[M, S]) rollout(state S) int {
	depth := 0
	for state.HasMoves() {
		state.PlayRandom(w.rand)
		depth++
	}
	return depth
}

// pruneForcedOutcome short-circuits positions a decided rollout shows to be
// forced. Depth 0: the move into id won on the spot, so its parent would
// never play anything else. Depth 1: the player after id wins with the
// reply that was just rolled out, so that reply is the only one kept.
func (w *worker[M, S]) pruneForcedOutcome(id nodeID, state S, depth int) {
	t := w.tree
	switch depth {
	case 0:
		n := t.get(id)
		parent, winner := n.parent, n.mover
		if parent.isNil() {
			return
		}
		t.pruneToOnly(parent, id)
		t.credit(parent, winner)
		w.stats.forcedWins++
	case 1:
		next := (t.get(id).mover + 1) % t.players
		t.addLockedChild(id, state.LastMove(), state)
		t.credit(id, next)
		w.stats.lockedReplies++
	}
}

func (w *worker[M, S]) backup(newNode nodeID, state S, result []float64) {
	for i := range result {
		result[i] = state.Result(i)
	}

	t := w.tree
	for id := newNode; !id.isNil(); id = t.get(id).parent {
		t.update(id, result, 1.0)
	}
}
