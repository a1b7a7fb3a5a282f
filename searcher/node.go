package searcher

import (
	"gobang/utils"

	"golang.org/x/exp/rand"
)

// nodeID is a generation-checked handle into a tree's node arena. A handle
// goes stale as soon as its node is released, even if the slot is reused.
type nodeID struct {
	index int32
	gen   uint32
}

var noNode = nodeID{index: -1}

func (id nodeID) isNil() bool {
	return id.index < 0
}

type node[M any] struct {
	gen      uint32
	live     bool
	move     M      // Move that produced this node's state
	parent   nodeID // noNode at the root
	mover    int    // Player who made move
	untried  []M
	children []nodeID
	wins     []float64 // Accumulated result per player
	visits   float64
	locked   bool // Exactly one child and no untried moves, forever
}

// tree owns every node reachable from root. Released slots are recycled
// through the free list.
type tree[M Move[M], S State[M, S]] struct {
	nodes   []node[M]
	free    []int32
	root    nodeID
	players int
}

func newTree[M Move[M], S State[M, S]](state S) *tree[M, S] {
	t := &tree[M, S]{root: noNode, players: state.NumPlayers()}
	t.reset(state)
	return t
}

// reset discards the whole tree and starts over from state.
func (t *tree[M, S]) reset(state S) {
	if !t.root.isNil() {
		t.release(t.root)
	}
	t.root = t.alloc(noNode, state.LastMove(), state)
}

func (t *tree[M, S]) get(id nodeID) *node[M] {
	if id.index < 0 || int(id.index) >= len(t.nodes) {
		panic("invalid node handle")
	}
	n := &t.nodes[id.index]
	if !n.live || n.gen != id.gen {
		panic("stale node handle")
	}
	return n
}

// alloc may grow the arena, which invalidates *node pointers held by the
// caller. Re-fetch them with get afterwards.
func (t *tree[M, S]) alloc(parent nodeID, move M, state S) nodeID {
	var index int32
	if k := len(t.free); k > 0 {
		index = t.free[k-1]
		t.free = t.free[:k-1]
	} else {
		index = int32(len(t.nodes))
		t.nodes = append(t.nodes, node[M]{})
	}

	n := &t.nodes[index]
	wins := n.wins[:0]
	for i := 0; i < t.players; i++ {
		wins = append(wins, 0)
	}
	*n = node[M]{
		gen:      n.gen,
		live:     true,
		move:     move,
		parent:   parent,
		mover:    state.PlayerMoved(),
		untried:  append(n.untried[:0], state.LegalMoves()...),
		children: n.children[:0],
		wins:     wins,
	}
	return nodeID{index: index, gen: n.gen}
}

// release frees id and its whole subtree.
func (t *tree[M, S]) release(id nodeID) {
	stack := []nodeID{id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.get(id)
		stack = append(stack, n.children...)
		n.children = n.children[:0]
		n.untried = n.untried[:0]
		n.parent = noNode
		n.locked = false
		n.live = false
		n.gen++
		t.free = append(t.free, id.index)
	}
}

// size returns the number of live nodes.
func (t *tree[M, S]) size() int {
	return len(t.nodes) - len(t.free)
}

func (t *tree[M, S]) hasUntriedMoves(id nodeID) bool {
	return len(t.get(id).untried) > 0
}

func (t *tree[M, S]) hasChildren(id nodeID) bool {
	return len(t.get(id).children) > 0
}

func (t *tree[M, S]) sampleUntriedMove(id nodeID, r *rand.Rand) M {
	n := t.get(id)
	if len(n.untried) == 0 {
		panic("node has no untried moves")
	}
	return n.untried[r.Intn(len(n.untried))]
}

// selectChildUCT returns the child with the strictly greatest UCT score,
// the earliest child on ties.
func (t *tree[M, S]) selectChildUCT(id nodeID) nodeID {
	n := t.get(id)
	if len(n.children) == 0 {
		panic("node has no children")
	}
	if len(n.children) == 1 {
		return n.children[0]
	}

	policy := newUCT(C_SQUARED, n.visits, t.players)
	best := n.children[0]
	first := t.get(best)
	bestScore := policy.evaluate(first.wins, first.visits, first.mover)
	for _, c := range n.children[1:] {
		child := t.get(c)
		if score := policy.evaluate(child.wins, child.visits, child.mover); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

func (t *tree[M, S]) addChild(id nodeID, move M, state S) nodeID {
	n := t.get(id)
	i := utils.FindIndex(n.untried, move)
	if i < 0 {
		panic("cannot add child: move is not untried")
	}
	n.untried = utils.RemoveAt(n.untried, i)

	child := t.alloc(id, move, state)
	n = t.get(id)
	n.children = append(n.children, child)
	return child
}

// addLockedChild attaches the only child id will ever have.
func (t *tree[M, S]) addLockedChild(id nodeID, move M, state S) nodeID {
	if t.hasChildren(id) {
		panic("cannot add locked child: node already has children")
	}

	child := t.alloc(id, move, state)
	n := t.get(id)
	n.children = append(n.children, child)
	n.untried = n.untried[:0]
	n.locked = true
	return child
}

// pruneToOnly releases every child except keep and drops the untried moves
// for good. With keep == noNode every child goes, unless the node already
// has a single child and nothing left to try.
func (t *tree[M, S]) pruneToOnly(id nodeID, keep nodeID) {
	n := t.get(id)
	if keep.isNil() && len(n.children) == 1 && len(n.untried) == 0 {
		return
	}

	found := false
	doomed := make([]nodeID, 0, len(n.children))
	for _, c := range n.children {
		if c == keep {
			found = true
			continue
		}
		doomed = append(doomed, c)
	}
	if !keep.isNil() && !found {
		panic("cannot prune: node to keep is not a child")
	}

	for _, c := range doomed {
		t.release(c)
	}
	n.children = n.children[:0]
	if found {
		n.children = append(n.children, keep)
	}
	n.untried = n.untried[:0]
}

// promote makes the root's child reached by move the new root and frees
// everything else. It returns false, leaving the tree empty, when no child
// matches.
func (t *tree[M, S]) promote(move M) bool {
	root := t.get(t.root)
	match := noNode
	for _, c := range root.children {
		if match.isNil() && t.get(c).move == move {
			match = c
			continue
		}
		t.release(c)
	}
	root.children = root.children[:0]
	t.release(t.root)

	t.root = match
	if match.isNil() {
		return false
	}
	t.get(match).parent = noNode
	return true
}

func (t *tree[M, S]) update(id nodeID, result []float64, weight float64) {
	n := t.get(id)
	n.visits += weight
	for i := range n.wins {
		n.wins[i] += result[i]
	}
}

// credit hands every visit of id to player, as if no other outcome were
// possible from there.
func (t *tree[M, S]) credit(id nodeID, player int) {
	n := t.get(id)
	for i := range n.wins {
		n.wins[i] = 0
	}
	n.wins[player] = n.visits
}
