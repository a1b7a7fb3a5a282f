package searcher

import (
	"cmp"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type mockMove int

func (m mockMove) Compare(other mockMove) int {
	return cmp.Compare(m, other)
}

// mockState is a game where players take turns picking numbers until none
// are left. It always ends in a draw.
type mockState struct {
	players int
	mover   int
	moves   []mockMove
	played  []mockMove
}

func newMockState(players int, moves ...mockMove) *mockState {
	return &mockState{players: players, mover: players - 1, moves: moves}
}

func (m *mockState) Clone() *mockState {
	return &mockState{
		players: m.players,
		mover:   m.mover,
		moves:   slices.Clone(m.moves),
		played:  slices.Clone(m.played),
	}
}

func (m *mockState) Play(move mockMove) {
	i := slices.Index(m.moves, move)
	if i < 0 {
		panic("illegal mock move")
	}
	m.moves = slices.Delete(m.moves, i, i+1)
	m.played = append(m.played, move)
	m.mover = (m.mover + 1) % m.players
}

func (m *mockState) PlayRandom(r *rand.Rand) {
	m.Play(m.moves[r.Intn(len(m.moves))])
}

func (m *mockState) HasMoves() bool {
	return len(m.moves) > 0
}

func (m *mockState) LegalMoves() []mockMove {
	return slices.Clone(m.moves)
}

func (m *mockState) HasWinner() bool {
	return false
}

func (m *mockState) Result(player int) float64 {
	return 1.0 / float64(m.players)
}

func (m *mockState) PlayerMoved() int {
	return m.mover
}

func (m *mockState) LastMove() mockMove {
	if len(m.played) == 0 {
		return -1
	}
	return m.played[len(m.played)-1]
}

func (m *mockState) NumPlayers() int {
	return m.players
}

func after(state *mockState, move mockMove) *mockState {
	next := state.Clone()
	next.Play(move)
	return next
}

func TestNewTree(t *testing.T) {
	state := newMockState(3, 1, 2, 3)

	tr := newTree[mockMove, *mockState](state)
	root := tr.get(tr.root)

	require.Equal(t, mockMove(-1), root.move, "Root should carry the state's last move")
	require.True(t, root.parent.isNil(), "Root should have no parent")
	require.Equal(t, 2, root.mover, "Root mover should be the player who moved last")
	require.Equal(t, []mockMove{1, 2, 3}, root.untried, "Root should start with every legal move untried")
	require.Equal(t, []float64{0, 0, 0}, root.wins, "Root should have a win accumulator per player")
	require.Equal(t, 0.0, root.visits)
	require.Equal(t, 1, tr.size())
}

func TestTreeAddChild(t *testing.T) {
	t.Run("expanding an untried move", func(t *testing.T) {
		state := newMockState(2, 1, 2, 3)
		tr := newTree[mockMove, *mockState](state)

		child := tr.addChild(tr.root, 2, after(state, 2))

		root := tr.get(tr.root)
		require.Equal(t, []mockMove{1, 3}, root.untried, "Move should no longer be untried")
		require.Equal(t, []nodeID{child}, root.children, "Child should be appended")
		got := tr.get(child)
		require.Equal(t, mockMove(2), got.move)
		require.Equal(t, tr.root, got.parent)
		require.Equal(t, 0, got.mover, "Child mover should be the player who played the move")
		require.Equal(t, []mockMove{1, 3}, got.untried)
		require.True(t, tr.hasUntriedMoves(tr.root))
		require.True(t, tr.hasChildren(tr.root))
	})

	t.Run("panics on a move that is not untried", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		tr.addChild(tr.root, 1, after(state, 1))

		require.Panics(t, func() { tr.addChild(tr.root, 1, after(state, 1)) }, "Should not expand a move twice")
		require.Panics(t, func() { tr.addChild(tr.root, 7, state) }, "Should not expand an unknown move")
	})

	t.Run("sampling untried moves", func(t *testing.T) {
		state := newMockState(2, 4, 5)
		tr := newTree[mockMove, *mockState](state)
		r := rand.New(rand.NewSource(1))

		for i := 0; i < 20; i++ {
			require.Contains(t, []mockMove{4, 5}, tr.sampleUntriedMove(tr.root, r))
		}

		tr.addChild(tr.root, 4, after(state, 4))
		tr.addChild(tr.root, 5, after(state, 5))
		require.False(t, tr.hasUntriedMoves(tr.root))
		require.Panics(t, func() { tr.sampleUntriedMove(tr.root, r) }, "Should panic without untried moves")
	})
}

func TestTreeAddLockedChild(t *testing.T) {
	t.Run("locking a childless node", func(t *testing.T) {
		state := newMockState(2, 1, 2, 3)
		tr := newTree[mockMove, *mockState](state)

		child := tr.addLockedChild(tr.root, 3, after(state, 3))

		root := tr.get(tr.root)
		require.True(t, root.locked)
		require.Empty(t, root.untried, "Locked node should have no untried moves")
		require.Equal(t, []nodeID{child}, root.children, "Locked node should have exactly one child")
		require.Panics(t, func() { tr.addChild(tr.root, 1, after(state, 1)) }, "Locked node takes no more children")
	})

	t.Run("panics on a node with children", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		tr.addChild(tr.root, 1, after(state, 1))

		require.Panics(t, func() { tr.addLockedChild(tr.root, 2, after(state, 2)) })
	})
}

func TestTreePruneToOnly(t *testing.T) {
	t.Run("keeping one child", func(t *testing.T) {
		state := newMockState(2, 1, 2, 3, 4)
		tr := newTree[mockMove, *mockState](state)
		first := tr.addChild(tr.root, 1, after(state, 1))
		keep := tr.addChild(tr.root, 2, after(state, 2))
		last := tr.addChild(tr.root, 3, after(state, 3))
		tr.addChild(last, 1, after(after(state, 3), 1))
		require.Equal(t, 5, tr.size())

		tr.pruneToOnly(tr.root, keep)

		root := tr.get(tr.root)
		require.Equal(t, []nodeID{keep}, root.children, "Only the kept child should remain")
		require.Empty(t, root.untried, "Untried moves should be dropped")
		require.Equal(t, 2, tr.size(), "Pruned subtrees should be released")
		require.Panics(t, func() { tr.get(first) }, "Pruned handles should go stale")
		require.Panics(t, func() { tr.get(last) }, "Pruned handles should go stale")
	})

	t.Run("no-op on a single child with nothing untried", func(t *testing.T) {
		state := newMockState(2, 1)
		tr := newTree[mockMove, *mockState](state)
		only := tr.addChild(tr.root, 1, after(state, 1))

		tr.pruneToOnly(tr.root, noNode)

		require.Equal(t, []nodeID{only}, tr.get(tr.root).children, "Single child should survive")
	})

	t.Run("panics when keep is not a child", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		child := tr.addChild(tr.root, 1, after(state, 1))
		grandChild := tr.addChild(child, 2, after(after(state, 1), 2))

		require.Panics(t, func() { tr.pruneToOnly(tr.root, grandChild) })
	})
}

func TestTreePromote(t *testing.T) {
	t.Run("promoting an expanded move", func(t *testing.T) {
		state := newMockState(2, 1, 2, 3)
		tr := newTree[mockMove, *mockState](state)
		tr.addChild(tr.root, 1, after(state, 1))
		match := tr.addChild(tr.root, 2, after(state, 2))
		tr.addChild(match, 3, after(after(state, 2), 3))
		tr.addChild(tr.root, 3, after(state, 3))
		oldRoot := tr.root

		ok := tr.promote(2)

		require.True(t, ok)
		require.Equal(t, match, tr.root, "Matching child should become the root")
		require.True(t, tr.get(tr.root).parent.isNil(), "New root should be detached")
		require.Len(t, tr.get(tr.root).children, 1, "New root should keep its subtree")
		require.Equal(t, 2, tr.size(), "Old root and siblings should be released")
		require.Panics(t, func() { tr.get(oldRoot) })
	})

	t.Run("promoting an unexpanded move", func(t *testing.T) {
		state := newMockState(2, 1, 2, 3)
		tr := newTree[mockMove, *mockState](state)
		tr.addChild(tr.root, 1, after(state, 1))

		ok := tr.promote(3)

		require.False(t, ok)
		require.True(t, tr.root.isNil(), "Tree should be empty")
		require.Equal(t, 0, tr.size())

		tr.reset(after(state, 3))
		require.Equal(t, mockMove(3), tr.get(tr.root).move)
		require.Equal(t, 1, tr.size(), "Reset should reuse a released slot")
		require.Len(t, tr.nodes, 2, "Reset should not grow the arena")
	})
}

func TestTreeReleaseReusesSlots(t *testing.T) {
	state := newMockState(2, 1, 2)
	tr := newTree[mockMove, *mockState](state)
	stale := tr.addChild(tr.root, 1, after(state, 1))
	tr.pruneToOnly(tr.root, noNode)

	fresh := tr.alloc(tr.root, 2, after(state, 2))

	require.Equal(t, stale.index, fresh.index, "Released slot should be reused")
	require.NotEqual(t, stale.gen, fresh.gen, "Reused slot should get a new generation")
	require.Panics(t, func() { tr.get(stale) }, "Old handle should stay stale")
	require.NotPanics(t, func() { tr.get(fresh) })
}

func TestTreeUpdateAndCredit(t *testing.T) {
	state := newMockState(3, 1, 2)
	tr := newTree[mockMove, *mockState](state)

	tr.update(tr.root, []float64{1, 0, 0}, 1)
	tr.update(tr.root, []float64{0, 0.5, 0.5}, 1)

	root := tr.get(tr.root)
	require.Equal(t, 2.0, root.visits)
	require.Equal(t, []float64{1, 0.5, 0.5}, root.wins)

	tr.credit(tr.root, 2)

	require.Equal(t, []float64{0, 0, 2}, root.wins, "All visits should be credited to one player")
}

func TestTreeSelectChildUCT(t *testing.T) {
	t.Run("selecting the highest score", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		weak := tr.addChild(tr.root, 1, after(state, 1))
		strong := tr.addChild(tr.root, 2, after(state, 2))
		tr.update(weak, []float64{0, 1}, 1)
		tr.update(strong, []float64{1, 0}, 1)
		tr.update(tr.root, []float64{1, 1}, 2)

		require.Equal(t, strong, tr.selectChildUCT(tr.root), "Should select the child that won for its mover")
	})

	t.Run("breaking ties by order", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		first := tr.addChild(tr.root, 1, after(state, 1))
		second := tr.addChild(tr.root, 2, after(state, 2))
		tr.update(first, []float64{0.5, 0.5}, 1)
		tr.update(second, []float64{0.5, 0.5}, 1)
		tr.update(tr.root, []float64{1, 1}, 2)

		require.Equal(t, first, tr.selectChildUCT(tr.root), "Should keep the earliest child on ties")
	})

	t.Run("single unvisited child", func(t *testing.T) {
		state := newMockState(2, 1, 2)
		tr := newTree[mockMove, *mockState](state)
		only := tr.addLockedChild(tr.root, 1, after(state, 1))

		require.Equal(t, only, tr.selectChildUCT(tr.root), "Should select a lone child without scoring it")
	})

	t.Run("panics without children", func(t *testing.T) {
		tr := newTree[mockMove, *mockState](newMockState(2, 1))

		require.Panics(t, func() { tr.selectChildUCT(tr.root) })
	})
}
