package game

// Rules for a k-in-a-row game on a 3-D board.
type Rules struct {
	Join int // Stones in a line needed to win
}

func NewStandardRules() *Rules {
	return &Rules{Join: DEFAULT_JOIN}
}

// directions holds one vector per line orientation through a cell: 3 axes,
// 6 planar diagonals and 4 space diagonals.
var directions = [13][3]int{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{1, 1, 0}, {1, -1, 0}, {0, 1, 1}, {0, 1, -1}, {1, 0, 1}, {-1, 0, 1},
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
}

// isWinningMove reports whether the stone at m completes a line of r.Join
// stones of its owner.
func (r *Rules) isWinningMove(gs *GameState, m Move) bool {
	owner := gs.at(int(m.X), int(m.Y), int(m.Z))
	if owner == noPlayer {
		return false
	}

	for _, d := range directions {
		count := 1
		count += gs.run(m, d, 1, owner)
		count += gs.run(m, d, -1, owner)
		if count >= r.Join {
			return true
		}
	}
	return false
}
