package game

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Move places a stone on cell (X, Y, Z).
type Move struct {
	X, Y, Z int16
}

// NoMove is the last move of a game nobody has played in yet.
var NoMove = Move{X: -1, Y: -1, Z: -1}

// Compare orders moves lexicographically by X, then Y, then Z.
func (m Move) Compare(other Move) int {
	if c := cmp.Compare(m.X, other.X); c != 0 {
		return c
	}
	if c := cmp.Compare(m.Y, other.Y); c != 0 {
		return c
	}
	return cmp.Compare(m.Z, other.Z)
}

func (m Move) String() string {
	return fmt.Sprintf("%d %d %d", m.X, m.Y, m.Z)
}

// ParseMove reads a move written as three integers, e.g. "1 4 2".
func ParseMove(text string) (Move, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return NoMove, fmt.Errorf("move %q: expected 3 coordinates, got %d", text, len(fields))
	}

	var coords [3]int16
	for i, field := range fields {
		c, err := strconv.ParseInt(field, 10, 16)
		if err != nil {
			return NoMove, fmt.Errorf("move %q: %w", text, err)
		}
		coords[i] = int16(c)
	}
	return Move{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
