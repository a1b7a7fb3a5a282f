package game

import (
	"fmt"
	"math"
)

const (
	DEFAULT_SIZE = 6
	DEFAULT_JOIN = 5
	MAX_PLAYERS  = len(PlayerMarkers)
	MAX_SIZE     = math.MaxInt16 // Move coordinates are int16
	MAX_CELLS    = 1 << 20
)

// PlayerMarkers are the board symbols of players 0, 1, 2, ...
const PlayerMarkers = "XOLGHTSVM"

const EmptyMarker = '.'

const noPlayer = -1

// ValidateSize reports a board that is empty along some axis, whose
// coordinates do not fit a Move, or that has more than MAX_CELLS cells.
func ValidateSize(sizeX, sizeY, sizeZ int) error {
	if sizeX < 1 || sizeY < 1 || sizeZ < 1 {
		return fmt.Errorf("board dimensions must be positive, got %dx%dx%d", sizeX, sizeY, sizeZ)
	}
	if sizeX > MAX_SIZE || sizeY > MAX_SIZE || sizeZ > MAX_SIZE {
		return fmt.Errorf("board dimensions must be at most %d, got %dx%dx%d", MAX_SIZE, sizeX, sizeY, sizeZ)
	}
	if cells := sizeX * sizeY * sizeZ; cells > MAX_CELLS {
		return fmt.Errorf("board must have at most %d cells, got %d", MAX_CELLS, cells)
	}
	return nil
}
