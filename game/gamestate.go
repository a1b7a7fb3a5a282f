package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/rand"
)

var (
	ErrGameOver    = errors.New("game is over - no moves allowed")
	ErrOutOfBoard  = errors.New("move is outside the board")
	ErrOccupied    = errors.New("cell is already occupied")
	ErrNoLegalMove = errors.New("no legal moves available")
)

// GameState is a position of N-player gobang on an X×Y×Z board. Player 0
// moves first. Copy it with Clone; Play mutates it.
type GameState struct {
	Rules   *Rules // Shared, never mutated
	Players int
	SizeX   int
	SizeY   int
	SizeZ   int

	cells       []int8  // Owner per cell, noPlayer when empty
	open        []Move  // Empty cells
	openIndex   []int32 // Index into open per cell, -1 when occupied
	playerMoved int
	lastMove    Move
	winner      int
}

// NewGameState initializes an empty board.
func NewGameState(players, sizeX, sizeY, sizeZ int, rules *Rules) *GameState {
	if players < 2 || players > MAX_PLAYERS {
		panic(fmt.Sprintf("unsupported number of players: %d", players))
	}
	if err := ValidateSize(sizeX, sizeY, sizeZ); err != nil {
		panic(err.Error())
	}

	numCells := sizeX * sizeY * sizeZ
	gs := &GameState{
		Rules:       rules,
		Players:     players,
		SizeX:       sizeX,
		SizeY:       sizeY,
		SizeZ:       sizeZ,
		cells:       make([]int8, numCells),
		open:        make([]Move, 0, numCells),
		openIndex:   make([]int32, numCells),
		playerMoved: players - 1,
		lastMove:    NoMove,
		winner:      noPlayer,
	}
	for x := 0; x < sizeX; x++ {
		for y := 0; y < sizeY; y++ {
			for z := 0; z < sizeZ; z++ {
				i := gs.index(x, y, z)
				gs.cells[i] = noPlayer
				gs.openIndex[i] = int32(len(gs.open))
				gs.open = append(gs.open, Move{X: int16(x), Y: int16(y), Z: int16(z)})
			}
		}
	}
	return gs
}

// Clone returns a deep copy sharing only the rules.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.cells = slices.Clone(gs.cells)
	c.open = slices.Clone(gs.open)
	c.openIndex = slices.Clone(gs.openIndex)
	return &c
}

func (gs *GameState) index(x, y, z int) int {
	return (x*gs.SizeY+y)*gs.SizeZ + z
}

func (gs *GameState) inBounds(x, y, z int) bool {
	return x >= 0 && x < gs.SizeX && y >= 0 && y < gs.SizeY && z >= 0 && z < gs.SizeZ
}

// at returns the owner of a cell, noPlayer when empty.
func (gs *GameState) at(x, y, z int) int {
	return int(gs.cells[gs.index(x, y, z)])
}

// Owner returns the player whose stone is on m, -1 when the cell is empty.
func (gs *GameState) Owner(m Move) int {
	if !gs.inBounds(int(m.X), int(m.Y), int(m.Z)) {
		return noPlayer
	}
	return gs.at(int(m.X), int(m.Y), int(m.Z))
}

// run counts the owner's stones next to m going along sign*d.
func (gs *GameState) run(m Move, d [3]int, sign int, owner int) int {
	count := 0
	x, y, z := int(m.X), int(m.Y), int(m.Z)
	for {
		x, y, z = x+sign*d[0], y+sign*d[1], z+sign*d[2]
		if !gs.inBounds(x, y, z) || gs.at(x, y, z) != owner {
			return count
		}
		count++
	}
}

// Validate reports why m cannot be played now, or nil.
func (gs *GameState) Validate(m Move) error {
	if gs.HasWinner() {
		return ErrGameOver
	}
	if !gs.inBounds(int(m.X), int(m.Y), int(m.Z)) {
		return fmt.Errorf("%w: %v", ErrOutOfBoard, m)
	}
	if gs.at(int(m.X), int(m.Y), int(m.Z)) != noPlayer {
		return fmt.Errorf("%w: %v", ErrOccupied, m)
	}
	return nil
}

// Play places the next player's stone. It panics on an illegal move.
func (gs *GameState) Play(m Move) {
	if err := gs.Validate(m); err != nil {
		panic(fmt.Sprintf("illegal move: %v", err))
	}
	gs.place(m)
}

// PlayRandom plays a uniformly random empty cell.
func (gs *GameState) PlayRandom(r *rand.Rand) {
	if !gs.HasMoves() {
		panic(ErrNoLegalMove)
	}
	gs.place(gs.open[r.Intn(len(gs.open))])
}

func (gs *GameState) place(m Move) {
	gs.playerMoved = (gs.playerMoved + 1) % gs.Players
	i := gs.index(int(m.X), int(m.Y), int(m.Z))
	gs.cells[i] = int8(gs.playerMoved)

	// Swap-remove m from the open cells
	k := gs.openIndex[i]
	last := gs.open[len(gs.open)-1]
	gs.open[k] = last
	gs.openIndex[gs.index(int(last.X), int(last.Y), int(last.Z))] = k
	gs.open = gs.open[:len(gs.open)-1]
	gs.openIndex[i] = -1

	gs.lastMove = m
	if gs.Rules.isWinningMove(gs, m) {
		gs.winner = gs.playerMoved
	}
}

func (gs *GameState) HasMoves() bool {
	return !gs.HasWinner() && len(gs.open) > 0
}

func (gs *GameState) LegalMoves() []Move {
	if gs.HasWinner() {
		return nil
	}
	return slices.Clone(gs.open)
}

func (gs *GameState) HasWinner() bool {
	return gs.winner != noPlayer
}

// Winner returns the winning player, -1 while undecided or on a draw.
func (gs *GameState) Winner() int {
	return gs.winner
}

// Result is 1 for the winner and 0 for everyone else, or 1/Players for all
// on a draw.
func (gs *GameState) Result(player int) float64 {
	if gs.winner == noPlayer {
		return 1.0 / float64(gs.Players)
	}
	if gs.winner == player {
		return 1.0
	}
	return 0.0
}

func (gs *GameState) PlayerMoved() int {
	return gs.playerMoved
}

func (gs *GameState) PlayerToMove() int {
	return (gs.playerMoved + 1) % gs.Players
}

func (gs *GameState) LastMove() Move {
	return gs.lastMove
}

func (gs *GameState) NumPlayers() int {
	return gs.Players
}

// String draws every z layer as a grid with x rows and y columns.
func (gs *GameState) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for z := 0; z < gs.SizeZ; z++ {
		sb.WriteString("   ")
		for y := 0; y < gs.SizeY; y++ {
			if y > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", y%10)
		}
		sb.WriteString("\n")
		for x := 0; x < gs.SizeX; x++ {
			fmt.Fprintf(&sb, "%d |", x%10)
			for y := 0; y < gs.SizeY; y++ {
				if y > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteByte(marker(gs.at(x, y, z)))
			}
			sb.WriteString("|\n")
		}
		sb.WriteString("  +")
		sb.WriteString(strings.Repeat("-", 2*gs.SizeY-1))
		sb.WriteString("+\n")
	}
	if gs.lastMove != NoMove {
		fmt.Fprintf(&sb, "%c finished move\n", marker(gs.playerMoved))
	}
	if gs.HasMoves() {
		fmt.Fprintf(&sb, "%c is to move\n", marker(gs.PlayerToMove()))
	}
	return sb.String()
}

func marker(player int) byte {
	if player == noPlayer {
		return EmptyMarker
	}
	return PlayerMarkers[player]
}
