package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"gobang/experiments/metrics"
	"gobang/game"
)

type humanAgent struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHumanAgent reads moves as "x y z" lines from in and writes the board
// and prompts to out.
func NewHumanAgent(in io.Reader, out io.Writer) Agent {
	return &humanAgent{in: bufio.NewScanner(in), out: out}
}

func (h *humanAgent) FindMove(ctx context.Context, state *game.GameState, updates []*game.GameState) (game.Move, metrics.SearchMetric, error) {
	fmt.Fprint(h.out, state)
	marker := game.PlayerMarkers[state.PlayerToMove()]
	for {
		if err := ctx.Err(); err != nil {
			return game.NoMove, metrics.SearchMetric{}, err
		}

		fmt.Fprintf(h.out, "%c, enter your move (x y z): ", marker)
		if !h.in.Scan() {
			err := h.in.Err()
			if err == nil {
				err = io.EOF
			}
			return game.NoMove, metrics.SearchMetric{}, fmt.Errorf("failed to read move: %w", err)
		}

		move, err := game.ParseMove(h.in.Text())
		if err != nil {
			fmt.Fprintln(h.out, "Invalid format. Use three numbers, e.g. 0 1 2.")
			continue
		}
		if err := state.Validate(move); err != nil {
			fmt.Fprintln(h.out, err)
			continue
		}
		return move, metrics.SearchMetric{}, nil
	}
}
