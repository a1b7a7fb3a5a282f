package searcher

import "math"

// Hyperparameters for MCTS

const C_SQUARED = 4.0 // Exploration constant

type uct struct {
	numerator float64
	players   int
}

func newUCT(cSquared float64, N float64, players int) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: cSquared * math.Log(N), players: players}
}

// evaluate scores a child from the perspective of the player who moved into
// it. The second term rewards keeping the strongest opponent down.
func (u uct) evaluate(wins []float64, n float64, mover int) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + (1 - max_other/n)/P + sqrt(c^2*ln(N)/n)
	return wins[mover]/n + (1.0-maxOther(wins, mover)/n)/float64(u.players) + math.Sqrt(u.numerator/n)
}

// expectedSuccess scores a merged root candidate for the player to move,
// assuming a uniform Beta(1, 1) prior on every win rate.
func expectedSuccess(wins []float64, visits float64, toMove int) float64 {
	success := (wins[toMove] + 1) / (visits + 2)
	fairness := (1.0 - (maxOther(wins, toMove)+1)/(visits+2)) / float64(len(wins))
	return success + fairness
}

func maxOther(wins []float64, me int) float64 {
	highest := 0.0
	for i, w := range wins {
		if i != me && w > highest {
			highest = w
		}
	}
	return highest
}
