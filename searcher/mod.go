package searcher

import (
	"errors"

	"golang.org/x/exp/rand"
)

// Move is an opaque, copyable game move with value equality and a total
// order. The order breaks ties between equally scored moves.
type Move[M any] interface {
	comparable
	Compare(other M) int
}

// State is a finite, deterministic, alternating-turn game position. Play and
// PlayRandom mutate the receiver; the searcher only ever mutates clones.
type State[M any, S any] interface {
	Clone() S
	Play(move M)
	PlayRandom(r *rand.Rand)
	// HasMoves reports whether a legal move remains, taking a decided game
	// into account.
	HasMoves() bool
	LegalMoves() []M
	// HasWinner reports a decisive (non-drawn) outcome.
	HasWinner() bool
	// Result returns the player's outcome in [0, 1]. A draw is worth
	// 1/NumPlayers to everyone, and the results of all players sum to 1.
	Result(player int) float64
	PlayerMoved() int
	LastMove() M
	NumPlayers() int
}

// ComputeOptions are fixed for the duration of one ComputeMove call.
type ComputeOptions struct {
	// MaxIterations bounds the iterations per worker. Negative is unbounded.
	MaxIterations int
	Verbose       bool
}

const DefaultMaxIterations = 10000

func DefaultComputeOptions() ComputeOptions {
	return ComputeOptions{MaxIterations: DefaultMaxIterations}
}

var (
	ErrWorkerFailed = errors.New("search worker failed")
	ErrNoCandidates = errors.New("no candidate moves were searched")
)
