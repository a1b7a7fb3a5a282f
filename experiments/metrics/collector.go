package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Threads        int
	MaxIterations  int
	Duration       time.Duration
	Episodes       int
	ForcedWins     int // Depth-0 prunes
	LockedReplies  int // Depth-1 locked children
	ReusedTrees    int // Slots whose tree survived promotion
	IsShortCircuit bool
}

type MoveMetric struct {
	Step   int
	Player int // Player index
	Move   string
	SearchMetric
}

type GameMetric struct {
	ID             string
	Players        int
	StartingPlayer int // Player index
	Winner         int // Player index, -1 on a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(threads, maxIterations int)
	AddReusedTrees(n int)
	AddEpisodes(n int)
	AddForcedWins(n int)
	AddLockedReplies(n int)
	SetShortCircuit()
	Complete() SearchMetric
}

type collector struct {
	threads        int
	maxIterations  int
	startTime      time.Time
	episodes       atomic.Int64
	forcedWins     atomic.Int64
	lockedReplies  atomic.Int64
	reusedTrees    atomic.Int32
	isShortCircuit atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(threads, maxIterations int) {
	m.startTime = time.Now()
	m.threads = threads
	m.maxIterations = maxIterations
	m.episodes.Store(0)
	m.forcedWins.Store(0)
	m.lockedReplies.Store(0)
	m.reusedTrees.Store(0)
	m.isShortCircuit.Store(false)
}

func (m *collector) AddReusedTrees(n int) {
	m.reusedTrees.Add(int32(n))
}

func (m *collector) AddEpisodes(n int) {
	m.episodes.Add(int64(n))
}

func (m *collector) AddForcedWins(n int) {
	m.forcedWins.Add(int64(n))
}

func (m *collector) AddLockedReplies(n int) {
	m.lockedReplies.Add(int64(n))
}

func (m *collector) SetShortCircuit() {
	m.isShortCircuit.Store(true)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Threads:        m.threads,
		MaxIterations:  m.maxIterations,
		Duration:       time.Since(m.startTime),
		Episodes:       int(m.episodes.Load()),
		ForcedWins:     int(m.forcedWins.Load()),
		LockedReplies:  int(m.lockedReplies.Load()),
		ReusedTrees:    int(m.reusedTrees.Load()),
		IsShortCircuit: m.isShortCircuit.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(threads, maxIterations int) {}
func (m *dummyCollector) AddReusedTrees(n int)              {}
func (m *dummyCollector) AddEpisodes(n int)                 {}
func (m *dummyCollector) AddForcedWins(n int)               {}
func (m *dummyCollector) AddLockedReplies(n int)            {}
func (m *dummyCollector) SetShortCircuit()                  {}
func (m *dummyCollector) Complete() SearchMetric            { return SearchMetric{} }
