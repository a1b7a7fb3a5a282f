package experiments

import (
	"context"
	"time"

	"gobang/config"
	"gobang/experiments/metrics"

	"github.com/rs/zerolog/log"
)

var throughputThreads = []int{1, 2, 4, 8, 16}

type Throughput struct {
	Config            metrics.AgentConfig
	Searches          int
	Episodes          int
	Duration          time.Duration
	EpisodesPerSecond float64
}

// RunThroughputExperiment lets every config play against itself, for the
// same playing strength and similar game length, and reports how many
// episodes per second each one searches.
func RunThroughputExperiment(ctx context.Context, cfg *config.Config) ([]Throughput, error) {
	configs := []metrics.AgentConfig{}
	matchUps := [][]metrics.AgentConfig{}
	for i, threads := range throughputThreads {
		ac := metrics.AgentConfig{ID: i + 1, Threads: threads, Iterations: cfg.Iterations}
		configs = append(configs, ac)

		matchUp := make([]metrics.AgentConfig, cfg.Players)
		for p := range matchUp {
			matchUp[p] = ac
		}
		matchUps = append(matchUps, matchUp)
	}

	gameRecords, moveRecords, err := runExperiment(ctx, cfg, "throughput", configs, matchUps)
	if err != nil {
		return nil, err
	}

	results := summarize(configs, gameRecords, moveRecords)
	for _, r := range results {
		log.Info().
			Int("threads", r.Config.Threads).
			Int("searches", r.Searches).
			Int("episodes", r.Episodes).
			Dur("duration", r.Duration).
			Float64("episodes_per_sec", r.EpisodesPerSecond).
			Msg("throughput")
	}
	return results, nil
}

// summarize adds up the searches of every config. Single-move short
// circuits run no search and are left out.
func summarize(configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) []Throughput {
	seats := make(map[string][]int, len(gameRecords))
	for _, gr := range gameRecords {
		seats[gr.ID] = gr.Seats
	}
	byID := make(map[int]*Throughput, len(configs))
	results := make([]Throughput, len(configs))
	for i, c := range configs {
		results[i].Config = c
		byID[c.ID] = &results[i]
	}

	for _, mr := range moveRecords {
		if mr.IsShortCircuit {
			continue
		}
		r, ok := byID[seats[mr.Game][mr.Player]]
		if !ok {
			continue
		}
		r.Searches++
		r.Episodes += mr.Episodes
		r.Duration += mr.Duration
	}

	for i := range results {
		if results[i].Duration > 0 {
			results[i].EpisodesPerSecond = float64(results[i].Episodes) / results[i].Duration.Seconds()
		}
	}
	return results
}
