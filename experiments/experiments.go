package experiments

import (
	"context"
	"fmt"

	"gobang/agent"
	"gobang/config"
	"gobang/engine"
	"gobang/experiments/metrics"
	"gobang/game"
	"gobang/searcher"

	"github.com/rs/zerolog/log"
)

var parallelThreads = []int{2, 4, 8, 16}

// RunParallelizationExperiment pairs agents searching with more and more
// threads against the sequential baseline, all with the same iterations per
// thread.
func RunParallelizationExperiment(ctx context.Context, cfg *config.Config) error {
	baseline := metrics.AgentConfig{ID: 0, Threads: 1, Iterations: cfg.Iterations}
	configs := []metrics.AgentConfig{baseline}
	matchUps := [][]metrics.AgentConfig{}
	for i, threads := range parallelThreads {
		ac := metrics.AgentConfig{ID: i + 1, Threads: threads, Iterations: cfg.Iterations}
		configs = append(configs, ac)

		// Baseline takes every other seat
		matchUp := make([]metrics.AgentConfig, cfg.Players)
		for p := range matchUp {
			if p%2 == 0 {
				matchUp[p] = baseline
			} else {
				matchUp[p] = ac
			}
		}
		matchUps = append(matchUps, matchUp)
	}

	_, _, err := runExperiment(ctx, cfg, "parallelization", configs, matchUps)
	return err
}

// runExperiment plays cfg.Experiment.Games games per matchup, rotating the
// seats every game, and stores every record.
func runExperiment(ctx context.Context, cfg *config.Config, name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) ([]metrics.GameRecord, []metrics.MoveRecord, error) {
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	numGames := cfg.Experiment.Games

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between %+v...", mi+1, len(matchUps), matchUp)

		for i := 0; i < numGames; i++ {
			seats := make([]metrics.AgentConfig, len(matchUp))
			for p := range seats {
				seats[p] = matchUp[(p+i)%len(matchUp)]
			}

			winner, gameMetric, moveMetrics, err := runGame(ctx, cfg, seats)
			if err != nil {
				return nil, nil, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			record := metrics.GameRecord{GameMetric: gameMetric}
			for _, seat := range seats {
				record.Seats = append(record.Seats, seat.ID)
			}
			gameRecords = append(gameRecords, record)
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       gameMetric.ID,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: %d", mi+1, len(matchUps), i+1, numGames, winner)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	if err := store(cfg.Experiment.Output, name, configs, gameRecords, moveRecords); err != nil {
		return nil, nil, err
	}
	return gameRecords, moveRecords, nil
}

func store(output, name string, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(output, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to store game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to store move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return nil
}

// runGame plays a single game with one search agent per seat.
func runGame(ctx context.Context, cfg *config.Config, seats []metrics.AgentConfig) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := make([]agent.Agent, len(seats))
	for i, seat := range seats {
		agents[i] = createMCTS(seat)
	}

	e := engine.NewLocalEngine(cfg.NewState(), agents)
	e.MaxTurns = cfg.MaxTurns
	return e.Run(ctx)
}

func createMCTS(ac metrics.AgentConfig) agent.Agent {
	session := searcher.NewSession[game.Move, *game.GameState](ac.Threads, searcher.WithMetrics())
	options := searcher.DefaultComputeOptions()
	if ac.Iterations > 0 {
		options.MaxIterations = ac.Iterations
	}
	return agent.NewMCTSAgent(session, options)
}
