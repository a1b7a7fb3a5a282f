package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"gobang/agent"
	"gobang/communication"
	"gobang/communication/client"
	"gobang/communication/server"
	"gobang/config"
	"gobang/engine"
	"gobang/experiments"
	"gobang/game"
	"gobang/meta"
	"gobang/searcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file, flags take precedence")
	mode := flag.String("mode", "play", "One of play, serve, parallelization, throughput")
	addr := flag.String("addr", meta.ADDR, "Agent server listen address")
	players := flag.Int("players", meta.PLAYERS, "Number of players")
	size := flag.Int("size", meta.BOARD_SIZE, "Board length along every axis")
	join := flag.Int("join", meta.JOIN, "Stones in a row needed to win")
	iterations := flag.Int("iterations", meta.ITERATIONS, "Episodes per goroutine per move")
	threads := flag.Int("threads", meta.THREADS, "Search goroutines per agent")
	human := flag.Int("human", meta.HUMAN, "Player index entering moves on stdin, -1 for none")
	verbose := flag.Bool("verbose", false, "Log the candidate moves of every search")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "players":
			cfg.Players = *players
		case "size":
			cfg.Board = config.Board{X: *size, Y: *size, Z: *size}
		case "join":
			cfg.Join = *join
		case "iterations":
			cfg.Iterations = *iterations
		case "threads":
			cfg.Threads = *threads
		case "human":
			cfg.Human = *human
		case "verbose":
			cfg.Verbose = *verbose
		case "addr":
			cfg.Addr = *addr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "play":
		err = play(ctx, cfg)
	case "serve":
		err = serve(ctx, cfg)
	case "parallelization":
		err = experiments.RunParallelizationExperiment(ctx, cfg)
	case "throughput":
		_, err = experiments.RunThroughputExperiment(ctx, cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

// play runs one game of search agents, with at most one human among them.
func play(ctx context.Context, cfg *config.Config) error {
	agents := make([]agent.Agent, cfg.Players)
	for p := range agents {
		if p == cfg.Human {
			agents[p] = agent.NewHumanAgent(os.Stdin, os.Stdout)
			continue
		}
		if url, ok := cfg.Remotes[p]; ok {
			remote, err := client.Dial(ctx, url, communication.NewGame{
				Players: cfg.Players, X: cfg.Board.X, Y: cfg.Board.Y, Z: cfg.Board.Z, Join: cfg.Join,
			})
			if err != nil {
				return fmt.Errorf("player %d: %w", p, err)
			}
			defer remote.Close()
			agents[p] = remote
			continue
		}
		session := searcher.NewSession[game.Move, *game.GameState](cfg.Threads, searcher.WithMetrics())
		agents[p] = agent.NewMCTSAgent(session, cfg.ComputeOptions(p))
	}

	e := engine.NewLocalEngine(cfg.NewState(), agents)
	e.MaxTurns = cfg.MaxTurns
	winner, _, _, err := e.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(e.State)
	if winner >= 0 {
		fmt.Printf("Player %c wins!\n", game.PlayerMarkers[winner])
	} else {
		fmt.Println("Nobody won!")
	}
	return nil
}

// serve exposes a search agent until ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.NewAgentServer(cfg.Threads, cfg.ComputeOptions(0)),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Addr).Int("threads", cfg.Threads).Msg("serving agent")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
