package config

import (
	"os"
	"path/filepath"
	"testing"

	"gobang/meta"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate(), "Defaults should be valid")
	require.Equal(t, meta.PLAYERS, cfg.Players)
	require.Equal(t, Board{X: 6, Y: 6, Z: 6}, cfg.Board)
	require.Equal(t, 5, cfg.Join)
	require.Equal(t, -1, cfg.Human)
}

func TestLoad(t *testing.T) {
	t.Run("loading the example config", func(t *testing.T) {
		cfg, err := Load(filepath.Join("..", "config.example.yaml"))

		require.NoError(t, err)
		require.Equal(t, 3, cfg.Players)
		require.Equal(t, 20000, cfg.ComputeOptions(0).MaxIterations)
		require.True(t, cfg.ComputeOptions(1).Verbose)
		require.Equal(t, meta.ITERATIONS, cfg.ComputeOptions(2).MaxIterations)
		require.Equal(t, map[int]string{2: "ws://localhost:8080"}, cfg.Remotes)
	})

	t.Run("overriding defaults", func(t *testing.T) {
		path := writeConfig(t, `
players: 2
board: {x: 7, y: 7, z: 1}
join: 4
human: 1
remotes:
  0: ws://localhost:9000/
agents:
  - iterations: 500
    verbose: true
experiment:
  games: 4
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 2, cfg.Players)
		require.Equal(t, Board{X: 7, Y: 7, Z: 1}, cfg.Board)
		require.Equal(t, 4, cfg.Join)
		require.Equal(t, 1, cfg.Human)
		require.Equal(t, map[int]string{0: "ws://localhost:9000/"}, cfg.Remotes)
		require.Equal(t, meta.ADDR, cfg.Addr)
		require.Equal(t, meta.THREADS, cfg.Threads, "Missing fields should keep their defaults")
		require.Equal(t, 4, cfg.Experiment.Games)
		require.Equal(t, meta.OUTPUT_DIR, cfg.Experiment.Output)

		first := cfg.ComputeOptions(0)
		require.Equal(t, 500, first.MaxIterations)
		require.True(t, first.Verbose)
		second := cfg.ComputeOptions(1)
		require.Equal(t, meta.ITERATIONS, second.MaxIterations, "Player without override should use the shared options")
		require.False(t, second.Verbose)

		state := cfg.NewState()
		require.Equal(t, 2, state.NumPlayers())
		require.Len(t, state.LegalMoves(), 49)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "players: [oops"))

		require.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "players: 10\njoin: 0\n"))

		require.ErrorContains(t, err, "players must be between 2 and 9")
		require.ErrorContains(t, err, "join must be positive")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		msg    string
	}{
		{"one player", func(c *Config) { c.Players = 1 }, "players"},
		{"flat board", func(c *Config) { c.Board.Z = 0 }, "board dimensions"},
		{"board wider than a move", func(c *Config) { c.Board.X = 40000 }, "at most 32767"},
		{"board too large", func(c *Config) { c.Board = Board{X: 5000, Y: 5000, Z: 5000} }, "cells"},
		{"no threads", func(c *Config) { c.Threads = 0 }, "threads"},
		{"no iterations", func(c *Config) { c.Iterations = 0 }, "iterations"},
		{"human out of range", func(c *Config) { c.Human = c.Players }, "human"},
		{"no turns", func(c *Config) { c.MaxTurns = 0 }, "max_turns"},
		{"too many agents", func(c *Config) { c.Agents = make([]Agent, c.Players+1) }, "agents"},
		{"negative agent iterations", func(c *Config) { c.Agents = []Agent{{Iterations: -1}} }, "agent 0"},
		{"remote out of range", func(c *Config) { c.Remotes = map[int]string{c.Players: "ws://a"} }, "remote player"},
		{"remote human", func(c *Config) { c.Human = 0; c.Remotes = map[int]string{0: "ws://a"} }, "both human and remote"},
		{"remote without url", func(c *Config) { c.Remotes = map[int]string{1: ""} }, "no url"},
		{"no games", func(c *Config) { c.Experiment.Games = 0 }, "games"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			require.ErrorContains(t, cfg.Validate(), tt.msg)
		})
	}
}
