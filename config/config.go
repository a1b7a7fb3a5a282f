package config

import (
	"errors"
	"fmt"
	"os"

	"gobang/game"
	"gobang/meta"
	"gobang/searcher"

	"gopkg.in/yaml.v3"
)

type Board struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Agent overrides the search options of one player.
type Agent struct {
	Iterations int  `yaml:"iterations"`
	Verbose    bool `yaml:"verbose"`
}

type Experiment struct {
	Games  int    `yaml:"games"` // Per matchup
	Output string `yaml:"output"`
}

type Config struct {
	Players    int            `yaml:"players"`
	Board      Board          `yaml:"board"`
	Join       int            `yaml:"join"`
	Threads    int            `yaml:"threads"`
	Iterations int            `yaml:"iterations"`
	Verbose    bool           `yaml:"verbose"`
	Human      int            `yaml:"human"` // Player index, -1 for none
	MaxTurns   int            `yaml:"max_turns"`
	Agents     []Agent        `yaml:"agents"`  // Per player index
	Remotes    map[int]string `yaml:"remotes"` // Agent server URL per player index
	Addr       string         `yaml:"addr"`    // Agent server listen address
	Experiment Experiment     `yaml:"experiment"`
}

func Default() *Config {
	return &Config{
		Players:    meta.PLAYERS,
		Board:      Board{X: meta.BOARD_SIZE, Y: meta.BOARD_SIZE, Z: meta.BOARD_SIZE},
		Join:       meta.JOIN,
		Threads:    meta.THREADS,
		Iterations: meta.ITERATIONS,
		Human:      meta.HUMAN,
		MaxTurns:   meta.MAX_TURNS,
		Addr:       meta.ADDR,
		Experiment: Experiment{Games: meta.GAMES, Output: meta.OUTPUT_DIR},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Players < 2 || c.Players > game.MAX_PLAYERS {
		errs = append(errs, fmt.Errorf("players must be between 2 and %d, got %d", game.MAX_PLAYERS, c.Players))
	}
	if err := game.ValidateSize(c.Board.X, c.Board.Y, c.Board.Z); err != nil {
		errs = append(errs, err)
	}
	if c.Join < 1 {
		errs = append(errs, fmt.Errorf("join must be positive, got %d", c.Join))
	}
	if c.Threads < 1 {
		errs = append(errs, fmt.Errorf("threads must be positive, got %d", c.Threads))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.Human < -1 || c.Human >= c.Players {
		errs = append(errs, fmt.Errorf("human must be -1 or a player index below %d, got %d", c.Players, c.Human))
	}
	if c.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns))
	}
	if len(c.Agents) > c.Players {
		errs = append(errs, fmt.Errorf("got %d agents for %d players", len(c.Agents), c.Players))
	}
	for i, a := range c.Agents {
		if a.Iterations < 0 {
			errs = append(errs, fmt.Errorf("agent %d: iterations must not be negative, got %d", i, a.Iterations))
		}
	}
	for p, url := range c.Remotes {
		if p < 0 || p >= c.Players {
			errs = append(errs, fmt.Errorf("remote player %d is not a player index below %d", p, c.Players))
		}
		if p == c.Human {
			errs = append(errs, fmt.Errorf("player %d cannot be both human and remote", p))
		}
		if url == "" {
			errs = append(errs, fmt.Errorf("remote player %d has no url", p))
		}
	}
	if c.Experiment.Games < 1 {
		errs = append(errs, fmt.Errorf("experiment games must be positive, got %d", c.Experiment.Games))
	}
	return errors.Join(errs...)
}

// NewState returns the empty board the config describes.
func (c *Config) NewState() *game.GameState {
	return game.NewGameState(c.Players, c.Board.X, c.Board.Y, c.Board.Z, &game.Rules{Join: c.Join})
}

// ComputeOptions returns the search options of player, falling back to the
// shared ones where the player has no override.
func (c *Config) ComputeOptions(player int) searcher.ComputeOptions {
	options := searcher.ComputeOptions{MaxIterations: c.Iterations, Verbose: c.Verbose}
	if player < len(c.Agents) {
		if a := c.Agents[player]; a.Iterations > 0 {
			options.MaxIterations = a.Iterations
		}
		options.Verbose = options.Verbose || c.Agents[player].Verbose
	}
	return options
}
