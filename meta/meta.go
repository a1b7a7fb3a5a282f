// meta/meta.go
package meta

import "gobang/game"

// THREADS defines the number of search goroutines (and retained trees) per agent.
const THREADS = 8

// ITERATIONS defines the number of episodes per goroutine per move.
const ITERATIONS = 10000

// PLAYERS defines the number of players in a game.
const PLAYERS = 3

// BOARD_SIZE defines the board length along every axis.
const BOARD_SIZE = game.DEFAULT_SIZE

// JOIN defines how many stones in a row win.
const JOIN = game.DEFAULT_JOIN

// HUMAN defines the player index typing its moves, -1 for none.
const HUMAN = -1

// MAX_TURNS defines the number of moves after which a game is stopped.
const MAX_TURNS = 300

// GAMES defines the number of games per experiment matchup.
const GAMES = 30

// OUTPUT_DIR defines where experiment records are written.
const OUTPUT_DIR = "experiments"

// ADDR defines where the agent server listens.
const ADDR = ":8080"
