package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/j8kin/fantasy-empires-wars/internal/ai"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

// result is one finished simulation.
type result struct {
	Seed    int64             `json:"seed"`
	Turns   int               `json:"turns"`
	Message string            `json:"message"`
	Empires map[string]empire `json:"empires"`
}

type empire struct {
	Seat  string `json:"seat"`
	Class string `json:"class"`
	Lands int    `json:"lands"`
	Vault int    `json:"vault"`
	Alive bool   `json:"alive"`
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		numGames   int
		computers  int
		maxTurns   int
		seed       int64
		rows, cols int
		difficulty string
		jsonOut    bool
		verbose    bool
	)

	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&computers, "computers", 3, "Computer empires per game")
	flag.IntVar(&maxTurns, "max-turns", 200, "Turn cap before the game is called")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = time-based)")
	flag.IntVar(&rows, "rows", 0, "Map rows (0 = default)")
	flag.IntVar(&cols, "cols", 0, "Map cols (0 = default)")
	flag.StringVar(&difficulty, "difficulty", "greedy", "Strategy for every empire (greedy, idle)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.BoolVar(&verbose, "v", false, "Log every turn")

	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if computers < 1 {
		computers = 1
	}
	if rows <= 0 {
		rows = engine.DefaultRows
	}
	if cols <= 0 {
		cols = engine.DefaultCols
	}

	strategy := ai.StrategyFor(difficulty)
	results := make([]result, 0, numGames)

	for i := 0; i < numGames; i++ {
		gameSeed := seed + int64(i)
		r := runGame(gameSeed, computers, maxTurns, rows, cols, strategy, verbose)
		results = append(results, r)
		log.Info().Int("game", i+1).Int64("seed", r.Seed).Int("turns", r.Turns).
			Str("outcome", r.Message).Msg("Game completed")
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(results)
		return
	}
	printSummary(results, maxTurns)
}

// runGame plays one seeded game to the end. The lead empire is a human
// seat driven by the same strategy as the computers so the engine's
// victory check stays meaningful.
func runGame(seed int64, computers, maxTurns, rows, cols int, strategy ai.Strategy, verbose bool) result {
	cfg := engine.GameConfig{Rows: rows, Cols: cols}
	cfg.Players = append(cfg.Players, engine.PlayerSetup{
		Profile: engine.NewProfile("Verdant Realm", engine.Warlord),
		Type:    engine.HumanPlayer,
	})
	rivalClasses := []engine.HeroClass{
		engine.Necromancer, engine.Pyromancer, engine.Cleric,
		engine.Druid, engine.Ranger, engine.Enchanter,
	}
	for i := 0; i < computers; i++ {
		cfg.Players = append(cfg.Players, engine.PlayerSetup{
			Profile: engine.NewProfile(fmt.Sprintf("Rival Empire %d", i+1), rivalClasses[i%len(rivalClasses)]),
			Type:    engine.ComputerPlayer,
		})
	}

	rng := engine.NewRand(seed)
	gs := engine.NewGame(cfg, rng)
	sched := engine.NewVirtualScheduler()

	message := ""
	cb := engine.Callbacks{
		OnGameOver: func(msg string) { message = msg },
		OnComputerMainTurn: func(gs *engine.GameState) {
			strategy.PlayMainTurn(gs, gs.TurnOwner, rng)
		},
	}
	if verbose {
		cb.OnTurnPhaseChange = func(gs *engine.GameState, phase engine.TurnPhase) {
			log.Debug().Int("turn", gs.Turn).Str("owner", gs.TurnOwner).
				Str("phase", string(phase)).Msg("Phase")
		}
	}

	tm := engine.NewTurnManager(gs, rng, sched, cb)
	tm.Start()

	// The virtual clock drains until the human seat owns MAIN; the
	// strategy plays it and ends the turn, then the clock drains again.
	for !tm.IsOver() && gs.Turn <= maxTurns {
		sched.RunAll()
		if tm.IsOver() || gs.Turn > maxTurns {
			break
		}
		if !tm.CanEndTurn() {
			break
		}
		strategy.PlayMainTurn(gs, gs.TurnOwner, rng)
		if err := tm.EndCurrentTurn(); err != nil {
			log.Error().Err(err).Msg("Failed to end human turn")
			break
		}
	}
	if message == "" {
		message = fmt.Sprintf("Stalemate after %d turns.", maxTurns)
		tm.Teardown()
	}

	r := result{Seed: seed, Turns: gs.Turn, Message: message, Empires: map[string]empire{}}
	for _, p := range gs.Players {
		r.Empires[p.Profile.Name] = empire{
			Seat:  p.ID,
			Class: string(p.Profile.Class),
			Lands: len(p.LandsOwned),
			Vault: p.Vault,
			Alive: gs.IsAlive(p.ID),
		}
	}
	return r
}

func printSummary(results []result, maxTurns int) {
	fmt.Printf("\nResults (%d games, turn cap %d):\n", len(results), maxTurns)
	for i, r := range results {
		fmt.Printf("\nGame %d (seed %d, %d turns): %s\n", i+1, r.Seed, r.Turns, r.Message)

		names := make([]string, 0, len(r.Empires))
		for name := range r.Empires {
			names = append(names, name)
		}
		sort.Slice(names, func(a, b int) bool {
			return r.Empires[names[a]].Seat < r.Empires[names[b]].Seat
		})
		for _, name := range names {
			e := r.Empires[name]
			status := "fallen"
			if e.Alive {
				status = "standing"
			}
			fmt.Printf("  %-20s (%s, %-11s)  %2d lands, %5d gold  -- %s\n",
				name, e.Seat, e.Class, e.Lands, e.Vault, status)
		}
	}
}
