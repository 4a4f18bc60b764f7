package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dstu/thud-sub000/experiments"
	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/game/tictactoe"
	"github.com/dstu/thud-sub000/graph"
	"github.com/dstu/thud-sub000/searcher"
)

func main() {
	mode := flag.String("mode", "demo", "demo | throughput | strength | config")
	configPath := flag.String("config", "", "experiment config file for -mode config")
	workers := flag.Int("workers", 8, "number of search workers for the demo")
	iterations := flag.Int("iterations", 2000, "search passes per move for the demo")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	switch *mode {
	case "demo":
		runDemo(*workers, *iterations)
	case "throughput":
		experiments.RunThroughputExperiment()
	case "strength":
		experiments.RunStrengthExperiment()
	case "config":
		cfg, err := experiments.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load experiment config")
		}
		experiments.RunConfigured(cfg)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

// runDemo plays one game of tic-tac-toe against itself, printing the chosen
// move and the root statistics at each step.
func runDemo(workers, iterations int) {
	out := termenv.NewOutput(os.Stdout)
	rules := tictactoe.Rules{}
	s := searcher.New[tictactoe.Board, int](rules,
		searcher.WithWorkers[tictactoe.Board, int](workers),
		searcher.WithIterations[tictactoe.Board, int](iterations),
		searcher.WithSeed[tictactoe.Board, int](uint64(time.Now().UnixNano())),
	)
	g := graph.New[tictactoe.Board, int]()

	state := tictactoe.Board{}
	s.Initialize(g, state)
	for {
		if payoff, over := rules.Payoff(state); over {
			printOutcome(out, payoff)
			return
		}
		player := rules.ActivePlayer(state)
		stats, err := s.RunRound(g, state)
		if err != nil {
			log.Fatal().Err(err).Msg("search round failed")
		}
		action := bestAction(stats)
		printRound(out, player, action, stats)

		state, err = s.CommitAction(g, state, action)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to commit action")
		}
		fmt.Fprintln(out, state)
		fmt.Fprintln(out)
	}
}

func bestAction(stats []searcher.ActionStats[int]) int {
	best := stats[0]
	for _, st := range stats[1:] {
		if st.Payoff.Weight > best.Payoff.Weight {
			best = st
		}
	}
	return best.Action
}

func printRound(out *termenv.Output, player game.Player, action int, stats []searcher.ActionStats[int]) {
	title := out.String(fmt.Sprintf("%s plays square %d", player, action)).Bold()
	fmt.Fprintln(out, title)
	for _, st := range stats {
		line := fmt.Sprintf("  square %d  %s", st.Action, st.Payoff)
		if st.Action == action {
			fmt.Fprintln(out, out.String(line).Foreground(out.Color("10")))
		} else {
			fmt.Fprintln(out, line)
		}
	}
}

func printOutcome(out *termenv.Output, payoff game.Payoff) {
	one := payoff.Score(game.PlayerOne)
	two := payoff.Score(game.PlayerTwo)
	var verdict string
	switch {
	case one > two:
		verdict = "Player1 (X) wins"
	case two > one:
		verdict = "Player2 (O) wins"
	default:
		verdict = "Draw"
	}
	fmt.Fprintln(out, out.String(verdict).Bold().Foreground(out.Color("11")))
}
