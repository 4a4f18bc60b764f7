// Package experiments runs self-play benchmarks of the searcher and writes
// their results to CSV for offline analysis.
package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dstu/thud-sub000/engine"
	"github.com/dstu/thud-sub000/experiments/metrics"
	"github.com/dstu/thud-sub000/game/tictactoe"
	"github.com/dstu/thud-sub000/searcher"
)

const (
	NumGames   = 30 // Per matchup
	TimeBudget = 10 * time.Millisecond
)

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Workers: 1, Duration: TimeBudget},
	{ID: 2, Workers: 2, Duration: TimeBudget},
	{ID: 3, Workers: 4, Duration: TimeBudget},
	{ID: 4, Workers: 8, Duration: TimeBudget},
	{ID: 5, Workers: 16, Duration: TimeBudget},
	{ID: 6, Workers: 32, Duration: TimeBudget},
	{ID: 7, Workers: 64, Duration: TimeBudget},
}

// RunThroughputExperiment measures search passes per time budget as the
// worker count grows. Each matchup uses the same config for both players for
// the same playing strength and similar game length.
func RunThroughputExperiment() {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{config, config})
	}

	runExperiment("parallelization_to_throughput", parallelConfigs, matchUps)
}

// RunStrengthExperiment pits each parallel config against a sequential
// baseline with the same time budget.
func RunStrengthExperiment() {
	baseline := metrics.AgentConfig{ID: 0, Workers: 1, Duration: TimeBudget}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}

	runExperiment("parallelization_to_strength", append(parallelConfigs, baseline), matchUps)
}

func runExperiment(name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		config1 := matchup[0]
		config2 := matchup[1]

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < NumGames; i++ {
			winner, gameMetric, moveMetrics := runGame(config1, config2)
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: %s", mi+1, len(matchUps), i+1, NumGames, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	storeResults(name, configs, gameRecords, moveRecords)
}

func storeResults(name string, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) {
	writer, err := metrics.NewWriter(name)
	if err != nil {
		panic(fmt.Sprintf("failed to create experiment writer: %v", err))
	}
	log.Info().Str("run_id", writer.RunID.String()).Msg("storing experiment results")

	err = writer.WriteAgentConfigs(configs)
	if err != nil {
		panic(fmt.Sprintf("failed to store agent configs: %v", err))
	}

	err = writer.WriteGameRecords(gameRecords)
	if err != nil {
		panic(fmt.Sprintf("failed to write game records: %v", err))
	}

	err = writer.WriteMoveRecords(moveRecords)
	if err != nil {
		panic(fmt.Sprintf("failed to write move records: %v", err))
	}
	log.Info().Msg("stored experiment results")
}

// runGame executes a single game between two agents and returns the winner.
func runGame(config1, config2 metrics.AgentConfig) (string, metrics.GameMetric, []metrics.MoveMetric) {
	rules := tictactoe.Rules{}
	e := engine.LocalEngine[tictactoe.Board, int](rules, tictactoe.Board{},
		engine.NewAgent(newSearcher(rules, config1)),
		engine.NewAgent(newSearcher(rules, config2)))

	return e.Run()
}

func newSearcher(rules tictactoe.Rules, config metrics.AgentConfig) *searcher.Searcher[tictactoe.Board, int] {
	return searcher.New[tictactoe.Board, int](rules,
		searcher.WithSettings[tictactoe.Board, int](config.Settings()),
		searcher.WithMetrics[tictactoe.Board, int]())
}
