// Package metrics defines the record types written out by experiment runs
// and the CSV writer that persists them.
package metrics

import (
	"time"

	"github.com/dstu/thud-sub000/searcher"
)

// AgentConfig is one search configuration under test.
type AgentConfig struct {
	ID              int
	Workers         int
	Duration        time.Duration
	Iterations      int
	SimulationCount int
	ExploreBias     float64
}

// Settings converts the config into searcher settings.
func (c AgentConfig) Settings() searcher.Settings {
	return searcher.Settings{
		SimulationCount: c.SimulationCount,
		ExploreBias:     c.ExploreBias,
		IterationCount:  c.Iterations,
		Workers:         c.Workers,
		Duration:        c.Duration,
	}
}

// GameMetric summarizes one finished game.
type GameMetric struct {
	Winner     string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

// MoveMetric summarizes the search round behind one committed move.
type MoveMetric struct {
	Step   int
	Player int
	searcher.RoundMetric
}

// GameRecord joins a game outcome with the configs that produced it.
type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

// MoveRecord joins a move's search metrics with its game.
type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}
