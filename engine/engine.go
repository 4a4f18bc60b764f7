package engine

import "github.com/dstu/thud-sub000/experiments/metrics"

// MaxMoves bounds a game so a buggy ruleset cannot loop forever.
const MaxMoves = 10000

// Engine runs one game to completion.
type Engine interface {
	// Run plays until the game ends or MaxMoves is reached.
	Run() (winner string, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
