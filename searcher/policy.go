package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// UCBResult is the outcome of scoring one child edge. Select means the UCB1
// policy picks the edge outright because it has never been visited; otherwise
// Value holds the UCB1 score.
type UCBResult struct {
	Select bool
	Value  float64
}

// ucbValue computes score/visits + bias*sqrt(ln(parentVisits)/visits).
func ucbValue(logParentVisits float64, visits, score uint32, bias float64) float64 {
	n := float64(visits)
	return float64(score)/n + bias*math.Sqrt(logParentVisits/n)
}

func logVisits(visits uint32) float64 {
	if visits == 0 {
		// First visit to a fresh vertex.
		return 0
	}
	return math.Log(float64(visits))
}

// childUCB scores a single edge against its parent's visit count.
func childUCB[S comparable, A comparable](e graph.Edge[S, A], player game.Player, logParentVisits, bias float64) UCBResult {
	stats := e.Stats().Snapshot()
	if stats.Weight == 0 {
		return UCBResult{Select: true}
	}
	return UCBResult{Value: ucbValue(logParentVisits, stats.Weight, stats.Score(player), bias)}
}

// bestChild picks the outgoing edge of v that the UCB1 policy follows for
// player. A child with zero visits is taken immediately; exact ties among
// scored children are broken by reservoir sampling so each of k tied edges is
// kept with probability 1/k.
func bestChild[S comparable, A comparable](v graph.Vertex[S, A], player game.Player, bias float64, rng *rand.Rand) (graph.Edge[S, A], error) {
	children := v.Children()
	if len(children) == 0 {
		panic("bestChild: vertex has no children")
	}
	logParent := logVisits(v.Stats().Visits())

	var best graph.Edge[S, A]
	bestValue := math.Inf(-1)
	ties := 0
	for _, e := range children {
		r := childUCB(e, player, logParent, bias)
		if r.Select {
			return e, nil
		}
		switch {
		case math.IsNaN(r.Value):
			// Guards callers that bypass WithExploreBias's range check.
			return best, &SelectorError{Err: errInvalidComparison}
		case r.Value > bestValue:
			best = e
			bestValue = r.Value
			ties = 1
		case r.Value == bestValue:
			ties++
			if rng.Intn(ties) == 0 {
				best = e
			}
		}
	}
	return best, nil
}

// isBestChild reports whether e currently ties or exceeds the maximum UCB
// score among its siblings, i.e. whether a rollout for player arriving at
// e's source could have descended through e. Backprop uses this to decide
// which parents share in a payoff without re-running a full selection.
func isBestChild[S comparable, A comparable](e graph.Edge[S, A], player game.Player, bias float64) bool {
	stats := e.Stats().Snapshot()
	if stats.Weight == 0 {
		// Visited but not yet credited: a zero-visit edge is a best
		// child by definition.
		return true
	}
	parent := e.Source()
	siblings := parent.Children()
	if len(siblings) == 1 {
		return true
	}
	logParent := logVisits(parent.Stats().Visits())

	edgeValue := ucbValue(logParent, stats.Weight, stats.Score(player), bias)
	for _, sibling := range siblings {
		if sibling.ID() == e.ID() {
			continue
		}
		r := childUCB(sibling, player, logParent, bias)
		if r.Select {
			// An unvisited sibling dominates every scored edge.
			return false
		}
		if r.Value > edgeValue {
			return false
		}
	}
	return true
}
