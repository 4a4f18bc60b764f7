package searcher

import (
	"golang.org/x/exp/rand"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// expansion describes what resolving an unexpanded edge produced and where
// backprop should start.
type expansion[S comparable, A comparable] struct {
	start  graph.Vertex[S, A] // vertex whose statistics backprop credits first
	payoff game.Payoff
	proven bool // start's payoff is a terminal outcome
}

// expandEdge computes the state behind an unexpanded edge and resolves it.
//
// A fresh vertex gets its children enumerated exactly once (next states are
// deduplicated, so one edge per distinct child state) and, unless terminal,
// its payoff estimated by simulation. Resolving onto an existing vertex (a
// transposition or a cycle) runs no simulation: the edge's statistics are
// seeded from the sum of the target's children as a stand-in estimate, and
// backprop continues from the edge's source.
func (s *Searcher[S, A]) expandEdge(g *graph.Graph[S, A], e graph.Edge[S, A], worker int, rng *rand.Rand) (expansion[S, A], error) {
	src := e.Source()
	next := s.rules.Apply(src.State(), e.Action())
	target, created := g.ResolveEdge(e, next)
	v := graph.Vertex[S, A]{}
	if tv, ok := e.TargetVertex(); ok {
		v = tv
	}

	if created {
		s.metrics.AddExpansion()
		if payoff, over := s.rules.Payoff(next); over {
			v.MarkExpanded()
			v.SetProven(payoff)
			return expansion[S, A]{start: v, payoff: payoff, proven: true}, nil
		}
		if !v.MarkExpanded() {
			s.appendChildren(g, v, next)
		}
		payoff, err := s.simulatePayoff(next, rng)
		if err != nil {
			return expansion[S, A]{}, err
		}
		return expansion[S, A]{start: v, payoff: payoff}, nil
	}

	// Transposition or cycle hit.
	s.metrics.AddTranspositionHit()
	estimate := game.Payoff{}
	if target.Kind != graph.TargetUnexpanded {
		for _, child := range v.Children() {
			estimate = estimate.Add(child.Stats().Snapshot())
		}
	}
	if estimate.Weight == 0 {
		if payoff, over := s.rules.Payoff(next); over {
			estimate = payoff
		}
	}
	e.Stats().Increment(estimate)
	e.MarkBackprop(worker)
	return expansion[S, A]{start: src, payoff: estimate}, nil
}

// appendChildren enumerates the legal actions of state, deduplicates the
// states they lead to, and appends one unexpanded edge per distinct outcome.
func (s *Searcher[S, A]) appendChildren(g *graph.Graph[S, A], v graph.Vertex[S, A], state S) {
	seen := make(map[S]struct{})
	s.rules.ForEachAction(state, func(action A) bool {
		child := s.rules.Apply(state, action)
		if _, dup := seen[child]; !dup {
			seen[child] = struct{}{}
			g.AppendChild(v, action)
		}
		return true
	})
}
