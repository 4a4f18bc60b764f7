package searcher

import (
	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// backprop folds payoff into the statistics of start and of every ancestor
// reachable through parent edges that currently pass the best-child test.
//
// Because the graph merges transpositions, a vertex can have several parents;
// every parent for which the vertex is currently a best child receives the
// same increment, so backprop cost is not bounded by rollout depth. Parents
// are materialized per vertex before any increment, since incrementing
// changes best-child status. A per-pass visited set plus the worker's
// backprop edge marks keep shared ancestors from being credited twice.
func (s *Searcher[S, A]) backprop(start graph.Vertex[S, A], payoff game.Payoff, worker int) {
	visited := make(map[graph.VertexID]struct{})
	var marked []graph.Edge[S, A]
	stack := []graph.Vertex[S, A]{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[v.ID()]; seen {
			continue
		}
		visited[v.ID()] = struct{}{}

		var included []graph.Edge[S, A]
		for _, pe := range v.Parents() {
			if pe.MarkBackprop(worker) {
				continue
			}
			marked = append(marked, pe)
			player := s.rules.ActivePlayer(pe.Source().State())
			if isBestChild(pe, player, s.exploreBias) {
				included = append(included, pe)
			}
		}

		v.Stats().Increment(payoff)
		for _, pe := range included {
			pe.Stats().Increment(payoff)
			stack = append(stack, pe.Source())
		}
	}
	// Marks only dedup within this pass; release them so the next pass
	// sees every parent again.
	for _, pe := range marked {
		pe.ClearBackprop(worker)
	}
}

// backpropProven pushes a freshly proven outcome at v upward: a vertex all of
// whose children have proven payoffs is itself proven with the per-player
// maximum over its children, short-circuiting future sampling of its subtree.
// A vertex whose children all close cycles is marked cyclic instead.
func (s *Searcher[S, A]) backpropProven(v graph.Vertex[S, A]) {
	visited := map[graph.VertexID]struct{}{v.ID(): {}}
	stack := parentSources(v)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[p.ID()]; seen {
			continue
		}
		visited[p.ID()] = struct{}{}
		if s.proveFromChildren(p) {
			stack = append(stack, parentSources(p)...)
		}
	}
}

func parentSources[S comparable, A comparable](v graph.Vertex[S, A]) []graph.Vertex[S, A] {
	parents := v.Parents()
	out := make([]graph.Vertex[S, A], len(parents))
	for i, pe := range parents {
		out[i] = pe.Source()
	}
	return out
}

// proveFromChildren establishes p's proven payoff (or cyclic mark) from its
// children, reporting whether a new proven payoff was set.
func (s *Searcher[S, A]) proveFromChildren(p graph.Vertex[S, A]) bool {
	if _, done := p.Proven(); done {
		return false
	}
	allCyclic := true
	proven := game.Payoff{Weight: 1}
	contributed := false
	for _, ce := range p.Children() {
		t := ce.Target()
		if t.Kind == graph.TargetUnexpanded {
			return false
		}
		tv, _ := ce.TargetVertex()
		if t.Kind == graph.TargetCycle || tv.Cyclic() {
			continue
		}
		allCyclic = false
		kp, ok := tv.Proven()
		if !ok {
			return false
		}
		for player := range proven.Scores {
			if kp.Scores[player] > proven.Scores[player] {
				proven.Scores[player] = kp.Scores[player]
			}
		}
		contributed = true
	}
	if allCyclic {
		p.MarkCyclic()
		return false
	}
	if !contributed {
		return false
	}
	p.SetProven(proven)
	return true
}
