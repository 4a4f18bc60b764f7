package searcher

import (
	"golang.org/x/exp/rand"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// rolloutResult is the end point of one descent: either a vertex with a known
// payoff (terminal), or an unexpanded edge to hand to the expansion phase.
type rolloutResult[S comparable, A comparable] struct {
	terminal bool
	vertex   graph.Vertex[S, A] // terminal vertex, when terminal
	payoff   game.Payoff        // its payoff, when terminal
	edge     graph.Edge[S, A]   // unexpanded edge, otherwise
	path     []graph.Edge[S, A] // every edge crossed, in order
}

// rollout descends from root following the UCB1 policy until it reaches a
// vertex with a known payoff or an unexpanded edge. Each crossed edge is
// marked with the worker's rollout bit; finding that bit already set means
// this pass crossed the same edge twice, so the pass is abandoned with a
// CycleError carrying the partial path. The graph is not damaged by an
// abandoned pass; statistics already written along the path stand.
func (s *Searcher[S, A]) rollout(root graph.Vertex[S, A], worker int, rng *rand.Rand) (rolloutResult[S, A], error) {
	res := rolloutResult[S, A]{}
	v := root
	for {
		state := v.State()
		if payoff, over := s.rules.Payoff(state); over {
			res.terminal = true
			res.vertex = v
			res.payoff = payoff
			return res, nil
		}
		if payoff, ok := v.Proven(); ok && v.ID() != root.ID() {
			// Every line from here has a proven outcome; no need to
			// sample the subtree again. The root is exempt so its
			// child edges keep accumulating the statistics callers
			// read after each round.
			res.terminal = true
			res.vertex = v
			res.payoff = payoff
			return res, nil
		}
		if v.ChildCount() == 0 {
			if hasAction(s.rules, state) {
				// Another worker resolved the edge into this vertex
				// but has not appended its children yet. Discard the
				// pass and let the expander finish.
				return res, errPendingExpansion
			}
			// Non-terminal states always have actions, so a vertex
			// with neither actions nor a payoff is a defect in the
			// Rules implementation.
			return res, ErrNoTerminalPayoff
		}

		e, err := bestChild(v, s.rules.ActivePlayer(state), s.exploreBias, rng)
		if err != nil {
			return res, err
		}
		if e.MarkRollout(worker) {
			path := append(res.path, e)
			ids := make([]graph.EdgeID, len(path))
			for i, pe := range path {
				ids[i] = pe.ID()
			}
			res.path = path
			return res, &CycleError{Path: ids}
		}
		res.path = append(res.path, e)

		t := e.Target()
		if t.Kind == graph.TargetUnexpanded {
			res.edge = e
			return res, nil
		}
		// Cycle targets are descended like any other edge; a pass
		// that loops trips the rollout mark above.
		v, _ = e.TargetVertex()
	}
}

// hasAction reports whether state has at least one legal action.
func hasAction[S comparable, A comparable](rules game.Rules[S, A], state S) bool {
	found := false
	rules.ForEachAction(state, func(A) bool {
		found = true
		return false
	})
	return found
}
