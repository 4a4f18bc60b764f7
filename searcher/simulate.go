package searcher

import (
	"golang.org/x/exp/rand"

	"github.com/dstu/thud-sub000/game"
)

// Simulator estimates the payoff of a non-terminal state by playing it out.
// Implementations must not touch the search graph.
type Simulator[S comparable, A comparable] interface {
	Simulate(state S, rng *rand.Rand) (game.Payoff, error)
}

// randomSimulator plays uniformly random actions until a terminal payoff.
type randomSimulator[S comparable, A comparable] struct {
	rules game.Rules[S, A]
}

func (r randomSimulator[S, A]) Simulate(state S, rng *rand.Rand) (game.Payoff, error) {
	for {
		if payoff, over := r.rules.Payoff(state); over {
			return payoff, nil
		}
		// Single-pass uniform choice over the action stream: the k-th
		// action seen replaces the reservoir with probability 1/k.
		var choice A
		count := 0
		r.rules.ForEachAction(state, func(action A) bool {
			count++
			if count == 1 || rng.Intn(count) == 0 {
				choice = action
			}
			return true
		})
		if count == 0 {
			return game.Payoff{}, ErrNoTerminalPayoff
		}
		state = r.rules.Apply(state, choice)
	}
}

// simulatePayoff runs the configured number of independent playouts from
// state and sums their payoffs.
func (s *Searcher[S, A]) simulatePayoff(state S, rng *rand.Rand) (game.Payoff, error) {
	total := game.Payoff{}
	for i := 0; i < s.simulationCount; i++ {
		payoff, err := s.simulator.Simulate(state, rng)
		if err != nil {
			return total, err
		}
		total = total.Add(payoff)
	}
	s.metrics.AddPlayouts(s.simulationCount)
	return total, nil
}
