package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dstu/thud-sub000/experiments/metrics"
	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
	"github.com/dstu/thud-sub000/searcher"
)

// Agent is one side of a self-play game. Each agent owns its own search
// graph, so learned statistics carry over between its moves and the graph is
// pruned down to the committed root after each one.
type Agent[S comparable, A comparable] struct {
	Searcher *searcher.Searcher[S, A]
	Graph    *graph.Graph[S, A]
}

// NewAgent wraps a searcher with a fresh graph.
func NewAgent[S comparable, A comparable](s *searcher.Searcher[S, A]) *Agent[S, A] {
	return &Agent[S, A]{
		Searcher: s,
		Graph:    graph.New[S, A](),
	}
}

// Local plays both sides of a game on this process, one agent per player.
type Local[S comparable, A comparable] struct {
	rules  game.Rules[S, A]
	state  S
	agents [2]*Agent[S, A]
}

// LocalEngine builds a self-play engine over the initial state.
func LocalEngine[S comparable, A comparable](rules game.Rules[S, A], initial S, agent1, agent2 *Agent[S, A]) *Local[S, A] {
	return &Local[S, A]{
		rules:  rules,
		state:  initial,
		agents: [2]*Agent[S, A]{agent1, agent2},
	}
}

// Run plays the game loop until a terminal state or MaxMoves.
func (e *Local[S, A]) Run() (string, metrics.GameMetric, []metrics.MoveMetric) {
	start := time.Now()
	moveMetrics := []metrics.MoveMetric{}

	step := 1
	for ; step <= MaxMoves; step++ {
		if _, over := e.rules.Payoff(e.state); over {
			break
		}
		player := e.rules.ActivePlayer(e.state)
		a := e.agents[int(player)]

		a.Searcher.Initialize(a.Graph, e.state)
		stats, err := a.Searcher.RunRound(a.Graph, e.state)
		if err != nil {
			panic(fmt.Sprintf("search round failed at step %d: %v", step, err))
		}
		action := pickAction(stats, player)
		round := a.Searcher.RoundMetrics()
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:        step,
			Player:      int(player) + 1,
			RoundMetric: round,
		})

		// Both agents advance their graphs so each keeps reusing its own
		// accumulated statistics for the states that remain reachable.
		next := e.state
		for _, agent := range e.agents {
			agent.Searcher.Initialize(agent.Graph, e.state)
			next, err = agent.Searcher.CommitAction(agent.Graph, e.state, action)
			if err != nil {
				panic(fmt.Sprintf("commit failed at step %d: %v", step, err))
			}
		}
		e.state = next

		log.Debug().
			Int("step", step).
			Int("player", int(player)+1).
			Int64("passes", round.Passes).
			Msg("move committed")
	}

	winner := e.winner()
	end := time.Now()
	return winner, metrics.GameMetric{
		Winner:     winner,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		TotalMoves: step - 1,
	}, moveMetrics
}

func (e *Local[S, A]) winner() string {
	payoff, over := e.rules.Payoff(e.state)
	if !over {
		return ""
	}
	one := payoff.Score(game.PlayerOne)
	two := payoff.Score(game.PlayerTwo)
	switch {
	case one > two:
		return "Player1"
	case two > one:
		return "Player2"
	default:
		return "Draw"
	}
}

// pickAction commits to the most visited root action, breaking visit ties by
// the higher mean score for the player to move.
func pickAction[A comparable](stats []searcher.ActionStats[A], player game.Player) A {
	if len(stats) == 0 {
		panic("no root actions to pick from")
	}
	best := stats[0]
	bestMean := mean(best.Payoff, player)
	for _, st := range stats[1:] {
		m := mean(st.Payoff, player)
		if st.Payoff.Weight > best.Payoff.Weight ||
			(st.Payoff.Weight == best.Payoff.Weight && m > bestMean) {
			best = st
			bestMean = m
		}
	}
	return best.Action
}

func mean(p game.Payoff, player game.Player) float64 {
	if p.Weight == 0 {
		return 0
	}
	return float64(p.Score(player)) / float64(p.Weight)
}
