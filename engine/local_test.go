package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/game/tictactoe"
	"github.com/dstu/thud-sub000/searcher"
)

func newTestAgent(seed uint64) *Agent[tictactoe.Board, int] {
	return NewAgent(searcher.New[tictactoe.Board, int](tictactoe.Rules{},
		searcher.WithIterations[tictactoe.Board, int](50),
		searcher.WithSeed[tictactoe.Board, int](seed),
		searcher.WithMetrics[tictactoe.Board, int]()))
}

func TestLocalEngine(t *testing.T) {
	t.Run("plays a game to completion", func(t *testing.T) {
		e := LocalEngine[tictactoe.Board, int](tictactoe.Rules{}, tictactoe.Board{},
			newTestAgent(1), newTestAgent(2))

		winner, gameMetric, moveMetrics := e.Run()

		require.Contains(t, []string{"Player1", "Player2", "Draw"}, winner,
			"Tic-tac-toe always ends in a win or a draw")
		require.GreaterOrEqual(t, gameMetric.TotalMoves, 5,
			"No tic-tac-toe game finishes in fewer than five moves")
		require.LessOrEqual(t, gameMetric.TotalMoves, 9)
		require.Len(t, moveMetrics, gameMetric.TotalMoves,
			"Every committed move should have a metric")
		require.Equal(t, winner, gameMetric.Winner)
	})

	t.Run("records alternating players and positive pass counts", func(t *testing.T) {
		e := LocalEngine[tictactoe.Board, int](tictactoe.Rules{}, tictactoe.Board{},
			newTestAgent(3), newTestAgent(4))

		_, _, moveMetrics := e.Run()

		for i, mm := range moveMetrics {
			require.Equal(t, i+1, mm.Step)
			require.Equal(t, i%2+1, mm.Player, "Players should alternate starting with Player1")
			require.Positive(t, mm.Passes, "Each move should run search passes")
		}
	})
}

func TestPickAction(t *testing.T) {
	t.Run("prefers the most visited action", func(t *testing.T) {
		stats := []searcher.ActionStats[int]{
			{Action: 0, Payoff: game.Payoff{Weight: 5, Scores: [2]uint32{5, 0}}},
			{Action: 1, Payoff: game.Payoff{Weight: 9, Scores: [2]uint32{3, 0}}},
		}

		require.Equal(t, 1, pickAction(stats, game.PlayerOne),
			"Visit count outranks mean score when committing")
	})

	t.Run("breaks visit ties by mean score for the mover", func(t *testing.T) {
		stats := []searcher.ActionStats[int]{
			{Action: 0, Payoff: game.Payoff{Weight: 5, Scores: [2]uint32{2, 3}}},
			{Action: 1, Payoff: game.Payoff{Weight: 5, Scores: [2]uint32{4, 1}}},
		}

		require.Equal(t, 1, pickAction(stats, game.PlayerOne))
		require.Equal(t, 0, pickAction(stats, game.PlayerTwo))
	})

	t.Run("no actions is a defect", func(t *testing.T) {
		require.Panics(t, func() {
			pickAction([]searcher.ActionStats[int]{}, game.PlayerOne)
		})
	})
}
