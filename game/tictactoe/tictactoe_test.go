package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstu/thud-sub000/game"
)

func TestActivePlayer(t *testing.T) {
	rules := Rules{}

	t.Run("X moves first", func(t *testing.T) {
		require.Equal(t, game.PlayerOne, rules.ActivePlayer(Board{}))
	})

	t.Run("turn alternates with each mark", func(t *testing.T) {
		b := rules.Apply(Board{}, 4)
		require.Equal(t, game.PlayerTwo, rules.ActivePlayer(b))

		b = rules.Apply(b, 0)
		require.Equal(t, game.PlayerOne, rules.ActivePlayer(b))
	})
}

func TestApply(t *testing.T) {
	rules := Rules{}

	t.Run("places the active player's mark", func(t *testing.T) {
		b := rules.Apply(Board{}, 4)
		require.Equal(t, X, b[4])

		b = rules.Apply(b, 0)
		require.Equal(t, O, b[0])
	})

	t.Run("value semantics leave the original alone", func(t *testing.T) {
		original := Board{}
		rules.Apply(original, 4)
		require.Equal(t, Empty, original[4])
	})
}

func TestForEachAction(t *testing.T) {
	rules := Rules{}

	t.Run("enumerates every empty square", func(t *testing.T) {
		b := Board{X, O, Empty, Empty, X, Empty, Empty, Empty, O}

		var got []int
		rules.ForEachAction(b, func(a int) bool {
			got = append(got, a)
			return true
		})

		require.Equal(t, []int{2, 3, 5, 6, 7}, got)
	})

	t.Run("stops early on request", func(t *testing.T) {
		count := 0
		rules.ForEachAction(Board{}, func(int) bool {
			count++
			return count < 3
		})

		require.Equal(t, 3, count)
	})
}

func TestPayoff(t *testing.T) {
	rules := Rules{}

	t.Run("in-progress game has no payoff", func(t *testing.T) {
		_, over := rules.Payoff(Board{X, O})
		require.False(t, over)
	})

	t.Run("row win for X", func(t *testing.T) {
		b := Board{
			X, X, X,
			O, O, Empty,
			Empty, Empty, Empty,
		}

		payoff, over := rules.Payoff(b)

		require.True(t, over)
		require.Equal(t, game.Payoff{Weight: 1, Scores: [2]uint32{2, 0}}, payoff)
	})

	t.Run("column win for O", func(t *testing.T) {
		b := Board{
			O, X, X,
			O, X, Empty,
			O, Empty, Empty,
		}

		payoff, over := rules.Payoff(b)

		require.True(t, over)
		require.Equal(t, game.Payoff{Weight: 1, Scores: [2]uint32{0, 2}}, payoff)
	})

	t.Run("diagonal win", func(t *testing.T) {
		b := Board{
			X, O, O,
			Empty, X, Empty,
			Empty, Empty, X,
		}

		_, over := rules.Payoff(b)
		require.True(t, over)
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		b := Board{
			X, O, X,
			X, O, O,
			O, X, X,
		}

		payoff, over := rules.Payoff(b)

		require.True(t, over)
		require.Equal(t, game.Payoff{Weight: 1, Scores: [2]uint32{1, 1}}, payoff)
	})
}

func TestBoardString(t *testing.T) {
	b := Board{
		X, O, Empty,
		Empty, X, Empty,
		Empty, Empty, O,
	}

	require.Equal(t, "XO.\n.X.\n..O", b.String())
}
