// Package tictactoe implements the game.Rules interface for 3x3
// tic-tac-toe. The state space is small and full of transpositions, which
// makes it a convenient end-to-end exercise for the search graph.
package tictactoe

import (
	"strings"

	"github.com/dstu/thud-sub000/game"
)

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	X          // placed by game.PlayerOne
	O          // placed by game.PlayerTwo
)

// Board is a tic-tac-toe position, row-major. Board is comparable, so
// identical positions reached through different move orders share a vertex.
type Board [9]Cell

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Rules plays standard tic-tac-toe. X moves first.
type Rules struct{}

var _ game.Rules[Board, int] = Rules{}

// ActivePlayer derives the player to move from the mark counts.
func (Rules) ActivePlayer(b Board) game.Player {
	marks := 0
	for _, c := range b {
		if c != Empty {
			marks++
		}
	}
	if marks%2 == 0 {
		return game.PlayerOne
	}
	return game.PlayerTwo
}

// ForEachAction calls f with the index of each empty square until f returns
// false.
func (Rules) ForEachAction(b Board, f func(int) bool) {
	for i, c := range b {
		if c == Empty {
			if !f(i) {
				return
			}
		}
	}
}

// Apply places the active player's mark at square action.
func (r Rules) Apply(b Board, action int) Board {
	mark := X
	if r.ActivePlayer(b) == game.PlayerTwo {
		mark = O
	}
	b[action] = mark
	return b
}

// Payoff scores a finished position: 2 for the winner, 0 for the loser, 1
// each for a draw. The second return is false while the game is still in
// progress.
func (Rules) Payoff(b Board) (game.Payoff, bool) {
	for _, line := range lines {
		c := b[line[0]]
		if c != Empty && c == b[line[1]] && c == b[line[2]] {
			if c == X {
				return game.Payoff{Weight: 1, Scores: [2]uint32{2, 0}}, true
			}
			return game.Payoff{Weight: 1, Scores: [2]uint32{0, 2}}, true
		}
	}
	for _, c := range b {
		if c == Empty {
			return game.Payoff{}, false
		}
	}
	return game.Payoff{Weight: 1, Scores: [2]uint32{1, 1}}, true
}

// String renders the board for logs and demos.
func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		switch c {
		case X:
			sb.WriteByte('X')
		case O:
			sb.WriteByte('O')
		default:
			sb.WriteByte('.')
		}
		if i%3 == 2 && i != 8 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
