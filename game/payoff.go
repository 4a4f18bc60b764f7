package game

import "fmt"

// Payoff is an accumulable game outcome: a per-player score along with the
// number of observed outcomes folded into it. The zero value is an empty
// payoff.
type Payoff struct {
	// Weight counts the outcomes summed into Scores.
	Weight uint32
	// Scores holds the accumulated score per player.
	Scores [2]uint32
}

// Add returns the sum of two payoffs.
func (p Payoff) Add(q Payoff) Payoff {
	return Payoff{
		Weight: p.Weight + q.Weight,
		Scores: [2]uint32{p.Scores[0] + q.Scores[0], p.Scores[1] + q.Scores[1]},
	}
}

// Score returns the accumulated score for player.
func (p Payoff) Score(player Player) uint32 {
	return p.Scores[player]
}

func (p Payoff) String() string {
	return fmt.Sprintf("[%d, %d]@%d", p.Scores[0], p.Scores[1], p.Weight)
}
