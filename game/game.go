// Package game defines the contract between the search engine and a concrete
// game implementation. The engine never inspects game state except through
// the Rules interface.
package game

// Player identifies one of the two players of a game.
type Player uint8

const (
	PlayerOne Player = iota
	PlayerTwo
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (p Player) String() string {
	if p == PlayerOne {
		return "Player1"
	}
	return "Player2"
}

// Rules binds a concrete game's state and action types to the engine.
//
// S must be usable as a map key: two states compare equal exactly when they
// represent the same decision point, so that transposing move sequences are
// merged. Value semantics on S stand in for cloning.
type Rules[S comparable, A comparable] interface {
	// ActivePlayer reports whose turn it is in state.
	ActivePlayer(state S) Player

	// ForEachAction calls fn once per legal action in state. Enumeration
	// stops early when fn returns false.
	ForEachAction(state S, fn func(action A) bool)

	// Apply returns the state reached by taking action in state.
	Apply(state S, action A) S

	// Payoff reports the terminal outcome of state. The second result is
	// false for non-terminal states.
	Payoff(state S) (Payoff, bool)
}
