package searcher

import (
	"errors"
	"fmt"

	"github.com/dstu/thud-sub000/graph"
)

// ErrNoRootState reports that the round's root state has no vertex in the
// graph. The caller must Initialize first.
var ErrNoRootState = errors.New("root state not found in search graph")

// ErrNoTerminalPayoff reports a state with no legal actions and no payoff.
// It signals an inconsistent Rules implementation and aborts the round.
var ErrNoTerminalPayoff = errors.New("terminal game state has no payoff")

var errInvalidComparison = errors.New("invalid floating-point comparison")

// errPendingExpansion reports a descent that reached a vertex another worker
// has resolved but not yet populated with children. The pass is discarded;
// the expander finishes on its own.
var errPendingExpansion = errors.New("vertex expansion in progress")

// CycleError reports that a rollout pass crossed the same edge twice. The
// pass is discarded; statistics already written along the path stand.
type CycleError struct {
	Path []graph.EdgeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle encountered during rollout (path length %d)", len(e.Path))
}

// SelectorError wraps a failure inside the selection policy, such as a UCB
// score that compares as NaN. The round aborts but the graph stays valid.
type SelectorError struct {
	Err error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("selection policy: %v", e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }
