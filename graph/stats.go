package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/dstu/thud-sub000/game"
)

// Field widths of the packed statistics word: visits in the upper 20 bits,
// one 22-bit score per player below it.
const (
	visitsShift = 44
	oneShift    = 22

	visitsMask   uint64 = 0xFFFFF00000000000
	oneScoreMask uint64 = 0x00000FFFFFC00000
	twoScoreMask uint64 = 0x00000000003FFFFF

	// MaxVisits is the saturation point of the visit counter.
	MaxVisits uint32 = uint32(visitsMask >> visitsShift)
	// MaxScore is the saturation point of each per-player score.
	MaxScore uint32 = uint32(twoScoreMask)
)

func packStats(visits, scoreOne, scoreTwo uint32) uint64 {
	return (uint64(visits) << visitsShift) |
		((uint64(scoreOne) << oneShift) & oneScoreMask) |
		(uint64(scoreTwo) & twoScoreMask)
}

func unpackStats(packed uint64) (visits, scoreOne, scoreTwo uint32) {
	return uint32(packed >> visitsShift),
		uint32((packed & oneScoreMask) >> oneShift),
		uint32(packed & twoScoreMask)
}

// Statistics accumulates payoffs observed through a vertex or edge. All three
// fields live in one atomic word so the hot path never allocates or blocks.
// Saturated fields stick at their maximum.
type Statistics struct {
	packed atomic.Uint64
}

// Visits returns the number of outcomes folded in so far.
func (s *Statistics) Visits() uint32 {
	v, _, _ := unpackStats(s.packed.Load())
	return v
}

// Score returns the accumulated score for player.
func (s *Statistics) Score(player game.Player) uint32 {
	_, one, two := unpackStats(s.packed.Load())
	if player == game.PlayerOne {
		return one
	}
	return two
}

// Snapshot returns a consistent copy of the accumulated payoff.
func (s *Statistics) Snapshot() game.Payoff {
	v, one, two := unpackStats(s.packed.Load())
	return game.Payoff{Weight: v, Scores: [2]uint32{one, two}}
}

// Increment folds payoff into the statistics. The payoff's weight is added to
// the visit count. A CAS loop keeps all fields consistent under concurrent
// increments.
func (s *Statistics) Increment(payoff game.Payoff) {
	for {
		old := s.packed.Load()
		visits, one, two := unpackStats(old)
		visits = saturate(visits, payoff.Weight, MaxVisits)
		one = saturate(one, payoff.Scores[0], MaxScore)
		two = saturate(two, payoff.Scores[1], MaxScore)
		if s.packed.CompareAndSwap(old, packStats(visits, one, two)) {
			return
		}
	}
}

func saturate(old, add, max uint32) uint32 {
	if add > max-old {
		return max
	}
	return old + add
}

func (s *Statistics) String() string {
	v, one, two := unpackStats(s.packed.Load())
	return fmt.Sprintf("Statistics(visits: %d, one: %d, two: %d)", v, one, two)
}
