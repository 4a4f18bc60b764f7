package graph

import "sync/atomic"

// MaxWorkers is the number of concurrent workers a graph supports, bounded by
// the width of the per-edge traversal bitmasks.
const MaxWorkers = 64

// traversal tracks which workers have crossed an edge during the rollout and
// backprop phases. Each worker owns one bit in each mask; the two lanes are
// mutually exclusive per worker, so marking one lane clears the other.
type traversal struct {
	rollout  atomic.Uint64
	backprop atomic.Uint64
}

func workerBit(worker int) uint64 {
	if worker < 0 || worker >= MaxWorkers {
		panic("worker id out of range")
	}
	return uint64(1) << uint(worker)
}

// markRollout sets worker's rollout bit and clears its backprop bit. It
// reports whether the rollout bit was already set: true means the worker has
// crossed this edge earlier in the same pass, i.e. the pass closed a cycle.
func (t *traversal) markRollout(worker int) bool {
	bit := workerBit(worker)
	t.backprop.And(^bit)
	return t.rollout.Or(bit)&bit != 0
}

// markBackprop sets worker's backprop bit and clears its rollout bit. It
// reports whether the backprop bit was already set in this pass.
func (t *traversal) markBackprop(worker int) bool {
	bit := workerBit(worker)
	t.rollout.And(^bit)
	return t.backprop.Or(bit)&bit != 0
}

// clearRollout drops worker's rollout bit, releasing the edge for the
// worker's next pass.
func (t *traversal) clearRollout(worker int) {
	t.rollout.And(^workerBit(worker))
}

// clearBackprop drops worker's backprop bit.
func (t *traversal) clearBackprop(worker int) {
	t.backprop.And(^workerBit(worker))
}
