package graph

import "github.com/dstu/thud-sub000/game"

// Vertex is a navigation handle: a (graph, id) pair. Handles stay cheap to
// copy and never alias graph internals. A handle is invalidated by Prune.
type Vertex[S comparable, A comparable] struct {
	g  *Graph[S, A]
	id VertexID
}

// ID returns the vertex's arena id.
func (v Vertex[S, A]) ID() VertexID { return v.id }

// State returns the game state this vertex stands for.
func (v Vertex[S, A]) State() S {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return v.g.vertexAt(v.id).state
}

// Stats returns the vertex's statistics accumulator.
func (v Vertex[S, A]) Stats() *Statistics {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return &v.g.vertexAt(v.id).stats
}

// Expanded reports whether the vertex's children have been enumerated.
func (v Vertex[S, A]) Expanded() bool {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return v.g.vertexAt(v.id).expanded.Load()
}

// MarkExpanded flags the vertex as expanded and reports whether it already
// was. The transition happens exactly once; the caller that observes false
// owns child enumeration.
func (v Vertex[S, A]) MarkExpanded() bool {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return v.g.vertexAt(v.id).expanded.Swap(true)
}

// Children returns handles for the vertex's outgoing edges. The slice is a
// snapshot; edges appended afterwards are not included.
func (v Vertex[S, A]) Children() []Edge[S, A] {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	ids := v.g.vertexAt(v.id).children
	out := make([]Edge[S, A], len(ids))
	for i, id := range ids {
		out[i] = Edge[S, A]{g: v.g, id: id}
	}
	return out
}

// Parents returns handles for the vertex's incoming edges.
func (v Vertex[S, A]) Parents() []Edge[S, A] {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	ids := v.g.vertexAt(v.id).parents
	out := make([]Edge[S, A], len(ids))
	for i, id := range ids {
		out[i] = Edge[S, A]{g: v.g, id: id}
	}
	return out
}

// ChildCount returns the number of outgoing edges.
func (v Vertex[S, A]) ChildCount() int {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return len(v.g.vertexAt(v.id).children)
}

// Proven returns the vertex's proven payoff, if one has been established.
func (v Vertex[S, A]) Proven() (game.Payoff, bool) {
	v.g.mu.RLock()
	p := v.g.vertexAt(v.id).proven.Load()
	v.g.mu.RUnlock()
	if p == nil {
		return game.Payoff{}, false
	}
	return *p, true
}

// SetProven records the vertex's proven payoff. Later stores overwrite
// earlier ones; callers converge on the same value for a given game.
func (v Vertex[S, A]) SetProven(p game.Payoff) {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	v.g.vertexAt(v.id).proven.Store(&p)
}

// Cyclic reports whether every line of play from this vertex has been shown
// to loop.
func (v Vertex[S, A]) Cyclic() bool {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	return v.g.vertexAt(v.id).cyclic.Load()
}

// MarkCyclic flags the vertex as proven cyclic.
func (v Vertex[S, A]) MarkCyclic() {
	v.g.mu.RLock()
	defer v.g.mu.RUnlock()
	v.g.vertexAt(v.id).cyclic.Store(true)
}

// Edge is a navigation handle for one (source vertex, action) pair.
type Edge[S comparable, A comparable] struct {
	g  *Graph[S, A]
	id EdgeID
}

// ID returns the edge's arena id.
func (e Edge[S, A]) ID() EdgeID { return e.id }

// Action returns the action the edge stands for.
func (e Edge[S, A]) Action() A {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return e.g.edgeAt(e.id).action
}

// Source returns the vertex the edge leaves from.
func (e Edge[S, A]) Source() Vertex[S, A] {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return Vertex[S, A]{g: e.g, id: e.g.edgeAt(e.id).source}
}

// Target returns the edge's current endpoint.
func (e Edge[S, A]) Target() Target {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return unpackTarget(e.g.edgeAt(e.id).target.Load())
}

// TargetVertex returns the vertex the edge leads to, for resolved edges.
func (e Edge[S, A]) TargetVertex() (Vertex[S, A], bool) {
	t := e.Target()
	if t.Kind == TargetUnexpanded {
		return Vertex[S, A]{}, false
	}
	return Vertex[S, A]{g: e.g, id: t.Vertex}, true
}

// Stats returns the edge's statistics accumulator.
func (e Edge[S, A]) Stats() *Statistics {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return &e.g.edgeAt(e.id).stats
}

// MarkRollout marks the edge as crossed by worker during descent and reports
// whether it was already so marked, which signals an in-pass cycle.
func (e Edge[S, A]) MarkRollout(worker int) bool {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return e.g.edgeAt(e.id).marks.markRollout(worker)
}

// MarkBackprop marks the edge as crossed by worker during backprop and
// reports whether it was already so marked in this pass.
func (e Edge[S, A]) MarkBackprop(worker int) bool {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	return e.g.edgeAt(e.id).marks.markBackprop(worker)
}

// ClearRollout releases worker's rollout mark on the edge.
func (e Edge[S, A]) ClearRollout(worker int) {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	e.g.edgeAt(e.id).marks.clearRollout(worker)
}

// ClearBackprop releases worker's backprop mark on the edge.
func (e Edge[S, A]) ClearBackprop(worker int) {
	e.g.mu.RLock()
	defer e.g.mu.RUnlock()
	e.g.edgeAt(e.id).marks.clearBackprop(worker)
}
