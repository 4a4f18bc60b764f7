// Package graph implements the search graph for Monte Carlo tree search over
// a deduplicated, directed, possibly cyclic state space.
//
// Vertices and edges live in arenas addressed by small integer ids; a
// transposition table maps each distinct game state to at most one vertex, so
// move sequences that transpose into the same state share statistics.
// Navigation handles are (graph, id) pairs rather than live references.
//
// Structural mutation (AppendChild, ResolveEdge, Prune) is serialized by one
// coarse lock. Navigation and reads may run concurrently; statistics and
// traversal marks are atomics and never block.
package graph

import (
	"sync"
	"sync/atomic"

	"github.com/dstu/thud-sub000/game"
)

// VertexID addresses a vertex in its graph's arena.
type VertexID int32

// EdgeID addresses an edge in its graph's arena.
type EdgeID int32

// TargetKind discriminates the down-stream end of an edge.
type TargetKind uint8

const (
	// TargetUnexpanded marks an edge whose outcome state has not been
	// computed yet.
	TargetUnexpanded TargetKind = iota
	// TargetExpanded points at the vertex the edge leads to.
	TargetExpanded
	// TargetCycle points at a vertex from which the edge's source is
	// already reachable, so following the edge would close a cycle.
	TargetCycle
)

// Target is the resolved (or not yet resolved) endpoint of an edge. An edge's
// target leaves TargetUnexpanded exactly once and never reverts.
type Target struct {
	Kind   TargetKind
	Vertex VertexID // valid for TargetExpanded and TargetCycle
}

func packTarget(t Target) uint64 {
	return uint64(t.Kind)<<32 | uint64(uint32(t.Vertex))
}

func unpackTarget(packed uint64) Target {
	return Target{Kind: TargetKind(packed >> 32), Vertex: VertexID(int32(uint32(packed)))}
}

type vertex[S comparable] struct {
	state    S
	expanded atomic.Bool
	cyclic   atomic.Bool
	proven   atomic.Pointer[game.Payoff]
	stats    Statistics
	parents  []EdgeID
	children []EdgeID
}

type edge[A comparable] struct {
	action A
	source VertexID
	target atomic.Uint64 // packed Target
	stats  Statistics
	marks  traversal
}

// Graph owns the vertex and edge arenas and the state-to-vertex
// transposition table.
type Graph[S comparable, A comparable] struct {
	mu       sync.RWMutex
	vertices []*vertex[S]
	edges    []*edge[A]
	byState  map[S]VertexID
}

// New returns an empty search graph.
func New[S comparable, A comparable]() *Graph[S, A] {
	return &Graph[S, A]{byState: make(map[S]VertexID)}
}

// vertexAt and edgeAt assume the caller holds at least a read lock. Bad ids
// are defects, never user errors, so they fault loudly via the bounds check.
func (g *Graph[S, A]) vertexAt(id VertexID) *vertex[S] {
	return g.vertices[id]
}

func (g *Graph[S, A]) edgeAt(id EdgeID) *edge[A] {
	return g.edges[id]
}

func (g *Graph[S, A]) addVertexLocked(state S) VertexID {
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, &vertex[S]{state: state})
	g.byState[state] = id
	return id
}

// NumVertices returns the number of vertices in the arena.
func (g *Graph[S, A]) NumVertices() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// NumEdges returns the number of edges in the arena.
func (g *Graph[S, A]) NumEdges() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// FindVertex looks state up in the transposition table.
func (g *Graph[S, A]) FindVertex(state S) (Vertex[S, A], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byState[state]
	if !ok {
		return Vertex[S, A]{}, false
	}
	return Vertex[S, A]{g: g, id: id}, true
}

// FindOrCreateRoot returns the vertex for state, creating it if the state has
// never been seen.
func (g *Graph[S, A]) FindOrCreateRoot(state S) Vertex[S, A] {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.byState[state]
	if !ok {
		id = g.addVertexLocked(state)
	}
	return Vertex[S, A]{g: g, id: id}
}

// AppendChild adds a new unexpanded edge for action out of v.
func (g *Graph[S, A]) AppendChild(v Vertex[S, A], action A) Edge[S, A] {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := EdgeID(len(g.edges))
	e := &edge[A]{action: action, source: v.id}
	e.target.Store(packTarget(Target{Kind: TargetUnexpanded}))
	g.edges = append(g.edges, e)
	g.vertexAt(v.id).children = append(g.vertexAt(v.id).children, id)
	return Edge[S, A]{g: g, id: id}
}

// ResolveEdge fixes the endpoint of an unexpanded edge to the vertex for
// next. When next is unknown a fresh vertex is created and the result is
// TargetExpanded with created true. When next already has a vertex, the
// result is TargetCycle if the edge's source is reachable from that vertex
// over expanded edges (following the edge would close a cycle), otherwise
// TargetExpanded. Resolving an already-resolved edge returns the existing
// target; this happens when two workers race to expand the same edge.
func (g *Graph[S, A]) ResolveEdge(e Edge[S, A], next S) (t Target, created bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ed := g.edgeAt(e.id)
	if t = unpackTarget(ed.target.Load()); t.Kind != TargetUnexpanded {
		return t, false
	}
	if id, ok := g.byState[next]; ok {
		kind := TargetExpanded
		if g.pathExistsLocked(id, ed.source) {
			kind = TargetCycle
		}
		t = Target{Kind: kind, Vertex: id}
		ed.target.Store(packTarget(t))
		if kind == TargetExpanded {
			g.vertexAt(id).parents = append(g.vertexAt(id).parents, e.id)
		}
		return t, false
	}
	id := g.addVertexLocked(next)
	t = Target{Kind: TargetExpanded, Vertex: id}
	ed.target.Store(packTarget(t))
	g.vertexAt(id).parents = append(g.vertexAt(id).parents, e.id)
	return t, true
}

// pathExistsLocked reports whether to is reachable from from over expanded
// edges. Depth-first over the child lists; cycle targets are not followed.
func (g *Graph[S, A]) pathExistsLocked(from, to VertexID) bool {
	if from == to {
		return true
	}
	seen := make(map[VertexID]struct{})
	frontier := []VertexID{from}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if id == to {
			return true
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		for _, eid := range g.vertexAt(id).children {
			if t := unpackTarget(g.edgeAt(eid).target.Load()); t.Kind == TargetExpanded {
				frontier = append(frontier, t.Vertex)
			}
		}
	}
	return false
}
