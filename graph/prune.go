package graph

// Prune drops every vertex not reachable from keep, along with all edges out
// of dropped vertices, and compacts the arenas. Ids are remapped, so all
// outstanding handles are invalidated. Run it between search rounds under
// exclusive access; statistics and traversal marks on surviving vertices and
// edges are preserved.
func (g *Graph[S, A]) Prune(keep ...Vertex[S, A]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	liveVertex := make(map[VertexID]struct{}, len(keep))
	frontier := make([]VertexID, 0, len(keep))
	for _, v := range keep {
		if _, ok := liveVertex[v.id]; !ok {
			liveVertex[v.id] = struct{}{}
			frontier = append(frontier, v.id)
		}
	}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, eid := range g.vertexAt(id).children {
			t := unpackTarget(g.edgeAt(eid).target.Load())
			if t.Kind == TargetUnexpanded {
				continue
			}
			// Cycle targets are retained too: the edge keeps
			// referring to the vertex it loops back to.
			if _, ok := liveVertex[t.Vertex]; !ok {
				liveVertex[t.Vertex] = struct{}{}
				frontier = append(frontier, t.Vertex)
			}
		}
	}

	vertexRemap := make(map[VertexID]VertexID, len(liveVertex))
	newVertices := make([]*vertex[S], 0, len(liveVertex))
	for oldID, v := range g.vertices {
		if _, ok := liveVertex[VertexID(oldID)]; !ok {
			continue
		}
		vertexRemap[VertexID(oldID)] = VertexID(len(newVertices))
		newVertices = append(newVertices, v)
	}

	// An edge survives iff its source survives.
	edgeRemap := make(map[EdgeID]EdgeID)
	newEdges := make([]*edge[A], 0, len(g.edges))
	for oldID, e := range g.edges {
		if _, ok := vertexRemap[e.source]; !ok {
			continue
		}
		edgeRemap[EdgeID(oldID)] = EdgeID(len(newEdges))
		newEdges = append(newEdges, e)
	}

	for _, e := range newEdges {
		e.source = vertexRemap[e.source]
		if t := unpackTarget(e.target.Load()); t.Kind != TargetUnexpanded {
			t.Vertex = vertexRemap[t.Vertex]
			e.target.Store(packTarget(t))
		}
	}

	byState := make(map[S]VertexID, len(newVertices))
	for newID, v := range newVertices {
		byState[v.state] = VertexID(newID)

		children := v.children[:0]
		for _, eid := range v.children {
			if nid, ok := edgeRemap[eid]; ok {
				children = append(children, nid)
			}
		}
		v.children = children

		parents := v.parents[:0]
		for _, eid := range v.parents {
			if nid, ok := edgeRemap[eid]; ok {
				parents = append(parents, nid)
			}
		}
		v.parents = parents
	}

	g.vertices = newVertices
	g.edges = newEdges
	g.byState = byState
}
