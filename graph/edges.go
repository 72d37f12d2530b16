package graph

// Connect adds an edge between a and b. Duplicate edges are allowed. A
// strength of zero or less uses the default of 1.
func (g *Graph) Connect(a, b NodeID, strength float64) bool {
	if !g.Has(a) || !g.Has(b) {
		return false
	}
	if strength <= 0 {
		strength = 1
	}
	g.edges = append(g.edges, Edge{A: a, B: b, Strength: strength})
	return true
}

// EdgeIndex returns the index of the first edge joining a and b in either
// direction, or -1.
func (g *Graph) EdgeIndex(a, b NodeID) int {
	for i, e := range g.edges {
		if (e.A == a && e.B == b) || (e.A == b && e.B == a) {
			return i
		}
	}
	return -1
}

// Edge returns the first edge joining a and b in either direction.
func (g *Graph) Edge(a, b NodeID) (Edge, bool) {
	if i := g.EdgeIndex(a, b); i >= 0 {
		return g.edges[i], true
	}
	return Edge{}, false
}

// Disconnect removes one edge joining a and b. The last edge takes the
// removed edge's place, so edge order is not preserved.
func (g *Graph) Disconnect(a, b NodeID) bool {
	i := g.EdgeIndex(a, b)
	if i < 0 {
		return false
	}
	last := len(g.edges) - 1
	g.edges[i] = g.edges[last]
	g.edges = g.edges[:last]
	return true
}

// NodeEdges returns the edges touching id.
func (g *Graph) NodeEdges(id NodeID) []Edge {
	var result []Edge
	for _, e := range g.edges {
		if e.A == id || e.B == id {
			result = append(result, e)
		}
	}
	return result
}

// EdgeCount returns the number of edges touching id.
func (g *Graph) EdgeCount(id NodeID) int {
	count := 0
	for _, e := range g.edges {
		if e.A == id || e.B == id {
			count++
		}
	}
	return count
}

// Connections returns the nodes joined to id, once per edge.
func (g *Graph) Connections(id NodeID) []NodeID {
	var result []NodeID
	for _, e := range g.edges {
		switch id {
		case e.A:
			result = append(result, e.B)
		case e.B:
			result = append(result, e.A)
		}
	}
	return result
}

// FilterNodes returns the nodes for which keep returns true, in insertion
// order.
func (g *Graph) FilterNodes(keep func(id NodeID, n *Node) bool) []NodeID {
	var result []NodeID
	for _, id := range g.order {
		if keep(id, &g.slots[id.index].node) {
			result = append(result, id)
		}
	}
	return result
}
