package models

import (
	"fmt"
)

// FindNode returns a node by key
func (d *Dataset) FindNode(key string) (*Node, error) {
	i, ok := d.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, key)
	}
	return &d.Nodes[i], nil
}

// FindEdgeByID returns an edge by its ID
func (d *Dataset) FindEdgeByID(id string) (*Edge, error) {
	for i, edge := range d.Edges {
		if edge.ID == id {
			return &d.Edges[i], nil
		}
	}
	return nil, fmt.Errorf("edge with ID %s not found", id)
}

// FindNodesByGroup returns all nodes of a group
func (d *Dataset) FindNodesByGroup(group string) []Node {
	return d.FilterNodes(func(n *Node) bool { return n.Group == group })
}

// FindEdgesByType returns all edges of a specific type
func (d *Dataset) FindEdgesByType(edgeType string) []Edge {
	return d.FilterEdges(func(e *Edge) bool { return e.Type == edgeType })
}

// Subset returns a copy holding only the nodes of group and the edges of
// edgeType whose ends both survive. An empty group or edgeType keeps
// everything on that side.
func (d *Dataset) Subset(group, edgeType string) *Dataset {
	sub := NewDataset(d.Name, d.Source)

	nodes := d.Nodes
	if group != "" {
		nodes = d.FindNodesByGroup(group)
	}
	sub.Nodes = append(sub.Nodes, nodes...)
	sub.reindex()

	edges := d.Edges
	if edgeType != "" {
		edges = d.FindEdgesByType(edgeType)
	}
	for _, e := range edges {
		_, src := sub.index[e.Source]
		_, dst := sub.index[e.Target]
		if src && dst {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

// FindOutgoingEdges returns all edges originating from a node
func (d *Dataset) FindOutgoingEdges(key string) []Edge {
	return d.FilterEdges(func(e *Edge) bool { return e.Source == key })
}

// FindIncomingEdges returns all edges targeting a node
func (d *Dataset) FindIncomingEdges(key string) []Edge {
	return d.FilterEdges(func(e *Edge) bool { return e.Target == key })
}

// FindConnectedNodes returns all nodes directly connected to a node, in
// dataset order
func (d *Dataset) FindConnectedNodes(key string) []Node {
	linked := make(map[string]bool)
	for _, edge := range d.Edges {
		if edge.Source == key {
			linked[edge.Target] = true
		}
		if edge.Target == key {
			linked[edge.Source] = true
		}
	}
	return d.FilterNodes(func(n *Node) bool { return linked[n.Key] })
}

// Degree returns the number of edges touching a node
func (d *Dataset) Degree(key string) int {
	n := 0
	for _, edge := range d.Edges {
		if edge.Source == key {
			n++
		}
		if edge.Target == key {
			n++
		}
	}
	return n
}

// FilterNodes returns nodes that match the provided filter function
func (d *Dataset) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i := range d.Nodes {
		if filter(&d.Nodes[i]) {
			result = append(result, d.Nodes[i])
		}
	}
	return result
}

// FilterEdges returns edges that match the provided filter function
func (d *Dataset) FilterEdges(filter EdgeFilter) []Edge {
	var result []Edge
	for i := range d.Edges {
		if filter(&d.Edges[i]) {
			result = append(result, d.Edges[i])
		}
	}
	return result
}
