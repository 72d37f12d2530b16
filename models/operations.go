package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewDataset creates an empty dataset with a unique ID and timestamps
func NewDataset(name, source string) *Dataset {
	now := time.Now()
	return &Dataset{
		ID:        uuid.New().String(),
		Name:      name,
		Source:    source,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: now,
		UpdatedAt: now,
		index:     make(map[string]int),
	}
}

// NewEdge creates an edge with a unique ID
func NewEdge(source, target, edgeType string, weight float64) Edge {
	return Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Type:   edgeType,
		Weight: weight,
	}
}

// reindex rebuilds the key index, e.g. after decoding a dataset from JSON.
func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		d.index[n.Key] = i
	}
}

func (d *Dataset) lookup(key string) (int, bool) {
	if d.index == nil || len(d.index) != len(d.Nodes) {
		d.reindex()
	}
	i, ok := d.index[key]
	return i, ok
}

// AddNode adds a node definition. The label defaults to the key.
func (d *Dataset) AddNode(n Node) error {
	if n.Key == "" {
		return ErrEmptyKey
	}
	if _, ok := d.lookup(n.Key); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.Key)
	}
	if n.Label == "" {
		n.Label = n.Key
	}
	d.Nodes = append(d.Nodes, n)
	d.index[n.Key] = len(d.Nodes) - 1
	d.UpdatedAt = time.Now()
	return nil
}

// AddEdge connects two existing nodes
func (d *Dataset) AddEdge(e Edge) error {
	if _, ok := d.lookup(e.Source); !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownNode, e.Source)
	}
	if _, ok := d.lookup(e.Target); !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownNode, e.Target)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	d.Edges = append(d.Edges, e)
	d.UpdatedAt = time.Now()
	return nil
}

// Connect adds an edge between two keys with default weight
func (d *Dataset) Connect(source, target string) error {
	return d.AddEdge(NewEdge(source, target, "", 1))
}

// RemoveNode removes a node and all connected edges
func (d *Dataset) RemoveNode(key string) bool {
	i, ok := d.lookup(key)
	if !ok {
		return false
	}
	d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)

	edges := d.Edges[:0]
	for _, e := range d.Edges {
		if e.Source != key && e.Target != key {
			edges = append(edges, e)
		}
	}
	d.Edges = edges
	d.reindex()
	d.UpdatedAt = time.Now()
	return true
}

// RemoveEdge removes an edge by ID
func (d *Dataset) RemoveEdge(id string) bool {
	for i, e := range d.Edges {
		if e.ID == id {
			d.Edges = append(d.Edges[:i], d.Edges[i+1:]...)
			d.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Dedupe merges edges that join the same pair of nodes in either direction
// and drops self loops. The first edge of a pair is kept with the largest
// weight seen. It returns how many edges were removed.
func (d *Dataset) Dedupe() int {
	type pair struct{ a, b string }
	seen := make(map[pair]int, len(d.Edges))

	edges := make([]Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		if e.Source == e.Target {
			continue
		}
		p := pair{e.Source, e.Target}
		if p.b < p.a {
			p.a, p.b = p.b, p.a
		}
		if i, ok := seen[p]; ok {
			edges[i].Weight = max(edges[i].Weight, e.Weight)
			continue
		}
		seen[p] = len(edges)
		edges = append(edges, e)
	}

	removed := len(d.Edges) - len(edges)
	d.Edges = edges
	if removed > 0 {
		d.UpdatedAt = time.Now()
	}
	return removed
}
