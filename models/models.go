// Package models provides the source datasets a layout is built from: node
// definitions keyed by name and the connections between them.
package models

import (
	"errors"
	"time"

	"github.com/TFMV/forcegraph/geom"
)

var (
	// ErrEmptyKey is returned for nodes without a key.
	ErrEmptyKey = errors.New("node key is empty")
	// ErrDuplicateNode is returned when a key is added twice.
	ErrDuplicateNode = errors.New("duplicate node key")
	// ErrUnknownNode is returned for edges or lookups naming a missing key.
	ErrUnknownNode = errors.New("unknown node key")
)

// Node represents a node definition in a dataset
type Node struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	// Mass overrides the edge-derived mass when at least 1.
	Mass float64 `json:"mass,omitempty"`
	// Pos is an optional fixed starting position in graph units.
	Pos        *geom.Vec      `json:"pos,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge represents a connection between two nodes, by key
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
	// Weight scales the link force; zero means 1.
	Weight float64 `json:"weight,omitempty"`
}

// Dataset represents a collection of node definitions and edges
type Dataset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	index map[string]int
}

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// EdgeFilter is a function type used to filter edges in queries
type EdgeFilter func(edge *Edge) bool
