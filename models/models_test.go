package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	d := NewDataset("sample", "test")
	for _, key := range []string{"core", "util", "net", "lonely"} {
		require.NoError(t, d.AddNode(Node{Key: key}))
	}
	require.NoError(t, d.Connect("util", "core"))
	require.NoError(t, d.Connect("net", "core"))
	require.NoError(t, d.Connect("net", "util"))
	return d
}

func TestNewDataset(t *testing.T) {
	d := NewDataset("deps", "package.json")
	_, err := uuid.Parse(d.ID)
	assert.NoError(t, err)
	assert.Equal(t, "deps", d.Name)
	assert.Empty(t, d.Nodes)
}

func TestAddNodeValidation(t *testing.T) {
	d := NewDataset("x", "")
	assert.ErrorIs(t, d.AddNode(Node{}), ErrEmptyKey)

	require.NoError(t, d.AddNode(Node{Key: "a"}))
	assert.Equal(t, "a", d.Nodes[0].Label, "label defaults to key")
	assert.ErrorIs(t, d.AddNode(Node{Key: "a"}), ErrDuplicateNode)
}

func TestAddEdgeValidation(t *testing.T) {
	d := sample(t)
	assert.ErrorIs(t, d.Connect("core", "missing"), ErrUnknownNode)
	assert.ErrorIs(t, d.Connect("missing", "core"), ErrUnknownNode)

	e := d.Edges[0]
	_, err := uuid.Parse(e.ID)
	assert.NoError(t, err)
}

func TestQueries(t *testing.T) {
	d := sample(t)

	n, err := d.FindNode("net")
	require.NoError(t, err)
	assert.Equal(t, "net", n.Label)

	_, err = d.FindNode("nope")
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.Len(t, d.FindOutgoingEdges("net"), 2)
	assert.Len(t, d.FindIncomingEdges("core"), 2)
	assert.Equal(t, 2, d.Degree("util"))
	assert.Zero(t, d.Degree("lonely"))

	var keys []string
	for _, n := range d.FindConnectedNodes("core") {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"util", "net"}, keys)

	e, err := d.FindEdgeByID(d.Edges[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "net", e.Source)
}

func TestSubset(t *testing.T) {
	d := NewDataset("svc", "test")
	require.NoError(t, d.AddNode(Node{Key: "api", Group: "edge"}))
	require.NoError(t, d.AddNode(Node{Key: "gw", Group: "edge"}))
	require.NoError(t, d.AddNode(Node{Key: "db", Group: "store"}))
	require.NoError(t, d.AddEdge(NewEdge("api", "gw", "http", 1)))
	require.NoError(t, d.AddEdge(NewEdge("gw", "db", "sql", 1)))
	require.NoError(t, d.AddEdge(NewEdge("api", "db", "sql", 2)))

	assert.Len(t, d.FindNodesByGroup("edge"), 2)
	assert.Len(t, d.FindEdgesByType("sql"), 2)

	sub := d.Subset("edge", "")
	require.Len(t, sub.Nodes, 2)
	require.Len(t, sub.Edges, 1)
	assert.Equal(t, "http", sub.Edges[0].Type)
	assert.Equal(t, d.Edges[0].ID, sub.Edges[0].ID)
	assert.NotEqual(t, d.ID, sub.ID)

	sub = d.Subset("", "sql")
	assert.Len(t, sub.Nodes, 3)
	assert.Len(t, sub.Edges, 2)
	n, err := sub.FindNode("db")
	require.NoError(t, err)
	assert.Equal(t, "store", n.Group)

	assert.Empty(t, d.Subset("edge", "sql").Edges)
	assert.Empty(t, d.Subset("nope", "").Nodes)

	all := d.Subset("", "")
	assert.Equal(t, d.Nodes, all.Nodes)
	assert.Equal(t, d.Edges, all.Edges)
	require.NoError(t, all.AddNode(Node{Key: "cache"}))
	assert.Len(t, d.Nodes, 3, "subset does not share storage")
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	d := sample(t)
	require.True(t, d.RemoveNode("core"))
	assert.False(t, d.RemoveNode("core"))

	assert.Len(t, d.Nodes, 3)
	require.Len(t, d.Edges, 1)
	assert.Equal(t, "net", d.Edges[0].Source)

	// the index follows the shifted slice
	n, err := d.FindNode("lonely")
	require.NoError(t, err)
	assert.Equal(t, "lonely", n.Key)
}

func TestDedupe(t *testing.T) {
	d := sample(t)
	require.NoError(t, d.AddEdge(NewEdge("core", "util", "", 3)))
	require.NoError(t, d.Connect("lonely", "lonely"))

	assert.Equal(t, 2, d.Dedupe())
	require.Len(t, d.Edges, 3)
	assert.Equal(t, 3.0, d.Edges[0].Weight)
}

func TestBuild(t *testing.T) {
	d := sample(t)
	pinned := geom.V(10, 20)
	d.Nodes[3].Pos = &pinned
	d.Nodes[3].Mass = 4

	g, idx, err := d.Build(graph.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, idx, 4)
	assert.Equal(t, 4, g.Len())
	assert.Len(t, g.Edges(), 3)

	core := g.Node(idx["core"])
	assert.Equal(t, "core", core.Key)
	assert.Equal(t, graph.MassFromEdges(2), core.Mass)
	assert.Equal(t, geom.V(100, 100), core.Pos)

	lonely := g.Node(idx["lonely"])
	assert.Equal(t, pinned, lonely.Pos)
	assert.Equal(t, 4.0, lonely.Mass)
	assert.NoError(t, g.CheckInvariant())
}

func TestBuildRejectsDuplicateKeys(t *testing.T) {
	var d Dataset
	require.NoError(t, json.Unmarshal([]byte(`{"nodes":[{"key":"a"},{"key":"a"}]}`), &d))
	_, _, err := d.Build(graph.DefaultOptions())
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestFromGraphRoundTrip(t *testing.T) {
	d := sample(t)
	g, idx, err := d.Build(graph.DefaultOptions())
	require.NoError(t, err)
	g.SetPosition(idx["net"], geom.V(42, 43))

	out := FromGraph("layout", g)
	require.Len(t, out.Nodes, 4)
	require.Len(t, out.Edges, 3)

	n, err := out.FindNode("net")
	require.NoError(t, err)
	require.NotNil(t, n.Pos)
	assert.Equal(t, geom.V(42, 43), *n.Pos)

	g2, idx2, err := out.Build(graph.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, geom.V(42, 43), g2.Node(idx2["net"]).Pos)
	assert.Equal(t, g.Node(idx["core"]).Mass, g2.Node(idx2["core"]).Mass)
}
