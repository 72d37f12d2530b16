package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/models"
)

func keys(ds *models.Dataset) []string {
	out := make([]string, 0, len(ds.Nodes))
	for _, n := range ds.Nodes {
		out = append(out, n.Key)
	}
	return out
}

func TestManifestKeepsDocumentOrder(t *testing.T) {
	ds, err := ProcessFile("testdata/manifest.json", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"solid-js", "seroval", "csstype", "vite", "esbuild",
		"rollup", "fsevents", "postcss", "nanoid", "picocolors",
	}, keys(ds))
	assert.Equal(t, "manifest", ds.Name)
	assert.Equal(t, "testdata/manifest.json", ds.Source)

	n, err := ds.FindNode("solid-js")
	require.NoError(t, err)
	assert.Equal(t, "Solid", n.Label)

	// the connection to missing-pkg is dropped
	assert.Len(t, ds.Edges, 8)
	assert.Equal(t, 3, ds.Degree("vite"))
}

func TestJSONNodesAndEdges(t *testing.T) {
	ds, err := ProcessFile("testdata/graph.json", "json")
	require.NoError(t, err)
	assert.Equal(t, "services", ds.Name)
	assert.Equal(t, []string{"api", "auth", "db"}, keys(ds))

	db, err := ds.FindNode("db")
	require.NoError(t, err)
	assert.Equal(t, "Postgres", db.Label)
	assert.Equal(t, 3.0, db.Mass)
	require.NotNil(t, db.Pos)
	assert.Equal(t, geom.V(120, 80), *db.Pos)

	require.Len(t, ds.Edges, 3)
	assert.Equal(t, 2.0, ds.Edges[0].Weight)
	assert.Equal(t, "sql", ds.Edges[2].Type)
}

func TestJSONRejectsDanglingEdge(t *testing.T) {
	_, err := JSONProcessor{}.Process(strings.NewReader(`{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"b"}]}`))
	assert.ErrorIs(t, err, models.ErrUnknownNode)
}

func TestJSONRejectsDuplicateNode(t *testing.T) {
	_, err := JSONProcessor{}.Process(strings.NewReader(`{"nodes":[{"id":"a"},{"id":"a"}]}`))
	assert.ErrorIs(t, err, models.ErrDuplicateNode)
}

func TestJSONFallsBackToManifest(t *testing.T) {
	ds, err := JSONProcessor{}.Process(strings.NewReader(`{"b":{"prettyName":"B","connections":["a"]},"a":{"prettyName":"A"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, keys(ds))
	require.Len(t, ds.Edges, 1)
}

func TestCSVEdgeList(t *testing.T) {
	ds, err := ProcessFile("testdata/edges.csv", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "auth", "db"}, keys(ds))
	require.Len(t, ds.Edges, 3)
	assert.Equal(t, 2.0, ds.Edges[0].Weight)
	assert.Equal(t, 1.0, ds.Edges[1].Weight, "empty weight defaults to 1")
	assert.Equal(t, 0.5, ds.Edges[2].Weight)
}

func TestCSVRequiresColumns(t *testing.T) {
	_, err := CSVProcessor{}.Process(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)

	_, err = CSVProcessor{}.Process(strings.NewReader("from,to\nx,\n"))
	assert.ErrorIs(t, err, models.ErrEmptyKey)
}

func TestTextRelations(t *testing.T) {
	ds, err := ProcessFile("testdata/relations.txt", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "auth", "db"}, keys(ds))
	assert.Len(t, ds.Edges, 3)
}

func TestGetProcessor(t *testing.T) {
	for _, format := range []string{"json", "manifest", "csv", "text", "log", "TXT"} {
		p, err := GetProcessor(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, p.Name())
	}

	_, err := GetProcessor("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ProcessFile("testdata/graph.xml", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
