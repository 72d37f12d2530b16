package physics

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

func TestQuadTreeAggregates(t *testing.T) {
	g := graph.New(graph.DefaultOptions())
	g.AddNode(graph.Node{Pos: geom.V(10, 10), Mass: 1})
	g.AddNode(graph.Node{Pos: geom.V(190, 10), Mass: 2})
	g.AddNode(graph.Node{Pos: geom.V(100, 150), Mass: 3})

	tree := NewQuadTree()
	tree.Build(g)

	root := tree.quads[0]
	assert.Equal(t, 3, root.count)
	assert.Equal(t, 6.0, root.mass)
	com := root.weighted.Scale(1 / root.mass)
	assert.InDelta(t, (10+380+300)/6.0, com.X, 1e-12)
	assert.InDelta(t, (10+20+450)/6.0, com.Y, 1e-12)

	// every node ends up alone in a leaf
	leaves := 0
	for _, q := range tree.quads {
		if q.children < 0 && q.count > 0 {
			assert.Equal(t, 1, q.count)
			leaves++
		}
	}
	assert.Equal(t, 3, leaves)
}

func TestQuadTreeMidlineTiesGoNorthWest(t *testing.T) {
	g := graph.New(graph.DefaultOptions())
	g.AddNode(graph.Node{Pos: geom.V(100, 100)})
	g.AddNode(graph.Node{Pos: geom.V(150, 150)})

	tree := NewQuadTree()
	tree.Build(g)

	nw := tree.quads[tree.quads[0].children]
	se := tree.quads[tree.quads[0].children+3]
	assert.Equal(t, 1, nw.count)
	assert.Equal(t, 1, se.count)
}

func TestQuadTreeExactWithZeroTheta(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 8))
	g := graph.New(graph.DefaultOptions())
	for i := 0; i < 80; i++ {
		g.AddNode(graph.Node{Pos: geom.V(rng.Float64()*200, rng.Float64()*200), Mass: 1 + rng.Float64()})
	}

	tree := NewQuadTree()
	tree.Theta = 0
	tree.Build(g)

	strength := g.Options().RepelStrength
	for _, id := range g.Nodes() {
		n := g.Node(id)
		var want geom.Vec
		for _, other := range g.Nodes() {
			if other == id {
				continue
			}
			o := g.Node(other)
			dist := geom.Distance(n.Pos, o.Pos) + tree.Epsilon
			want = want.Add(repulse(n.Pos, o.Pos, n.Mass, o.Mass, dist, strength))
		}
		got := tree.Force(g, id, 1)
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
	}
}

func TestQuadTreeApproximationIsClose(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	g := graph.New(graph.DefaultOptions())
	for i := 0; i < 400; i++ {
		g.AddNode(graph.Node{Pos: geom.V(rng.Float64()*200, rng.Float64()*200)})
	}

	exact := NewQuadTree()
	exact.Theta = 0
	exact.Build(g)
	approx := NewQuadTree()
	approx.Build(g)

	// individual nodes near the middle feel almost no net force, so compare
	// the error summed over all nodes
	var errSum, magSum float64
	for _, id := range g.Nodes() {
		want := exact.Force(g, id, 1)
		got := approx.Force(g, id, 1)
		errSum += got.Sub(want).Len()
		magSum += want.Len()
	}
	require.NotZero(t, magSum)
	assert.Less(t, errSum/magSum, 0.05)
}

func TestQuadTreeRepelsNeighbours(t *testing.T) {
	g := graph.New(graph.DefaultOptions())
	a := g.AddNode(graph.Node{Pos: geom.V(90, 100)})
	b := g.AddNode(graph.Node{Pos: geom.V(110, 100)})

	tree := NewQuadTree()
	tree.Build(g)
	tree.Apply(g, 1)

	assert.Less(t, g.Node(a).Vel.X, 0.0)
	assert.Greater(t, g.Node(b).Vel.X, 0.0)
	assert.InDelta(t, -g.Node(a).Vel.X, g.Node(b).Vel.X, 1e-12)
}

func TestQuadTreeReuseAcrossTicks(t *testing.T) {
	g := graph.New(graph.DefaultOptions())
	for i := 0; i < 20; i++ {
		g.AddNode(graph.Node{Pos: geom.V(float64(i*9), float64(200-i*9))})
	}
	sim := NewSimulator(NewQuadTree())
	for i := 0; i < 30; i++ {
		sim.Step(g, 1)
	}
	require.NoError(t, g.CheckInvariant())
	tree := sim.Backend().(*QuadTree)
	assert.Equal(t, 20, tree.quads[0].count)
}
