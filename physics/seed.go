package physics

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

// ErrUnknownSeed is returned by Seed for unsupported policy names.
var ErrUnknownSeed = errors.New("unknown seed policy")

// Seed policy names.
const (
	SeedPolicySpread = "spread"
	SeedPolicyRandom = "random"
	SeedPolicySmart  = "smart"
	SeedPolicyNoise  = "noise"
	// SeedPolicyNone keeps the positions nodes were added with.
	SeedPolicyNone = "none"
)

// Seed places every node with the named policy. seed feeds the random and
// noise policies.
func Seed(policy string, g *graph.Graph, seed int64) error {
	switch policy {
	case SeedPolicySpread:
		SeedSpread(g)
	case SeedPolicyRandom:
		SeedRandom(g, rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)))
	case SeedPolicySmart:
		SeedSmart(g)
	case SeedPolicyNoise:
		SeedNoise(g, seed)
	case SeedPolicyNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSeed, policy)
	}
	return nil
}

// place overwrites a node's position and clears its velocity.
func place(g *graph.Graph, id graph.NodeID, p geom.Vec) {
	g.SetPosition(id, p)
	g.Node(id).Vel = geom.Vec{}
}

// SeedSpread lays nodes out on a regular lattice in the middle half of the
// bounds. The result only depends on node order.
func SeedSpread(g *graph.Graph) {
	gs := g.Options().GridSize
	margin := gs / 4
	width := gs - margin*2
	cols := g.Cols()
	fc := float64(cols)

	for i, id := range g.Nodes() {
		row := int(math.Ceil(float64(i)/fc)) % cols
		place(g, id, geom.V(
			margin+float64(i%cols)/fc*width,
			margin+float64(row)/fc*width,
		))
	}
}

// SeedRandom scatters nodes uniformly over the middle half of the bounds. A
// nil rng uses the global source, so every call differs.
func SeedRandom(g *graph.Graph, rng *rand.Rand) {
	gs := g.Options().GridSize
	margin := gs / 4
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	for _, id := range g.Nodes() {
		place(g, id, geom.V(
			margin+next()*(gs-2*margin),
			margin+next()*(gs-2*margin),
		))
	}
}

// SeedSmart approximates a settled layout without simulating. Nodes are
// visited in insertion order; each lands on the average of its already
// placed neighbours. Nodes with at most one placed neighbour are put on
// rings around that neighbour (or the center), at an angle derived from a
// hash of the ring's center so the result is stable.
func SeedSmart(g *graph.Graph) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	gs := g.Options().GridSize
	mid := gs / 2
	placed := make(map[graph.NodeID]bool, len(nodes))
	rings := make(map[uint64]int)

	for _, id := range nodes {
		x, y, conns := mid, mid, 0
		for _, b := range g.Connections(id) {
			if !placed[b] {
				continue
			}
			p := g.Node(b).Pos
			if conns == 0 {
				x, y = p.X, p.Y
			} else {
				x, y = (x+p.X)/2, (y+p.Y)/2
			}
			conns++
		}

		if conns <= 1 {
			h := hashXY(x, y)
			angle := float64(h) / math.MaxUint64 * geom.Tau
			n := rings[h]
			rings[h] = n + 1

			for radius, perRing := 0.0, 0; ; {
				radius += 5
				if radius > mid {
					break
				}
				n -= perRing
				perRing = int(geom.Circumference(radius) / 6)
				if n >= perRing {
					continue
				}
				theta := geom.Tau*float64(n)/float64(perRing) + angle
				nx := x + radius*math.Cos(theta)
				ny := y + radius*math.Sin(theta)
				if nx < 0 || nx >= gs || ny < 0 || ny >= gs {
					n += perRing + 1
					continue
				}
				x, y = nx, ny
				break
			}
		}

		placed[id] = true
		place(g, id, geom.V(x, y))
	}
}

func hashXY(x, y float64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(y))
	return xxhash.Sum64(buf[:])
}

// noiseFrequency controls how far apart consecutive nodes sample the noise
// field.
const noiseFrequency = 0.37

// SeedNoise places nodes along a simplex noise field in the middle half of
// the bounds. Consecutive nodes land near each other, which keeps chains
// from crossing the whole layout. The same seed gives the same layout.
func SeedNoise(g *graph.Graph, seed int64) {
	noise := opensimplex.New(seed)
	gs := g.Options().GridSize
	margin := gs / 4
	half := (gs - 2*margin) / 2
	center := gs / 2

	for i, id := range g.Nodes() {
		t := float64(i) * noiseFrequency
		place(g, id, geom.V(
			geom.Clamp(center+noise.Eval2(t, 11.3)*half, margin, gs-margin),
			geom.Clamp(center+noise.Eval2(t, 47.9)*half, margin, gs-margin),
		))
	}
}
