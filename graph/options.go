package graph

import (
	"math"

	"github.com/TFMV/forcegraph/geom"
)

// Options are the physical constants of a graph. They are fixed for the
// lifetime of a Graph; build a new graph to change them.
type Options struct {
	// InertiaStrength is the share of velocity a node keeps per tick.
	InertiaStrength float64 `json:"inertia_strength" yaml:"inertia_strength" toml:"inertia_strength" validate:"gt=0,lte=1"`
	RepelStrength   float64 `json:"repel_strength" yaml:"repel_strength" toml:"repel_strength" validate:"gte=0"`
	// RepelDistance is the repulsion cutoff and the grid cell size.
	RepelDistance  float64 `json:"repel_distance" yaml:"repel_distance" toml:"repel_distance" validate:"gt=0"`
	LinkStrength   float64 `json:"link_strength" yaml:"link_strength" toml:"link_strength" validate:"gte=0"`
	OriginStrength float64 `json:"origin_strength" yaml:"origin_strength" toml:"origin_strength" validate:"gte=0"`
	// MinMove is compared against the squared velocity.
	MinMove  float64 `json:"min_move" yaml:"min_move" toml:"min_move" validate:"gte=0"`
	GridSize float64 `json:"grid_size" yaml:"grid_size" toml:"grid_size" validate:"gt=0,gtefield=RepelDistance"`
}

// DefaultOptions returns the constants the layouts are tuned for.
func DefaultOptions() Options {
	return Options{
		InertiaStrength: 0.7,
		RepelStrength:   0.4,
		RepelDistance:   20,
		LinkStrength:    0.025,
		OriginStrength:  0.012,
		MinMove:         0.001,
		GridSize:        200,
	}
}

// Cols returns the number of grid cells per axis. It is always even so the
// grid center falls on a cell boundary.
func (o Options) Cols() int {
	return int(math.Ceil(o.GridSize/2/o.RepelDistance)) * 2
}

// CellIndex maps pos to a flat cell index. Each axis is clamped to the grid,
// so a position on the upper bound lands in the last cell even when
// GridSize/RepelDistance rounds up.
func CellIndex(o Options, pos geom.Vec) int {
	return cellIndex(o.RepelDistance, o.Cols(), pos)
}

func cellIndex(repelDistance float64, cols int, pos geom.Vec) int {
	return cellCoord(pos.X, repelDistance, cols) + cellCoord(pos.Y, repelDistance, cols)*cols
}

// cellCoord is the cell column (or row) of v, within [0, cols-1].
func cellCoord(v, repelDistance float64, cols int) int {
	c := math.Floor(v / repelDistance)
	if !(c >= 0) {
		return 0
	}
	return min(int(c), cols-1)
}
