package physics

import (
	"context"

	"github.com/TFMV/forcegraph/graph"
)

// Settle runs ticks at alpha 1 until a tick moves no node or maxTicks is
// reached. It returns the number of ticks run, and the context's error if it
// was cancelled first.
func Settle(ctx context.Context, sim *Simulator, g *graph.Graph, maxTicks int) (int, error) {
	for tick := 0; tick < maxTicks; tick++ {
		if tick%64 == 0 {
			if err := ctx.Err(); err != nil {
				return tick, err
			}
		}
		if sim.Step(g, 1) == 0 {
			return tick + 1, nil
		}
	}
	return maxTicks, nil
}
