package engine

import (
	"math"

	"trafficsim/graph"
	"trafficsim/occupancy"
	"trafficsim/router"
)

// costFn builds the Router's CostFunc (§4.2) from the engine's most
// recently computed edge states, falling back to the edge's base length
// before the first tick has run any Analyzer pass. Blockages are consulted
// directly from the Incident Manager rather than only through the cached
// edge states, so a blockage created since the last Recompute (e.g. by
// block_road's forced reroute) is impassable immediately, not just after
// the next Recompute.
func (e *Engine) costFn() router.CostFunc {
	return func(edge *graph.Edge) float64 {
		k := occupancy.Key{From: edge.From, To: edge.To}
		if e.incidents.IsBlocked(k) {
			return math.Inf(1)
		}
		if s, ok := e.edgeStates[k]; ok {
			return s.Cost(edge.Length0)
		}
		return edge.Length0
	}
}
