package engine

import (
	"trafficsim/occupancy"
	"trafficsim/vehicle"
)

// edgeKey returns the occupancy key for the edge a vehicle currently
// occupies (empty NextNode for a vehicle already at its goal).
func edgeKey(v *vehicle.Vehicle) occupancy.Key {
	return occupancy.Key{From: v.CurrentNode(), To: v.NextNode()}
}
