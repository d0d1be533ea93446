// Package vehicle models the simulated agents and their per-tick physical
// update (§3.2, §4.6), generalizing the teacher's model/bus.go state-machine
// shape (SetSpeedKmph, AdvanceToStop) from a fixed bus-route traversal into
// arbitrary graph-path traversal with car-following.
package vehicle

import "fmt"

// Type is a closed enumeration of vehicle kinds (§9: explicit tagged
// variants instead of reflection/dynamic records).
type Type string

const (
	TypeCar        Type = "car"
	TypeBicycle    Type = "bicycle"
	TypePedestrian Type = "pedestrian"
)

// Status is a closed enumeration of vehicle lifecycle states (§3.2).
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusMoving     Status = "moving"
	StatusStuck      Status = "stuck"
	StatusRerouting  Status = "rerouting"
	StatusArrived    Status = "arrived"
)

// Spec holds the per-type physical constants (§3.2's table), adapted from
// the teacher's small package-level lookup-table style (data/data.go's
// TimePeriodMultiplier map).
type Spec struct {
	MaxSpeed       float64 // px/s
	CapacityWeight float64
	Acceleration   float64 // px/s^2
}

var specs = map[Type]Spec{
	TypeCar:        {MaxSpeed: 60, CapacityWeight: 1.0, Acceleration: 2.0},
	TypeBicycle:    {MaxSpeed: 40, CapacityWeight: 0.5, Acceleration: 1.2},
	TypePedestrian: {MaxSpeed: 20, CapacityWeight: 0.2, Acceleration: 0.6},
}

// SpecFor returns the physical constants for a vehicle type, or an error for
// an unrecognized one (§7's "validation" error kind).
func SpecFor(t Type) (Spec, error) {
	s, ok := specs[t]
	if !ok {
		return Spec{}, fmt.Errorf("vehicle: unknown type %q", t)
	}
	return s, nil
}
