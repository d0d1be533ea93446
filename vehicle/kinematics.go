package vehicle

import (
	"fmt"
	"math"
	"sort"

	"trafficsim/graph"
	"trafficsim/occupancy"
	"trafficsim/traffic"
)

const (
	gapStop       = 30.0
	gapSlow       = 60.0
	smoothingAlpha = 0.3
	speedEpsilon  = 1e-6
	posEpsilon    = 1e-4
)

// ErrOccupancyInconsistent reports the fatal invariant violation of §7: a
// vehicle left an edge the Occupancy Index never recorded it as having
// entered. The caller aborts the tick on this error.
type ErrOccupancyInconsistent struct {
	VehicleID string
	Edge      occupancy.Key
}

func (e *ErrOccupancyInconsistent) Error() string {
	return fmt.Sprintf("vehicle %s left edge %s->%s it never entered", e.VehicleID, e.Edge.From, e.Edge.To)
}

// Advance runs one tick of per-vehicle kinematics (§4.6) over every active
// (non-arrived, non-waiting) vehicle, in deterministic id-sorted order, per
// §4.6's determinism requirement and §4.7 step 5. It returns
// ErrOccupancyInconsistent, and stops processing further vehicles, the
// instant the invariant is violated (§7: "reported and the tick is
// aborted").
func Advance(g *graph.Graph, occ *occupancy.Index, states map[occupancy.Key]traffic.EdgeState, vehicles []*Vehicle, dt float64, tick int64) error {
	active := make([]*Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Status == StatusArrived || v.Status == StatusWaiting {
			continue
		}
		active = append(active, v)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	byEdge := make(map[occupancy.Key][]*Vehicle)
	for _, v := range active {
		k := occupancy.Key{From: v.CurrentNode(), To: v.NextNode()}
		byEdge[k] = append(byEdge[k], v)
	}

	for k, group := range byEdge {
		sort.Slice(group, func(i, j int) bool { return group[i].PositionOnEdge > group[j].PositionOnEdge })
		e := g.Edge(k.From, k.To)
		state := states[k]
		multiplier := state.Multiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		for i, v := range group {
			stepOne(v, group, i, e, multiplier)
		}
	}

	for _, v := range active {
		if err := integrate(v, g, occ, dt, tick); err != nil {
			return err
		}
	}
	return nil
}

// stepOne applies the neighbor scan, following rule, and EMA smoothing
// (§4.6 steps 1-3) for vehicle group[i].
func stepOne(v *Vehicle, group []*Vehicle, i int, e *graph.Edge, multiplier float64) {
	spec, err := SpecFor(v.Type)
	if err != nil {
		return
	}
	typeMax := spec.MaxSpeed

	var rawTarget float64
	hasLeader := i > 0
	if !hasLeader || e == nil {
		rawTarget = typeMax / multiplier
	} else {
		leader := group[i-1]
		lcurve := e.LCurve
		if lcurve <= 0 {
			lcurve = e.Length0
		}
		gap := (leader.PositionOnEdge - v.PositionOnEdge) * lcurve
		switch {
		case gap < gapStop:
			rawTarget = 0
			v.Status = StatusStuck
		case gap < gapSlow:
			rawTarget = typeMax * (gap - gapStop) / gapStop / multiplier
		default:
			rawTarget = typeMax / multiplier
		}
	}

	v.TargetSpeed = smoothingAlpha*rawTarget + (1-smoothingAlpha)*v.TargetSpeed
}

// integrate applies acceleration clamping, position update, and edge
// transition (§4.6 steps 4-6).
func integrate(v *Vehicle, g *graph.Graph, occ *occupancy.Index, dt float64, tick int64) error {
	spec, err := SpecFor(v.Type)
	if err != nil {
		return nil
	}

	diff := v.TargetSpeed - v.CurrentSpeed
	step := math.Min(math.Abs(diff), spec.Acceleration*dt)
	if diff < 0 {
		step = -step
	}
	v.CurrentSpeed += step
	if v.CurrentSpeed < 0 {
		v.CurrentSpeed = 0
	}
	if v.CurrentSpeed > v.TargetSpeed {
		v.CurrentSpeed = v.TargetSpeed
	}

	e := g.Edge(v.CurrentNode(), v.NextNode())
	lcurve := 0.0
	if e != nil {
		lcurve = e.LCurve
	}
	if lcurve <= 0 {
		lcurve = 1
	}
	delta := (v.CurrentSpeed * dt) / lcurve
	if delta >= posEpsilon {
		v.PositionOnEdge += delta
	}

	if v.PositionOnEdge >= 1 {
		return transition(v, g, occ, tick)
	}

	switch {
	case v.CurrentSpeed > speedEpsilon:
		v.Status = StatusMoving
	case v.Status != StatusStuck:
		v.Status = StatusStuck
	}
	return nil
}

// transition advances the vehicle to the next edge, or to arrived if the
// path is exhausted (§4.6 step 6).
func transition(v *Vehicle, g *graph.Graph, occ *occupancy.Index, tick int64) error {
	spec, _ := SpecFor(v.Type)
	fromKey := occupancy.Key{From: v.CurrentNode(), To: v.NextNode()}
	if ok := occ.Leave(v.ID, fromKey, spec.CapacityWeight); !ok {
		return &ErrOccupancyInconsistent{VehicleID: v.ID, Edge: fromKey}
	}

	v.PathIndex++
	v.PositionOnEdge = 0
	if v.AtGoal() {
		v.Status = StatusArrived
		v.ArrivalTick = tick
		return nil
	}
	toKey := occupancy.Key{From: v.CurrentNode(), To: v.NextNode()}
	occ.Enter(v.ID, toKey, spec.CapacityWeight)
	v.Status = StatusMoving
	return nil
}
