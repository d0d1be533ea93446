package engine

import (
	"trafficsim/errs"
	"trafficsim/occupancy"
	"trafficsim/router"
	"trafficsim/vehicle"
)

// SpawnVehicle creates one vehicle (§4.7's spawn operation, §6.2's
// spawn_vehicle). A nil t is taken as a car; a nil start or goal is filled
// in randomly. Returns errs' infeasible kind if no path exists; that error
// does not wrap router.ErrNoPath.
func (e *Engine) SpawnVehicle(t *vehicle.Type, start, goal *string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spawnLocked(t, start, goal)
}

func (e *Engine) spawnLocked(t *vehicle.Type, start, goal *string) (string, error) {
	vt := vehicle.TypeCar
	if t != nil {
		vt = *t
	}
	if _, err := vehicle.SpecFor(vt); err != nil {
		return "", errs.Validation("%v", err)
	}

	nodes := e.g.Nodes()
	if len(nodes) < 2 {
		return "", errs.Infeasible("graph has fewer than two nodes")
	}
	startID := ""
	if start != nil {
		if e.g.Node(*start) == nil {
			return "", errs.Validation("unknown start node %q", *start)
		}
		startID = *start
	} else {
		startID = nodes[e.rng.Intn(len(nodes))].ID
	}
	goalID := ""
	if goal != nil {
		if e.g.Node(*goal) == nil {
			return "", errs.Validation("unknown goal node %q", *goal)
		}
		goalID = *goal
	} else {
		for attempts := 0; attempts < 20; attempts++ {
			cand := nodes[e.rng.Intn(len(nodes))].ID
			if cand != startID {
				goalID = cand
				break
			}
		}
		if goalID == "" {
			return "", errs.Infeasible("no distinct goal node available")
		}
	}

	path, err := router.FindPath(e.g, startID, goalID, vt.Mode(), e.costFn())
	if err != nil {
		return "", errs.Infeasible("no path from %s to %s for mode %s", startID, goalID, vt)
	}

	v := &vehicle.Vehicle{
		ID:        e.nextVehicleID(vt),
		Type:      vt,
		Start:     startID,
		Goal:      goalID,
		Path:      path.Nodes,
		PathIndex: 0,
		Status:    vehicle.StatusMoving,
		SpawnTick: e.tickCount,
	}
	if len(path.Nodes) > 1 {
		spec, _ := vehicle.SpecFor(vt)
		e.occ.Enter(v.ID, occupancy.Key{From: path.Nodes[0], To: path.Nodes[1]}, spec.CapacityWeight)
	} else {
		v.Status = vehicle.StatusArrived
		v.ArrivalTick = e.tickCount
	}
	e.vehicles[v.ID] = v
	e.spawned++
	return v.ID, nil
}

// SpawnMultiple spawns count vehicles with types drawn from distribution
// (keys car/bicycle/pedestrian, values need not sum to 1 — they are
// normalized). Infeasible spawns are retried with a fresh random
// start/goal up to a bounded number of attempts and otherwise skipped,
// mirroring the engine's auto-spawn retry behavior (§4.7 step 6, §7).
func (e *Engine) SpawnMultiple(count int, distribution map[vehicle.Type]float64) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if count <= 0 {
		return nil, errs.Validation("count must be positive")
	}
	if len(distribution) == 0 {
		distribution = map[vehicle.Type]float64{vehicle.TypeCar: 1.0}
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		vt := e.sampleType(distribution)
		const maxAttempts = 5
		for attempt := 0; attempt < maxAttempts; attempt++ {
			id, err := e.spawnLocked(&vt, nil, nil)
			if err == nil {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (e *Engine) sampleType(distribution map[vehicle.Type]float64) vehicle.Type {
	var total float64
	for _, w := range distribution {
		total += w
	}
	if total <= 0 {
		return vehicle.TypeCar
	}
	r := e.rng.Float64() * total
	var cumulative float64
	// Iterate in a fixed order for determinism (§9).
	for _, t := range []vehicle.Type{vehicle.TypeCar, vehicle.TypeBicycle, vehicle.TypePedestrian} {
		w, ok := distribution[t]
		if !ok {
			continue
		}
		cumulative += w
		if r <= cumulative {
			return t
		}
	}
	return vehicle.TypeCar
}
