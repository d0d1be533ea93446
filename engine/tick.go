package engine

import (
	"time"

	"trafficsim/config"
	"trafficsim/occupancy"
	"trafficsim/router"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

const (
	minDt = 10 * time.Millisecond
	maxDt = 500 * time.Millisecond
)

// Tick advances the simulation by one indivisible step (§4.7). It returns
// the resulting state snapshot (get_state()'s shape).
func (e *Engine) Tick() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

func (e *Engine) tickLocked() State {
	start := time.Now()
	cfg := e.cfgStore.Get()

	dt := e.computeDt(start)

	// Step 2: expire accidents.
	e.incidents.ExpireAccidents(e.tickCount)

	// Step 3: recompute per-edge traffic state.
	blocked := e.incidents.BlockedEdges()
	accidentSeverity := e.incidents.AccidentSeverities()
	e.edgeStates = e.analyzer.Recompute(e.g, e.occ, blocked, accidentSeverity)

	// Step 4: reroute decisions.
	e.reroutesThisTick = 0
	for _, v := range e.sortedVehicles() {
		switch v.Status {
		case vehicle.StatusMoving, vehicle.StatusStuck, vehicle.StatusRerouting:
			e.maybeReroute(v, cfg)
		}
	}

	// Step 5: kinematics.
	if err := vehicle.Advance(e.g, e.occ, e.edgeStates, e.sortedVehicles(), dt.Seconds(), e.tickCount); err != nil {
		// §7 fatal condition: an Occupancy invariant was violated. Report it
		// and abort the remainder of this tick rather than spawning more
		// vehicles on top of inconsistent state.
		if e.log != nil {
			e.log.WithError(err).Error("tick aborted: occupancy invariant violated")
		}
		e.tickCount++
		return e.stateLocked()
	}

	// Step 6: auto-spawn.
	e.autoSpawn(cfg)

	// Step 7: advance tick count, metrics, logging.
	e.tickCount++
	elapsed := time.Since(start)
	e.updateMetrics(elapsed)
	e.logTick(elapsed)

	return e.stateLocked()
}

func (e *Engine) computeDt(now time.Time) time.Duration {
	if e.lastTickTime.IsZero() {
		e.lastTickTime = now
		return minDt
	}
	dt := now.Sub(e.lastTickTime)
	e.lastTickTime = now
	if dt < minDt {
		return minDt
	}
	if dt > maxDt {
		return maxDt
	}
	return dt
}

// maybeReroute implements §4.7 step 4: lookahead over up to
// reroute_lookahead_edges, triggered by high congestion probability, an
// active blockage, a major-or-worse accident, or a path-cost overrun beyond
// reroute_threshold; rate-limited to one reroute per vehicle per 5 ticks.
func (e *Engine) maybeReroute(v *vehicle.Vehicle, cfg *config.Config) {
	if !v.CanRerouteAt(e.tickCount) {
		return
	}
	if !e.needsReroute(v, cfg) {
		return
	}
	newPath, err := router.FindPath(e.g, v.CurrentNode(), v.Goal, v.Type.Mode(), e.costFn())
	if err != nil {
		// No alternative: vehicle remains on its current plan; Kinematics
		// may still mark it stuck if physically blocked (§4.5).
		return
	}
	if len(newPath.Nodes) == 0 || newPath.Nodes[0] != v.CurrentNode() {
		return
	}
	if pathEqualTail(v.Path[v.PathIndex:], newPath.Nodes) {
		return
	}
	v.ApplyReroute(newPath.Nodes, e.tickCount)
	e.reroutesThisTick++
}

func (e *Engine) needsReroute(v *vehicle.Vehicle, cfg *config.Config) bool {
	remaining := v.Path[v.PathIndex:]
	limit := cfg.RerouteLookaheadEdges
	if limit > len(remaining)-1 {
		limit = len(remaining) - 1
	}
	for i := 0; i < limit; i++ {
		k := occupancy.Key{From: remaining[i], To: remaining[i+1]}
		s, ok := e.edgeStates[k]
		if !ok {
			continue
		}
		if s.Blocked {
			return true
		}
		if s.Probability >= cfg.RerouteProbabilityThreshold {
			return true
		}
		if s.AccidentSeverity == traffic.SeverityMajor || s.AccidentSeverity == traffic.SeveritySevere {
			return true
		}
	}
	return e.pathCostOverrun(remaining, cfg.RerouteThreshold)
}

// pathCostOverrun compares the live cost of the vehicle's remaining path
// against its base-length cost, flagging a reroute when live cost exceeds
// base cost by more than threshold (a proxy for "exceeds the stored path
// cost", since the engine does not persist the path's cost at spawn time).
func (e *Engine) pathCostOverrun(remaining []string, threshold float64) bool {
	var liveCost, baseCost float64
	for i := 0; i+1 < len(remaining); i++ {
		edge := e.g.Edge(remaining[i], remaining[i+1])
		if edge == nil {
			continue
		}
		baseCost += edge.Length0
		k := occupancy.Key{From: remaining[i], To: remaining[i+1]}
		if s, ok := e.edgeStates[k]; ok {
			liveCost += s.Cost(edge.Length0)
		} else {
			liveCost += edge.Length0
		}
	}
	if baseCost <= 0 {
		return false
	}
	return (liveCost-baseCost)/baseCost > threshold
}

func pathEqualTail(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// autoSpawn implements §4.7 step 6: top up the active population toward
// auto_spawn_target in batches of auto_spawn_batch, retrying an infeasible
// draw with a fresh random start/goal up to 5 times and otherwise skipping
// it silently (§7).
func (e *Engine) autoSpawn(cfg *config.Config) {
	if cfg.AutoSpawnTarget <= 0 {
		return
	}
	active := e.activeCountLocked()
	if active >= cfg.AutoSpawnTarget {
		return
	}
	batch := cfg.AutoSpawnBatch
	if batch <= 0 {
		batch = 1
	}
	distribution := map[vehicle.Type]float64{vehicle.TypeCar: 0.6, vehicle.TypeBicycle: 0.25, vehicle.TypePedestrian: 0.15}
	const maxAttempts = 5
	for i := 0; i < batch && active+i < cfg.AutoSpawnTarget; i++ {
		vt := e.sampleType(distribution)
		for attempt := 0; attempt < maxAttempts; attempt++ {
			if _, err := e.spawnLocked(&vt, nil, nil); err == nil {
				break
			}
		}
	}
}

func (e *Engine) activeCountLocked() int {
	n := 0
	for _, v := range e.vehicles {
		if v.Status != vehicle.StatusArrived {
			n++
		}
	}
	return n
}
