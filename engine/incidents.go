package engine

import (
	"trafficsim/errs"
	"trafficsim/occupancy"
	"trafficsim/router"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

// CreateAccident registers an accident on the given edge, or on a random
// currently-occupied edge if from/to are both empty (§4.5, §6.2).
func (e *Engine) CreateAccident(from, to string, severity traffic.Severity) (AccidentRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch severity {
	case traffic.SeverityMinor, traffic.SeverityMajor, traffic.SeveritySevere:
	default:
		return AccidentRecord{}, errs.Validation("unknown severity %q", severity)
	}

	k := occupancy.Key{From: from, To: to}
	if from == "" && to == "" {
		occupied := e.occupiedEdgesLocked()
		if len(occupied) == 0 {
			return AccidentRecord{}, errs.Conflict("no occupied edge to place an accident on")
		}
		k = occupied[e.rng.Intn(len(occupied))]
	} else if e.g.Edge(from, to) == nil {
		return AccidentRecord{}, errs.Validation("unknown edge %s->%s", from, to)
	}

	a := e.incidents.CreateAccident(k, severity, e.tickCount)
	return toAccidentRecord(a), nil
}

func (e *Engine) occupiedEdgesLocked() []occupancy.Key {
	seen := make(map[occupancy.Key]bool)
	for _, v := range e.vehicles {
		if v.Status == vehicle.StatusArrived {
			continue
		}
		if v.NextNode() == "" {
			continue
		}
		seen[edgeKey(v)] = true
	}
	out := make([]occupancy.Key, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out
}

// ResolveAccident removes an accident immediately (§4.5, §6.2). An id that
// was never issued and an id whose accident has already been resolved or
// expired both yield the same not-found error; the two cases are not
// distinguished.
func (e *Engine) ResolveAccident(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.incidents.ResolveAccident(id); err != nil {
		return errs.NotFound("accident %q not found", id)
	}
	return nil
}

// BlockRoad makes edge (from,to) impassable and immediately reroutes (or
// marks stuck) every vehicle whose remaining path crosses it (§4.5), without
// waiting for the next tick.
func (e *Engine) BlockRoad(from, to, reason string) (BlockageRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.g.Edge(from, to) == nil {
		return BlockageRecord{}, errs.Validation("unknown edge %s->%s", from, to)
	}
	k := occupancy.Key{From: from, To: to}
	b, err := e.incidents.Block(k, reason, e.tickCount)
	if err != nil {
		return BlockageRecord{}, errs.Conflict("%v", err)
	}
	e.forceRerouteCrossing(k)
	return toBlockageRecord(b), nil
}

// forceRerouteCrossing reroutes (or marks stuck) every vehicle whose
// remaining path crosses the now-blocked edge k, downstream of its current
// position (§4.5).
func (e *Engine) forceRerouteCrossing(k occupancy.Key) {
	for _, v := range e.sortedVehicles() {
		if v.Status == vehicle.StatusArrived {
			continue
		}
		if !pathCrosses(v.Path[v.PathIndex:], k) {
			continue
		}
		newPath, err := router.FindPath(e.g, v.CurrentNode(), v.Goal, v.Type.Mode(), e.costFn())
		if err != nil {
			v.Status = vehicle.StatusStuck
			continue
		}
		v.ApplyReroute(newPath.Nodes, e.tickCount)
	}
}

func pathCrosses(remaining []string, k occupancy.Key) bool {
	for i := 0; i+1 < len(remaining); i++ {
		if remaining[i] == k.From && remaining[i+1] == k.To {
			return true
		}
	}
	return false
}

// UnblockRoad clears a blockage (§4.5, §6.2). Returns false if it was not blocked.
func (e *Engine) UnblockRoad(from, to string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incidents.Unblock(occupancy.Key{From: from, To: to})
}
