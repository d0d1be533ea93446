package engine

import (
	"sort"

	"trafficsim/errs"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

// GetState returns the full snapshot (§6.2's get_state()).
func (e *Engine) GetState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	vehicles := e.vehicleRecordsLocked()
	edges := e.edgeRecordsLocked()
	return State{
		Tick:         e.tickCount,
		Vehicles:     vehicles,
		EdgeTraffic:  edges,
		VehicleStats: e.vehicleStatsLocked(),
		TrafficStats: e.trafficStatsLocked(edges),
	}
}

func (e *Engine) vehicleRecordsLocked() []VehicleRecord {
	out := make([]VehicleRecord, 0, len(e.vehicles))
	for _, v := range e.sortedVehicles() {
		out = append(out, toVehicleRecord(v, e.edgeMultiplierLocked(v)))
	}
	return out
}

func (e *Engine) edgeMultiplierLocked(v *vehicle.Vehicle) float64 {
	if v.Status == vehicle.StatusArrived {
		return 1
	}
	k := edgeKey(v)
	if s, ok := e.edgeStates[k]; ok {
		return s.Multiplier
	}
	return 1
}

func (e *Engine) edgeRecordsLocked() []EdgeTrafficRecord {
	out := make([]EdgeTrafficRecord, 0, len(e.edgeStates))
	for _, s := range e.edgeStates {
		out = append(out, toEdgeTrafficRecord(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func (e *Engine) vehicleStatsLocked() VehicleStats {
	stats := VehicleStats{Spawned: e.spawned, Removed: e.removed}
	for _, v := range e.vehicles {
		switch v.Status {
		case vehicle.StatusArrived:
			stats.Arrived++
		case vehicle.StatusStuck:
			stats.Stuck++
			stats.Active++
		default:
			stats.Active++
		}
	}
	return stats
}

func (e *Engine) trafficStatsLocked(edges []EdgeTrafficRecord) TrafficStats {
	stats := TrafficStats{}
	if len(edges) == 0 {
		return stats
	}
	var sumDensity, sumProb float64
	for _, ed := range edges {
		if ed.Level == traffic.LevelCongested {
			stats.CongestedEdges++
		}
		sumDensity += ed.Density
		sumProb += ed.CongestionProbability
	}
	n := float64(len(edges))
	stats.MeanDensity = sumDensity / n
	stats.MeanProbability = sumProb / n
	return stats
}

// ListVehicles returns every vehicle record (§6.2).
func (e *Engine) ListVehicles() []VehicleRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vehicleRecordsLocked()
}

// GetVehicle returns one vehicle record by id.
func (e *Engine) GetVehicle(id string) (VehicleRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vehicles[id]
	if !ok {
		return VehicleRecord{}, errs.NotFound("vehicle %q not found", id)
	}
	return toVehicleRecord(v, e.edgeMultiplierLocked(v)), nil
}

// GetEdgeTraffic returns every edge's traffic record (§6.2).
func (e *Engine) GetEdgeTraffic() []EdgeTrafficRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edgeRecordsLocked()
}

// GetTrafficStatistics returns network-wide congestion aggregates (§6.2).
func (e *Engine) GetTrafficStatistics() TrafficStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trafficStatsLocked(e.edgeRecordsLocked())
}

// GetCongestionReport returns the top-k bottleneck edges (§4.4, §6.2).
func (e *Engine) GetCongestionReport(k int) []EdgeTrafficRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	ranked := traffic.Bottlenecks(e.edgeStates, k)
	out := make([]EdgeTrafficRecord, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, toEdgeTrafficRecord(s))
	}
	return out
}

// ListAccidents returns every active accident (§6.2).
func (e *Engine) ListAccidents() []AccidentRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	accidents := e.incidents.Accidents()
	out := make([]AccidentRecord, 0, len(accidents))
	for _, a := range accidents {
		out = append(out, toAccidentRecord(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBlockedRoads returns every active blockage (§6.2).
func (e *Engine) ListBlockedRoads() []BlockageRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	blockages := e.incidents.Blockages()
	out := make([]BlockageRecord, 0, len(blockages))
	for _, b := range blockages {
		out = append(out, toBlockageRecord(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SimulationInfo is the get_simulation_info() response (§6.2).
type SimulationInfo struct {
	Tick         int64        `json:"tick"`
	Map          string       `json:"map"`
	VehicleStats VehicleStats `json:"vehicle_stats"`
	TrafficStats TrafficStats `json:"traffic_stats"`
	Accidents    int          `json:"accidents"`
	Blockages    int          `json:"blockages"`
	Continuous   bool         `json:"continuous_running"`
}

// GetSimulationInfo returns a compact summary (§6.2).
func (e *Engine) GetSimulationInfo() SimulationInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	edges := e.edgeRecordsLocked()
	return SimulationInfo{
		Tick:         e.tickCount,
		Map:          e.currentMap,
		VehicleStats: e.vehicleStatsLocked(),
		TrafficStats: e.trafficStatsLocked(edges),
		Accidents:    len(e.incidents.Accidents()),
		Blockages:    len(e.incidents.Blockages()),
		Continuous:   e.continuousStop != nil,
	}
}
