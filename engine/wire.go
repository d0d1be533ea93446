package engine

import (
	"trafficsim/incident"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

// VehicleRecord is the wire shape of a vehicle (§6.3).
type VehicleRecord struct {
	ID               string       `json:"id"`
	Type             vehicle.Type `json:"type"`
	Status           vehicle.Status `json:"status"`
	StartNode        string       `json:"start_node"`
	GoalNode         string       `json:"goal_node"`
	CurrentNode      string       `json:"current_node"`
	NextNode         string       `json:"next_node,omitempty"`
	Path             []string     `json:"path"`
	PathIndex        int          `json:"path_index"`
	PositionOnEdge   float64      `json:"position_on_edge"`
	CurrentSpeed     float64      `json:"current_speed"`
	TargetSpeed      float64      `json:"target_speed"`
	SpeedMultiplier  float64      `json:"speed_multiplier"`
	RerouteCount     int          `json:"reroute_count"`
	SpawnTick        int64        `json:"spawn_tick"`
	ArrivalTick      *int64       `json:"arrival_tick,omitempty"`
}

func toVehicleRecord(v *vehicle.Vehicle, multiplier float64) VehicleRecord {
	rec := VehicleRecord{
		ID: v.ID, Type: v.Type, Status: v.Status,
		StartNode: v.Start, GoalNode: v.Goal,
		CurrentNode: v.CurrentNode(), NextNode: v.NextNode(),
		Path: v.Path, PathIndex: v.PathIndex, PositionOnEdge: v.PositionOnEdge,
		CurrentSpeed: v.CurrentSpeed, TargetSpeed: v.TargetSpeed, SpeedMultiplier: multiplier,
		RerouteCount: v.RerouteCount, SpawnTick: v.SpawnTick,
	}
	if v.Status == vehicle.StatusArrived {
		t := v.ArrivalTick
		rec.ArrivalTick = &t
	}
	return rec
}

// EdgeTrafficRecord is the wire shape of per-edge traffic state (§6.4).
type EdgeTrafficRecord struct {
	From                 string               `json:"from"`
	To                   string               `json:"to"`
	VehicleCount         int                  `json:"vehicle_count"`
	WeightedLoad         float64              `json:"weighted_load"`
	Capacity             float64              `json:"capacity"`
	Density              float64              `json:"density"`
	Level                traffic.CongestionLevel `json:"level"`
	Multiplier           float64              `json:"multiplier"`
	CongestionProbability float64             `json:"congestion_probability"`
}

func toEdgeTrafficRecord(s traffic.EdgeState) EdgeTrafficRecord {
	return EdgeTrafficRecord{
		From: s.Key.From, To: s.Key.To, VehicleCount: s.VehicleCount, WeightedLoad: s.WeightedLoad,
		Capacity: s.Capacity, Density: s.Density, Level: s.Level, Multiplier: s.Multiplier,
		CongestionProbability: s.Probability,
	}
}

// AccidentRecord is the wire shape of an active accident.
type AccidentRecord struct {
	ID            string           `json:"id"`
	From          string           `json:"from"`
	To            string           `json:"to"`
	Severity      traffic.Severity `json:"severity"`
	CreatedTick   int64            `json:"created_tick"`
	ClearanceTick int64            `json:"clearance_tick,omitempty"`
}

func toAccidentRecord(a *incident.Accident) AccidentRecord {
	return AccidentRecord{ID: a.ID, From: a.Edge.From, To: a.Edge.To, Severity: a.Severity, CreatedTick: a.CreatedTick, ClearanceTick: a.ClearanceTick}
}

// BlockageRecord is the wire shape of an active road blockage.
type BlockageRecord struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Reason      string `json:"reason"`
	CreatedTick int64  `json:"created_tick"`
}

func toBlockageRecord(b *incident.Blockage) BlockageRecord {
	return BlockageRecord{ID: b.ID, From: b.Edge.From, To: b.Edge.To, Reason: b.Reason, CreatedTick: b.CreatedTick}
}

// State is the full snapshot returned by get_state() (§6.2).
type State struct {
	Tick          int64               `json:"tick"`
	Vehicles      []VehicleRecord     `json:"vehicles"`
	EdgeTraffic   []EdgeTrafficRecord `json:"edge_traffic"`
	VehicleStats  VehicleStats        `json:"vehicle_stats"`
	TrafficStats  TrafficStats        `json:"traffic_stats"`
}

// VehicleStats summarizes the vehicle population for get_state()/
// get_simulation_info().
type VehicleStats struct {
	Active   int `json:"active"`
	Arrived  int `json:"arrived"`
	Stuck    int `json:"stuck"`
	Spawned  int `json:"spawned"`
	Removed  int `json:"removed"`
}

// TrafficStats summarizes network-wide congestion for get_state()/
// get_traffic_statistics().
type TrafficStats struct {
	CongestedEdges int     `json:"congested_edges"`
	MeanDensity    float64 `json:"mean_density"`
	MeanProbability float64 `json:"mean_probability"`
}
