package vehicle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/graph"
	"trafficsim/occupancy"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

func chain(t *testing.T, length float64) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "A", X: 0, Y: 0}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "B", X: length, Y: 0}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "A", To: "B", Length0: length, OneWay: true, Allowed: map[graph.Mode]bool{graph.ModeCar: true}}))
	return g
}

func freeFlowState(k occupancy.Key) map[occupancy.Key]traffic.EdgeState {
	return map[occupancy.Key]traffic.EdgeState{k: {Key: k, Multiplier: 1.0, Level: traffic.LevelFreeFlow}}
}

func TestLeaderAcceleratesTowardMax(t *testing.T) {
	g := chain(t, 100000)
	occ := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}

	v := &vehicle.Vehicle{ID: "v1", Type: vehicle.TypeCar, Path: []string{"A", "B"}, Status: vehicle.StatusMoving}
	occ.Enter(v.ID, k, 1.0)

	for i := 0; i < 200; i++ {
		vehicle.Advance(g, occ, freeFlowState(k), []*vehicle.Vehicle{v}, 0.2, int64(i))
	}
	require.InDelta(t, 60.0, v.CurrentSpeed, 1.0)
}

func TestFollowerStopsWithinStopGap(t *testing.T) {
	g := chain(t, 300)
	occ := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}

	leader := &vehicle.Vehicle{ID: "lead", Type: vehicle.TypeCar, Path: []string{"A", "B"}, Status: vehicle.StatusMoving, PositionOnEdge: 0.15}
	follower := &vehicle.Vehicle{ID: "foll", Type: vehicle.TypeCar, Path: []string{"A", "B"}, Status: vehicle.StatusMoving, PositionOnEdge: 0.1}
	occ.Enter(leader.ID, k, 1.0)
	occ.Enter(follower.ID, k, 1.0)

	vehicle.Advance(g, occ, freeFlowState(k), []*vehicle.Vehicle{leader, follower}, 0.2, 1)

	require.Equal(t, vehicle.StatusStuck, follower.Status)
	require.Equal(t, 0.0, follower.CurrentSpeed)
}

func TestVehicleArrivesAndLeavesOccupancy(t *testing.T) {
	g := chain(t, 1)
	occ := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}

	v := &vehicle.Vehicle{ID: "v1", Type: vehicle.TypeCar, Path: []string{"A", "B"}, Status: vehicle.StatusMoving, PositionOnEdge: 0.999, CurrentSpeed: 60, TargetSpeed: 60}
	occ.Enter(v.ID, k, 1.0)

	vehicle.Advance(g, occ, freeFlowState(k), []*vehicle.Vehicle{v}, 1.0, 5)

	require.Equal(t, vehicle.StatusArrived, v.Status)
	require.Equal(t, int64(5), v.ArrivalTick)
	require.Equal(t, 0, occ.Count(k))
}
