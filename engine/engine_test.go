package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/config"
	"trafficsim/graph"
	"trafficsim/vehicle"
)

func allModes() map[graph.Mode]bool {
	return map[graph.Mode]bool{graph.ModeCar: true, graph.ModeBicycle: true, graph.ModePedestrian: true}
}

// chainGraph builds A->B->C->D, each edge one-way. The nodes carry no
// coordinates, so every edge's curve length is zero and Kinematics advances
// along it as a unit-length edge; a car still needs many ticks to cross it.
func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range []string{"A", "B", "C", "D"} {
		require.NoError(t, g.AddNode(&graph.Node{ID: id}))
	}
	require.NoError(t, g.AddEdge(&graph.Edge{From: "A", To: "B", Length0: 5000, Allowed: allModes(), OneWay: true}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "B", To: "C", Length0: 5000, Allowed: allModes(), OneWay: true}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "C", To: "D", Length0: 5000, Allowed: allModes(), OneWay: true}))
	return g
}

func testEngine(t *testing.T, g *graph.Graph) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.AutoSpawnTarget = 0
	cfg.Seed = 1
	store := config.NewStore(cfg, "", nil)
	return New(g, "test", store, nil, nil)
}

func TestSpawnAndTickAdvancesVehicleTowardGoal(t *testing.T) {
	e := testEngine(t, chainGraph(t))
	carType := vehicle.TypeCar
	start, goal := "A", "D"
	id, err := e.SpawnVehicle(&carType, &start, &goal)
	require.NoError(t, err)

	for i := 0; i < 400; i++ {
		e.Tick()
	}

	rec, err := e.GetVehicle(id)
	require.NoError(t, err)
	require.Equal(t, vehicle.StatusArrived, rec.Status)
	require.NotNil(t, rec.ArrivalTick)
}

func TestSpawnVehicleRejectsInfeasiblePath(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "A"}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "B"}))
	// No edge between A and B: any path request is infeasible.
	e := testEngine(t, g)
	carType := vehicle.TypeCar
	start, goal := "A", "B"
	_, err := e.SpawnVehicle(&carType, &start, &goal)
	require.Error(t, err)
}

func TestBlockRoadForcesRerouteAroundDetour(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"A", "B", "C", "D"} {
		require.NoError(t, g.AddNode(&graph.Node{ID: id}))
	}
	// A->B->D direct, and a parallel A->C->D detour.
	require.NoError(t, g.AddEdge(&graph.Edge{From: "A", To: "B", Length0: 1000, Allowed: allModes(), OneWay: true}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "B", To: "D", Length0: 1000, Allowed: allModes(), OneWay: true}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "A", To: "C", Length0: 1000, Allowed: allModes(), OneWay: true}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "C", To: "D", Length0: 1000, Allowed: allModes(), OneWay: true}))

	e := testEngine(t, g)
	carType := vehicle.TypeCar
	start, goal := "A", "D"
	id, err := e.SpawnVehicle(&carType, &start, &goal)
	require.NoError(t, err)

	rec, err := e.GetVehicle(id)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "D"}, rec.Path)

	_, err = e.BlockRoad("B", "D", "test blockage")
	require.NoError(t, err)

	rec, err = e.GetVehicle(id)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C", "D"}, rec.Path)
}

func TestCreateAccidentOnUnknownEdgeIsRejected(t *testing.T) {
	e := testEngine(t, chainGraph(t))
	_, err := e.CreateAccident("A", "D", "minor")
	require.Error(t, err)
}

func TestResetSimulationClearsVehiclesAndTick(t *testing.T) {
	e := testEngine(t, chainGraph(t))
	carType := vehicle.TypeCar
	start, goal := "A", "D"
	_, err := e.SpawnVehicle(&carType, &start, &goal)
	require.NoError(t, err)
	e.Tick()

	e.ResetSimulation(nil, "")

	require.Empty(t, e.ListVehicles())
	require.Equal(t, int64(0), e.TickCount())
}

func TestTickIsDeterministicForFixedSeed(t *testing.T) {
	run := func() []VehicleRecord {
		e := testEngine(t, chainGraph(t))
		carType := vehicle.TypeCar
		start, goal := "A", "D"
		_, err := e.SpawnVehicle(&carType, &start, &goal)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			e.Tick()
		}
		return e.ListVehicles()
	}

	first := run()
	second := run()
	require.Equal(t, first, second)
}
