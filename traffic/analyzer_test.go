package traffic_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/graph"
	"trafficsim/occupancy"
	"trafficsim/traffic"
)

func smallGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "X"}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "Y"}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "Z"}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "X", To: "Y", Length0: 1, OneWay: true, Allowed: map[graph.Mode]bool{graph.ModeCar: true}}))
	require.NoError(t, g.AddEdge(&graph.Edge{From: "Y", To: "Z", Length0: 1, OneWay: true, Allowed: map[graph.Mode]bool{graph.ModeCar: true}}))
	return g
}

func TestLevelForDensityThresholds(t *testing.T) {
	require.Equal(t, traffic.LevelHeavy, traffic.LevelForDensity(0.999999))
	require.Equal(t, traffic.LevelCongested, traffic.LevelForDensity(1.0))
	require.Equal(t, traffic.LevelFreeFlow, traffic.LevelForDensity(0.1))
}

func TestBottlenecksRankByProbabilityThenCount(t *testing.T) {
	g := smallGraph(t)
	occ := occupancy.New()
	for i := 0; i < 10; i++ {
		occ.Enter(string(rune('a'+i)), occupancy.Key{From: "X", To: "Y"}, 1.0)
	}
	occ.Enter("p1", occupancy.Key{From: "Y", To: "Z"}, 1.0)
	occ.Enter("p2", occupancy.Key{From: "Y", To: "Z"}, 1.0)

	a := traffic.New(traffic.Config{SmoothingAlpha: 0.3, HistoryWindow: 20, BaseEdgeCapacity: 3}, rand.New(rand.NewSource(1)))
	states := a.Recompute(g, occ, nil, nil)

	top := traffic.Bottlenecks(states, 1)
	require.Len(t, top, 1)
	require.Equal(t, "X", top[0].Key.From)
	require.Equal(t, "Y", top[0].Key.To)
	require.Equal(t, traffic.LevelCongested, top[0].Level)
	require.GreaterOrEqual(t, top[0].Probability, 0.9)
}

func TestBlockedEdgeHasInfiniteCost(t *testing.T) {
	g := smallGraph(t)
	occ := occupancy.New()
	a := traffic.New(traffic.Config{SmoothingAlpha: 0.3, HistoryWindow: 20, BaseEdgeCapacity: 3}, rand.New(rand.NewSource(1)))
	blocked := map[occupancy.Key]bool{{From: "X", To: "Y"}: true}
	states := a.Recompute(g, occ, blocked, nil)
	s := states[occupancy.Key{From: "X", To: "Y"}]
	require.True(t, s.Blocked)
	require.True(t, s.Cost(1.0) > 1e300)
}
