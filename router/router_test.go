package router_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/graph"
	"trafficsim/router"
)

func unitCost(e *graph.Edge) float64 { return e.Length0 }

func parallelMap() *graph.Graph {
	g, err := graph.LoadFromReader(strings.NewReader(`{
		"nodes": {"A":[0,0], "B":[1,1], "C":[1,-1], "D":[2,0]},
		"edges": [
			{"from":"A","to":"B","distance":2,"allowed":["car"],"one_way":false},
			{"from":"B","to":"D","distance":2,"allowed":["car"],"one_way":false},
			{"from":"A","to":"C","distance":3,"allowed":["car"],"one_way":false},
			{"from":"C","to":"D","distance":3,"allowed":["car"],"one_way":false}
		]
	}`))
	if err != nil {
		panic(err)
	}
	return g
}

func TestFindPathPrefersCheaperRoute(t *testing.T) {
	g := parallelMap()
	p, err := router.FindPath(g, "A", "D", graph.ModeCar, unitCost)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "D"}, p.Nodes)
	require.Equal(t, 4.0, p.Cost)
}

func TestFindPathReturnsNoPathWhenBlocked(t *testing.T) {
	g := parallelMap()
	cost := func(e *graph.Edge) float64 {
		if e.From == "B" && e.To == "D" {
			return math.Inf(1)
		}
		if e.From == "C" && e.To == "D" {
			return math.Inf(1)
		}
		return e.Length0
	}
	_, err := router.FindPath(g, "A", "D", graph.ModeCar, cost)
	require.ErrorIs(t, err, router.ErrNoPath)
}

func TestFindPathRespectsMode(t *testing.T) {
	g := parallelMap()
	_, err := router.FindPath(g, "A", "D", graph.ModePedestrian, unitCost)
	require.ErrorIs(t, err, router.ErrNoPath)
}

func TestFindPathRerouteAfterBlockage(t *testing.T) {
	g := parallelMap()
	blocked := false
	cost := func(e *graph.Edge) float64 {
		if blocked && e.From == "B" && e.To == "D" {
			return math.Inf(1)
		}
		return e.Length0
	}
	p1, err := router.FindPath(g, "A", "D", graph.ModeCar, cost)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "D"}, p1.Nodes)

	blocked = true
	p2, err := router.FindPath(g, "A", "D", graph.ModeCar, cost)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C", "D"}, p2.Nodes)
}
