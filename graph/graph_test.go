package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/graph"
)

func chainMapJSON() string {
	return `{
		"nodes": {"A": [0,0], "B": [10,0], "C": [20,0]},
		"edges": [
			{"from": "A", "to": "B", "distance": 2, "allowed": ["car"], "one_way": false},
			{"from": "B", "to": "C", "distance": 2, "allowed": ["car"], "one_way": false}
		]
	}`
}

func TestLoadFromReaderBuildsBidirectionalEdges(t *testing.T) {
	g, err := graph.LoadFromReader(strings.NewReader(chainMapJSON()))
	require.NoError(t, err)

	ab := g.Edge("A", "B")
	require.NotNil(t, ab)
	require.Equal(t, 2.0, ab.Length0)
	require.True(t, ab.AllowsMode(graph.ModeCar))
	require.False(t, ab.AllowsMode(graph.ModePedestrian))

	ba := g.Edge("B", "A")
	require.NotNil(t, ba, "non-one-way edge must produce a mirrored reverse edge")
}

func TestLoadFromReaderRejectsUnknownMode(t *testing.T) {
	bad := `{"nodes":{"A":[0,0],"B":[1,0]},"edges":[{"from":"A","to":"B","distance":1,"allowed":["train"],"one_way":true}]}`
	_, err := graph.LoadFromReader(strings.NewReader(bad))
	require.Error(t, err)
}

func TestAddEdgeRejectsNonPositiveLength(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "A"}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "B"}))
	err := g.AddEdge(&graph.Edge{From: "A", To: "B", Length0: 0, OneWay: true})
	require.Error(t, err)
}

func TestNeighborsFiltersByMode(t *testing.T) {
	g, err := graph.LoadFromReader(strings.NewReader(chainMapJSON()))
	require.NoError(t, err)

	require.Len(t, g.Neighbors("A", graph.ModeCar), 1)
	require.Empty(t, g.Neighbors("A", graph.ModePedestrian))
}

func TestCurveOffsetIsDeterministic(t *testing.T) {
	g1, err := graph.LoadFromReader(strings.NewReader(chainMapJSON()))
	require.NoError(t, err)
	g2, err := graph.LoadFromReader(strings.NewReader(chainMapJSON()))
	require.NoError(t, err)

	require.Equal(t, g1.Edge("A", "B").CurveOffset, g2.Edge("A", "B").CurveOffset)
	require.Greater(t, g1.Edge("A", "B").LCurve, 0.0)
}
