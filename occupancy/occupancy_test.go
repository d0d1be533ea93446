package occupancy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/occupancy"
)

func TestEnterLeaveTracksWeightedLoad(t *testing.T) {
	idx := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}

	idx.Enter("v1", k, 1.0)
	idx.Enter("v2", k, 0.5)
	require.Equal(t, 2, idx.Count(k))
	require.Equal(t, 1.5, idx.Weighted(k))
	require.Equal(t, []string{"v1", "v2"}, idx.On(k))

	ok := idx.Leave("v1", k, 1.0)
	require.True(t, ok)
	require.Equal(t, 1, idx.Count(k))
	require.Equal(t, 0.5, idx.Weighted(k))
}

func TestLeaveUnknownVehicleReportsInconsistency(t *testing.T) {
	idx := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}
	ok := idx.Leave("ghost", k, 1.0)
	require.False(t, ok)
}

func TestResetClearsAllEdges(t *testing.T) {
	idx := occupancy.New()
	k := occupancy.Key{From: "A", To: "B"}
	idx.Enter("v1", k, 1.0)
	idx.Reset()
	require.Equal(t, 0, idx.Count(k))
}
