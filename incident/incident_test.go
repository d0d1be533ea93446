package incident_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trafficsim/incident"
	"trafficsim/occupancy"
	"trafficsim/traffic"
)

func TestBlockUnblockRoundTrip(t *testing.T) {
	m := incident.New(0)
	edge := occupancy.Key{From: "B", To: "D"}

	_, err := m.Block(edge, "tree down", 10)
	require.NoError(t, err)
	require.True(t, m.IsBlocked(edge))

	_, err = m.Block(edge, "again", 11)
	require.Error(t, err)

	require.True(t, m.Unblock(edge))
	require.False(t, m.IsBlocked(edge))
	require.False(t, m.Unblock(edge), "unblocking an already-clear edge is a no-op")
}

func TestAccidentAutoClearWhenConfigured(t *testing.T) {
	m := incident.New(5)
	edge := occupancy.Key{From: "A", To: "B"}
	a := m.CreateAccident(edge, traffic.SeverityMajor, 10)
	require.Equal(t, int64(15), a.ClearanceTick)

	m.ExpireAccidents(14)
	require.Len(t, m.Accidents(), 1)

	m.ExpireAccidents(15)
	require.Len(t, m.Accidents(), 0)
}

func TestAccidentPersistsWhenAutoClearDisabled(t *testing.T) {
	m := incident.New(0)
	a := m.CreateAccident(occupancy.Key{From: "A", To: "B"}, traffic.SeverityMinor, 1)
	require.Equal(t, int64(0), a.ClearanceTick)
	m.ExpireAccidents(10_000)
	require.Len(t, m.Accidents(), 1)
}

func TestAccidentSeveritiesReportsMostSevere(t *testing.T) {
	m := incident.New(0)
	edge := occupancy.Key{From: "A", To: "B"}
	m.CreateAccident(edge, traffic.SeverityMinor, 1)
	m.CreateAccident(edge, traffic.SeveritySevere, 1)

	sev := m.AccidentSeverities()
	require.Equal(t, traffic.SeveritySevere, sev[edge])
}
