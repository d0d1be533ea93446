// Package metrics exposes Prometheus gauges/counters mirroring a subset of
// the statistics surface (§10.3). No teacher precedent exists for this; it
// is additive to, and never a substitute for, the JSON statistics
// operations in §6.2.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every gauge/counter the engine updates once per tick.
type Metrics struct {
	TickDuration      prometheus.Histogram
	ActiveVehicles    prometheus.Gauge
	ArrivedVehicles   prometheus.Gauge
	StuckVehicles     prometheus.Gauge
	CongestedEdges    prometheus.Gauge
	ReroutesPerTick   prometheus.Counter
	ActiveAccidents   prometheus.Gauge
	ActiveBlockages   prometheus.Gauge
}

// New constructs and registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficsim_tick_duration_seconds",
			Help:    "Wall-clock duration of a single simulation tick.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_active_vehicles",
			Help: "Vehicles currently neither arrived nor removed.",
		}),
		ArrivedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_arrived_vehicles_total_gauge",
			Help: "Vehicles with status=arrived as of the last tick.",
		}),
		StuckVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_stuck_vehicles",
			Help: "Vehicles with status=stuck as of the last tick.",
		}),
		CongestedEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_congested_edges",
			Help: "Edges with level=congested as of the last tick.",
		}),
		ReroutesPerTick: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_reroutes_total",
			Help: "Cumulative count of vehicle reroutes granted.",
		}),
		ActiveAccidents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_active_accidents",
			Help: "Currently unresolved accidents.",
		}),
		ActiveBlockages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_active_blockages",
			Help: "Currently active road blockages.",
		}),
	}
	reg.MustRegister(m.TickDuration, m.ActiveVehicles, m.ArrivedVehicles, m.StuckVehicles, m.CongestedEdges, m.ReroutesPerTick, m.ActiveAccidents, m.ActiveBlockages)
	return m
}
