package engine

import (
	"time"

	"trafficsim/traffic"
)

// updateMetrics refreshes the Prometheus gauges (§10.3) after a tick. No-op
// if metrics were not configured.
func (e *Engine) updateMetrics(elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	stats := e.vehicleStatsLocked()
	congested := 0
	for _, s := range e.edgeStates {
		if s.Level == traffic.LevelCongested {
			congested++
		}
	}
	e.metrics.TickDuration.Observe(elapsed.Seconds())
	e.metrics.ActiveVehicles.Set(float64(stats.Active))
	e.metrics.ArrivedVehicles.Set(float64(stats.Arrived))
	e.metrics.StuckVehicles.Set(float64(stats.Stuck))
	e.metrics.CongestedEdges.Set(float64(congested))
	e.metrics.ActiveAccidents.Set(float64(len(e.incidents.Accidents())))
	e.metrics.ActiveBlockages.Set(float64(len(e.incidents.Blockages())))
	for i := 0; i < e.reroutesThisTick; i++ {
		e.metrics.ReroutesPerTick.Inc()
	}
}

// logTick emits one structured summary line per tick (§10.1), the carried
// ambient-logging replacement for the excluded verbose debug-log
// subsystem.
func (e *Engine) logTick(elapsed time.Duration) {
	if e.log == nil {
		return
	}
	stats := e.vehicleStatsLocked()
	e.log.WithFields(map[string]any{
		"tick":      e.tickCount,
		"elapsed_ms": elapsed.Milliseconds(),
		"active":    stats.Active,
		"arrived":   stats.Arrived,
		"stuck":     stats.Stuck,
		"reroutes":  e.reroutesThisTick,
		"vehicles":  len(e.vehicles),
	}).Debug("tick complete")
}
