// Package traffic derives per-edge density, congestion level, cost
// multiplier and congestion probability from live occupancy, and ranks
// network bottlenecks (§4.4).
package traffic

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"trafficsim/graph"
	"trafficsim/occupancy"
)

// severityPenalty maps an incident severity to its multiplier penalty
// (§4.4's incident overlay). Declared here rather than importing the
// incident package, to keep the dependency direction analyzer -> (graph,
// occupancy) only; the engine composes the two at call time.
type Severity string

const (
	SeverityMinor  Severity = "minor"
	SeverityMajor  Severity = "major"
	SeveritySevere Severity = "severe"
)

var severityPenalty = map[Severity]float64{
	SeverityMinor:  1.5,
	SeverityMajor:  2.5,
	SeveritySevere: 4.0,
}

// SeverityPenalty returns the multiplier penalty for a severity (§4.4).
func SeverityPenalty(s Severity) float64 { return severityPenalty[s] }

// EdgeState is the recomputed per-tick traffic state of one directed edge
// (§3.4).
type EdgeState struct {
	Key              occupancy.Key
	VehicleCount     int
	WeightedLoad     float64
	Capacity         float64
	Density          float64
	Level            CongestionLevel
	Multiplier       float64
	Probability      float64
	Blocked          bool
	AccidentSeverity Severity // "" if none
}

// Cost returns the edge's current traversal cost: L0 * multiplier,
// incident-adjusted, or +Inf while blocked (§3.4, §4.4).
func (s EdgeState) Cost(l0 float64) float64 {
	if s.Blocked {
		return math.Inf(1)
	}
	m := s.Multiplier
	if s.AccidentSeverity != "" {
		m *= SeverityPenalty(s.AccidentSeverity)
	}
	return l0 * m
}

// Analyzer owns the per-edge smoothed multiplier and history ring buffers.
// It has no knowledge of vehicles; the engine supplies weighted load and
// vehicle counts from Occupancy each tick.
type Analyzer struct {
	alpha          float64
	historyWindow  int
	baseCapacity   float64
	prevMultiplier map[occupancy.Key]float64
	history        map[occupancy.Key]*ring
	rng            *rand.Rand
}

// Config bundles the analyzer's tunables (§6.5).
type Config struct {
	SmoothingAlpha  float64
	HistoryWindow   int
	BaseEdgeCapacity float64
}

// New constructs an Analyzer sharing rng with the rest of the engine, so all
// randomness is drawn from the single seedable source (§9).
func New(cfg Config, rng *rand.Rand) *Analyzer {
	return &Analyzer{
		alpha:          cfg.SmoothingAlpha,
		historyWindow:  cfg.HistoryWindow,
		baseCapacity:   cfg.BaseEdgeCapacity,
		prevMultiplier: make(map[occupancy.Key]float64),
		history:        make(map[occupancy.Key]*ring),
		rng:            rng,
	}
}

// Recompute derives the EdgeState for every edge in g from occ, for use by
// the Engine's per-tick pass (§4.7 step 3). blocked and accidents describe
// current incident overlay state, keyed the same way as occupancy.Key.
func (a *Analyzer) Recompute(g *graph.Graph, occ *occupancy.Index, blocked map[occupancy.Key]bool, accidents map[occupancy.Key]Severity) map[occupancy.Key]EdgeState {
	out := make(map[occupancy.Key]EdgeState)
	for _, e := range g.Edges() {
		k := occupancy.Key{From: e.From, To: e.To}
		capacity := a.baseCapacity * e.Length0
		if capacity <= 0 {
			capacity = a.baseCapacity
		}
		weighted := occ.Weighted(k)
		count := occ.Count(k)
		density := weighted / capacity
		level := LevelForDensity(density)
		multiplier := a.sampleMultiplier(k, level)
		probability := a.probability(k, density, multiplier)

		out[k] = EdgeState{
			Key:              k,
			VehicleCount:     count,
			WeightedLoad:     weighted,
			Capacity:         capacity,
			Density:          density,
			Level:            level,
			Multiplier:       multiplier,
			Probability:      probability,
			Blocked:          blocked[k],
			AccidentSeverity: accidents[k],
		}
	}
	return out
}

func (a *Analyzer) sampleMultiplier(k occupancy.Key, level CongestionLevel) float64 {
	r := ranges[level]
	sample := r.lo + a.rng.Float64()*(r.hi-r.lo)
	prev, ok := a.prevMultiplier[k]
	if !ok {
		prev = sample
	}
	smoothed := a.alpha*sample + (1-a.alpha)*prev
	a.prevMultiplier[k] = smoothed
	a.pushHistory(k, smoothed)
	return smoothed
}

func (a *Analyzer) pushHistory(k occupancy.Key, m float64) {
	h, ok := a.history[k]
	if !ok {
		h = newRing(a.historyWindow)
		a.history[k] = h
	}
	h.push(m)
}

func (a *Analyzer) probability(k occupancy.Key, density, _ float64) float64 {
	base := density
	if base > 1.0 {
		base = 1.0
	}
	hist := 0.0
	if h, ok := a.history[k]; ok && len(h.samples()) > 0 {
		mean := stat.Mean(h.samples(), nil)
		hist = clip(mean-1.0, 0, 1) / 2
		if hist > 0.5 {
			hist = 0.5
		}
	}
	prob := base + hist
	if prob > 1.0 {
		prob = 1.0
	}
	return prob
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bottlenecks returns the top-k edges by descending probability, breaking
// ties by descending vehicle_count then ascending edge id (§4.4).
func Bottlenecks(states map[occupancy.Key]EdgeState, k int) []EdgeState {
	out := make([]EdgeState, 0, len(states))
	for _, s := range states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		if out[i].VehicleCount != out[j].VehicleCount {
			return out[i].VehicleCount > out[j].VehicleCount
		}
		ki, kj := out[i].Key, out[j].Key
		if ki.From != kj.From {
			return ki.From < kj.From
		}
		return ki.To < kj.To
	})
	if k >= 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// Reset clears smoothing state and history, used by reset_simulation.
func (a *Analyzer) Reset() {
	a.prevMultiplier = make(map[occupancy.Key]float64)
	a.history = make(map[occupancy.Key]*ring)
}
