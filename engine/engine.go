// Package engine owns the tick loop and orchestrates the Graph, Router,
// Occupancy Index, Traffic Analyzer, Incident Manager and Vehicle
// Kinematics (§4.7). It is the single explicit engine object the design
// notes (§9) call for in place of a process-wide singleton: callers
// construct one and pass it into every boundary operation.
package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"trafficsim/config"
	"trafficsim/errs"
	"trafficsim/graph"
	"trafficsim/incident"
	"trafficsim/metrics"
	"trafficsim/occupancy"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

// Engine is the simulation engine (§4.7's State). All mutation goes through
// its exported methods, each of which takes the engine's single mutex
// (§5: "only one guards the engine as a whole").
type Engine struct {
	// mu serializes every exported operation (§5: "only one guards the
	// engine as a whole"); a query issued mid-tick blocks until the tick
	// completes rather than observing a partially applied state.
	mu sync.Mutex

	cfgStore *config.Store
	log      *logrus.Logger
	metrics  *metrics.Metrics

	g          *graph.Graph
	currentMap string

	occ        *occupancy.Index
	analyzer   *traffic.Analyzer
	incidents  *incident.Manager
	vehicles   map[string]*vehicle.Vehicle
	edgeStates map[occupancy.Key]traffic.EdgeState

	tickCount    int64
	lastTickTime time.Time
	rng          *rand.Rand

	spawned    int
	removed    int
	vehicleSeq int

	reroutesThisTick int
	continuousStop   func()
}

// New constructs an Engine bound to g (the initial map) and cfgStore. log
// and m may be nil, in which case logging/metrics are no-ops.
func New(g *graph.Graph, mapName string, cfgStore *config.Store, log *logrus.Logger, m *metrics.Metrics) *Engine {
	cfg := cfgStore.Get()
	rng := rand.New(rand.NewSource(cfg.Seed))
	e := &Engine{
		cfgStore:   cfgStore,
		log:        log,
		metrics:    m,
		g:          g,
		currentMap: mapName,
		occ:        occupancy.New(),
		incidents:  incident.New(cfg.AccidentClearTicks),
		vehicles:   make(map[string]*vehicle.Vehicle),
		rng:        rng,
	}
	e.analyzer = traffic.New(traffic.Config{
		SmoothingAlpha:   cfg.MultiplierSmoothingAlpha,
		HistoryWindow:    cfg.HistoryWindow,
		BaseEdgeCapacity: cfg.BaseEdgeCapacity,
	}, rng)
	return e
}

// Graph exposes the current map for get_map()/list_maps().
func (e *Engine) Graph() *graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g
}

// CurrentMapName returns the name of the currently loaded map.
func (e *Engine) CurrentMapName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentMap
}

// TickCount returns the number of ticks executed so far.
func (e *Engine) TickCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCount
}

// ResetSimulation clears vehicles, incidents, and analyzer history (§4.7's
// Reset). If newGraph is non-nil, it also switches the active map
// (switch_map, §6.2).
func (e *Engine) ResetSimulation(newGraph *graph.Graph, newMapName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vehicles = make(map[string]*vehicle.Vehicle)
	e.occ.Reset()
	e.incidents.Reset()
	e.analyzer.Reset()
	e.tickCount = 0
	e.spawned = 0
	e.removed = 0
	e.vehicleSeq = 0
	e.lastTickTime = time.Time{}
	if newGraph != nil {
		e.g = newGraph
		e.currentMap = newMapName
	}
}

// RemoveVehicle deletes a vehicle by id (§6.2). Returns a not-found error
// if absent.
func (e *Engine) RemoveVehicle(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vehicles[id]
	if !ok {
		return errs.NotFound("vehicle %q not found", id)
	}
	if v.Status != vehicle.StatusArrived {
		spec, _ := vehicle.SpecFor(v.Type)
		e.occ.Leave(v.ID, occupancy.Key{From: v.CurrentNode(), To: v.NextNode()}, spec.CapacityWeight)
	}
	delete(e.vehicles, id)
	e.removed++
	return nil
}

// nextVehicleID returns a deterministic, per-engine-sequence vehicle
// identifier. IDs must not be drawn from crypto/rand (via uuid.NewString)
// because every random draw in the engine goes through the single seeded
// rng (§9); a counter keeps spawn order — and therefore two seeded runs'
// vehicle ids — identical (§8).
func (e *Engine) nextVehicleID(t vehicle.Type) string {
	e.vehicleSeq++
	return fmt.Sprintf("%s-%d", t, e.vehicleSeq)
}

func (e *Engine) sortedVehicles() []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, 0, len(e.vehicles))
	for _, v := range e.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
