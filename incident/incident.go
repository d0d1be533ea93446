// Package incident owns the lifecycle of accidents and manual blockages
// (§3.6/§4.5). It has no knowledge of vehicles or routing; the engine
// consults it each tick to build the Analyzer's incident overlay and to
// decide which vehicles must be force-rerouted.
package incident

import (
	"fmt"

	"trafficsim/occupancy"
	"trafficsim/traffic"
)

// Accident is a transient per-edge penalty that does not block traversal.
type Accident struct {
	ID            string
	Edge          occupancy.Key
	Severity      traffic.Severity
	CreatedTick   int64
	ClearanceTick int64 // 0 means no scheduled auto-clear
}

// Blockage makes an edge impassable until explicitly unblocked.
type Blockage struct {
	ID          string
	Edge        occupancy.Key
	Reason      string
	CreatedTick int64
}

// ErrNotFound is returned when an accident id is not currently active.
type ErrNotFound struct{ ID string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("incident: %q not found", e.ID) }

// ErrAlreadyBlocked is returned by Block when the edge is already blocked.
type ErrAlreadyBlocked struct{ Edge occupancy.Key }

func (e *ErrAlreadyBlocked) Error() string {
	return fmt.Sprintf("incident: edge %s->%s already blocked", e.Edge.From, e.Edge.To)
}

// Manager tracks active accidents and blockages.
type Manager struct {
	// AccidentClearTicks is the configured auto-clear duration (§6.5
	// accident_clear_ticks); 0 disables auto-clear.
	AccidentClearTicks int64

	accidents map[string]*Accident
	blockages map[occupancy.Key]*Blockage

	// accidentSeq/blockageSeq generate deterministic ids. Neither incident
	// kind draws from crypto/rand (via uuid.NewString): every random draw
	// the engine makes goes through its single seeded rng (§9), and
	// incident creation order is already deterministic given a fixed
	// seed, so a counter is sufficient and keeps two seeded runs'
	// accident/blockage ids identical (§8).
	accidentSeq int64
	blockageSeq int64
}

// New returns an empty incident manager.
func New(accidentClearTicks int64) *Manager {
	return &Manager{
		AccidentClearTicks: accidentClearTicks,
		accidents:          make(map[string]*Accident),
		blockages:          make(map[occupancy.Key]*Blockage),
	}
}

// CreateAccident registers a new accident on edge at the given severity and
// tick. If AccidentClearTicks > 0, ClearanceTick is set relative to tick
// (§4.5's configurable auto-clear, decided in DESIGN.md).
func (m *Manager) CreateAccident(edge occupancy.Key, severity traffic.Severity, tick int64) *Accident {
	m.accidentSeq++
	a := &Accident{ID: fmt.Sprintf("accident-%d", m.accidentSeq), Edge: edge, Severity: severity, CreatedTick: tick}
	if m.AccidentClearTicks > 0 {
		a.ClearanceTick = tick + m.AccidentClearTicks
	}
	m.accidents[a.ID] = a
	return a
}

// ResolveAccident removes an accident immediately.
func (m *Manager) ResolveAccident(id string) error {
	if _, ok := m.accidents[id]; !ok {
		return &ErrNotFound{ID: id}
	}
	delete(m.accidents, id)
	return nil
}

// ExpireAccidents clears any accident whose ClearanceTick has passed
// (§4.7 step 2).
func (m *Manager) ExpireAccidents(now int64) {
	for id, a := range m.accidents {
		if a.ClearanceTick > 0 && now >= a.ClearanceTick {
			delete(m.accidents, id)
		}
	}
}

// Block marks edge impassable. Returns ErrAlreadyBlocked if already blocked.
func (m *Manager) Block(edge occupancy.Key, reason string, tick int64) (*Blockage, error) {
	if _, ok := m.blockages[edge]; ok {
		return nil, &ErrAlreadyBlocked{Edge: edge}
	}
	m.blockageSeq++
	b := &Blockage{ID: fmt.Sprintf("blockage-%d", m.blockageSeq), Edge: edge, Reason: reason, CreatedTick: tick}
	m.blockages[edge] = b
	return b, nil
}

// Unblock removes a blockage. No-op (returns false) if the edge was not
// blocked — restoring feasibility equivalent to never having blocked it
// (§8's round-trip property).
func (m *Manager) Unblock(edge occupancy.Key) bool {
	if _, ok := m.blockages[edge]; !ok {
		return false
	}
	delete(m.blockages, edge)
	return true
}

// IsBlocked reports whether edge currently carries an active blockage.
func (m *Manager) IsBlocked(edge occupancy.Key) bool {
	_, ok := m.blockages[edge]
	return ok
}

// BlockedEdges returns the current blockage map keyed by edge, suitable for
// the Analyzer's incident overlay.
func (m *Manager) BlockedEdges() map[occupancy.Key]bool {
	out := make(map[occupancy.Key]bool, len(m.blockages))
	for k := range m.blockages {
		out[k] = true
	}
	return out
}

// AccidentSeverities returns the active severity per edge, suitable for the
// Analyzer's incident overlay. An edge with multiple accidents reports the
// most severe.
func (m *Manager) AccidentSeverities() map[occupancy.Key]traffic.Severity {
	rank := map[traffic.Severity]int{traffic.SeverityMinor: 1, traffic.SeverityMajor: 2, traffic.SeveritySevere: 3}
	out := make(map[occupancy.Key]traffic.Severity)
	for _, a := range m.accidents {
		if cur, ok := out[a.Edge]; !ok || rank[a.Severity] > rank[cur] {
			out[a.Edge] = a.Severity
		}
	}
	return out
}

// Accidents returns all active accidents.
func (m *Manager) Accidents() []*Accident {
	out := make([]*Accident, 0, len(m.accidents))
	for _, a := range m.accidents {
		out = append(out, a)
	}
	return out
}

// Blockages returns all active blockages.
func (m *Manager) Blockages() []*Blockage {
	out := make([]*Blockage, 0, len(m.blockages))
	for _, b := range m.blockages {
		out = append(out, b)
	}
	return out
}

// Reset clears all incident state, used by reset_simulation.
func (m *Manager) Reset() {
	m.accidents = make(map[string]*Accident)
	m.blockages = make(map[occupancy.Key]*Blockage)
	m.accidentSeq = 0
	m.blockageSeq = 0
}
