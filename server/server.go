// Package server exposes the engine's external boundary (§6.2) as a thin
// JSON/HTTP surface, adapted from the teacher's server.go (its
// handleControl/handleStream request shapes and its always-set CORS
// headers), generalized from a single fixed bus route to the full set of
// query/command operations a traffic engine exposes.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"trafficsim/engine"
	"trafficsim/errs"
	"trafficsim/graph"
	"trafficsim/traffic"
	"trafficsim/vehicle"
)

// Server wires an Engine to HTTP handlers.
type Server struct {
	eng *engine.Engine
	log *logrus.Logger

	// maps is the name->path registry used by list_maps/switch_map (§6.1,
	// §10.4). Loading is delegated to graph.LoadFromReader.
	maps map[string]string
}

// New constructs a Server bound to eng. maps may be nil.
func New(eng *engine.Engine, maps map[string]string, log *logrus.Logger) *Server {
	if maps == nil {
		maps = map[string]string{}
	}
	return &Server{eng: eng, maps: maps, log: log}
}

// Mux builds the HTTP handler tree (§6.2).
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/maps", s.handleListMaps)
	mux.HandleFunc("/api/map", s.handleGetMap)
	mux.HandleFunc("/api/switch_map", s.handleSwitchMap)
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/vehicles", s.handleListVehicles)
	mux.HandleFunc("/api/vehicle", s.handleGetVehicle)
	mux.HandleFunc("/api/traffic_statistics", s.handleTrafficStatistics)
	mux.HandleFunc("/api/congestion_report", s.handleCongestionReport)
	mux.HandleFunc("/api/edge_traffic", s.handleEdgeTraffic)
	mux.HandleFunc("/api/accidents", s.handleAccidents)
	mux.HandleFunc("/api/blocked_roads", s.handleBlockedRoads)
	mux.HandleFunc("/api/simulation_info", s.handleSimulationInfo)
	mux.HandleFunc("/api/spawn_vehicle", s.handleSpawnVehicle)
	mux.HandleFunc("/api/spawn_multiple", s.handleSpawnMultiple)
	mux.HandleFunc("/api/tick", s.handleTick)
	mux.HandleFunc("/api/remove_vehicle", s.handleRemoveVehicle)
	mux.HandleFunc("/api/reset_simulation", s.handleResetSimulation)
	mux.HandleFunc("/api/create_accident", s.handleCreateAccident)
	mux.HandleFunc("/api/resolve_accident", s.handleResolveAccident)
	mux.HandleFunc("/api/block_road", s.handleBlockRoad)
	mux.HandleFunc("/api/unblock_road", s.handleUnblockRoad)
	mux.HandleFunc("/api/start_continuous", s.handleStartContinuous)
	mux.HandleFunc("/api/stop_continuous", s.handleStopContinuous)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	withCORS(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && s.log != nil {
		s.log.WithError(err).Warn("server: encode response failed")
	}
}

// writeErr maps an errs.Kind to an HTTP status (§7), falling back to 500 for
// anything untyped.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	withCORS(w)
	status := http.StatusInternalServerError
	if e, ok := err.(*errs.Error); ok {
		switch e.Kind {
		case errs.KindValidation:
			status = http.StatusBadRequest
		case errs.KindNotFound:
			status = http.StatusNotFound
		case errs.KindConflict:
			status = http.StatusConflict
		case errs.KindInfeasible:
			status = http.StatusUnprocessableEntity
		}
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.maps))
	for name := range s.maps {
		names = append(names, name)
	}
	s.writeJSON(w, map[string]any{"maps": names, "current": s.eng.CurrentMapName()})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	raw, err := graph.MarshalMap(s.eng.Graph())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	withCORS(w)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (s *Server) handleSwitchMap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, errs.Validation("bad json: %v", err))
		return
	}
	path, ok := s.maps[req.Name]
	if !ok {
		s.writeErr(w, errs.Validation("unknown map %q", req.Name))
		return
	}
	f, err := openMapFile(path)
	if err != nil {
		s.writeErr(w, errs.Validation("open map %q: %v", path, err))
		return
	}
	defer f.Close()
	g, err := graph.LoadFromReader(f)
	if err != nil {
		s.writeErr(w, errs.Validation("load map %q: %v", path, err))
		return
	}
	s.eng.ResetSimulation(g, req.Name)
	s.writeJSON(w, map[string]string{"current": req.Name})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.GetState())
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.ListVehicles())
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	rec, err := s.eng.GetVehicle(id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, rec)
}

func (s *Server) handleTrafficStatistics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.GetTrafficStatistics())
}

func (s *Server) handleCongestionReport(w http.ResponseWriter, r *http.Request) {
	k := 10
	if qs := r.URL.Query().Get("k"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			k = v
		}
	}
	s.writeJSON(w, s.eng.GetCongestionReport(k))
}

func (s *Server) handleEdgeTraffic(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.GetEdgeTraffic())
}

func (s *Server) handleAccidents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.ListAccidents())
}

func (s *Server) handleBlockedRoads(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.ListBlockedRoads())
}

func (s *Server) handleSimulationInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.GetSimulationInfo())
}

func (s *Server) handleSpawnVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  *string `json:"type"`
		Start *string `json:"start"`
		Goal  *string `json:"goal"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	var vt *vehicle.Type
	if req.Type != nil {
		t := vehicle.Type(*req.Type)
		vt = &t
	}
	id, err := s.eng.SpawnVehicle(vt, req.Start, req.Goal)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleSpawnMultiple(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count        int            `json:"count"`
		Distribution map[string]float64 `json:"distribution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, errs.Validation("bad json: %v", err))
		return
	}
	dist := make(map[vehicle.Type]float64, len(req.Distribution))
	for k, v := range req.Distribution {
		dist[vehicle.Type(k)] = v
	}
	ids, err := s.eng.SpawnMultiple(req.Count, dist)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"ids": ids})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.eng.Tick())
}

func (s *Server) handleRemoveVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := s.eng.RemoveVehicle(id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"removed": true})
}

func (s *Server) handleResetSimulation(w http.ResponseWriter, r *http.Request) {
	s.eng.ResetSimulation(nil, "")
	s.writeJSON(w, map[string]bool{"reset": true})
}

func (s *Server) handleCreateAccident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Severity string `json:"severity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, errs.Validation("bad json: %v", err))
		return
	}
	rec, err := s.eng.CreateAccident(req.From, req.To, traffic.Severity(req.Severity))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, rec)
}

func (s *Server) handleResolveAccident(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := s.eng.ResolveAccident(id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"resolved": true})
}

func (s *Server) handleBlockRoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, errs.Validation("bad json: %v", err))
		return
	}
	rec, err := s.eng.BlockRoad(req.From, req.To, req.Reason)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, rec)
}

func (s *Server) handleUnblockRoad(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	ok := s.eng.UnblockRoad(from, to)
	s.writeJSON(w, map[string]bool{"unblocked": ok})
}

func (s *Server) handleStartContinuous(w http.ResponseWriter, r *http.Request) {
	intervalMs := 0
	if qs := r.URL.Query().Get("interval_ms"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil {
			intervalMs = v
		}
	}
	if err := s.eng.StartContinuous(intervalMs); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"running": true})
}

func (s *Server) handleStopContinuous(w http.ResponseWriter, r *http.Request) {
	s.eng.StopContinuous()
	s.writeJSON(w, map[string]bool{"running": false})
}

// handleStream advances the engine by one tick every interval and pushes
// the resulting state snapshot over server-sent events, mirroring the
// teacher's handleStream flush-per-event loop
// (adapted here to one JSON "state" event per emitted tick instead of the
// teacher's dozen bus/passenger event kinds).
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	intervalMs := 200
	if qs := r.URL.Query().Get("interval_ms"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			intervalMs = v
		}
	}
	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			state := s.eng.Tick()
			b, err := json.Marshal(state)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
