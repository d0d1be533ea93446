package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawMap mirrors the declarative JSON map format of §6.1. Field names match
// the wire format exactly, the same decode-struct-then-build style the
// teacher uses in model/route_loader.go for its route JSON.
type rawMap struct {
	Nodes map[string][2]float64 `json:"nodes"`
	Edges []rawEdge             `json:"edges"`
}

type rawEdge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Distance float64  `json:"distance"`
	Allowed  []string `json:"allowed"`
	OneWay   bool     `json:"one_way"`
}

// LoadFromReader decodes a declarative map (§6.1) into a Graph.
func LoadFromReader(r io.Reader) (*Graph, error) {
	var raw rawMap
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("graph: decode map: %w", err)
	}
	g := New()
	for id, xy := range raw.Nodes {
		if err := g.AddNode(&Node{ID: id, X: xy[0], Y: xy[1]}); err != nil {
			return nil, err
		}
	}
	for _, re := range raw.Edges {
		allowed := make(map[Mode]bool, len(re.Allowed))
		for _, m := range re.Allowed {
			mode := Mode(m)
			switch mode {
			case ModeCar, ModeBicycle, ModePedestrian:
				allowed[mode] = true
			default:
				return nil, fmt.Errorf("graph: edge %s->%s: unknown mode %q", re.From, re.To, m)
			}
		}
		e := &Edge{From: re.From, To: re.To, Length0: re.Distance, Allowed: allowed, OneWay: re.OneWay}
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MarshalMap serializes the graph back into the §6.1 wire format, e.g. for
// get_map() or for curvegen to write validated distances back to disk.
func MarshalMap(g *Graph) ([]byte, error) {
	raw := rawMap{Nodes: make(map[string][2]float64)}
	for _, n := range g.Nodes() {
		raw.Nodes[n.ID] = [2]float64{n.X, n.Y}
	}
	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		key := e.From + "->" + e.To
		revKey := e.To + "->" + e.From
		if !e.OneWay && seen[revKey] {
			continue
		}
		seen[key] = true
		modes := make([]string, 0, len(e.Allowed))
		for m := range e.Allowed {
			modes = append(modes, string(m))
		}
		raw.Edges = append(raw.Edges, rawEdge{From: e.From, To: e.To, Distance: e.Length0, Allowed: modes, OneWay: e.OneWay})
	}
	return json.MarshalIndent(raw, "", "  ")
}
