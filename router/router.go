// Package router implements weighted shortest-path search over a live road
// graph, grounded on the A* implementation pattern found in the routing
// example in the reference corpus: a container/heap priority queue, a
// best-g-score closed set, and a heuristic derived from node coordinates.
package router

import (
	"container/heap"
	"errors"
	"math"

	"trafficsim/graph"
)

// ErrNoPath is the sentinel "no path" result (§9: result type, not an
// exception). Callers distinguish it from other errors with errors.Is.
var ErrNoPath = errors.New("router: no path")

// heuristicScale preserves A* admissibility: the true minimum edge
// multiplier is 0.5 (the floor of the free_flow range, §4.4), so the
// straight-line heuristic is scaled by the same factor before being compared
// against live edge costs. See DESIGN.md's open-question decision.
const heuristicScale = 0.5

// CostFunc returns the live traversal cost of an edge, or +Inf if the edge
// is currently impassable (blocked). The router has no knowledge of why an
// edge costs what it does — that is the Traffic Analyzer's and Incident
// Manager's concern (§4.4, §4.5).
type CostFunc func(e *graph.Edge) float64

// Path is an ordered node sequence with its total cost under the cost
// function used to compute it.
type Path struct {
	Nodes []string
	Cost  float64
}

// searchNode is one entry in the open set.
type searchNode struct {
	id       string
	g        float64
	f        float64
	parent   string
	hasPar   bool
	index    int // heap.Interface bookkeeping
}

type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	// Tie-break: lower node id lexicographically (§4.2).
	return q[i].id < q[j].id
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *openQueue) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

func heuristic(g *graph.Graph, from, to string) float64 {
	a, b := g.Node(from), g.Node(to)
	if a == nil || b == nil {
		return 0
	}
	return math.Hypot(a.X-b.X, a.Y-b.Y) * heuristicScale
}

// FindPath runs A* from start to goal, restricted to edges that admit mode,
// using cost for live edge costs. Returns ErrNoPath if goal is unreachable.
func FindPath(g *graph.Graph, start, goal string, mode graph.Mode, cost CostFunc) (Path, error) {
	if g.Node(start) == nil || g.Node(goal) == nil {
		return Path{}, ErrNoPath
	}
	if start == goal {
		return Path{Nodes: []string{start}, Cost: 0}, nil
	}

	open := &openQueue{}
	heap.Init(open)
	best := map[string]*searchNode{start: {id: start, g: 0, f: heuristic(g, start, goal)}}
	heap.Push(open, best[start])
	closed := make(map[string]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if closed[current.id] {
			continue
		}
		if current.id == goal {
			return reconstruct(best, goal), nil
		}
		closed[current.id] = true

		for _, e := range g.Neighbors(current.id, mode) {
			if closed[e.To] {
				continue
			}
			c := cost(e)
			if math.IsInf(c, 1) {
				continue // blocked edge
			}
			tentativeG := current.g + c
			existing, seen := best[e.To]
			if seen && tentativeG >= existing.g {
				continue
			}
			n := &searchNode{id: e.To, g: tentativeG, f: tentativeG + heuristic(g, e.To, goal), parent: current.id, hasPar: true}
			best[e.To] = n
			heap.Push(open, n)
		}
	}
	return Path{}, ErrNoPath
}

func reconstruct(best map[string]*searchNode, goal string) Path {
	var nodes []string
	cost := best[goal].g
	id := goal
	for {
		nodes = append([]string{id}, nodes...)
		n := best[id]
		if !n.hasPar {
			break
		}
		id = n.parent
	}
	return Path{Nodes: nodes, Cost: cost}
}
