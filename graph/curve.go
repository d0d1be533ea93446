package graph

import (
	"hash/fnv"
	"math"
)

// curveSamples is how finely a Bezier curve is polyline-sampled to produce
// LCurve, the adaptation of the distance-recomputation approach the teacher
// used for haversine polyline summation (tools/recompute_distances.go),
// generalized here from geodesic to planar Euclidean distance and from a
// straight polyline to a sampled quadratic Bezier.
const curveSamples = 24

// curveOffset derives a deterministic perpendicular offset for the edge
// (from, to) so that both the engine and any external renderer draw the
// identical curve without exchanging geometry (§3.5).
func curveOffset(from, to string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(from))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(to))
	sum := h.Sum32()
	// Map into [-0.18, 0.18] of the chord length, a gentle bow sufficient to
	// separate opposite-direction edges visually without distorting length.
	frac := float64(sum%1000)/1000.0*0.36 - 0.18
	return frac
}

// bezierControlPoint returns the quadratic Bezier control point for the
// chord (a, b) offset perpendicular to it by offsetFrac * |chord|.
func bezierControlPoint(a, b *Node, offsetFrac float64) (cx, cy float64) {
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return mx, my
	}
	// Perpendicular unit vector.
	px, py := -dy/length, dx/length
	offset := offsetFrac * length
	return mx + px*offset, my + py*offset
}

// BezierPoint evaluates the quadratic Bezier curve for edge e at t in [0,1],
// given its endpoints. Exposed for renderers/tests that need the same curve
// the engine used to derive LCurve.
func BezierPoint(a, b *Node, offsetFrac, t float64) (x, y float64) {
	cx, cy := bezierControlPoint(a, b, offsetFrac)
	u := 1 - t
	x = u*u*a.X + 2*u*t*cx + t*t*b.X
	y = u*u*a.Y + 2*u*t*cy + t*t*b.Y
	return x, y
}

// bezierLength polyline-samples the curve to approximate its true length.
func bezierLength(a, b *Node, offsetFrac float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	var total float64
	px, py := BezierPoint(a, b, offsetFrac, 0)
	for i := 1; i <= curveSamples; i++ {
		t := float64(i) / float64(curveSamples)
		x, y := BezierPoint(a, b, offsetFrac, t)
		total += math.Hypot(x-px, y-py)
		px, py = x, y
	}
	return total
}
