package tess

import (
	"math"

	"github.com/Nazariglez/nae/internal/path"
)

type Point = path.Point

// Rule selects the fill rule.
type Rule uint8

const (
	EvenOdd Rule = iota
	NonZero
)

func (r Rule) inside(w int) bool {
	if r == NonZero {
		return w != 0
	}
	return w&1 != 0
}

// simpleCheckLimit bounds the quadratic simplicity test; bigger contours go
// straight to the sweep.
const simpleCheckLimit = 2048

// eps is the geometric tolerance used for degeneracy tests.
const eps = 1e-9

// Triangulator holds scratch buffers reused across Fill calls. It is not
// safe for concurrent use.
type Triangulator struct {
	contours []path.Contour
	ring     []int
	edges    []edge
	ys       []float64
	active   []int
	span     []spanEdge
	lookup   map[[2]float64]uint32

	vertices []float32
	indices  []uint32
}

// NewTriangulator returns a ready Triangulator.
func NewTriangulator() *Triangulator {
	return &Triangulator{lookup: make(map[[2]float64]uint32)}
}

// Fill triangulates contours, treating every contour as closed. The
// returned slices are freshly allocated and owned by the caller. Degenerate
// input (fewer than three distinct points, zero area) yields nil slices.
func (t *Triangulator) Fill(contours []path.Contour, rule Rule) ([]float32, []uint32) {
	t.vertices = t.vertices[:0]
	t.indices = t.indices[:0]
	t.prepare(contours)

	switch {
	case len(t.contours) == 0:
		return nil, nil
	case len(t.contours) == 1 && len(t.contours[0].Points) <= simpleCheckLimit && isSimple(t.contours[0].Points):
		poly := t.contours[0].Points
		if !t.polygon(poly) {
			t.vertices = t.vertices[:0]
			t.indices = t.indices[:0]
			t.sweep(rule)
		}
	default:
		t.sweep(rule)
	}
	return t.output()
}

func (t *Triangulator) output() ([]float32, []uint32) {
	if len(t.indices) == 0 {
		return nil, nil
	}
	v := make([]float32, len(t.vertices))
	copy(v, t.vertices)
	i := make([]uint32, len(t.indices))
	copy(i, t.indices)
	return v, i
}

// prepare copies contours into scratch storage without duplicate or
// collinear points and drops contours that enclose no area.
func (t *Triangulator) prepare(contours []path.Contour) {
	t.contours = t.contours[:0]
	for _, c := range contours {
		pts := make([]Point, 0, len(c.Points))
		for _, p := range c.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				continue
			}
			if n := len(pts); n > 0 && pts[n-1] == p {
				continue
			}
			pts = append(pts, p)
		}
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		pts = removeCollinear(pts)
		if len(pts) >= 3 {
			t.contours = append(t.contours, path.Contour{Points: pts, Closed: true})
		}
	}
}

// removeCollinear drops vertices lying on the line through their
// neighbours, including spikes that double back.
func removeCollinear(pts []Point) []Point {
	for changed := true; changed; {
		changed = false
		for i := 0; len(pts) >= 3 && i < len(pts); {
			n := len(pts)
			if collinear(pts[(i+n-1)%n], pts[i], pts[(i+1)%n]) {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				continue
			}
			i++
		}
	}
	if len(pts) < 3 {
		return nil
	}
	return pts
}

func collinear(a, b, c Point) bool {
	ab := b.Sub(a)
	bc := c.Sub(b)
	scale := math.Max(ab.Length()*bc.Length(), eps)
	return math.Abs(cross(ab, bc)) <= 1e-12*scale
}

func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

func orient(a, b, c Point) float64 { return cross(b.Sub(a), c.Sub(a)) }

func signedArea(pts []Point) float64 {
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return s / 2
}

// isSimple reports whether no two non-adjacent edges of the closed polygon
// touch or cross.
func isSimple(pts []Point) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		a0, a1 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b0, b1 := pts[j], pts[(j+1)%n]
			if segmentsTouch(a0, a1, b0, b1) {
				return false
			}
		}
	}
	return true
}

func segmentsTouch(p1, p2, p3, p4 Point) bool {
	if math.Max(p1.X, p2.X) < math.Min(p3.X, p4.X) || math.Max(p3.X, p4.X) < math.Min(p1.X, p2.X) ||
		math.Max(p1.Y, p2.Y) < math.Min(p3.Y, p4.Y) || math.Max(p3.Y, p4.Y) < math.Min(p1.Y, p2.Y) {
		return false
	}
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(p3, p4, p1)) || (d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) || (d4 == 0 && onSegment(p1, p2, p4))
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// polygon triangulates a simple polygon using its own points as vertices.
// It reports false if ear clipping gets stuck on numerically awkward input.
func (t *Triangulator) polygon(pts []Point) bool {
	area := signedArea(pts)
	if math.Abs(area) < eps {
		return true // zero area: nothing to draw
	}
	for _, p := range pts {
		t.vertices = append(t.vertices, float32(p.X), float32(p.Y))
	}
	ccw := area > 0
	n := len(pts)

	if isConvex(pts, ccw) {
		for i := 1; i+1 < n; i++ {
			t.indices = append(t.indices, 0, uint32(i), uint32(i+1))
		}
		return true
	}
	return t.earClip(pts, ccw)
}

func isConvex(pts []Point, ccw bool) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		o := orient(pts[(i+n-1)%n], pts[i], pts[(i+1)%n])
		if (ccw && o <= 0) || (!ccw && o >= 0) {
			return false
		}
	}
	return true
}

func (t *Triangulator) earClip(pts []Point, ccw bool) bool {
	t.ring = t.ring[:0]
	for i := range pts {
		t.ring = append(t.ring, i)
	}
	v := t.ring
	for len(v) > 3 {
		found := false
		for i := 0; i < len(v); i++ {
			i0 := v[(i+len(v)-1)%len(v)]
			i1 := v[i]
			i2 := v[(i+1)%len(v)]
			a, b, c := pts[i0], pts[i1], pts[i2]
			o := orient(a, b, c)
			if (ccw && o <= 0) || (!ccw && o >= 0) {
				continue
			}
			blocked := false
			for _, j := range v {
				if j == i0 || j == i1 || j == i2 {
					continue
				}
				if pointInTriangle(pts[j], a, b, c) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			t.indices = append(t.indices, uint32(i0), uint32(i1), uint32(i2))
			v = append(v[:i], v[i+1:]...)
			found = true
			break
		}
		if !found {
			return false
		}
	}
	t.indices = append(t.indices, uint32(v[0]), uint32(v[1]), uint32(v[2]))
	return true
}

// pointInTriangle includes the boundary.
func pointInTriangle(p, a, b, c Point) bool {
	d1 := orient(a, b, p)
	d2 := orient(b, c, p)
	d3 := orient(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
