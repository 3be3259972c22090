// Package path turns Bézier path elements into polylines and edges.
package path

import "math"

// Point is a 2D point. The package keeps its own copy to stay free of the
// public package.
type Point struct {
	X, Y float64
}

func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Length() float64     { return math.Hypot(p.X, p.Y) }
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Element is one path command.
type Element interface {
	isElement()
}

// MoveTo starts a new contour.
type MoveTo struct{ Point Point }

// LineTo adds a straight edge.
type LineTo struct{ Point Point }

// QuadTo adds a quadratic curve.
type QuadTo struct{ Control, Point Point }

// CubicTo adds a cubic curve.
type CubicTo struct{ Control1, Control2, Point Point }

// Close closes the current contour.
type Close struct{}

func (MoveTo) isElement()  {}
func (LineTo) isElement()  {}
func (QuadTo) isElement()  {}
func (CubicTo) isElement() {}
func (Close) isElement()   {}

// Contour is a flattened subpath.
type Contour struct {
	Points []Point
	Closed bool
}

// maxDepth bounds curve subdivision; 2^16 pieces is far below any useful
// tolerance and stops runaway recursion on NaN input.
const maxDepth = 16

// Flatten converts elements into polylines whose distance from the original
// curves is below tolerance. Consecutive duplicate points are dropped.
// Elements before the first MoveTo start at the origin.
func Flatten(elements []Element, tolerance float64) []Contour {
	var (
		out     []Contour
		cur     *Contour
		current Point
	)
	ensure := func() {
		if cur == nil {
			out = append(out, Contour{Points: []Point{current}})
			cur = &out[len(out)-1]
		}
	}
	add := func(p Point) {
		if n := len(cur.Points); n > 0 && cur.Points[n-1] == p {
			return
		}
		cur.Points = append(cur.Points, p)
	}

	for _, el := range elements {
		switch e := el.(type) {
		case MoveTo:
			out = append(out, Contour{Points: []Point{e.Point}})
			cur = &out[len(out)-1]
			current = e.Point
		case LineTo:
			ensure()
			add(e.Point)
			current = e.Point
		case QuadTo:
			ensure()
			flattenQuad(current, e.Control, e.Point, tolerance, 0, add)
			current = e.Point
		case CubicTo:
			ensure()
			flattenCubic(current, e.Control1, e.Control2, e.Point, tolerance, 0, add)
			current = e.Point
		case Close:
			if cur != nil {
				cur.Closed = true
				current = cur.Points[0]
				cur = nil
			}
		}
	}

	// Drop a trailing point equal to the start of closed contours.
	for i := range out {
		c := &out[i]
		if c.Closed && len(c.Points) > 1 && c.Points[len(c.Points)-1] == c.Points[0] {
			c.Points = c.Points[:len(c.Points)-1]
		}
	}
	return out
}

func flattenQuad(p0, p1, p2 Point, tol float64, depth int, emit func(Point)) {
	if depth >= maxDepth || distanceToLine(p1, p0, p2) < tol {
		emit(p2)
		return
	}
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)
	flattenQuad(p0, q0, q2, tol, depth+1, emit)
	flattenQuad(q2, q1, p2, tol, depth+1, emit)
}

func flattenCubic(p0, p1, p2, p3 Point, tol float64, depth int, emit func(Point)) {
	d := math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if depth >= maxDepth || d < tol {
		emit(p3)
		return
	}
	// de Casteljau split at t=0.5.
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)
	flattenCubic(p0, q0, r0, s, tol, depth+1, emit)
	flattenCubic(s, r1, q2, p3, tol, depth+1, emit)
}

// distanceToLine returns the distance from p to the segment a-b.
func distanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < 1e-20 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		return p.Distance(a)
	case t > 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(t)))
}
