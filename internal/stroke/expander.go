package stroke

import (
	"math"

	"github.com/Nazariglez/nae/internal/path"
)

type Point = path.Point

// Cap is the shape at open ends.
type Cap uint8

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Join is the shape at interior vertices.
type Join uint8

const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

// Style describes the stroke.
type Style struct {
	Width      float64
	Cap        Cap
	Join       Join
	MiterLimit float64
}

// DefaultStyle returns a 1-unit butt/miter stroke with limit 4.
func DefaultStyle() Style {
	return Style{Width: 1, Cap: CapButt, Join: JoinMiter, MiterLimit: 4}
}

// Expander converts polylines to outlines. It keeps its scratch buffers
// between calls, so one Expander should be reused for many strokes by a
// single goroutine.
type Expander struct {
	style     Style
	tolerance float64
	hw        float64

	forward  []Point
	backward []Point
	out      []path.Contour
}

// NewExpander returns an expander for style with tolerance 0.1.
func NewExpander(style Style) *Expander {
	return &Expander{style: style, tolerance: 0.1}
}

// SetStyle replaces the stroke style.
func (e *Expander) SetStyle(style Style) { e.style = style }

// SetTolerance sets the arc flattening tolerance. Non-positive values are
// ignored.
func (e *Expander) SetTolerance(tolerance float64) {
	if tolerance > 0 {
		e.tolerance = tolerance
	}
}

// Expand returns the outline contours of contours stroked with the current
// style. A non-positive width or contours without length give nil.
func (e *Expander) Expand(contours []path.Contour) []path.Contour {
	e.out = nil
	if !(e.style.Width > 0) {
		return nil
	}
	e.hw = e.style.Width / 2
	for _, c := range contours {
		pts := dedupe(c.Points)
		if c.Closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 2 {
			continue
		}
		if c.Closed && len(pts) >= 3 {
			e.expandClosed(pts)
		} else {
			e.expandOpen(pts)
		}
	}
	return e.out
}

func (e *Expander) expandOpen(pts []Point) {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]

	n := len(pts)
	firstN := e.normal(pts[1].Sub(pts[0]))
	lastN := firstN
	for i := 0; i < n-1; i++ {
		tan := pts[i+1].Sub(pts[i])
		norm := e.normal(tan)
		if i == 0 {
			e.forward = append(e.forward, pts[0].Sub(norm))
			e.backward = append(e.backward, pts[0].Add(norm))
		} else {
			e.join(pts[i], pts[i].Sub(pts[i-1]), tan)
		}
		e.forward = append(e.forward, pts[i+1].Sub(norm))
		e.backward = append(e.backward, pts[i+1].Add(norm))
		lastN = norm
	}

	outline := make([]Point, 0, len(e.forward)+len(e.backward)+16)
	outline = append(outline, e.forward...)
	outline = e.appendCap(outline, pts[n-1], lastN.Mul(-1), unit(pts[n-1].Sub(pts[n-2])))
	for i := len(e.backward) - 1; i >= 0; i-- {
		outline = append(outline, e.backward[i])
	}
	outline = e.appendCap(outline, pts[0], firstN, unit(pts[0].Sub(pts[1])))
	e.out = append(e.out, path.Contour{Points: outline, Closed: true})
}

func (e *Expander) expandClosed(pts []Point) {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]

	n := len(pts)
	for i := 0; i < n; i++ {
		p := pts[i]
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		tan := next.Sub(p)
		// The join at pts[0] uses the closing segment as incoming tangent.
		e.join(p, p.Sub(prev), tan)
		norm := e.normal(tan)
		e.forward = append(e.forward, next.Sub(norm))
		e.backward = append(e.backward, next.Add(norm))
	}

	fwd := make([]Point, len(e.forward))
	copy(fwd, e.forward)
	back := make([]Point, len(e.backward))
	for i := range e.backward {
		back[i] = e.backward[len(e.backward)-1-i]
	}
	e.out = append(e.out,
		path.Contour{Points: fwd, Closed: true},
		path.Contour{Points: back, Closed: true},
	)
}

// join appends the geometry at p where tangent t0 turns into t1. Both
// sides end on the offset points of the outgoing segment.
func (e *Expander) join(p Point, t0, t1 Point) {
	n0 := e.normal(t0)
	n1 := e.normal(t1)
	cross := cross(t0, t1)
	dot := t0.Dot(t1)
	hypot := math.Hypot(cross, dot)

	joinThresh := 2 * e.tolerance / e.style.Width
	if dot > 0 && math.Abs(cross) < hypot*joinThresh {
		e.forward = append(e.forward, p.Sub(n1))
		e.backward = append(e.backward, p.Add(n1))
		return
	}

	// Outer side offset vectors and the side they belong to. The forward
	// side sits at -normal and is outer on a positive turn.
	outerForward := cross > 0
	o0, o1 := n0, n1
	if outerForward {
		o0, o1 = n0.Mul(-1), n1.Mul(-1)
	}

	var outer []Point
	switch e.style.Join {
	case JoinMiter:
		limit := e.style.MiterLimit
		if limit < 1 {
			limit = 4
		}
		if hypot > 0 && 2*hypot < (hypot+dot)*limit*limit {
			bis := o0.Add(o1)
			k := e.hw * e.hw / (e.hw*e.hw + o0.Dot(o1))
			outer = append(outer, p.Add(bis.Mul(k)))
		}
	case JoinRound:
		theta := math.Atan2(cross, dot)
		if !outerForward && theta > 0 {
			// A full reversal has no turn direction; bulge forward.
			theta = -theta
		}
		steps := e.arcSteps(math.Abs(theta))
		for k := 1; k < steps; k++ {
			outer = append(outer, p.Add(rotate(o0, theta*float64(k)/float64(steps))))
		}
	}

	if outerForward {
		e.forward = append(e.forward, outer...)
		e.forward = append(e.forward, p.Add(o1))
		e.backward = append(e.backward, p, p.Add(n1))
	} else {
		e.backward = append(e.backward, outer...)
		e.backward = append(e.backward, p.Add(o1))
		e.forward = append(e.forward, p, p.Sub(n1))
	}
}

// appendCap appends the cap at center going from center+from to
// center-from. dir points out of the stroke.
func (e *Expander) appendCap(out []Point, center, from, dir Point) []Point {
	switch e.style.Cap {
	case CapSquare:
		ext := dir.Mul(e.hw)
		out = append(out, center.Add(from).Add(ext), center.Sub(from).Add(ext))
	case CapRound:
		// Sweep half a turn through dir.
		sweep := math.Pi
		if cross(from, dir) < 0 {
			sweep = -math.Pi
		}
		steps := e.arcSteps(math.Pi)
		for k := 1; k < steps; k++ {
			out = append(out, center.Add(rotate(from, sweep*float64(k)/float64(steps))))
		}
	}
	return out
}

// arcSteps returns how many chords approximate an arc of the given angle on
// the stroke radius within tolerance.
func (e *Expander) arcSteps(angle float64) int {
	step := math.Pi / 2
	if e.tolerance < e.hw {
		step = math.Min(step, 2*math.Acos(1-e.tolerance/e.hw))
	}
	n := int(math.Ceil(angle / step))
	if n < 1 {
		n = 1
	}
	return n
}

// normal returns the left perpendicular of t scaled to the half width.
func (e *Expander) normal(t Point) Point {
	l := t.Length()
	if l == 0 {
		return Point{}
	}
	s := e.hw / l
	return Point{X: -t.Y * s, Y: t.X * s}
}

func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

func unit(v Point) Point {
	l := v.Length()
	if l == 0 {
		return Point{}
	}
	return v.Mul(1 / l)
}

func rotate(v Point, a float64) Point {
	sin, cos := math.Sincos(a)
	return Point{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
