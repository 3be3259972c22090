package tess

import (
	"math"
	"sort"

	"github.com/Nazariglez/nae/internal/path"
)

// edge is a non-horizontal polygon edge oriented top to bottom. winding is
// +1 when the contour runs downward along it and -1 otherwise.
type edge struct {
	x0, y0, x1, y1 float64
	winding        int
}

// xAt clamps y to the edge's own range.
func (e *edge) xAt(y float64) float64 {
	switch {
	case y <= e.y0:
		return e.x0
	case y >= e.y1:
		return e.x1
	}
	return e.x0 + (e.x1-e.x0)*(y-e.y0)/(e.y1-e.y0)
}

// spanEdge is an active edge clipped to the current band.
type spanEdge struct {
	top, bottom, mid float64
	winding          int
}

// sweep decomposes all prepared contours into trapezoids band by band.
func (t *Triangulator) sweep(rule Rule) {
	t.buildEdges()
	if len(t.edges) == 0 {
		return
	}
	t.buildEvents()
	clear(t.lookup)
	t.active = t.active[:0]

	next := 0
	for b := 0; b+1 < len(t.ys); b++ {
		ya, yb := t.ys[b], t.ys[b+1]
		// Merged event ys sit up to eps below the endpoints they stand for.
		for next < len(t.edges) && t.edges[next].y0 <= ya+eps {
			t.active = append(t.active, next)
			next++
		}
		kept := t.active[:0]
		for _, i := range t.active {
			if t.edges[i].y1 > ya+eps {
				kept = append(kept, i)
			}
		}
		t.active = kept
		if yb-ya < eps || len(t.active) < 2 {
			continue
		}

		t.span = t.span[:0]
		for _, i := range t.active {
			e := &t.edges[i]
			top, bottom := e.xAt(ya), e.xAt(yb)
			t.span = append(t.span, spanEdge{top: top, bottom: bottom, mid: (top + bottom) / 2, winding: e.winding})
		}
		sort.Slice(t.span, func(i, j int) bool { return t.span[i].mid < t.span[j].mid })

		w := 0
		left := -1
		for i, s := range t.span {
			was := rule.inside(w)
			w += s.winding
			now := rule.inside(w)
			switch {
			case !was && now:
				left = i
			case was && !now && left >= 0:
				t.trapezoid(t.span[left], s, ya, yb)
				left = -1
			}
		}
	}
}

// buildEdges keeps edges taller than eps; flatter ones span no band.
func (t *Triangulator) buildEdges() {
	t.edges = t.edges[:0]
	it := path.NewEdgeIter(t.contours, true)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		a, b := e.P0, e.P1
		switch {
		case b.Y-a.Y > eps:
			t.edges = append(t.edges, edge{a.X, a.Y, b.X, b.Y, 1})
		case a.Y-b.Y > eps:
			t.edges = append(t.edges, edge{b.X, b.Y, a.X, a.Y, -1})
		}
	}
	sort.Slice(t.edges, func(i, j int) bool { return t.edges[i].y0 < t.edges[j].y0 })
}

// buildEvents collects every endpoint y and every y where two edges cross.
func (t *Triangulator) buildEvents() {
	t.ys = t.ys[:0]
	for i := range t.edges {
		t.ys = append(t.ys, t.edges[i].y0, t.edges[i].y1)
	}
	for i := range t.edges {
		a := &t.edges[i]
		for j := i + 1; j < len(t.edges) && t.edges[j].y0 < a.y1; j++ {
			if y, ok := crossingY(a, &t.edges[j]); ok {
				t.ys = append(t.ys, y)
			}
		}
	}
	sort.Float64s(t.ys)
	out := t.ys[:1]
	for _, y := range t.ys[1:] {
		if y-out[len(out)-1] > eps {
			out = append(out, y)
		}
	}
	t.ys = out
}

// crossingY returns the y of a proper interior crossing of a and b.
func crossingY(a, b *edge) (float64, bool) {
	lo := math.Max(a.y0, b.y0)
	hi := math.Min(a.y1, b.y1)
	if hi-lo <= eps {
		return 0, false
	}
	// Compare x positions at both ends of the shared y range.
	dlo := a.xAt(lo) - b.xAt(lo)
	dhi := a.xAt(hi) - b.xAt(hi)
	if (dlo > 0 && dhi > 0) || (dlo < 0 && dhi < 0) || dlo == dhi {
		return 0, false
	}
	y := lo + (hi-lo)*dlo/(dlo-dhi)
	if y-lo <= eps || hi-y <= eps {
		return 0, false
	}
	return y, true
}

func (t *Triangulator) trapezoid(l, r spanEdge, ya, yb float64) {
	const tiny = 1e-9
	topW := r.top - l.top
	bottomW := r.bottom - l.bottom
	if topW <= tiny && bottomW <= tiny {
		return
	}
	tl := t.vertex(l.top, ya)
	bl := t.vertex(l.bottom, yb)
	switch {
	case topW <= tiny:
		t.indices = append(t.indices, tl, t.vertex(r.bottom, yb), bl)
	case bottomW <= tiny:
		t.indices = append(t.indices, tl, t.vertex(r.top, ya), bl)
	default:
		tr := t.vertex(r.top, ya)
		br := t.vertex(r.bottom, yb)
		t.indices = append(t.indices, tl, tr, br, tl, br, bl)
	}
}

func (t *Triangulator) vertex(x, y float64) uint32 {
	k := [2]float64{x, y}
	if i, ok := t.lookup[k]; ok {
		return i
	}
	i := uint32(len(t.vertices) / 2)
	t.vertices = append(t.vertices, float32(x), float32(y))
	t.lookup[k] = i
	return i
}
