package software

import (
	"image"
	"math"

	"github.com/Nazariglez/nae"
)

// vert is a vertex in canvas pixels with its straight-alpha color.
type vert struct {
	x, y float64
	u, v float64
	c    [4]float64
}

// tri is a clockwise (in y-down space) triangle with its pixel bounds,
// [x0, x1) × [y0, y1).
type tri struct {
	a, b, c        *vert
	area           float64
	x0, x1, y0, y1 int
}

// makeTri orients the triangle and clips its bounds to w×h. It reports
// false for degenerate or off-canvas triangles.
func makeTri(a, b, c *vert, w, h int) (tri, bool) {
	area := edge(a, b, c.x, c.y)
	if math.Abs(area) < 1e-12 || math.IsNaN(area) || math.IsInf(area, 0) {
		return tri{}, false
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}
	minX := math.Min(a.x, math.Min(b.x, c.x))
	maxX := math.Max(a.x, math.Max(b.x, c.x))
	minY := math.Min(a.y, math.Min(b.y, c.y))
	maxY := math.Max(a.y, math.Max(b.y, c.y))
	t := tri{
		a: a, b: b, c: c, area: area,
		x0: max(0, int(math.Floor(minX))),
		x1: min(w, int(math.Ceil(maxX))),
		y0: max(0, int(math.Floor(minY))),
		y1: min(h, int(math.Ceil(maxY))),
	}
	return t, t.x0 < t.x1 && t.y0 < t.y1
}

// edge is the signed doubled area of (a, b, p); positive when p lies to
// the right of a→b on screen.
func edge(a, b *vert, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a→b is a top or left edge of a clockwise
// triangle. Samples exactly on such edges belong to the triangle, so
// triangles sharing an edge never both cover, or both skip, a pixel.
func topLeft(a, b *vert) bool {
	return (a.y == b.y && b.x > a.x) || b.y < a.y
}

func inside(w float64, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

// shader computes the premultiplied color of a sample.
type shader struct {
	pipeline nae.Pipeline
	tex      *image.NRGBA
	sampler  nae.SamplerMode
	filter   Filter
}

func (s *shader) shade(t *tri, l0, l1, l2 float64) [4]float64 {
	var col [4]float64
	for k := range col {
		col[k] = l0*t.a.c[k] + l1*t.b.c[k] + l2*t.c.c[k]
	}
	a := col[3]
	switch s.pipeline {
	case nae.PipelineTextured:
		u := l0*t.a.u + l1*t.b.u + l2*t.c.u
		v := l0*t.a.v + l1*t.b.v + l2*t.c.v
		tx := sample(s.tex, u, v, s.sampler, s.filter)
		return [4]float64{tx[0] * col[0] * a, tx[1] * col[1] * a, tx[2] * col[2] * a, tx[3] * a}
	case nae.PipelineText:
		u := l0*t.a.u + l1*t.b.u + l2*t.c.u
		v := l0*t.a.v + l1*t.b.v + l2*t.c.v
		cov := sample(s.tex, u, v, s.sampler, s.filter)[3]
		a *= cov
		return [4]float64{col[0] * a, col[1] * a, col[2] * a, a}
	default:
		return [4]float64{col[0] * a, col[1] * a, col[2] * a, a}
	}
}

// rasterize draws the rows [y0, y1) of t onto dst.
func rasterize(dst *image.RGBA, t *tri, sh *shader, y0, y1 int) {
	y0 = max(y0, t.y0)
	y1 = min(y1, t.y1)
	tl0 := topLeft(t.b, t.c)
	tl1 := topLeft(t.c, t.a)
	tl2 := topLeft(t.a, t.b)
	inv := 1 / t.area
	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		row := y * dst.Stride
		for x := t.x0; x < t.x1; x++ {
			px := float64(x) + 0.5
			w0 := edge(t.b, t.c, px, py)
			w1 := edge(t.c, t.a, px, py)
			w2 := edge(t.a, t.b, px, py)
			if !inside(w0, tl0) || !inside(w1, tl1) || !inside(w2, tl2) {
				continue
			}
			src := sh.shade(t, w0*inv, w1*inv, w2*inv)
			if src[3] <= 0 {
				continue
			}
			blendOver(dst.Pix[row+4*x:row+4*x+4], src)
		}
	}
}

// blendOver composites a premultiplied source over a premultiplied pixel.
func blendOver(p []uint8, src [4]float64) {
	inv := 1 - math.Min(1, src[3])
	for k := range 4 {
		p[k] = to8(src[k]*255 + float64(p[k])*inv)
	}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// fill sets every pixel to c, premultiplied.
func fill(dst *image.RGBA, c nae.Color) {
	a := math.Max(0, math.Min(1, c.A))
	px := [4]uint8{to8(c.R * a * 255), to8(c.G * a * 255), to8(c.B * a * 255), to8(a * 255)}
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		copy(dst.Pix[i:i+4], px[:])
	}
}

// sample returns the premultiplied texel at (u, v).
func sample(img *image.NRGBA, u, v float64, mode nae.SamplerMode, f Filter) [4]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return [4]float64{}
	}
	if f == FilterNearest {
		x := wrap(int(math.Floor(u*float64(w))), w, mode)
		y := wrap(int(math.Floor(v*float64(h))), h, mode)
		return texel(img, x, y)
	}
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)
	c00 := texel(img, wrap(ix, w, mode), wrap(iy, h, mode))
	c10 := texel(img, wrap(ix+1, w, mode), wrap(iy, h, mode))
	c01 := texel(img, wrap(ix, w, mode), wrap(iy+1, h, mode))
	c11 := texel(img, wrap(ix+1, w, mode), wrap(iy+1, h, mode))
	var out [4]float64
	for k := range out {
		top := c00[k] + (c10[k]-c00[k])*tx
		bot := c01[k] + (c11[k]-c01[k])*tx
		out[k] = top + (bot-top)*ty
	}
	return out
}

func wrap(i, n int, mode nae.SamplerMode) int {
	if mode == nae.SamplerRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return max(0, min(n-1, i))
}

func texel(img *image.NRGBA, x, y int) [4]float64 {
	o := img.Bounds().Min
	i := img.PixOffset(x+o.X, y+o.Y)
	p := img.Pix[i : i+4]
	a := float64(p[3]) / 255
	return [4]float64{float64(p[0]) / 255 * a, float64(p[1]) / 255 * a, float64(p[2]) / 255 * a, a}
}
