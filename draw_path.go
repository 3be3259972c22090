package nae

// Path submits prebuilt geometry, transformed and painted like any other
// primitive. A Path can be drawn any number of times.
func (d *Draw) Path(p *Path) {
	d.mustRecord("Draw.Path")
	d.pushGeometry(p.Geometry())
}

// Geometry submits raw indexed triangles in user space. Malformed
// geometry panics with ErrInvalidVertices.
func (d *Draw) Geometry(g Geometry) {
	d.mustRecord("Draw.Geometry")
	if !g.Valid() {
		violation("Draw.Geometry", ErrInvalidVertices)
	}
	d.pushGeometry(g)
}

// Vertices submits a triangle list with one color per vertex: positions
// holds x,y pairs, three vertices per triangle, and colors holds one entry
// per vertex. Colors are multiplied by the global alpha only.
func (d *Draw) Vertices(positions []float32, colors []Color) {
	d.mustRecord("Draw.Vertices")
	n := len(positions) / 2
	if len(positions)%6 != 0 || len(colors) != n {
		violation("Draw.Vertices", ErrInvalidVertices)
	}
	if n == 0 {
		return
	}
	m := d.transform.Current()
	b := d.batchFor(PipelineSolid, TextureRef{}, SamplerClamp, n)
	base := uint32(len(b.Vertices))
	for i := 0; i < n; i++ {
		x, y := m.Apply(float64(positions[2*i]), float64(positions[2*i+1]))
		c := colors[i].MulAlpha(d.alpha).Float32()
		b.Vertices = append(b.Vertices, Vertex{X: x, Y: y, R: c[0], G: c[1], B: c[2], A: c[3]})
		b.Indices = append(b.Indices, base+uint32(i))
	}
	if !m.IsIdentity() {
		b.Transformed = true
	}
}

// DrawPath builds a single contour and draws it when stroked or filled.
// Curves are flattened against the tolerance in target pixels, so scaled
// paths stay smooth.
//
//	d.BeginPath(0, 0).LineTo(100, 0).LineTo(100, 100).End(false).Stroke(10)
type DrawPath struct {
	d *Draw
	b *PathBuilder
}

// BeginPath starts a contour at (x, y).
func (d *Draw) BeginPath(x, y float64) *DrawPath {
	d.mustRecord("Draw.BeginPath")
	return &DrawPath{d: d, b: d.tess.Builder().Begin(x, y)}
}

func (p *DrawPath) LineTo(x, y float64) *DrawPath {
	p.b.LineTo(x, y)
	return p
}

func (p *DrawPath) QuadraticBezierTo(cx, cy, x, y float64) *DrawPath {
	p.b.QuadraticBezierTo(cx, cy, x, y)
	return p
}

func (p *DrawPath) CubicBezierTo(c1x, c1y, c2x, c2y, x, y float64) *DrawPath {
	p.b.CubicBezierTo(c1x, c1y, c2x, c2y, x, y)
	return p
}

// End finishes the contour, closing it back to the start when close is set.
func (p *DrawPath) End(close bool) *DrawPath {
	p.b.End(close)
	return p
}

// Stroke draws the contour outline with default options.
func (p *DrawPath) Stroke(width float64) {
	p.StrokeWithOptions(DefaultStrokeOptions().WithLineWidth(width))
}

// StrokeWithOptions draws the contour outline.
func (p *DrawPath) StrokeWithOptions(opts StrokeOptions) {
	opts.Tolerance = p.d.localTolerance(opts.tolerance())
	p.d.Path(p.b.StrokeWithOptions(opts))
}

// Fill draws the contour interior with default options.
func (p *DrawPath) Fill() {
	p.FillWithOptions(DefaultFillOptions())
}

// FillWithOptions draws the contour interior.
func (p *DrawPath) FillWithOptions(opts FillOptions) {
	opts.Tolerance = p.d.localTolerance(opts.tolerance())
	p.d.Path(p.b.FillWithOptions(opts))
}
