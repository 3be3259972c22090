package nae

import (
	"fmt"
	"math"
)

// FrameStats summarises the last submitted frame.
type FrameStats struct {
	Batches   int
	Vertices  int
	Triangles int
}

// Draw is the immediate-mode drawing state machine. Between Begin and End
// every primitive is tessellated on the spot, transformed by the current
// matrix, tagged with the current paint and appended to the pending
// batches. End hands the batches to the Sink in submission order.
//
// A Draw belongs to one goroutine.
type Draw struct {
	sink      Sink
	opts      drawOptions
	tess      *Tessellator
	transform *TransformStack
	textures  *Textures

	color Color
	alpha float64

	recording bool
	frame     Frame
	batches   []Batch
	points    []Point
	stats     FrameStats
}

// NewDraw returns an idle Draw that submits frames to sink. A nil sink
// discards every frame.
func NewDraw(sink Sink, opts ...DrawOption) *Draw {
	o := defaultDrawOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Draw{
		sink:      sink,
		opts:      o,
		tess:      o.tess,
		transform: NewTransformStack(),
		textures:  o.textures,
		color:     White,
		alpha:     1,
	}
	if d.tess == nil {
		d.tess = NewTessellator()
	}
	if d.textures == nil {
		d.textures = NewTextures()
	}
	return d
}

// Textures returns the registry images and render targets must come from.
func (d *Draw) Textures() *Textures { return d.textures }

// Tessellator returns the scratch tessellator, for building paths that are
// drawn later through Path.
func (d *Draw) Tessellator() *Tessellator { return d.tess }

// Transform returns the transform stack. It is reset by every Begin.
func (d *Draw) Transform() *TransformStack { return d.transform }

// Size returns the logical target size used for frames without a target
// texture.
func (d *Draw) Size() (int, int) { return d.opts.width, d.opts.height }

// SetSize changes the logical target size, for instance after a window
// resize. It takes effect at the next Begin.
func (d *Draw) SetSize(width, height int) {
	d.opts.width, d.opts.height = width, height
}

// DeviceScale returns the device pixel ratio.
func (d *Draw) DeviceScale() float64 { return d.opts.scale }

// SetDeviceScale changes the device pixel ratio. Values <= 0 are ignored.
func (d *Draw) SetDeviceScale(s float64) {
	if s > 0 {
		d.opts.scale = s
	}
}

// SetColor sets the paint color of following primitives.
func (d *Draw) SetColor(c Color) { d.color = c }

// Color returns the paint color.
func (d *Draw) Color() Color { return d.color }

// SetAlpha sets the global alpha multiplier, clamped to [0, 1].
func (d *Draw) SetAlpha(a float64) { d.alpha = math.Max(0, math.Min(1, a)) }

// Alpha returns the global alpha multiplier.
func (d *Draw) Alpha() float64 { return d.alpha }

// Recording reports whether a frame is open.
func (d *Draw) Recording() bool { return d.recording }

// Stats returns the statistics of the last frame End submitted.
func (d *Draw) Stats() FrameStats { return d.stats }

// Begin opens a frame on the default target, optionally clearing it.
func (d *Draw) Begin(clear *Color) error {
	var o FrameOptions
	if clear != nil {
		c := *clear
		o.Clear.Color = &c
	}
	return d.BeginFrame(o)
}

// BeginFrame opens a frame. It resets the transform stack, and the paint
// too when the Draw was created WithPaintReset. Calling it while a frame
// is open panics with ErrAlreadyRecording.
func (d *Draw) BeginFrame(o FrameOptions) error {
	if d.recording {
		violation("Draw.Begin", ErrAlreadyRecording)
	}
	frame := Frame{
		Width:    d.opts.width,
		Height:   d.opts.height,
		Scale:    d.opts.scale,
		Clear:    o.Clear,
		Textures: d.textures,
	}
	if o.Target != (Texture{}) {
		if o.Target.owner != d.textures || !o.Target.IsLoaded() {
			return fmt.Errorf("nae: begin frame on target %v: %w", o.Target.ref, ErrInvalidTexture)
		}
		frame.Target = o.Target.ref
		frame.Width, frame.Height = o.Target.width, o.Target.height
		frame.Scale = 1
	}

	d.transform.Reset()
	if d.opts.resetPaint {
		d.color = White
		d.alpha = 1
	}
	d.batches = d.batches[:0]
	d.frame = frame
	d.recording = true
	return nil
}

// End closes the frame and submits it: Sink.Begin, one Sink.Draw per
// batch, then Sink.End. Batches passed to the sink are reused by the next
// frame, so sinks that keep them must copy.
func (d *Draw) End() error {
	if !d.recording {
		violation("Draw.End", ErrNotRecording)
	}
	d.recording = false

	stats := FrameStats{Batches: len(d.batches)}
	for i := range d.batches {
		stats.Vertices += len(d.batches[i].Vertices)
		stats.Triangles += len(d.batches[i].Indices) / 3
	}
	d.stats = stats

	if d.sink == nil {
		return nil
	}
	if err := d.sink.Begin(&d.frame); err != nil {
		return fmt.Errorf("nae: sink begin: %w", err)
	}
	for i := range d.batches {
		if err := d.sink.Draw(&d.batches[i]); err != nil {
			if endErr := d.sink.End(); endErr != nil {
				Logger().Warn("sink end after failed draw", "batch", i, "err", endErr)
			}
			return fmt.Errorf("nae: sink draw batch %d: %w", i, err)
		}
	}
	if err := d.sink.End(); err != nil {
		return fmt.Errorf("nae: sink end: %w", err)
	}
	Logger().Debug("frame submitted", "batches", stats.Batches, "vertices", stats.Vertices, "triangles", stats.Triangles)
	return nil
}

// Abort drops the open frame without submitting anything.
func (d *Draw) Abort() {
	if d.recording {
		Logger().Warn("frame aborted", "batches", len(d.batches))
	}
	d.recording = false
	d.batches = d.batches[:0]
}

// PushMatrix pushes Current() * m onto the transform stack.
func (d *Draw) PushMatrix(m Matrix) { d.transform.PushMatrix(m) }

// PushTranslation pushes a translation.
func (d *Draw) PushTranslation(x, y float64) { d.transform.PushMatrix(Translate(x, y)) }

// PushScale pushes a scale around the origin.
func (d *Draw) PushScale(sx, sy float64) { d.transform.PushMatrix(Scale(sx, sy)) }

// PushRotation pushes a rotation by angle radians.
func (d *Draw) PushRotation(angle float64) { d.transform.PushMatrix(Rotate(angle)) }

// PushSkew pushes a shear.
func (d *Draw) PushSkew(kx, ky float64) { d.transform.PushMatrix(Skew(kx, ky)) }

// Pop pops the transform stack.
func (d *Draw) Pop() { d.transform.Pop() }

func (d *Draw) mustRecord(op string) {
	if !d.recording {
		violation(op, ErrNotRecording)
	}
}

func (d *Draw) paint() [4]float32 {
	return d.color.MulAlpha(d.alpha).Float32()
}

// batchFor returns the batch n more vertices of the given kind go into,
// starting a new one when the last batch differs or is full.
func (d *Draw) batchFor(p Pipeline, tex TextureRef, s SamplerMode, n int) *Batch {
	if k := len(d.batches); k > 0 {
		last := &d.batches[k-1]
		if last.compatible(p, tex, s) && (len(last.Vertices) == 0 || len(last.Vertices)+n <= d.opts.batchCapacity) {
			return last
		}
	}
	if len(d.batches) < cap(d.batches) {
		d.batches = d.batches[:len(d.batches)+1]
		b := &d.batches[len(d.batches)-1]
		*b = Batch{Pipeline: p, Texture: tex, Sampler: s, Vertices: b.Vertices[:0], Indices: b.Indices[:0]}
		return b
	}
	d.batches = append(d.batches, Batch{Pipeline: p, Texture: tex, Sampler: s})
	return &d.batches[len(d.batches)-1]
}

// pushGeometry appends local-space triangles in the current paint.
func (d *Draw) pushGeometry(g Geometry) {
	if g.Empty() {
		return
	}
	m := d.transform.Current()
	c := d.paint()
	b := d.batchFor(PipelineSolid, TextureRef{}, SamplerClamp, g.VertexCount())
	base := uint32(len(b.Vertices))
	for i := 0; i < g.VertexCount(); i++ {
		x, y := m.Apply(float64(g.Vertices[2*i]), float64(g.Vertices[2*i+1]))
		b.Vertices = append(b.Vertices, Vertex{X: x, Y: y, R: c[0], G: c[1], B: c[2], A: c[3]})
	}
	for _, idx := range g.Indices {
		b.Indices = append(b.Indices, base+idx)
	}
	if !m.IsIdentity() {
		b.Transformed = true
	}
}

// quad describes an axis-aligned local rectangle and its texture window.
type quad struct {
	x0, y0, x1, y1 float64
	u0, v0, u1, v1 float32
}

// pushQuads appends textured rectangles in the current paint.
func (d *Draw) pushQuads(p Pipeline, tex TextureRef, s SamplerMode, quads ...quad) {
	if len(quads) == 0 {
		return
	}
	m := d.transform.Current()
	c := d.paint()
	b := d.batchFor(p, tex, s, 4*len(quads))
	for _, q := range quads {
		base := uint32(len(b.Vertices))
		corners := [4]struct {
			x, y float64
			u, v float32
		}{
			{q.x0, q.y0, q.u0, q.v0},
			{q.x1, q.y0, q.u1, q.v0},
			{q.x1, q.y1, q.u1, q.v1},
			{q.x0, q.y1, q.u0, q.v1},
		}
		for _, k := range corners {
			x, y := m.Apply(k.x, k.y)
			b.Vertices = append(b.Vertices, Vertex{X: x, Y: y, U: k.u, V: k.v, R: c[0], G: c[1], B: c[2], A: c[3]})
		}
		b.Indices = append(b.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	if !m.IsIdentity() {
		b.Transformed = true
	}
}

// localTolerance converts a tolerance in target pixels into the current
// user space.
func (d *Draw) localTolerance(tol float64) float64 {
	if s := d.transform.Current().MaxScale(); s > 1e-9 {
		return tol / s
	}
	return tol
}
