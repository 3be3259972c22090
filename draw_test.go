package nae

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"
	"testing"
)

// captureSink records a deep copy of everything it receives.
type captureSink struct {
	frames  []Frame
	batches []Batch
	calls   []string
	failOn  string
	endErr  error
}

func (s *captureSink) Begin(f *Frame) error {
	s.calls = append(s.calls, "begin")
	s.frames = append(s.frames, *f)
	if s.failOn == "begin" {
		return errors.New("boom")
	}
	return nil
}

func (s *captureSink) Draw(b *Batch) error {
	s.calls = append(s.calls, "draw")
	c := *b
	c.Vertices = append([]Vertex(nil), b.Vertices...)
	c.Indices = append([]uint32(nil), b.Indices...)
	s.batches = append(s.batches, c)
	if s.failOn == "draw" {
		return errors.New("boom")
	}
	return nil
}

func (s *captureSink) End() error {
	s.calls = append(s.calls, "end")
	return s.endErr
}

func frame(t *testing.T, d *Draw, fn func()) {
	t.Helper()
	if err := d.Begin(nil); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	fn()
	if err := d.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
}

func positions(b Batch) []Point {
	out := make([]Point, len(b.Vertices))
	for i, v := range b.Vertices {
		out[i] = Pt(float64(v.X), float64(v.Y))
	}
	return out
}

func TestDrawRectTransformed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *TransformStack)
		want  []Point
	}{
		{
			"translate then scale",
			func(s *TransformStack) { s.Translate(10, 10); s.Scale(2, 2) },
			[]Point{Pt(10, 10), Pt(110, 10), Pt(110, 110), Pt(10, 110)},
		},
		{
			"scale then translate",
			func(s *TransformStack) { s.Scale(2, 2); s.Translate(10, 10) },
			[]Point{Pt(20, 20), Pt(120, 20), Pt(120, 120), Pt(20, 120)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			d := NewDraw(sink)
			frame(t, d, func() {
				tt.setup(d.Transform())
				d.Rect(0, 0, 50, 50)
			})
			if len(sink.batches) != 1 {
				t.Fatalf("batches = %d, want 1", len(sink.batches))
			}
			got := positions(sink.batches[0])
			if len(got) != len(tt.want) {
				t.Fatalf("vertices = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].ApproxEqual(tt.want[i], 1e-4) {
					t.Errorf("vertex %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if !sink.batches[0].Transformed {
				t.Error("Transformed = false, want true")
			}
		})
	}
}

func TestDrawBatchOrderAndMerging(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	tex := d.Textures().Add(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	frame(t, d, func() {
		d.SetColor(Red)
		d.Rect(0, 0, 10, 10) // A
		d.SetColor(Blue)
		d.Circle(50, 50, 5) // merges with A
		d.Image(tex, 0, 0)  // B
		d.Image(tex, 8, 0)  // merges with B
		d.Triangle(0, 0, 1, 0, 0, 1)
	})

	want := []Pipeline{PipelineSolid, PipelineTextured, PipelineSolid}
	if len(sink.batches) != len(want) {
		t.Fatalf("batches = %d, want %d", len(sink.batches), len(want))
	}
	for i, b := range sink.batches {
		if b.Pipeline != want[i] {
			t.Errorf("batch %d pipeline = %v, want %v", i, b.Pipeline, want[i])
		}
		if err := b.Validate(); err != nil {
			t.Errorf("batch %d Validate() = %v", i, err)
		}
	}
	// The first primitive's color comes first.
	first := sink.batches[0].Vertices[0]
	if first.R != 1 || first.B != 0 {
		t.Errorf("first vertex color = %v,%v,%v, want red", first.R, first.G, first.B)
	}
	last := sink.batches[0].Vertices[len(sink.batches[0].Vertices)-1]
	if last.B != 1 || last.R != 0 {
		t.Errorf("last vertex of merged batch = %v,%v,%v, want blue", last.R, last.G, last.B)
	}
	if got := len(sink.batches[1].Indices); got != 12 {
		t.Errorf("image batch indices = %d, want 12", got)
	}
	if got := sink.calls; len(got) != 5 || got[0] != "begin" || got[4] != "end" {
		t.Errorf("sink calls = %v, want begin, 3 draws, end", got)
	}
}

func TestDrawBatchCapacitySplits(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink, WithBatchCapacity(8))
	frame(t, d, func() {
		d.Rect(0, 0, 1, 1)
		d.Rect(2, 0, 1, 1)
		d.Rect(4, 0, 1, 1)
	})
	if len(sink.batches) != 2 {
		t.Errorf("batches = %d, want 2", len(sink.batches))
	}
}

func TestDrawColorAndAlpha(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	frame(t, d, func() {
		d.SetColor(RGBA(0, 1, 0, 0.5))
		d.SetAlpha(0.5)
		d.Rect(0, 0, 10, 10)
	})
	v := sink.batches[0].Vertices[0]
	if v.G != 1 || v.A != 0.25 {
		t.Errorf("vertex color = %v,%v,%v,%v, want 0,1,0,0.25", v.R, v.G, v.B, v.A)
	}
	d.SetAlpha(3)
	if d.Alpha() != 1 {
		t.Errorf("Alpha() = %v after SetAlpha(3), want 1", d.Alpha())
	}
}

func TestDrawPaintPersistence(t *testing.T) {
	d := NewDraw(nil)
	frame(t, d, func() { d.SetColor(Red); d.SetAlpha(0.3) })
	frame(t, d, func() {})
	if d.Color() != Red || d.Alpha() != 0.3 {
		t.Errorf("paint after Begin = %v/%v, want carried over", d.Color(), d.Alpha())
	}

	r := NewDraw(nil, WithPaintReset(true))
	frame(t, r, func() { r.SetColor(Red); r.SetAlpha(0.3) })
	frame(t, r, func() {
		if r.Color() != White || r.Alpha() != 1 {
			t.Errorf("paint with reset = %v/%v, want white/1", r.Color(), r.Alpha())
		}
	})
}

func TestDrawBeginResetsTransform(t *testing.T) {
	d := NewDraw(nil)
	frame(t, d, func() {
		d.PushTranslation(5, 5)
		d.PushScale(2, 2)
	})
	frame(t, d, func() {
		if d.Transform().Depth() != 1 || !d.Transform().Current().IsIdentity() {
			t.Errorf("transform after Begin: depth %d, want identity base", d.Transform().Depth())
		}
	})
}

func TestDrawStateViolations(t *testing.T) {
	tex := Texture{}
	tests := []struct {
		name string
		fn   func(d *Draw)
		want error
	}{
		{"rect outside frame", func(d *Draw) { d.Rect(0, 0, 1, 1) }, ErrNotRecording},
		{"end outside frame", func(d *Draw) { _ = d.End() }, ErrNotRecording},
		{"path outside frame", func(d *Draw) { d.BeginPath(0, 0) }, ErrNotRecording},
		{"begin twice", func(d *Draw) { _ = d.Begin(nil); _ = d.Begin(nil) }, ErrAlreadyRecording},
		{"zero texture", func(d *Draw) { _ = d.Begin(nil); d.Image(tex, 0, 0) }, ErrInvalidTexture},
		{"foreign texture", func(d *Draw) {
			other := NewTextures().Create(2, 2)
			_ = d.Begin(nil)
			d.Image(other, 0, 0)
		}, ErrInvalidTexture},
		{"stale texture", func(d *Draw) {
			t := d.Textures().Create(2, 2)
			d.Textures().Remove(t)
			_ = d.Begin(nil)
			d.Pattern(t, 0, 0, 10, 10, 0, 0, 1, 1)
		}, ErrInvalidTexture},
		{"odd vertices", func(d *Draw) {
			_ = d.Begin(nil)
			d.Vertices([]float32{0, 0, 1, 1}, []Color{Red, Red})
		}, ErrInvalidVertices},
		{"color count mismatch", func(d *Draw) {
			_ = d.Begin(nil)
			d.Vertices([]float32{0, 0, 1, 0, 0, 1}, []Color{Red})
		}, ErrInvalidVertices},
		{"bad geometry", func(d *Draw) {
			_ = d.Begin(nil)
			d.Geometry(Geometry{Vertices: []float32{0, 0, 1, 1}, Indices: []uint32{0, 1, 5}})
		}, ErrInvalidVertices},
		{"pop base", func(d *Draw) { _ = d.Begin(nil); d.Pop() }, ErrStackUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraw(nil)
			if err := Catch(func() { tt.fn(d) }); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDrawAbort(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	_ = d.Begin(nil)
	d.Rect(0, 0, 10, 10)
	d.Abort()
	frame(t, d, func() { d.Circle(0, 0, 1) })
	if len(sink.frames) != 1 || len(sink.batches) != 1 {
		t.Fatalf("frames %d batches %d, want 1 and 1", len(sink.frames), len(sink.batches))
	}
	if got := len(sink.batches[0].Vertices); got != minCircleSegments {
		t.Errorf("vertices = %d, want only the circle (%d)", got, minCircleSegments)
	}
}

func TestDrawSinkErrors(t *testing.T) {
	for _, failOn := range []string{"begin", "draw"} {
		sink := &captureSink{failOn: failOn}
		d := NewDraw(sink)
		_ = d.Begin(nil)
		d.Rect(0, 0, 1, 1)
		if err := d.End(); err == nil {
			t.Errorf("End() with failing %s = nil, want error", failOn)
		}
		if d.Recording() {
			t.Errorf("Recording() after failed End = true")
		}
	}
}

func TestDrawSinkEndErrorLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	sink := &captureSink{failOn: "draw", endErr: errors.New("end failed")}
	d := NewDraw(sink)
	_ = d.Begin(nil)
	d.Rect(0, 0, 1, 1)
	if err := d.End(); err == nil {
		t.Fatal("End() with failing draw = nil, want error")
	}
	if got := sink.calls[len(sink.calls)-1]; got != "end" {
		t.Errorf("last sink call = %q, want %q", got, "end")
	}
	if !strings.Contains(buf.String(), "end failed") {
		t.Errorf("log output = %q, want the sink end error", buf.String())
	}
}

func TestDrawBeginClearAndTarget(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink, WithSize(320, 240), WithDeviceScale(2))
	clear := Black
	if err := d.Begin(&clear); err != nil {
		t.Fatal(err)
	}
	clear = White // Begin keeps its own copy.
	_ = d.End()

	f := sink.frames[0]
	if f.Clear.Color == nil || *f.Clear.Color != Black {
		t.Errorf("Clear.Color = %v, want black", f.Clear.Color)
	}
	if w, h := f.PixelSize(); w != 640 || h != 480 {
		t.Errorf("PixelSize() = %d,%d, want 640,480", w, h)
	}

	target := d.Textures().Create(64, 32)
	depth := float32(1)
	if err := d.BeginFrame(FrameOptions{Target: target, Clear: ClearOptions{Depth: &depth}}); err != nil {
		t.Fatal(err)
	}
	_ = d.End()
	f = sink.frames[1]
	if f.Target != target.Ref() || f.Width != 64 || f.Height != 32 || f.Scale != 1 {
		t.Errorf("target frame = %+v, want 64x32 on %v", f, target.Ref())
	}

	d.Textures().Remove(target)
	if err := d.BeginFrame(FrameOptions{Target: target}); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("BeginFrame(stale target) = %v, want ErrInvalidTexture", err)
	}
	if d.Recording() {
		t.Error("Recording() after rejected BeginFrame = true")
	}
}

func TestDrawCircleSegments(t *testing.T) {
	tests := []struct {
		r, tol float64
		want   int
	}{
		{0.05, 0.1, minCircleSegments},
		{1, 0.1, minCircleSegments},
		{50, 0.1, 50},
		{1e7, 0.1, maxCircleSegments},
	}
	for _, tt := range tests {
		if got := circleSegments(tt.r, tt.tol); got != tt.want {
			t.Errorf("circleSegments(%v, %v) = %d, want %d", tt.r, tt.tol, got, tt.want)
		}
	}

	// The segment count follows the transform's scale.
	sink := &captureSink{}
	d := NewDraw(sink)
	frame(t, d, func() {
		d.Circle(0, 0, 10)
		d.PushScale(5, 5)
		d.Circle(0, 0, 10)
	})
	small := circleSegments(10, DefaultTolerance)
	large := circleSegments(50, DefaultTolerance)
	if got := len(sink.batches[0].Vertices); got != small+large {
		t.Errorf("vertices = %d, want %d+%d", got, small, large)
	}
}

func TestDrawCircleChordError(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	frame(t, d, func() { d.Circle(100, 100, 40) })
	vs := sink.batches[0].Vertices
	n := len(vs)
	for i := range vs {
		a, b := vs[i], vs[(i+1)%n]
		mx, my := float64(a.X+b.X)/2, float64(a.Y+b.Y)/2
		if e := 40 - math.Hypot(mx-100, my-100); e > DefaultTolerance+1e-4 {
			t.Fatalf("chord %d error = %v, want <= %v", i, e, DefaultTolerance)
		}
	}
}

func TestDrawShapesProduceValidGeometry(t *testing.T) {
	tex := func(d *Draw) Texture {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		img.Set(1, 1, color.White)
		return d.Textures().Add(img)
	}
	tests := []struct {
		name string
		fn   func(d *Draw)
	}{
		{"StrokeRect", func(d *Draw) { d.StrokeRect(0, 0, 10, 10, 2) }},
		{"StrokeCircle", func(d *Draw) { d.StrokeCircle(0, 0, 10, 2) }},
		{"Ellipse", func(d *Draw) { d.Ellipse(0, 0, 10, 4) }},
		{"StrokeEllipse", func(d *Draw) { d.StrokeEllipse(0, 0, 10, 4, 1) }},
		{"StrokeTriangle", func(d *Draw) { d.StrokeTriangle(0, 0, 10, 0, 0, 10, 1) }},
		{"Line", func(d *Draw) { d.Line(0, 0, 10, 10, 3) }},
		{"RoundedRect", func(d *Draw) { d.RoundedRect(0, 0, 40, 20, 5) }},
		{"StrokeRoundedRect", func(d *Draw) { d.StrokeRoundedRect(0, 0, 40, 20, 5, 2) }},
		{"Polygon", func(d *Draw) { d.Polygon([]Point{Pt(0, 0), Pt(10, 0), Pt(5, 3), Pt(10, 10), Pt(0, 10)}) }},
		{"Polyline", func(d *Draw) { d.Polyline([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}, 2) }},
		{"ImageExt", func(d *Draw) { d.ImageExt(tex(d), 0, 0, 32, 32) }},
		{"ImageCrop", func(d *Draw) { d.ImageCrop(tex(d), 0, 0, 2, 2, 4, 0) }},
		{"Pattern", func(d *Draw) { d.Pattern(tex(d), 0, 0, 100, 100, 3, 3, 2, 2) }},
		{"Vertices", func(d *Draw) { d.Vertices([]float32{0, 0, 1, 0, 0, 1}, []Color{Red, Green, Blue}) }},
		{"BeginPath", func(d *Draw) {
			d.BeginPath(0, 0).QuadraticBezierTo(5, 10, 10, 0).CubicBezierTo(10, -5, 0, -5, 0, 0).End(true).Fill()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			d := NewDraw(sink)
			frame(t, d, func() { tt.fn(d) })
			if len(sink.batches) == 0 {
				t.Fatal("no batches")
			}
			for i, b := range sink.batches {
				if len(b.Indices) == 0 {
					t.Errorf("batch %d is empty", i)
				}
				if err := b.Validate(); err != nil {
					t.Errorf("batch %d Validate() = %v", i, err)
				}
			}
		})
	}
}

func TestDrawImageUVs(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	tex := d.Textures().Create(100, 50)
	frame(t, d, func() {
		d.ImageCrop(tex, 0, 0, 50, 0, 0, 25)
		d.Pattern(tex, 0, 0, 200, 100, 0, 0, 1, 1)
	})
	crop := sink.batches[0].Vertices
	if crop[0].U != 0.5 || crop[2].U != 1 || crop[2].V != 0.5 {
		t.Errorf("crop uv = (%v,%v)-(%v,%v), want (0.5,0)-(1,0.5)", crop[0].U, crop[0].V, crop[2].U, crop[2].V)
	}
	if crop[2].X != 50 || crop[2].Y != 25 {
		t.Errorf("crop corner = (%v,%v), want (50,25)", crop[2].X, crop[2].Y)
	}
	pat := sink.batches[1]
	if pat.Sampler != SamplerRepeat || pat.Vertices[2].U != 2 || pat.Vertices[2].V != 2 {
		t.Errorf("pattern sampler %v uv %v,%v, want repeat 2,2", pat.Sampler, pat.Vertices[2].U, pat.Vertices[2].V)
	}
}

func TestDrawPathFluent(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	frame(t, d, func() {
		d.BeginPath(0, 0).LineTo(100, 0).LineTo(100, 100).End(false).Stroke(10)
	})
	b := sink.batches[0]
	if len(b.Indices) == 0 || len(b.Indices)%3 != 0 {
		t.Fatalf("indices = %d, want non-empty multiple of 3", len(b.Indices))
	}
	for _, p := range positions(b) {
		if p.X < -5-1e-4 || p.X > 105+1e-4 || p.Y < -5-1e-4 || p.Y > 105+1e-4 {
			t.Errorf("vertex %v outside [-5,105]^2", p)
		}
	}
}

func TestDrawPrebuiltPathReuse(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	p := d.Tessellator().Builder().Begin(0, 0).LineTo(10, 0).LineTo(0, 10).End(true).Fill()
	frame(t, d, func() {
		d.Path(p)
		d.PushTranslation(100, 0)
		d.Path(p)
		d.Pop()
	})
	vs := sink.batches[0].Vertices
	if len(vs) != 6 || vs[3].X != 100 {
		t.Errorf("vertices = %+v, want two triangles, second at x=100", vs)
	}
	if got := sink.batches[0].Indices[3:]; got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("second triangle indices = %v, want rebased to 3,4,5", got)
	}
}

type fakeFont struct {
	atlas Texture
	err   error
}

func (f fakeFont) Layout(_ *Textures, s string, size float64) (TextLayout, error) {
	if f.err != nil {
		return TextLayout{}, f.err
	}
	l := TextLayout{Atlas: f.atlas, Width: float64(len(s)) * size / 2, Height: size}
	for i := range s {
		l.Glyphs = append(l.Glyphs, GlyphQuad{X: float64(i) * size / 2, W: size / 2, H: size, U1: 1, V1: 1})
	}
	return l, nil
}

func TestDrawText(t *testing.T) {
	sink := &captureSink{}
	d := NewDraw(sink)
	font := fakeFont{atlas: d.Textures().Create(16, 16)}
	frame(t, d, func() {
		d.Text(font, "abc", 10, 20, 10)
		d.TextExt(font, "ab", 100, 100, TextOptions{Size: 10, HAlign: AlignCenter, VAlign: AlignMiddle})
		d.Text(fakeFont{err: errors.New("no glyphs")}, "x", 0, 0, 10)
	})
	if len(sink.batches) != 1 || sink.batches[0].Pipeline != PipelineText {
		t.Fatalf("batches = %+v, want one text batch", sink.batches)
	}
	vs := sink.batches[0].Vertices
	if got := len(vs); got != 20 {
		t.Fatalf("vertices = %d, want 5 glyph quads", got)
	}
	if vs[0].X != 10 || vs[0].Y != 20 {
		t.Errorf("first glyph at (%v,%v), want (10,20)", vs[0].X, vs[0].Y)
	}
	if vs[12].X != 95 || vs[12].Y != 95 {
		t.Errorf("centered glyph at (%v,%v), want (95,95)", vs[12].X, vs[12].Y)
	}
}
