package software

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/Nazariglez/nae"
	"github.com/Nazariglez/nae/backend"
	"github.com/Nazariglez/nae/internal/parallel"
)

// Sink errors.
var (
	ErrFrameOpen = errors.New("software: frame already open")
	ErrNoFrame   = errors.New("software: no open frame")
)

func init() {
	backend.Register(backend.BackendSoftware, func() backend.Backend {
		return New()
	})
}

// Stats counts the work done since Init.
type Stats struct {
	Frames    int
	Batches   int
	Triangles int
}

// Sink rasterizes frames on the CPU. A Sink is not safe for concurrent
// use; the Draw that feeds it serialises calls anyway.
type Sink struct {
	opts   options
	pool   *parallel.Pool
	inited bool

	open  bool
	frame nae.Frame
	scale float64

	canvas  *image.RGBA
	surface *image.RGBA
	scratch *image.RGBA
	target  *image.NRGBA
	out     *image.RGBA

	verts []vert
	tris  []tri
	stats Stats
}

var _ backend.Backend = (*Sink)(nil)

// New returns an uninitialised sink.
func New(opts ...Option) *Sink {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Sink{opts: o}
}

// Name implements backend.Backend.
func (s *Sink) Name() string { return backend.BackendSoftware }

// Init starts the rasterizer workers.
func (s *Sink) Init() error {
	if s.inited {
		return nil
	}
	s.pool = parallel.NewPool(s.opts.workers)
	s.inited = true
	nae.Logger().Info("software sink initialised",
		"workers", s.pool.Workers(), "supersample", s.opts.supersample, "filter", s.opts.filter)
	return nil
}

// Close stops the workers and drops the canvases.
func (s *Sink) Close() {
	if !s.inited {
		return
	}
	s.pool.Close()
	s.pool = nil
	s.inited = false
	s.open = false
	s.canvas, s.surface, s.scratch, s.target = nil, nil, nil, nil
}

// Begin implements nae.Sink.
func (s *Sink) Begin(f *nae.Frame) error {
	if !s.inited {
		return backend.ErrNotInitialized
	}
	if s.open {
		return ErrFrameOpen
	}
	ss := s.opts.supersample
	s.frame = *f
	s.target = nil

	var w, h int
	if !f.Target.IsZero() {
		img, ok := s.texture(f.Target)
		if !ok {
			return fmt.Errorf("software: frame target %v: %w", f.Target, nae.ErrInvalidTexture)
		}
		s.target = img
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
		s.scale = float64(ss)
		s.scratch = resize(s.scratch, w*ss, h*ss)
		s.canvas = s.scratch
		xdraw.NearestNeighbor.Scale(s.canvas, s.canvas.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	} else {
		w, h = f.PixelSize()
		scale := f.Scale
		if scale <= 0 {
			scale = 1
		}
		s.scale = scale * float64(ss)
		// The default surface keeps its pixels between frames unless
		// cleared, like a swapchain image with a load op.
		s.surface = resize(s.surface, w*ss, h*ss)
		s.canvas = s.surface
	}
	if f.Clear.Color != nil {
		fill(s.canvas, *f.Clear.Color)
	}
	s.open = true
	return nil
}

// Draw implements nae.Sink.
func (s *Sink) Draw(b *nae.Batch) error {
	if !s.open {
		return ErrNoFrame
	}
	if err := b.Validate(); err != nil {
		return err
	}
	sh := shader{pipeline: b.Pipeline, sampler: b.Sampler, filter: s.opts.filter}
	if b.Pipeline != nae.PipelineSolid {
		img, ok := s.texture(b.Texture)
		if !ok {
			return fmt.Errorf("software: batch texture %v: %w", b.Texture, nae.ErrInvalidTexture)
		}
		sh.tex = img
	}

	s.verts = s.verts[:0]
	for _, v := range b.Vertices {
		s.verts = append(s.verts, vert{
			x: float64(v.X) * s.scale, y: float64(v.Y) * s.scale,
			u: float64(v.U), v: float64(v.V),
			c: [4]float64{float64(v.R), float64(v.G), float64(v.B), float64(v.A)},
		})
	}
	w, h := s.canvas.Bounds().Dx(), s.canvas.Bounds().Dy()
	s.tris = s.tris[:0]
	for i := 0; i+2 < len(b.Indices); i += 3 {
		t, ok := makeTri(&s.verts[b.Indices[i]], &s.verts[b.Indices[i+1]], &s.verts[b.Indices[i+2]], w, h)
		if ok {
			s.tris = append(s.tris, t)
		}
	}
	s.stats.Batches++
	s.stats.Triangles += len(b.Indices) / 3
	if len(s.tris) == 0 {
		return nil
	}

	// Bands own disjoint rows, and each walks the triangles in submission
	// order, so overlapping triangles still blend in order.
	bh := s.opts.bandHeight
	canvas, tris := s.canvas, s.tris
	s.pool.For((h+bh-1)/bh, func(band int) {
		y0 := band * bh
		y1 := min(y0+bh, h)
		for i := range tris {
			t := &tris[i]
			if t.y1 <= y0 || t.y0 >= y1 {
				continue
			}
			rasterize(canvas, t, &sh, y0, y1)
		}
	})
	return nil
}

// End implements nae.Sink. It resolves the canvas into the frame target
// or into the image returned by Image.
func (s *Sink) End() error {
	if !s.open {
		return ErrNoFrame
	}
	s.open = false
	ss := s.opts.supersample
	cb := s.canvas.Bounds()
	w, h := cb.Dx()/ss, cb.Dy()/ss

	if s.target != nil {
		res := image.NewRGBA(image.Rect(0, 0, w, h))
		s.resolve(res)
		xdraw.Draw(s.target, s.target.Bounds(), res, image.Point{}, xdraw.Src)
		s.frame.Textures.Touch(s.frame.Target)
		s.target = nil
	} else {
		s.out = resize(s.out, w, h)
		s.resolve(s.out)
	}
	s.stats.Frames++
	nae.Logger().Debug("software frame resolved",
		"width", w, "height", h, "target", s.frame.Target, "batches", s.stats.Batches)
	return nil
}

// Image returns the last frame drawn to the default surface, or nil. The
// image is reused by the next frame.
func (s *Sink) Image() *image.RGBA { return s.out }

// Stats returns counters accumulated since the sink was created.
func (s *Sink) Stats() Stats { return s.stats }

// EncodePNG writes the last default-surface frame as PNG.
func (s *Sink) EncodePNG(w io.Writer) error {
	if s.out == nil {
		return ErrNoFrame
	}
	return png.Encode(w, s.out)
}

// SavePNG writes the last default-surface frame to a PNG file.
func (s *Sink) SavePNG(path string) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("software: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return s.EncodePNG(f)
}

func (s *Sink) texture(ref nae.TextureRef) (*image.NRGBA, bool) {
	if s.frame.Textures == nil {
		return nil, false
	}
	img, _, ok := s.frame.Textures.Image(ref)
	return img, ok
}

func (s *Sink) resolve(dst *image.RGBA) {
	if s.opts.supersample == 1 {
		copy(dst.Pix, s.canvas.Pix)
		return
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), s.canvas, s.canvas.Bounds(), xdraw.Src, nil)
}

// resize returns img when it already has size w×h, otherwise a new
// transparent image.
func resize(img *image.RGBA, w, h int) *image.RGBA {
	if img != nil && img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
