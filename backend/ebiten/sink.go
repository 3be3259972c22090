package ebiten

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	eb "github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/Nazariglez/nae"
	"github.com/Nazariglez/nae/backend"
)

// Sink errors.
var (
	ErrFrameOpen = errors.New("ebiten: frame already open")
	ErrNoFrame   = errors.New("ebiten: no open frame")
	ErrNoScreen  = errors.New("ebiten: no screen image")
)

func init() {
	backend.Register(backend.BackendEbiten, func() backend.Backend {
		return New()
	})
}

// Stats counts the work done since the sink was created.
type Stats struct {
	Frames    int
	Batches   int
	DrawCalls int
}

const whiteSize = 3

type cached struct {
	img *eb.Image
	rev uint64
}

// Sink draws batches onto an ebiten image. Frames without a target go to
// the image set with SetScreen, which is normally the screen passed to
// ebiten.Game.Draw. Texture reads for render targets only work while the
// game loop runs.
type Sink struct {
	filter eb.Filter
	screen *eb.Image
	white  *eb.Image
	images map[nae.TextureRef]*cached
	conv   converter
	inited bool

	open  bool
	frame nae.Frame
	dst   *eb.Image
	stats Stats
}

var _ backend.Backend = (*Sink)(nil)

// New returns an uninitialised sink that samples textures linearly.
func New() *Sink {
	return &Sink{filter: eb.FilterLinear}
}

// SetFilter selects the texture filter.
func (s *Sink) SetFilter(f eb.Filter) { s.filter = f }

// SetScreen sets the image default frames draw into.
func (s *Sink) SetScreen(img *eb.Image) { s.screen = img }

// Name implements backend.Backend.
func (s *Sink) Name() string { return backend.BackendEbiten }

// Init implements backend.Backend.
func (s *Sink) Init() error {
	if s.inited {
		return nil
	}
	s.images = make(map[nae.TextureRef]*cached)
	s.inited = true
	nae.Logger().Info("ebiten sink initialised", "filter", s.filter)
	return nil
}

// Close drops every cached image.
func (s *Sink) Close() {
	for ref, c := range s.images {
		c.img.Deallocate()
		delete(s.images, ref)
	}
	if s.white != nil {
		s.white.Deallocate()
		s.white = nil
	}
	s.inited = false
	s.open = false
}

// Begin implements nae.Sink.
func (s *Sink) Begin(f *nae.Frame) error {
	if !s.inited {
		return backend.ErrNotInitialized
	}
	if s.open {
		return ErrFrameOpen
	}
	s.frame = *f
	s.prune(f.Textures)

	scale := f.Scale
	if !f.Target.IsZero() {
		img, err := s.image(f.Textures, f.Target)
		if err != nil {
			return fmt.Errorf("ebiten: frame target: %w", err)
		}
		s.dst = img
		scale = 1
	} else {
		if s.screen == nil {
			return ErrNoScreen
		}
		s.dst = s.screen
	}
	if scale <= 0 {
		scale = 1
	}
	s.conv.scale = float32(scale)
	if c := f.Clear.Color; c != nil {
		s.dst.Fill(c.NRGBA())
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
	src := s.whiteImage()
	if b.Pipeline != nae.PipelineSolid {
		img, err := s.image(s.frame.Textures, b.Texture)
		if err != nil {
			return err
		}
		src = img
	}
	// Atlases store white glyphs with coverage in alpha, so text batches
	// shade like textured ones.
	bw, bh := float32(src.Bounds().Dx()), float32(src.Bounds().Dy())
	var origin float32
	if b.Pipeline == nae.PipelineSolid {
		// Sample the middle of the white image, away from its edges.
		bw, bh, origin = 0, 0, whiteSize/2.0
	}
	op := &eb.DrawTrianglesOptions{
		Filter:  s.filter,
		Address: address(b.Sampler),
		Blend:   eb.BlendSourceOver,
	}
	s.stats.Batches++
	for _, ch := range s.conv.convert(b, bw, bh, origin, maxChunkVertices) {
		s.dst.DrawTriangles(ch.vertices, ch.indices, src, op)
		s.stats.DrawCalls++
	}
	return nil
}

// End implements nae.Sink. Render-target frames are read back into the
// texture registry.
func (s *Sink) End() error {
	if !s.open {
		return ErrNoFrame
	}
	s.open = false
	s.stats.Frames++
	if s.frame.Target.IsZero() {
		return nil
	}
	c := s.images[s.frame.Target]
	img, _, ok := s.frame.Textures.Image(s.frame.Target)
	if !ok || c == nil {
		return fmt.Errorf("ebiten: frame target %v: %w", s.frame.Target, nae.ErrInvalidTexture)
	}
	b := c.img.Bounds()
	res := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	c.img.ReadPixels(res.Pix)
	xdraw.Draw(img, img.Bounds(), res, image.Point{}, xdraw.Src)
	s.frame.Textures.Touch(s.frame.Target)
	// The ebiten image already holds these pixels.
	_, c.rev, _ = s.frame.Textures.Image(s.frame.Target)
	return nil
}

// Stats returns counters accumulated since the sink was created.
func (s *Sink) Stats() Stats { return s.stats }

func (s *Sink) whiteImage() *eb.Image {
	if s.white == nil {
		s.white = eb.NewImage(whiteSize, whiteSize)
		s.white.Fill(color.White)
	}
	return s.white
}

// image returns the ebiten copy of a registry texture, uploading it when
// missing or stale.
func (s *Sink) image(ts *nae.Textures, ref nae.TextureRef) (*eb.Image, error) {
	if ts == nil {
		return nil, fmt.Errorf("ebiten: texture %v without registry: %w", ref, nae.ErrInvalidTexture)
	}
	src, rev, ok := ts.Image(ref)
	if !ok {
		return nil, fmt.Errorf("ebiten: texture %v: %w", ref, nae.ErrInvalidTexture)
	}
	c := s.images[ref]
	if c != nil && c.rev == rev {
		return c.img, nil
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if c != nil && (c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h) {
		c.img.Deallocate()
		c = nil
	}
	if c == nil {
		c = &cached{img: eb.NewImage(w, h)}
		s.images[ref] = c
	}
	c.img.WritePixels(premultiplied(src))
	c.rev = rev
	return c.img, nil
}

func (s *Sink) prune(ts *nae.Textures) {
	if ts == nil {
		return
	}
	for ref, c := range s.images {
		if !ts.Valid(ref) {
			c.img.Deallocate()
			delete(s.images, ref)
		}
	}
}

// premultiplied returns src as premultiplied RGBA bytes, the layout
// WritePixels expects.
func premultiplied(src *image.NRGBA) []byte {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst.Pix
}
