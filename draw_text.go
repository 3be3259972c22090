package nae

// GlyphQuad places one glyph bitmap relative to the top-left corner of the
// line box. U and V address the atlas texture in [0, 1].
type GlyphQuad struct {
	X, Y, W, H     float64
	U0, V0, U1, V1 float32
}

// TextLayout is a shaped line ready to draw. Every glyph samples Atlas.
type TextLayout struct {
	Atlas  Texture
	Glyphs []GlyphQuad
	// Width is the advance of the whole line; Height is ascent plus
	// descent.
	Width, Height float64
}

// TextSource shapes strings into atlas-backed glyph quads. text.Font
// implements it.
type TextSource interface {
	Layout(textures *Textures, s string, size float64) (TextLayout, error)
}

// HAlign positions text horizontally relative to the anchor.
type HAlign uint8

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign positions text vertically relative to the anchor.
type VAlign uint8

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// TextOptions configures TextExt.
type TextOptions struct {
	Size   float64
	HAlign HAlign
	VAlign VAlign
}

// Text draws s with its line box's top-left corner at (x, y).
func (d *Draw) Text(font TextSource, s string, x, y, size float64) {
	d.mustRecord("Draw.Text")
	d.text(font, s, x, y, TextOptions{Size: size})
}

// TextExt draws s aligned around (x, y).
func (d *Draw) TextExt(font TextSource, s string, x, y float64, opts TextOptions) {
	d.mustRecord("Draw.TextExt")
	d.text(font, s, x, y, opts)
}

func (d *Draw) text(font TextSource, s string, x, y float64, opts TextOptions) {
	if font == nil || s == "" || opts.Size <= 0 {
		return
	}
	layout, err := font.Layout(d.textures, s, opts.Size)
	if err != nil {
		Logger().Warn("text layout failed", "text", s, "err", err)
		return
	}
	if len(layout.Glyphs) == 0 {
		return
	}
	d.checkTexture("Draw.Text", layout.Atlas)

	switch opts.HAlign {
	case AlignCenter:
		x -= layout.Width / 2
	case AlignRight:
		x -= layout.Width
	}
	switch opts.VAlign {
	case AlignMiddle:
		y -= layout.Height / 2
	case AlignBottom:
		y -= layout.Height
	}

	quads := make([]quad, 0, len(layout.Glyphs))
	for _, g := range layout.Glyphs {
		quads = append(quads, quad{
			x0: x + g.X, y0: y + g.Y, x1: x + g.X + g.W, y1: y + g.Y + g.H,
			u0: g.U0, v0: g.V0, u1: g.U1, v1: g.V1,
		})
	}
	d.pushQuads(PipelineText, layout.Atlas.ref, SamplerClamp, quads...)
}
