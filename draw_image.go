package nae

// Image draws tex at (x, y) at its natural size, tinted by the paint.
func (d *Draw) Image(tex Texture, x, y float64) {
	d.mustRecord("Draw.Image")
	d.checkTexture("Draw.Image", tex)
	d.imageRect(tex, x, y, tex.Width(), tex.Height(), 0, 0, tex.Width(), tex.Height())
}

// ImageExt draws tex stretched to w×h.
func (d *Draw) ImageExt(tex Texture, x, y, w, h float64) {
	d.mustRecord("Draw.ImageExt")
	d.checkTexture("Draw.ImageExt", tex)
	d.imageRect(tex, x, y, w, h, 0, 0, tex.Width(), tex.Height())
}

// ImageCrop draws the texture window at (sx, sy) of size sw×sh at (x, y)
// without scaling. A non-positive sw or sh extends the window to the
// texture edge.
func (d *Draw) ImageCrop(tex Texture, x, y, sx, sy, sw, sh float64) {
	d.mustRecord("Draw.ImageCrop")
	d.checkTexture("Draw.ImageCrop", tex)
	if sw <= 0 {
		sw = tex.Width() - sx
	}
	if sh <= 0 {
		sh = tex.Height() - sy
	}
	d.imageRect(tex, x, y, sw, sh, sx, sy, sw, sh)
}

// Pattern fills the w×h rectangle at (x, y) with tex repeated. The offset
// shifts the tiles and the scale resizes them; a non-positive scale counts
// as 1.
func (d *Draw) Pattern(tex Texture, x, y, w, h, offsetX, offsetY, scaleX, scaleY float64) {
	d.mustRecord("Draw.Pattern")
	d.checkTexture("Draw.Pattern", tex)
	if scaleX <= 0 {
		scaleX = 1
	}
	if scaleY <= 0 {
		scaleY = 1
	}
	tw, th := tex.Width()*scaleX, tex.Height()*scaleY
	d.pushQuads(PipelineTextured, tex.ref, SamplerRepeat, quad{
		x0: x, y0: y, x1: x + w, y1: y + h,
		u0: float32(-offsetX / tw), v0: float32(-offsetY / th),
		u1: float32((w - offsetX) / tw), v1: float32((h - offsetY) / th),
	})
}

func (d *Draw) imageRect(tex Texture, x, y, w, h, sx, sy, sw, sh float64) {
	tw, th := tex.Width(), tex.Height()
	if tw == 0 || th == 0 || w == 0 || h == 0 {
		return
	}
	d.pushQuads(PipelineTextured, tex.ref, SamplerClamp, quad{
		x0: x, y0: y, x1: x + w, y1: y + h,
		u0: float32(sx / tw), v0: float32(sy / th),
		u1: float32((sx + sw) / tw), v1: float32((sy + sh) / th),
	})
}

func (d *Draw) checkTexture(op string, tex Texture) {
	if tex.owner != d.textures || !tex.IsLoaded() {
		violation(op, ErrInvalidTexture)
	}
}
