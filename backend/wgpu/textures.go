package wgpu

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Nazariglez/nae"
)

// gpuTexture mirrors one registry texture on the device.
type gpuTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	w, h   int
	rev    uint64
	groups [2]hal.BindGroup // by nae.SamplerMode
}

// textureCache uploads registry textures on first use and again whenever
// their revision changes.
type textureCache struct {
	device  hal.Device
	queue   hal.Queue
	layout  hal.BindGroupLayout
	label   string
	entries map[nae.TextureRef]*gpuTexture

	samplers [2]hal.Sampler
	white    *gpuTexture
	staging  *image.RGBA
}

func newTextureCache(device hal.Device, queue hal.Queue, layout hal.BindGroupLayout, label string) (*textureCache, error) {
	c := &textureCache{
		device:  device,
		queue:   queue,
		layout:  layout,
		label:   label,
		entries: make(map[nae.TextureRef]*gpuTexture),
	}
	modes := [2]gputypes.AddressMode{
		nae.SamplerClamp:  gputypes.AddressModeClampToEdge,
		nae.SamplerRepeat: gputypes.AddressModeRepeat,
	}
	for i, mode := range modes {
		s, err := device.CreateSampler(&hal.SamplerDescriptor{
			Label:        fmt.Sprintf("%s_%v_sampler", label, nae.SamplerMode(i)),
			AddressModeU: mode,
			AddressModeV: mode,
			AddressModeW: mode,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMaxClamp:  32,
			Anisotropy:   1,
		})
		if err != nil {
			c.destroy()
			return nil, fmt.Errorf("wgpu: create sampler: %w", err)
		}
		c.samplers[i] = s
	}

	white := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	white.Pix[0], white.Pix[1], white.Pix[2], white.Pix[3] = 0xff, 0xff, 0xff, 0xff
	t, err := c.create(white, label+"_white")
	if err != nil {
		c.destroy()
		return nil, err
	}
	c.white = t
	return c, nil
}

// bindGroup returns the texture bind group for a batch. Solid batches get
// the white texture.
func (c *textureCache) bindGroup(ts *nae.Textures, b *nae.Batch) (hal.BindGroup, error) {
	if b.Pipeline == nae.PipelineSolid {
		return c.group(c.white, nae.SamplerClamp)
	}
	if ts == nil {
		return nil, fmt.Errorf("wgpu: batch texture %v without registry: %w", b.Texture, nae.ErrInvalidTexture)
	}
	img, rev, ok := ts.Image(b.Texture)
	if !ok {
		return nil, fmt.Errorf("wgpu: batch texture %v: %w", b.Texture, nae.ErrInvalidTexture)
	}
	t, err := c.sync(b.Texture, img, rev)
	if err != nil {
		return nil, err
	}
	return c.group(t, b.Sampler)
}

func (c *textureCache) sync(ref nae.TextureRef, img *image.NRGBA, rev uint64) (*gpuTexture, error) {
	t, ok := c.entries[ref]
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	switch {
	case ok && t.rev == rev:
		return t, nil
	case ok && t.w == w && t.h == h:
		if err := c.upload(t, img); err != nil {
			return nil, err
		}
		t.rev = rev
		return t, nil
	case ok:
		c.release(t)
		delete(c.entries, ref)
	}
	t, err := c.create(img, fmt.Sprintf("%s_tex_%v", c.label, ref))
	if err != nil {
		return nil, err
	}
	t.rev = rev
	c.entries[ref] = t
	return t, nil
}

func (c *textureCache) create(img *image.NRGBA, label string) (*gpuTexture, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        surfaceFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %s: %w", label, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		c.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view %s: %w", label, err)
	}
	t := &gpuTexture{tex: tex, view: view, w: w, h: h}
	if err := c.upload(t, img); err != nil {
		c.release(t)
		return nil, err
	}
	return t, nil
}

// upload writes img premultiplied, which is what the shaders and the
// blend state expect.
func (c *textureCache) upload(t *gpuTexture, img *image.NRGBA) error {
	c.staging = premultiply(c.staging, img)
	return writeRGBA(c.queue, t.tex, c.staging)
}

func (c *textureCache) group(t *gpuTexture, mode nae.SamplerMode) (hal.BindGroup, error) {
	if int(mode) >= len(t.groups) {
		mode = nae.SamplerClamp
	}
	if g := t.groups[mode]; g != nil {
		return g, nil
	}
	g, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  c.label + "_texture_group",
		Layout: c.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: c.samplers[mode].NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture bind group: %w", err)
	}
	t.groups[mode] = g
	return g, nil
}

// prune drops device copies of textures no longer in the registry.
func (c *textureCache) prune(ts *nae.Textures) {
	if ts == nil {
		return
	}
	for ref, t := range c.entries {
		if !ts.Valid(ref) {
			c.release(t)
			delete(c.entries, ref)
		}
	}
}

func (c *textureCache) len() int { return len(c.entries) }

func (c *textureCache) release(t *gpuTexture) {
	for i, g := range t.groups {
		if g != nil {
			c.device.DestroyBindGroup(g)
			t.groups[i] = nil
		}
	}
	if t.view != nil {
		c.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		c.device.DestroyTexture(t.tex)
	}
}

func (c *textureCache) destroy() {
	for ref, t := range c.entries {
		c.release(t)
		delete(c.entries, ref)
	}
	if c.white != nil {
		c.release(c.white)
		c.white = nil
	}
	for i, s := range c.samplers {
		if s != nil {
			c.device.DestroySampler(s)
			c.samplers[i] = nil
		}
	}
}

// premultiply converts src into dst, reusing dst when the size matches.
func premultiply(dst *image.RGBA, src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	if dst == nil || dst.Bounds().Dx() != b.Dx() || dst.Bounds().Dy() != b.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

func writeRGBA(queue hal.Queue, tex hal.Texture, img *image.RGBA) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}
