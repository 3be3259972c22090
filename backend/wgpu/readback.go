package wgpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment texture-to-buffer copies need.
const copyPitchAlignment = 256

// renderTarget is an offscreen color attachment.
type renderTarget struct {
	tex  hal.Texture
	view hal.TextureView
	w, h int
}

// ensure resizes rt to w x h. It reports whether the texture was
// recreated, in which case its contents are undefined.
func (rt *renderTarget) ensure(device hal.Device, w, h int, label string) (bool, error) {
	if rt.tex != nil && rt.w == w && rt.h == h {
		return false, nil
	}
	rt.destroy(device)
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        surfaceFormat,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return false, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return false, fmt.Errorf("wgpu: create %s view: %w", label, err)
	}
	rt.tex, rt.view, rt.w, rt.h = tex, view, w, h
	return true, nil
}

func (rt *renderTarget) destroy(device hal.Device) {
	if rt.view != nil {
		device.DestroyTextureView(rt.view)
	}
	if rt.tex != nil {
		device.DestroyTexture(rt.tex)
	}
	*rt = renderTarget{}
}

// staging is a mappable buffer that receives a copy of a render target.
type staging struct {
	buf  hal.Buffer
	size uint64
}

func alignedRow(w int) uint32 {
	row := uint32(w) * 4
	return (row + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

func (s *staging) ensure(device hal.Device, size uint64, label string) error {
	if s.buf != nil && s.size >= size {
		return nil
	}
	if s.buf != nil {
		device.DestroyBuffer(s.buf)
		s.buf = nil
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	s.buf, s.size = buf, size
	return nil
}

// encodeCopy records the copy of rt into s. The texture is moved to the
// copy-source state and back around it.
func (s *staging) encodeCopy(enc hal.CommandEncoder, rt *renderTarget) {
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(rt.tex, s.buf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: alignedRow(rt.w), RowsPerImage: uint32(rt.h)},
		TextureBase:  hal.ImageCopyTexture{Texture: rt.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(rt.w), Height: uint32(rt.h), DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// read maps the staging buffer and strips the row padding into dst, which
// must be w x h.
func (s *staging) read(device hal.Device, dst *image.RGBA, w, h int) error {
	pitch := int(alignedRow(w))
	size := uint64(pitch) * uint64(h)
	m, err := device.MapBuffer(s.buf, 0, size)
	if err != nil {
		return fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(m.Ptr), size)
	row := w * 4
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+row], src[y*pitch:y*pitch+row])
	}
	if err := device.UnmapBuffer(s.buf); err != nil {
		return fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return nil
}

func (s *staging) destroy(device hal.Device) {
	if s.buf != nil {
		device.DestroyBuffer(s.buf)
	}
	*s = staging{}
}
