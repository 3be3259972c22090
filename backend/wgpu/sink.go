package wgpu

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Nazariglez/nae"
	"github.com/Nazariglez/nae/backend"
)

// Sink errors.
var (
	ErrFrameOpen = errors.New("wgpu: frame already open")
	ErrNoFrame   = errors.New("wgpu: no open frame")
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return New()
	})
}

// Stats counts the work done since the sink was created.
type Stats struct {
	Frames    int
	Batches   int
	DrawCalls int
	Textures  int
}

type drawCall struct {
	pipeline hal.RenderPipeline
	group    hal.BindGroup
	first    uint32
	count    uint32
}

// Sink renders frames with a GPU device. All batches of a frame share one
// vertex and one index buffer and are drawn in a single render pass at End.
type Sink struct {
	opts   options
	gpu    *gpu
	pipes  *pipelines
	cache  *textureCache
	inited bool

	uniform   hal.Buffer
	viewGroup hal.BindGroup
	vbuf      hal.Buffer
	vcap      uint64
	ibuf      hal.Buffer
	icap      uint64
	surface   renderTarget
	scratch   renderTarget
	staging   staging

	open   bool
	frame  nae.Frame
	target *image.NRGBA
	rt     *renderTarget
	scale  float64
	load   gputypes.LoadOp
	clear  gputypes.Color

	vdata  []byte
	idata  []byte
	nverts uint32
	calls  []drawCall

	out   *image.RGBA
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

// NewFromProvider returns a sink that renders with the device of a host
// application, such as a gogpu window.
func NewFromProvider(p gpucontext.DeviceProvider, opts ...Option) *Sink {
	return New(append(opts, WithProvider(p))...)
}

// Name implements backend.Backend.
func (s *Sink) Name() string { return backend.BackendWGPU }

// Init opens the device and builds the pipelines.
func (s *Sink) Init() error {
	if s.inited {
		return nil
	}
	if err := validateShader(); err != nil {
		return err
	}
	g, err := openGPU(&s.opts)
	if err != nil {
		return err
	}
	s.gpu = g
	if err := s.initResources(); err != nil {
		s.Close()
		return err
	}
	s.inited = true
	nae.Logger().Info("wgpu sink initialised", "adapter", g.name, "readback", s.opts.readback)
	return nil
}

func (s *Sink) initResources() error {
	device, label := s.gpu.device, s.opts.label
	pipes, err := newPipelines(device, label)
	if err != nil {
		return err
	}
	s.pipes = pipes
	cache, err := newTextureCache(device, s.gpu.queue, pipes.texLayout, label)
	if err != nil {
		return err
	}
	s.cache = cache

	s.uniform, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_viewport",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create viewport buffer: %w", err)
	}
	s.viewGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_viewport_group",
		Layout: pipes.viewLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: s.uniform.NativeHandle(), Size: uniformSize},
		}},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create viewport bind group: %w", err)
	}
	return nil
}

// Close releases every GPU object. A device opened by the sink is
// destroyed too.
func (s *Sink) Close() {
	if s.gpu == nil {
		return
	}
	device := s.gpu.device
	_ = device.WaitIdle()
	s.staging.destroy(device)
	s.surface.destroy(device)
	s.scratch.destroy(device)
	for _, b := range []hal.Buffer{s.vbuf, s.ibuf, s.uniform} {
		if b != nil {
			device.DestroyBuffer(b)
		}
	}
	s.vbuf, s.ibuf, s.uniform = nil, nil, nil
	s.vcap, s.icap = 0, 0
	if s.viewGroup != nil {
		device.DestroyBindGroup(s.viewGroup)
		s.viewGroup = nil
	}
	if s.cache != nil {
		s.cache.destroy()
		s.cache = nil
	}
	if s.pipes != nil {
		s.pipes.destroy(device)
		s.pipes = nil
	}
	s.gpu.close()
	s.gpu = nil
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
	device := s.gpu.device
	s.frame = *f
	s.target = nil
	s.cache.prune(f.Textures)

	var fresh bool
	if !f.Target.IsZero() {
		if f.Textures == nil {
			return fmt.Errorf("wgpu: frame target %v without registry: %w", f.Target, nae.ErrInvalidTexture)
		}
		img, _, ok := f.Textures.Image(f.Target)
		if !ok {
			return fmt.Errorf("wgpu: frame target %v: %w", f.Target, nae.ErrInvalidTexture)
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if _, err := s.scratch.ensure(device, w, h, s.opts.label+"_scratch"); err != nil {
			return err
		}
		// Draws land on top of the texture's current pixels.
		if err := writeRGBA(s.gpu.queue, s.scratch.tex, premultiply(nil, img)); err != nil {
			return err
		}
		s.target = img
		s.rt = &s.scratch
		s.scale = 1
	} else {
		w, h := f.PixelSize()
		if w <= 0 || h <= 0 {
			return fmt.Errorf("wgpu: frame size %dx%d", w, h)
		}
		var err error
		fresh, err = s.surface.ensure(device, w, h, s.opts.label+"_surface")
		if err != nil {
			return err
		}
		s.rt = &s.surface
		s.scale = f.Scale
		if s.scale <= 0 {
			s.scale = 1
		}
	}

	s.load = gputypes.LoadOpLoad
	s.clear = gputypes.Color{}
	if c := f.Clear.Color; c != nil {
		p := c.Premultiply()
		s.load = gputypes.LoadOpClear
		s.clear = gputypes.Color{R: p.R, G: p.G, B: p.B, A: p.A}
	} else if fresh {
		s.load = gputypes.LoadOpClear
	}

	s.vdata = s.vdata[:0]
	s.idata = s.idata[:0]
	s.nverts = 0
	s.calls = s.calls[:0]
	s.open = true
	return nil
}

// Draw implements nae.Sink. Batches are staged and drawn at End.
func (s *Sink) Draw(b *nae.Batch) error {
	if !s.open {
		return ErrNoFrame
	}
	if err := b.Validate(); err != nil {
		return err
	}
	rp := s.pipes.get(b.Pipeline)
	if rp == nil {
		return fmt.Errorf("wgpu: unknown pipeline %v", b.Pipeline)
	}
	group, err := s.cache.bindGroup(s.frame.Textures, b)
	if err != nil {
		return err
	}
	s.stats.Batches++
	if len(b.Indices) == 0 {
		return nil
	}
	first := uint32(len(s.idata) / indexSize)
	s.idata = appendIndices(s.idata, b.Indices, s.nverts)
	s.vdata = appendVertices(s.vdata, b.Vertices)
	s.nverts += uint32(len(b.Vertices))
	s.calls = append(s.calls, drawCall{pipeline: rp, group: group, first: first, count: uint32(len(b.Indices))})
	return nil
}

// End implements nae.Sink. It submits the frame and, when reading back,
// waits for the GPU.
func (s *Sink) End() error {
	if !s.open {
		return ErrNoFrame
	}
	s.open = false
	device, queue := s.gpu.device, s.gpu.queue
	rt := s.rt
	readback := s.target != nil || s.opts.readback

	if err := queue.WriteBuffer(s.uniform, 0, encodeUniform(rt.w, rt.h, s.scale)); err != nil {
		return fmt.Errorf("wgpu: write viewport: %w", err)
	}
	if err := s.upload(); err != nil {
		return err
	}
	if readback {
		if err := s.staging.ensure(device, uint64(alignedRow(rt.w))*uint64(rt.h), s.opts.label+"_staging"); err != nil {
			return err
		}
	}

	enc, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: s.opts.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(s.opts.label + "_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: s.opts.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       rt.view,
			LoadOp:     s.load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: s.clear,
		}},
	})
	pass.SetViewport(0, 0, float32(rt.w), float32(rt.h), 0, 1)
	if len(s.calls) > 0 {
		pass.SetBindGroup(0, s.viewGroup, nil)
		pass.SetVertexBuffer(0, s.vbuf, 0)
		pass.SetIndexBuffer(s.ibuf, gputypes.IndexFormatUint32, 0)
		for _, c := range s.calls {
			pass.SetPipeline(c.pipeline)
			pass.SetBindGroup(1, c.group, nil)
			pass.DrawIndexed(c.count, 1, c.first, 0, 0)
		}
	}
	pass.End()
	if readback {
		s.staging.encodeCopy(enc, rt)
	}

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmd)
	if _, err := queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	s.stats.Frames++
	s.stats.DrawCalls += len(s.calls)
	s.stats.Textures = s.cache.len()
	if !readback {
		return nil
	}
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return s.resolve(rt)
}

// upload grows the shared buffers as needed and writes the staged data.
func (s *Sink) upload() error {
	if len(s.calls) == 0 {
		return nil
	}
	device, queue := s.gpu.device, s.gpu.queue
	var err error
	s.vbuf, s.vcap, err = ensureBuffer(device, s.vbuf, s.vcap, uint64(len(s.vdata)),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, s.opts.label+"_vertices")
	if err != nil {
		return err
	}
	s.ibuf, s.icap, err = ensureBuffer(device, s.ibuf, s.icap, uint64(len(s.idata)),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst, s.opts.label+"_indices")
	if err != nil {
		return err
	}
	if err := queue.WriteBuffer(s.vbuf, 0, s.vdata); err != nil {
		return fmt.Errorf("wgpu: write vertices: %w", err)
	}
	if err := queue.WriteBuffer(s.ibuf, 0, s.idata); err != nil {
		return fmt.Errorf("wgpu: write indices: %w", err)
	}
	return nil
}

func ensureBuffer(device hal.Device, buf hal.Buffer, capacity, need uint64, usage gputypes.BufferUsage, label string) (hal.Buffer, uint64, error) {
	if buf != nil && capacity >= need {
		return buf, capacity, nil
	}
	if buf != nil {
		device.DestroyBuffer(buf)
	}
	size := growSize(need, 4096)
	nb, err := device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	return nb, size, nil
}

// resolve copies the read-back pixels to the frame target or to the
// image returned by Image.
func (s *Sink) resolve(rt *renderTarget) error {
	if s.target != nil {
		res := image.NewRGBA(image.Rect(0, 0, rt.w, rt.h))
		if err := s.staging.read(s.gpu.device, res, rt.w, rt.h); err != nil {
			return err
		}
		xdraw.Draw(s.target, s.target.Bounds(), res, image.Point{}, xdraw.Src)
		s.frame.Textures.Touch(s.frame.Target)
		s.target = nil
		return nil
	}
	if s.out == nil || s.out.Bounds().Dx() != rt.w || s.out.Bounds().Dy() != rt.h {
		s.out = image.NewRGBA(image.Rect(0, 0, rt.w, rt.h))
	}
	return s.staging.read(s.gpu.device, s.out, rt.w, rt.h)
}

// Image returns the last frame read back from the default surface, or
// nil. The image is reused by the next frame.
func (s *Sink) Image() *image.RGBA { return s.out }

// Stats returns counters accumulated since the sink was created.
func (s *Sink) Stats() Stats { return s.stats }

// EncodePNG writes the last read-back frame as PNG.
func (s *Sink) EncodePNG(w io.Writer) error {
	if s.out == nil {
		return ErrNoFrame
	}
	return png.Encode(w, s.out)
}
