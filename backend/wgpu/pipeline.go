package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Nazariglez/nae"
)

// surfaceFormat is the format of every texture the sink renders into.
const surfaceFormat = gputypes.TextureFormatRGBA8Unorm

// pipelines owns the shader module, the layouts and one render pipeline
// per nae.Pipeline. All three share the vertex stage and bind group
// layouts; solid batches bind a white texture so the layout never changes.
type pipelines struct {
	module     hal.ShaderModule
	viewLayout hal.BindGroupLayout
	texLayout  hal.BindGroupLayout
	layout     hal.PipelineLayout
	byPipeline [3]hal.RenderPipeline
}

func vertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
		},
	}
}

func newPipelines(device hal.Device, label string) (*pipelines, error) {
	p := &pipelines{}
	var err error
	p.module, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_batch_shader",
		Source: hal.ShaderSource{WGSL: batchShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module: %w", err)
	}

	p.viewLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_viewport_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: uniformSize},
		}},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("wgpu: create viewport layout: %w", err)
	}

	p.texLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("wgpu: create texture layout: %w", err)
	}

	p.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.viewLayout, p.texLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	entries := [3]string{
		nae.PipelineSolid:    solidEntry,
		nae.PipelineTextured: texturedEntry,
		nae.PipelineText:     textEntry,
	}
	blend := gputypes.BlendStatePremultiplied()
	for i, entry := range entries {
		rp, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  fmt.Sprintf("%s_%v_pipeline", label, nae.Pipeline(i)),
			Layout: p.layout,
			Vertex: hal.VertexState{
				Module:     p.module,
				EntryPoint: vertexEntry,
				Buffers:    []gputypes.VertexBufferLayout{vertexLayout()},
			},
			Primitive: gputypes.PrimitiveState{
				Topology:  gputypes.PrimitiveTopologyTriangleList,
				FrontFace: gputypes.FrontFaceCCW,
				CullMode:  gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
			Fragment: &hal.FragmentState{
				Module:     p.module,
				EntryPoint: entry,
				Targets: []gputypes.ColorTargetState{{
					Format:    surfaceFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				}},
			},
		})
		if err != nil {
			p.destroy(device)
			return nil, fmt.Errorf("wgpu: create %v pipeline: %w", nae.Pipeline(i), err)
		}
		p.byPipeline[i] = rp
	}
	return p, nil
}

func (p *pipelines) get(kind nae.Pipeline) hal.RenderPipeline {
	if int(kind) >= len(p.byPipeline) {
		return nil
	}
	return p.byPipeline[kind]
}

func (p *pipelines) destroy(device hal.Device) {
	for i, rp := range p.byPipeline {
		if rp != nil {
			device.DestroyRenderPipeline(rp)
			p.byPipeline[i] = nil
		}
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.texLayout != nil {
		device.DestroyBindGroupLayout(p.texLayout)
		p.texLayout = nil
	}
	if p.viewLayout != nil {
		device.DestroyBindGroupLayout(p.viewLayout)
		p.viewLayout = nil
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
