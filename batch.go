package nae

import "fmt"

// Pipeline selects how a batch is shaded.
type Pipeline uint8

const (
	// PipelineSolid draws vertex colors only.
	PipelineSolid Pipeline = iota
	// PipelineTextured multiplies a texture sample by the vertex color.
	PipelineTextured
	// PipelineText uses the texture alpha as coverage for the vertex color.
	PipelineText
)

func (p Pipeline) String() string {
	switch p {
	case PipelineSolid:
		return "solid"
	case PipelineTextured:
		return "textured"
	case PipelineText:
		return "text"
	default:
		return fmt.Sprintf("Pipeline(%d)", p)
	}
}

// SamplerMode is the texture addressing of a batch.
type SamplerMode uint8

const (
	SamplerClamp SamplerMode = iota
	SamplerRepeat
)

func (s SamplerMode) String() string {
	if s == SamplerRepeat {
		return "repeat"
	}
	return "clamp"
}

// Vertex is one vertex as sinks receive it: position in target pixels,
// texture coordinates in [0, 1] (or beyond for repeat) and a straight-alpha
// color.
type Vertex struct {
	X, Y       float32
	U, V       float32
	R, G, B, A float32
}

// Batch is a run of triangles sharing a pipeline and texture.
type Batch struct {
	Pipeline Pipeline
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureRef
	Sampler  SamplerMode
	// Transformed is set when at least one primitive in the batch was drawn
	// under a non-identity transform.
	Transformed bool
}

// Validate checks that every index refers to a vertex and that textured
// pipelines carry a texture.
func (b *Batch) Validate() error {
	if len(b.Indices)%3 != 0 {
		return fmt.Errorf("nae: batch has %d indices: %w", len(b.Indices), ErrInvalidVertices)
	}
	n := uint32(len(b.Vertices))
	for i, idx := range b.Indices {
		if idx >= n {
			return fmt.Errorf("nae: batch index %d = %d out of %d vertices: %w", i, idx, n, ErrInvalidVertices)
		}
	}
	if b.Pipeline != PipelineSolid && b.Texture.IsZero() {
		return fmt.Errorf("nae: %v batch without texture: %w", b.Pipeline, ErrInvalidTexture)
	}
	return nil
}

// compatible reports whether a primitive with these properties may be
// appended to b.
func (b *Batch) compatible(p Pipeline, tex TextureRef, s SamplerMode) bool {
	return b.Pipeline == p && b.Texture == tex && b.Sampler == s
}
