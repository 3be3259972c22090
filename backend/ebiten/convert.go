package ebiten

import (
	eb "github.com/hajimehoshi/ebiten/v2"

	"github.com/Nazariglez/nae"
)

// maxChunkVertices bounds the vertices of one DrawTriangles call so every
// index fits in a uint16.
const maxChunkVertices = 1 << 16

// chunk is one DrawTriangles call worth of a batch.
type chunk struct {
	vertices []eb.Vertex
	indices  []uint16
}

// converter turns batches into ebiten vertices, reusing its buffers.
type converter struct {
	scale  float32
	remap  []int32
	chunks []chunk
	used   int
}

// convert splits b into chunks of at most limit vertices. Triangles are
// kept whole and in order. srcW and srcH scale texture coordinates to
// source pixels and origin is added to both source coordinates.
func (c *converter) convert(b *nae.Batch, srcW, srcH, origin float32, limit int) []chunk {
	c.used = 0
	if len(b.Indices) == 0 {
		return nil
	}
	if cap(c.remap) < len(b.Vertices) {
		c.remap = make([]int32, len(b.Vertices))
	}
	c.remap = c.remap[:len(b.Vertices)]
	c.resetRemap()

	cur := c.next()
	for i := 0; i+2 < len(b.Indices); i += 3 {
		tri := b.Indices[i : i+3]
		need := 0
		for _, idx := range tri {
			if c.remap[idx] < 0 {
				need++
			}
		}
		if len(c.chunks[cur].vertices)+need > limit {
			c.resetRemap()
			cur = c.next()
		}
		ch := &c.chunks[cur]
		for _, idx := range tri {
			if c.remap[idx] < 0 {
				c.remap[idx] = int32(len(ch.vertices))
				ch.vertices = append(ch.vertices, c.vertex(&b.Vertices[idx], srcW, srcH, origin))
			}
			ch.indices = append(ch.indices, uint16(c.remap[idx]))
		}
	}
	return c.chunks[:c.used]
}

// next starts a chunk and returns its index. Chunk storage is reused
// across batches.
func (c *converter) next() int {
	if c.used == len(c.chunks) {
		c.chunks = append(c.chunks, chunk{})
	}
	i := c.used
	c.chunks[i].vertices = c.chunks[i].vertices[:0]
	c.chunks[i].indices = c.chunks[i].indices[:0]
	c.used++
	return i
}

func (c *converter) resetRemap() {
	for i := range c.remap {
		c.remap[i] = -1
	}
}

// vertex scales positions to device pixels. Colors stay straight alpha,
// which is the DrawTriangles default color scale mode.
func (c *converter) vertex(v *nae.Vertex, srcW, srcH, origin float32) eb.Vertex {
	return eb.Vertex{
		DstX:   v.X * c.scale,
		DstY:   v.Y * c.scale,
		SrcX:   v.U*srcW + origin,
		SrcY:   v.V*srcH + origin,
		ColorR: v.R,
		ColorG: v.G,
		ColorB: v.B,
		ColorA: v.A,
	}
}

// address maps a nae sampler mode to an ebiten address mode.
func address(m nae.SamplerMode) eb.Address {
	if m == nae.SamplerRepeat {
		return eb.AddressRepeat
	}
	return eb.AddressUnsafe
}
