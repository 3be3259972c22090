package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/Nazariglez/nae"
)

const (
	// vertexStride is position(8) + uv(8) + color(16).
	vertexStride = 32
	indexSize    = 4
	// uniformSize holds the viewport size, device scale and padding.
	uniformSize = 16
)

// appendVertices encodes vs in the layout of vertexLayout.
func appendVertices(dst []byte, vs []nae.Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.X))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Y))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.U))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.V))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.R))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.G))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.B))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.A))
	}
	return dst
}

// appendIndices encodes idx shifted by base, so every batch can share one
// vertex buffer without a base vertex.
func appendIndices(dst []byte, idx []uint32, base uint32) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint32(dst, i+base)
	}
	return dst
}

func encodeUniform(w, h int, scale float64) []byte {
	buf := make([]byte, uniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(h)))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(scale)))
	return buf
}

// growSize doubles least until it holds n.
func growSize(n, least uint64) uint64 {
	size := least
	for size < n {
		size <<= 1
	}
	return size
}
