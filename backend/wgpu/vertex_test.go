package wgpu

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Nazariglez/nae"
)

func f32(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestAppendVertices(t *testing.T) {
	v := nae.Vertex{X: 1.5, Y: -2, U: 0.25, V: 0.75, R: 1, G: 0.5, B: 0, A: 0.125}
	b := appendVertices(nil, []nae.Vertex{v, v})
	if len(b) != 2*vertexStride {
		t.Fatalf("len = %d, want %d", len(b), 2*vertexStride)
	}
	want := []float32{1.5, -2, 0.25, 0.75, 1, 0.5, 0, 0.125}
	for i, w := range want {
		if got := f32(b[vertexStride:], i); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestVertexLayoutMatchesStride(t *testing.T) {
	l := vertexLayout()
	if l.ArrayStride != vertexStride {
		t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, vertexStride)
	}
	last := l.Attributes[len(l.Attributes)-1]
	if end := last.Offset + 16; end != vertexStride {
		t.Errorf("last attribute ends at %d, want %d", end, vertexStride)
	}
}

func TestAppendIndices(t *testing.T) {
	b := appendIndices([]byte{}, []uint32{0, 1, 2}, 4)
	for i, want := range []uint32{4, 5, 6} {
		if got := binary.LittleEndian.Uint32(b[i*4:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}
}

func TestEncodeUniform(t *testing.T) {
	b := encodeUniform(640, 480, 2)
	if len(b) != uniformSize {
		t.Fatalf("len = %d, want %d", len(b), uniformSize)
	}
	for i, want := range []float32{640, 480, 2, 0} {
		if got := f32(b, i); got != want {
			t.Errorf("field %d = %v, want %v", i, got, want)
		}
	}
}

func TestGrowSize(t *testing.T) {
	tests := []struct {
		n, least, want uint64
	}{
		{0, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{100000, 4096, 131072},
	}
	for _, tt := range tests {
		if got := growSize(tt.n, tt.least); got != tt.want {
			t.Errorf("growSize(%d, %d) = %d, want %d", tt.n, tt.least, got, tt.want)
		}
	}
}

func TestAlignedRow(t *testing.T) {
	tests := []struct {
		w    int
		want uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{128, 512},
	}
	for _, tt := range tests {
		if got := alignedRow(tt.w); got != tt.want {
			t.Errorf("alignedRow(%d) = %d, want %d", tt.w, got, tt.want)
		}
	}
}

func TestShaderCompiles(t *testing.T) {
	if err := validateShader(); err != nil {
		t.Fatalf("validateShader() error = %v", err)
	}
	for _, entry := range []string{vertexEntry, solidEntry, texturedEntry, textEntry} {
		if !strings.Contains(batchShaderSource, "fn "+entry+"(") {
			t.Errorf("shader has no entry point %s", entry)
		}
	}
}
