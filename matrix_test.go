package nae

import (
	"math"
	"testing"
)

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -5), Pt(1, 1), Pt(11, -4)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"skew x 45", Skew(math.Pi/4, 0), Pt(0, 1), Pt(1, 1)},
		{"scale then translate", Scale(2, 2).Multiply(Translate(10, 10)), Pt(0, 0), Pt(20, 20)},
		{"translate then scale", Translate(10, 10).Multiply(Scale(2, 2)), Pt(1, 1), Pt(12, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformPoint(tt.in); !got.ApproxEqual(tt.want, 1e-9) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixTransformVectorIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200).Multiply(Scale(2, 2))
	if got := m.TransformVector(Pt(1, 1)); got != Pt(2, 2) {
		t.Errorf("TransformVector() = %v, want (2, 2)", got)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, 7).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	if got := m.Multiply(m.Invert()); !got.ApproxEqual(Identity(), 1e-9) {
		t.Errorf("m * m.Invert() = %+v, want identity", got)
	}
	if got := Scale(0, 1).Invert(); !got.IsIdentity() {
		t.Errorf("singular Invert() = %+v, want identity", got)
	}
}

func TestMatrixMaxScale(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want float64
	}{
		{"identity", Identity(), 1},
		{"translate", Translate(40, 40), 1},
		{"uniform", Scale(3, 3), 3},
		{"non-uniform", Scale(0.5, 4), 4},
		{"rotated", Rotate(1).Multiply(Scale(2, 1)), 2},
		{"degenerate", Matrix{}, 0},
	}
	for _, tt := range tests {
		if got := tt.m.MaxScale(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: MaxScale() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatrixApply(t *testing.T) {
	x, y := Translate(0.5, 1.5).Apply(1, 2)
	if x != 1.5 || y != 3.5 {
		t.Errorf("Apply(1, 2) = (%v, %v), want (1.5, 3.5)", x, y)
	}
}
