package nae

import (
	"image/color"
	"math"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}},
		{"00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#00f", color.NRGBA{0, 0, 255, 255}},
		{"#f008", color.NRGBA{255, 0, 0, 136}},
		{"11223344", color.NRGBA{0x11, 0x22, 0x33, 0x44}},
		{"nothex", color.NRGBA{0, 0, 0, 255}},
		{"#12345", color.NRGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := Hex(tt.in).NRGBA(); got != tt.want {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromColorUnpremultiplies(t *testing.T) {
	c := FromColor(color.RGBA{R: 64, G: 0, B: 0, A: 128})
	if math.Abs(c.R-0.5) > 1e-3 || math.Abs(c.A-128.0/255) > 1e-3 {
		t.Errorf("FromColor() = %+v, want R=0.5 A=0.502", c)
	}
	if got := FromColor(color.RGBA{}); got != Transparent {
		t.Errorf("FromColor(zero) = %+v, want Transparent", got)
	}
}

func TestColorAlpha(t *testing.T) {
	c := RGBA(1, 0.5, 0, 0.5)
	if got := c.MulAlpha(0.5).A; got != 0.25 {
		t.Errorf("MulAlpha(0.5).A = %v, want 0.25", got)
	}
	if got := c.WithAlpha(1).A; got != 1 {
		t.Errorf("WithAlpha(1).A = %v, want 1", got)
	}
	if got := c.Premultiply(); got != RGBA(0.5, 0.25, 0, 0.5) {
		t.Errorf("Premultiply() = %+v", got)
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    color.NRGBA
	}{
		{0, 1, 0.5, color.NRGBA{255, 0, 0, 255}},
		{120, 1, 0.5, color.NRGBA{0, 255, 0, 255}},
		{240, 1, 0.5, color.NRGBA{0, 0, 255, 255}},
		{-120, 1, 0.5, color.NRGBA{0, 0, 255, 255}},
		{0, 0, 1, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := HSL(tt.h, tt.s, tt.l).NRGBA(); got != tt.want {
			t.Errorf("HSL(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}
