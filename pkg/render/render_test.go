// ABOUTME: Tests for the history renderer
// ABOUTME: Covers band geometry, colors, buffer size and determinism
package render

import (
	"bytes"
	"errors"
	"testing"
)

func TestRenderBufferSize(t *testing.T) {
	for _, size := range []int{32, 64, 128, 256} {
		pb, err := Render(make([]float64, 5), size)
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}
		if len(pb.Bytes()) != size*size*4 {
			t.Errorf("size %d: expected %d bytes, got %d", size, size*size*4, len(pb.Bytes()))
		}
		if pb.Size() != size {
			t.Errorf("size %d: Size() returned %d", size, pb.Size())
		}
	}
}

func TestRenderSilentHistory(t *testing.T) {
	pb, err := Render(make([]float64, 5), 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			b, g, r, a := pb.At(x, y)
			if b != 0 || g != 0 || r != 0 || a != 255 {
				t.Fatalf("pixel (%d,%d): expected 0,0,0,255 got %d,%d,%d,%d", x, y, b, g, r, a)
			}
		}
	}
}

func TestRenderNewestBucketFull(t *testing.T) {
	pb, err := Render([]float64{1.0, 0, 0, 0, 0}, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			b, g, r, a := pb.At(x, y)
			if a != 255 || b != 0 {
				t.Fatalf("pixel (%d,%d): expected blue 0 alpha 255, got %d/%d", x, y, b, a)
			}
			inner := x >= 15 && x < 31
			if inner && (r != 255 || g != 128) {
				t.Fatalf("pixel (%d,%d): expected red 255 green 128, got %d/%d", x, y, r, g)
			}
			if !inner && (r != 0 || g != 0) {
				t.Fatalf("pixel (%d,%d): expected red 0 green 0, got %d/%d", x, y, r, g)
			}
		}
	}
}

func TestBandGeometry(t *testing.T) {
	want := [][2]int{{15, 31}, {7, 15}, {3, 7}, {1, 3}, {0, 1}}
	for i, w := range want {
		start, end := Band(32, i)
		if start != w[0] || end != w[1] {
			t.Errorf("band %d: expected [%d,%d), got [%d,%d)", i, w[0], w[1], start, end)
		}
	}
}

func TestBandsDoNotOverlap(t *testing.T) {
	covered := make([]int, 32)
	for i := 0; i < 5; i++ {
		start, end := Band(32, i)
		for x := start; x < end; x++ {
			covered[x]++
		}
	}
	for x, n := range covered[:31] {
		if n != 1 {
			t.Errorf("column %d covered %d times", x, n)
		}
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		value float64
		g, r  uint8
	}{
		{0, 0, 0},
		{0.1, 128, 26},
		{0.2, 128, 51},
		{0.4, 128, 102},
		{0.6, 128, 153},
		{0.8, 128, 204},
		{0.9, 128, 230},
		{1.0, 128, 255},
	}

	for _, tt := range tests {
		b, g, r, a := Color(tt.value)
		if b != 0 || a != 255 || g != tt.g || r != tt.r {
			t.Errorf("Color(%v) = %d,%d,%d,%d want 0,%d,%d,255", tt.value, b, g, r, a, tt.g, tt.r)
		}
	}
}

func TestRenderEachBandColor(t *testing.T) {
	values := []float64{0.2, 0.4, 0.6, 0.8, 1.0}
	pb, err := Render(values, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range values {
		start, end := Band(32, i)
		_, wg, wr, _ := Color(v)
		for x := start; x < end; x++ {
			_, g, r, _ := pb.At(x, 31)
			if g != wg || r != wr {
				t.Errorf("band %d column %d: expected g=%d r=%d, got g=%d r=%d", i, x, wg, wr, g, r)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	values := []float64{0.6, 0.1, 0, 0.9, 1.0}
	a, _ := Render(values, 32)
	b, _ := Render(values, 32)
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("rendering the same history twice produced different pixels")
	}
}

func TestRenderInvalidSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		buckets int
	}{
		{"zero", 0, 5},
		{"negative", -32, 5},
		{"not power of two", 30, 5},
		{"too small", 16, 5},
		{"no buckets", 32, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(make([]float64, tt.buckets), tt.size)
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("expected ErrInvalidSize, got %v", err)
			}
		})
	}
}

func TestNRGBASwizzle(t *testing.T) {
	pb := NewPixelBuffer(2)
	pb.Set(1, 0, 10, 20, 30, 40)

	img := pb.NRGBA()
	c := img.NRGBAAt(1, 0)
	if c.R != 30 || c.G != 20 || c.B != 10 || c.A != 40 {
		t.Errorf("expected RGBA 30,20,10,40 got %d,%d,%d,%d", c.R, c.G, c.B, c.A)
	}
}
