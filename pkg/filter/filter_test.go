package filter

import (
	"testing"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"
)

func TestSaturate(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 50},
		{100, 150},
		{155, 205},
		{156, 255},
		{255, 255},
		{1000, 255},
	}
	for _, tt := range tests {
		if got := saturate(tt.in); got != tt.want {
			t.Errorf("saturate(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRedFilter(t *testing.T) {
	for r := uint32(0); r <= 300; r++ {
		in := ppm.Pixel{R: r, G: 17, B: 230}
		got := RedFilter(in)
		want := uint32(255)
		if r <= 155 {
			want = r + 50
		}
		if got.R != want {
			t.Errorf("RedFilter(%v).R = %d, want %d", in, got.R, want)
		}
		if got.G != in.G || got.B != in.B {
			t.Errorf("RedFilter(%v) changed green or blue: %v", in, got)
		}
	}
}

func TestGreenFilter(t *testing.T) {
	tests := []struct {
		in, want ppm.Pixel
	}{
		{ppm.Pixel{R: 1, G: 0, B: 2}, ppm.Pixel{R: 1, G: 50, B: 2}},
		{ppm.Pixel{R: 1, G: 155, B: 2}, ppm.Pixel{R: 1, G: 205, B: 2}},
		{ppm.Pixel{R: 1, G: 156, B: 2}, ppm.Pixel{R: 1, G: 255, B: 2}},
	}
	for _, tt := range tests {
		if got := GreenFilter(tt.in); got != tt.want {
			t.Errorf("GreenFilter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVioletFilterMatchesRedRule(t *testing.T) {
	values := []uint32{0, 1, 100, 155, 156, 200, 255}
	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				in := ppm.Pixel{R: r, G: g, B: b}
				got := VioletFilter(in)
				if want := RedFilter(in).R; got.R != want {
					t.Errorf("VioletFilter(%v).R = %d, want %d", in, got.R, want)
				}
				if want := RedFilter(ppm.Pixel{R: b}).R; got.B != want {
					t.Errorf("VioletFilter(%v).B = %d, want %d", in, got.B, want)
				}
				if got.G != g {
					t.Errorf("VioletFilter(%v).G = %d, want %d", in, got.G, g)
				}
			}
		}
	}
}

func TestWhiteToRedFilter(t *testing.T) {
	tests := []struct {
		in, want ppm.Pixel
	}{
		{ppm.Pixel{R: 255, G: 255, B: 255}, ppm.Pixel{R: 255, G: 0, B: 0}},
		{ppm.Pixel{R: 201, G: 201, B: 201}, ppm.Pixel{R: 201, G: 0, B: 0}},
		{ppm.Pixel{R: 200, G: 255, B: 255}, ppm.Pixel{R: 200, G: 255, B: 255}},
		{ppm.Pixel{R: 255, G: 200, B: 255}, ppm.Pixel{R: 255, G: 200, B: 255}},
		{ppm.Pixel{R: 255, G: 255, B: 200}, ppm.Pixel{R: 255, G: 255, B: 200}},
		{ppm.Pixel{R: 100, G: 200, B: 50}, ppm.Pixel{R: 100, G: 200, B: 50}},
	}
	for _, tt := range tests {
		if got := WhiteToRedFilter(tt.in); got != tt.want {
			t.Errorf("WhiteToRedFilter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	in := []ppm.Pixel{{R: 255, G: 255, B: 255}, {R: 156, G: 156, B: 156}}
	got := Apply(RedFilter, in)
	want := []ppm.Pixel{{R: 255, G: 255, B: 255}, {R: 255, G: 156, B: 156}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Apply pixel %d = %v, want %v", i, got[i], want[i])
		}
	}
	if in[1].R != 156 {
		t.Errorf("Apply modified its input: %v", in[1])
	}
}
