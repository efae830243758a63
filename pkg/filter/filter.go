// Package filter holds the fixed set of per-pixel color transformations.
// Every filter is a pure function of a single pixel.
package filter

import "github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"

const (
	boostLimit = 155
	boost      = 50
	maxChannel = 255

	// Channels strictly above this count as near white.
	whiteFloor = 200
)

// Func transforms one pixel.
type Func func(ppm.Pixel) ppm.Pixel

// saturate adds boost to v, clamping at maxChannel.
func saturate(v uint32) uint32 {
	if v <= boostLimit {
		return v + boost
	}
	return maxChannel
}

// RedFilter boosts the red channel.
func RedFilter(p ppm.Pixel) ppm.Pixel {
	p.R = saturate(p.R)
	return p
}

// GreenFilter boosts the green channel.
func GreenFilter(p ppm.Pixel) ppm.Pixel {
	p.G = saturate(p.G)
	return p
}

// VioletFilter boosts red and blue independently.
func VioletFilter(p ppm.Pixel) ppm.Pixel {
	p.R = saturate(p.R)
	p.B = saturate(p.B)
	return p
}

// WhiteToRedFilter turns near-white pixels red and leaves everything else alone.
func WhiteToRedFilter(p ppm.Pixel) ppm.Pixel {
	if p.R > whiteFloor && p.G > whiteFloor && p.B > whiteFloor {
		p.G = 0
		p.B = 0
	}
	return p
}

// Apply returns f applied to every pixel, in order. pixels is not modified.
func Apply(f Func, pixels []ppm.Pixel) []ppm.Pixel {
	out := make([]ppm.Pixel, len(pixels))
	for i, p := range pixels {
		out[i] = f(p)
	}
	return out
}
