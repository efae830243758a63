package ppm

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrDimensions reports a header that cannot describe the pixel data.
var ErrDimensions = errors.New("ppm: dimensions do not match pixel data")

// Size parses the "<width> <height>" header line.
func (im *Image) Size() (w, h int, err error) {
	fields := strings.Fields(im.Dimensions)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrDimensions, im.Dimensions)
	}
	if w, err = strconv.Atoi(fields[0]); err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("%w: width %q", ErrDimensions, fields[0])
	}
	if h, err = strconv.Atoi(fields[1]); err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("%w: height %q", ErrDimensions, fields[1])
	}
	return w, h, nil
}

// ToNRGBA lays pixels out on an opaque canvas of the header's size.
// Channels above 255 saturate.
func ToNRGBA(im *Image, pixels []Pixel) (*image.NRGBA, error) {
	w, h, err := im.Size()
	if err != nil {
		return nil, err
	}
	if len(pixels) != w*h {
		return nil, fmt.Errorf("%w: %dx%d needs %d pixels, have %d", ErrDimensions, w, h, w*h, len(pixels))
	}

	dst := imaging.New(w, h, color.NRGBA{A: 255})
	for i, p := range pixels {
		o := i * 4
		dst.Pix[o+0] = clamp8(p.R)
		dst.Pix[o+1] = clamp8(p.G)
		dst.Pix[o+2] = clamp8(p.B)
	}
	return dst, nil
}

// FromImage encodes img as a P3 raster with an 8-bit channel range.
// Alpha is discarded.
func FromImage(img image.Image) *Image {
	src := imaging.Clone(img)
	b := src.Bounds()

	buf := make([]byte, 0, b.Dx()*b.Dy()*12)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		buf = AppendPixel(buf, Pixel{
			R: uint32(src.Pix[i]),
			G: uint32(src.Pix[i+1]),
			B: uint32(src.Pix[i+2]),
		})
	}

	header := fmt.Sprintf("P3\n%d %d\n255\n", b.Dx(), b.Dy())
	return Decode(header + string(buf))
}

func clamp8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
