package ppm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Pixel is one RGB sample triplet. Channels are not clamped on input.
type Pixel struct {
	R, G, B uint32
}

// Image is a parsed text raster. The header lines are kept verbatim and the
// payload is only tokenized on first use. An Image is never modified after
// Decode, so one value can be handed to any number of goroutines.
type Image struct {
	Format     string
	Dimensions string
	MaxColor   string
	Payload    string

	parsed func() samples
}

type samples struct {
	pixels  []Pixel
	skipped int
	dropped int
}

// Decode splits raw into lines: the first three become the header, every
// following line is appended to the payload with a trailing newline. No
// validation happens here.
func Decode(raw string) *Image {
	im := &Image{}
	var payload strings.Builder
	payload.Grow(len(raw))

	i := 0
	for len(raw) > 0 {
		line, rest, _ := strings.Cut(raw, "\n")
		raw = rest
		line = strings.TrimSuffix(line, "\r")
		switch i {
		case 0:
			im.Format = line
		case 1:
			im.Dimensions = line
		case 2:
			im.MaxColor = line
		default:
			payload.WriteString(line)
			payload.WriteByte('\n')
		}
		i++
	}
	im.Payload = payload.String()
	im.parsed = sync.OnceValue(im.tokenize)
	return im
}

// ReadFile reads and decodes the raster stored at path.
func ReadFile(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(string(raw)), nil
}

// Header renders the three header lines, each newline terminated.
func (im *Image) Header() string {
	return im.Format + "\n" + im.Dimensions + "\n" + im.MaxColor + "\n"
}

// Pixels groups the payload into triplets in row-major order. Tokens that do
// not parse as unsigned integers are skipped and counted; values left over
// after the last full triplet are dropped and counted. The result is computed
// once and must be treated as read-only.
func (im *Image) Pixels() (pixels []Pixel, skipped, dropped int) {
	s := im.samples()
	return s.pixels, s.skipped, s.dropped
}

func (im *Image) samples() samples {
	if im.parsed == nil {
		// Literal Images built outside Decode.
		return im.tokenize()
	}
	return im.parsed()
}

func (im *Image) tokenize() samples {
	var (
		s      samples
		values = make([]uint32, 0, 3)
	)
	for _, tok := range strings.Fields(im.Payload) {
		v, err := parseSample(tok)
		if err != nil {
			s.skipped++
			continue
		}
		values = append(values, uint32(v))
		if len(values) == 3 {
			s.pixels = append(s.pixels, Pixel{R: values[0], G: values[1], B: values[2]})
			values = values[:0]
		}
	}
	s.dropped = len(values)
	return s
}

// parseSample reads one unsigned channel value. A single leading '+' is
// allowed; a sign on its own is not a number.
func parseSample(tok string) (uint64, error) {
	if len(tok) > 1 && tok[0] == '+' && tok[1] != '+' && tok[1] != '-' {
		tok = tok[1:]
	}
	return strconv.ParseUint(tok, 10, 32)
}

// AppendPixel appends the "r g b\n" line for p to dst.
func AppendPixel(dst []byte, p Pixel) []byte {
	dst = strconv.AppendUint(dst, uint64(p.R), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, uint64(p.G), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, uint64(p.B), 10)
	return append(dst, '\n')
}

// Encode renders the header of im followed by one line per pixel.
func Encode(im *Image, pixels []Pixel) []byte {
	header := im.Header()
	buf := make([]byte, 0, len(header)+len(pixels)*12)
	buf = append(buf, header...)
	for _, p := range pixels {
		buf = AppendPixel(buf, p)
	}
	return buf
}
