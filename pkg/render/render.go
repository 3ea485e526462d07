// ABOUTME: Bar-graph renderer for the loudness history
// ABOUTME: Paints one vertical band per bucket with halving widths
package render

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSize is the side length of the rendered icon
const DefaultSize = 32

// Band colors
const (
	bandBlue   = 0
	bandAlpha  = 255
	bandSignal = 128 // green channel when the bucket is not silent
)

// ErrInvalidSize is returned when the image cannot hold one band per bucket
var ErrInvalidSize = errors.New("invalid render size")

// Validate checks that size is a power of two large enough for buckets bands
func Validate(size, buckets int) error {
	if size <= 0 || size&(size-1) != 0 {
		return fmt.Errorf("%w: %d is not a positive power of two", ErrInvalidSize, size)
	}
	if buckets <= 0 || buckets >= 63 || size>>buckets < 1 {
		return fmt.Errorf("%w: %dpx cannot hold %d bands", ErrInvalidSize, size, buckets)
	}
	return nil
}

// Band returns the column range [start, end) painted for bucket i
func Band(size, i int) (start, end int) {
	w := size >> (i + 1)
	return w - 1, 2*w - 1
}

// Color returns the BGRA color of a band for a bucket value
func Color(value float64) (b, g, r, a uint8) {
	if value != 0 {
		g = bandSignal
	}
	r = uint8(math.Round(255 * value))
	return bandBlue, g, r, bandAlpha
}

// Render draws values (newest first) into a fresh size×size buffer. Columns
// outside every band are opaque black.
func Render(values []float64, size int) (PixelBuffer, error) {
	if err := Validate(size, len(values)); err != nil {
		return PixelBuffer{}, err
	}

	pb := NewPixelBuffer(size)
	for i := 3; i < len(pb.pix); i += BytesPerPixel {
		pb.pix[i] = bandAlpha
	}

	for i, value := range values {
		start, end := Band(size, i)
		b, g, r, a := Color(value)
		for y := 0; y < size; y++ {
			for x := start; x < end; x++ {
				pb.Set(x, y, b, g, r, a)
			}
		}
	}

	return pb, nil
}
