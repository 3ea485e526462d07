// ABOUTME: BGRA pixel buffer type
// ABOUTME: Square image storage with accessors and RGBA conversion
package render

import "image"

// BytesPerPixel is the size of one BGRA pixel
const BytesPerPixel = 4

// PixelBuffer is a square BGRA image
type PixelBuffer struct {
	size int
	pix  []byte
}

// NewPixelBuffer allocates a zeroed size×size buffer
func NewPixelBuffer(size int) PixelBuffer {
	return PixelBuffer{
		size: size,
		pix:  make([]byte, size*size*BytesPerPixel),
	}
}

// Size returns the side length in pixels
func (p PixelBuffer) Size() int { return p.size }

// Bytes returns the raw BGRA bytes
func (p PixelBuffer) Bytes() []byte { return p.pix }

// At returns the channels of the pixel at (x, y)
func (p PixelBuffer) At(x, y int) (b, g, r, a uint8) {
	i := p.offset(x, y)
	return p.pix[i], p.pix[i+1], p.pix[i+2], p.pix[i+3]
}

// Set writes the pixel at (x, y)
func (p PixelBuffer) Set(x, y int, b, g, r, a uint8) {
	i := p.offset(x, y)
	p.pix[i] = b
	p.pix[i+1] = g
	p.pix[i+2] = r
	p.pix[i+3] = a
}

func (p PixelBuffer) offset(x, y int) int {
	return (y*p.size + x) * BytesPerPixel
}

// NRGBA converts the buffer into an image.NRGBA (red, green, blue, alpha order)
func (p PixelBuffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.size, p.size))
	for i := 0; i < len(p.pix); i += BytesPerPixel {
		img.Pix[i] = p.pix[i+2]
		img.Pix[i+1] = p.pix[i+1]
		img.Pix[i+2] = p.pix[i]
		img.Pix[i+3] = p.pix[i+3]
	}
	return img
}
