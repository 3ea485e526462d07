// ABOUTME: Icon package wrapping rendered pixels in an ICO container
// ABOUTME: PNG-compresses the image and prepends a single directory entry
// Package icon encodes a render.PixelBuffer as a single-image ICO file whose
// payload is a PNG stream.
//
// Layout:
//
//	offset  size  field
//	0       2     reserved (0)
//	2       2     type (1 = icon)
//	4       2     image count (1)
//	6       1     width  (0 means 256)
//	7       1     height (0 means 256)
//	8       1     palette size (0)
//	9       1     reserved (0)
//	10      2     color planes (1)
//	12      2     bits per pixel (24)
//	14      4     payload length
//	18      4     payload offset (22)
//	22      ...   PNG payload
//
// The bits-per-pixel field says 24 although the PNG carries 32-bit RGBA;
// shells ignore it for PNG payloads.
package icon
