// ABOUTME: Render package drawing the loudness history as nested bands
// ABOUTME: Produces square BGRA pixel buffers for the icon encoder
// Package render converts a loudness history into a square pixel buffer.
//
// Bucket i is drawn as a vertical band of width size>>(i+1) spanning the
// columns [w-1, 2w-1). The newest bucket is the widest band on the right;
// older buckets shrink toward the left edge. Red encodes the bucket level
// and green flags any signal at all.
//
// Pixels are stored blue, green, red, alpha, row-major, without padding.
package render
