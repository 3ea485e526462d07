// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and 16-bit little-endian sample helpers
// Package audio provides fundamental audio types shared by the capture
// backends and the level meter.
//
// Capture buffers are raw bytes; this package defines how they are read:
//   - Format: sample rate, channel count and bit depth of a capture stream
//   - Sample16 / PutSample16: little-endian 16-bit sample access
//   - Magnitude16: absolute value that tolerates the minimum 16-bit sample
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 8000,
//	    Channels:   1,
//	    BitDepth:   16,
//	}
//
//	buf := make([]byte, format.BufferBytes(100*time.Millisecond))
package audio
