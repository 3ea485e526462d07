// ABOUTME: Audio type definitions
// ABOUTME: Defines the capture format and 16-bit PCM sample helpers
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// 16-bit audio range constants
	Max16Bit = 32767  // 2^15 - 1
	Min16Bit = -32768 // -2^15

	// FullScale16 is the divisor that maps a 16-bit magnitude into [0,1]
	FullScale16 = 32768
)

// Format describes a raw PCM capture format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameBytes returns the size of one frame (one sample per channel) in bytes
func (f Format) FrameBytes() int {
	return f.Channels * f.BitDepth / 8
}

// BufferBytes returns the size in bytes of a buffer holding d worth of audio
func (f Format) BufferBytes(d time.Duration) int {
	frames := int(int64(f.SampleRate) * int64(d) / int64(time.Second))
	return frames * f.FrameBytes()
}

// NumSamples16 returns how many whole 16-bit samples fit in buf
func NumSamples16(buf []byte) int {
	return len(buf) / 2
}

// Sample16 reads the i-th little-endian 16-bit sample from buf
func Sample16(buf []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(buf[i*2:]))
}

// PutSample16 writes a 16-bit sample into buf at sample index i (little-endian)
func PutSample16(buf []byte, i int, sample int16) {
	binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
}

// Magnitude16 returns the absolute value of a 16-bit sample.
// Min16Bit has no positive counterpart in 16 bits, so it maps to Max16Bit.
func Magnitude16(sample int16) int16 {
	if sample == Min16Bit {
		return Max16Bit
	}
	if sample < 0 {
		return -sample
	}
	return sample
}
