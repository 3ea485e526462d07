// ABOUTME: Level package turning raw capture buffers into loudness values
// ABOUTME: Provides peak extraction and the render-rate gate
// Package level extracts a normalized loudness value from raw 16-bit PCM
// capture buffers.
//
// Peak returns the largest sample magnitude in a buffer divided by 32768.
// Gate bounds how often buffers are let through, independent of how often
// the capture backend delivers them.
//
// Example:
//
//	ex := level.NewExtractor(750*time.Millisecond, time.Now())
//	if s, ok := ex.Extract(buf, time.Now()); ok {
//	    hist.Advance(s.Loudness, s.Elapsed)
//	}
package level
