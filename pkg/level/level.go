// ABOUTME: Peak amplitude extraction for 16-bit PCM buffers
// ABOUTME: Rate gate dropping buffers that arrive faster than the render interval
package level

import (
	"time"

	"github.com/micmon/micmon-go/pkg/audio"
)

// Peak returns the peak normalized amplitude of a buffer of little-endian
// 16-bit samples, in [0,1]. A trailing odd byte is ignored.
func Peak(buf []byte) float64 {
	var peak int16
	n := audio.NumSamples16(buf)
	for i := 0; i < n; i++ {
		if m := audio.Magnitude16(audio.Sample16(buf, i)); m > peak {
			peak = m
		}
	}
	return float64(peak) / audio.FullScale16
}

// Gate admits at most one call per interval
type Gate struct {
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate whose first window starts at now
func NewGate(interval time.Duration, now time.Time) *Gate {
	return &Gate{interval: interval, last: now}
}

// Accept reports whether a call at now is let through. When it is, elapsed
// is the time since the previously accepted call.
func (g *Gate) Accept(now time.Time) (elapsed time.Duration, ok bool) {
	elapsed = now.Sub(g.last)
	if elapsed < g.interval {
		return 0, false
	}
	g.last = now
	return elapsed, true
}

// Reset restarts the gate window at now
func (g *Gate) Reset(now time.Time) {
	g.last = now
}

// Interval returns the minimum spacing between accepted calls
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Sample is one accepted loudness measurement
type Sample struct {
	Loudness float64       // peak normalized amplitude in [0,1]
	Elapsed  time.Duration // time since the previous accepted sample
}

// Extractor combines a Gate with Peak
type Extractor struct {
	gate *Gate
}

// NewExtractor creates an extractor that accepts one buffer per interval
func NewExtractor(interval time.Duration, now time.Time) *Extractor {
	return &Extractor{gate: NewGate(interval, now)}
}

// Extract measures buf if the gate lets it through. Dropped buffers are not
// inspected at all.
func (e *Extractor) Extract(buf []byte, now time.Time) (Sample, bool) {
	elapsed, ok := e.gate.Accept(now)
	if !ok {
		return Sample{}, false
	}
	return Sample{Loudness: Peak(buf), Elapsed: elapsed}, true
}

// Reset restarts the rate window, e.g. when a new capture session begins
func (e *Extractor) Reset(now time.Time) {
	e.gate.Reset(now)
}
