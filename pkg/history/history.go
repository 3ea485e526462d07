// ABOUTME: Decaying loudness history with fixed bucket count
// ABOUTME: Quantizes loudness into discrete levels and shifts on decay
package history

import "time"

const (
	// DefaultBuckets is the number of history buckets
	DefaultBuckets = 5

	// DefaultDecay is how long a bucket stays at the front
	DefaultDecay = 1500 * time.Millisecond
)

// Levels lists every value a bucket can hold, in ascending order
var Levels = []float64{0, 0.1, 0.2, 0.4, 0.6, 0.8, 0.9, 1.0}

// Quantize maps a loudness in [0,1] onto one of Levels
func Quantize(loudness float64) float64 {
	switch {
	case loudness < 0.01:
		return 0
	case loudness < 0.1:
		return 0.1
	case loudness < 0.2:
		return 0.2
	case loudness < 0.4:
		return 0.4
	case loudness < 0.6:
		return 0.6
	case loudness < 0.8:
		return 0.8
	case loudness < 0.9:
		return 0.9
	default:
		return 1.0
	}
}

// History is a fixed-length rolling record of quantized loudness.
// It is not safe for concurrent use.
type History struct {
	buckets     []float64
	decay       time.Duration
	accumulated time.Duration
}

// New creates a history with n silent buckets
func New(n int, decay time.Duration) *History {
	if n <= 0 {
		n = DefaultBuckets
	}
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &History{
		buckets: make([]float64, n),
		decay:   decay,
	}
}

// Advance records a loudness measurement taken delta after the previous one
func (h *History) Advance(loudness float64, delta time.Duration) {
	level := Quantize(loudness)

	h.accumulated += delta
	if h.accumulated >= h.decay {
		h.shift()
		h.accumulated = 0
	}

	if level > h.buckets[0] {
		h.buckets[0] = level
	}
}

// shift drops the oldest bucket and opens a silent one at the front
func (h *History) shift() {
	for i := len(h.buckets) - 1; i > 0; i-- {
		h.buckets[i] = h.buckets[i-1]
	}
	h.buckets[0] = 0
}

// Values returns a copy of the buckets, newest first
func (h *History) Values() []float64 {
	out := make([]float64, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// Len returns the bucket count
func (h *History) Len() int {
	return len(h.buckets)
}

// Decay returns the decay interval
func (h *History) Decay() time.Duration {
	return h.decay
}

// Reset silences every bucket and clears the accumulator
func (h *History) Reset() {
	for i := range h.buckets {
		h.buckets[i] = 0
	}
	h.accumulated = 0
}
