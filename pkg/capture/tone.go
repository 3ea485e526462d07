// ABOUTME: Synthetic test tone capture source
// ABOUTME: Generates a 440Hz sine wave as if it came from a microphone
package capture

import (
	"math"
	"sync"
	"time"

	"github.com/micmon/micmon-go/pkg/audio"
)

const (
	// ToneDeviceID identifies the synthetic device
	ToneDeviceID = "tone"

	// DefaultToneAmplitude keeps the tone at half scale
	DefaultToneAmplitude = 0.5

	toneFrequency = 440.0 // A4 note
)

// Tone is a capture driver that generates a sine wave in real time
type Tone struct {
	format    audio.Format
	bufferMs  int
	amplitude float64
	frequency float64

	sampleIndex uint64
	stop        chan struct{}
	mu          sync.Mutex
}

// NewTone creates a new test tone generator. amplitude is the peak level in
// [0,1].
func NewTone(format audio.Format, bufferMs int, amplitude float64) *Tone {
	if amplitude < 0 {
		amplitude = 0
	}
	if amplitude > 1 {
		amplitude = 1
	}
	return &Tone{
		format:    format,
		bufferMs:  bufferMs,
		amplitude: amplitude,
		frequency: toneFrequency,
	}
}

// SetAmplitude changes the peak level of subsequent buffers
func (t *Tone) SetAmplitude(amplitude float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.amplitude = math.Max(0, math.Min(1, amplitude))
}

// Devices lists the single synthetic device
func (t *Tone) Devices() ([]Device, error) {
	return []Device{{ID: ToneDeviceID, Name: "Test Tone (440Hz)", Default: true}}, nil
}

// Start begins generating buffers
func (t *Tone) Start(deviceID string, cb Callbacks) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return ErrAlreadyRunning
	}
	if deviceID != "" && deviceID != ToneDeviceID {
		return ErrNoDevice
	}

	stop := make(chan struct{})
	t.stop = stop

	go t.run(stop, cb)
	return nil
}

func (t *Tone) run(stop chan struct{}, cb Callbacks) {
	ticker := time.NewTicker(time.Duration(t.bufferMs) * time.Millisecond)
	defer ticker.Stop()

	size := t.format.BufferBytes(time.Duration(t.bufferMs) * time.Millisecond)
	for {
		select {
		case <-stop:
			cb.stopped(nil)
			return
		case <-ticker.C:
			buf := make([]byte, size)
			t.Read(buf)
			cb.data(buf)
		}
	}
}

// Read fills buf with the next tone samples
func (t *Tone) Read(buf []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := audio.NumSamples16(buf)
	for i := 0; i < n; i++ {
		// Generate sine wave
		ts := float64(t.sampleIndex+uint64(i)) / float64(t.format.SampleRate)
		sample := math.Sin(2 * math.Pi * t.frequency * ts)
		audio.PutSample16(buf, i, int16(sample*audio.Max16Bit*t.amplitude))
	}
	t.sampleIndex += uint64(n)

	return n
}

// Stop requests generation to end
func (t *Tone) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return ErrNotRunning
	}
	close(t.stop)
	t.stop = nil
	return nil
}

// Close stops any running generation
func (t *Tone) Close() error {
	if err := t.Stop(); err != nil && err != ErrNotRunning {
		return err
	}
	return nil
}
