// ABOUTME: Capture driver interface definition
// ABOUTME: Device description, callbacks, backend selection and device choice
package capture

import (
	"errors"
	"fmt"

	"github.com/micmon/micmon-go/pkg/audio"
)

// Reference capture configuration
const (
	DefaultBufferMs = 100
	DefaultBackend  = "malgo"
)

// DefaultFormat is mono 16-bit PCM at 8kHz
var DefaultFormat = audio.Format{
	SampleRate: 8000,
	Channels:   1,
	BitDepth:   16,
}

var (
	// ErrAlreadyRunning is returned by Start while a capture is active
	ErrAlreadyRunning = errors.New("capture already running")

	// ErrNotRunning is returned by Stop when nothing is being captured
	ErrNotRunning = errors.New("capture not running")

	// ErrNoDevice is returned when the requested device is not active
	ErrNoDevice = errors.New("capture device not found")

	// ErrDeviceLost is reported through OnStopped when the backend stops
	// without being asked to
	ErrDeviceLost = errors.New("capture device stopped unexpectedly")

	// ErrUnavailable is returned by backends not compiled into this binary
	ErrUnavailable = errors.New("capture backend not available")
)

// Device describes an active capture endpoint
type Device struct {
	ID      string
	Name    string
	Default bool
}

// Callbacks receive capture events. Both are called from backend goroutines.
type Callbacks struct {
	// OnData receives one buffer of raw PCM. The slice is owned by the
	// callee.
	OnData func(buf []byte)

	// OnStopped is called exactly once per successful Start, whether the
	// capture ends through Stop, Close or device loss
	OnStopped func(err error)
}

func (c Callbacks) data(buf []byte) {
	if c.OnData != nil {
		c.OnData(buf)
	}
}

func (c Callbacks) stopped(err error) {
	if c.OnStopped != nil {
		c.OnStopped(err)
	}
}

// Driver represents a capture backend
type Driver interface {
	// Devices lists active capture endpoints
	Devices() ([]Device, error)

	// Start begins capturing from deviceID ("" selects the default device)
	Start(deviceID string, cb Callbacks) error

	// Stop requests the active capture to end; completion is reported
	// through OnStopped
	Stop() error

	// Close releases backend resources
	Close() error
}

// New creates a driver for the named backend
func New(backend string, format audio.Format, bufferMs int) (Driver, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	if format.Channels != 1 {
		return nil, fmt.Errorf("unsupported channel count: %d (supported: 1)", format.Channels)
	}
	if bufferMs <= 0 {
		bufferMs = DefaultBufferMs
	}

	switch backend {
	case "", "malgo":
		return NewMalgo(format, bufferMs), nil
	case "portaudio":
		return NewPortAudio(format, bufferMs), nil
	case "tone":
		return NewTone(format, bufferMs, DefaultToneAmplitude), nil
	default:
		return nil, fmt.Errorf("unknown capture backend: %s (supported: malgo, portaudio, tone)", backend)
	}
}

// SelectDevice picks the device to capture from. The first device whose ID
// appears in preferred wins. With no preference, the default device is
// chosen, falling back to the first device.
func SelectDevice(devices []Device, preferred []string) (Device, bool) {
	if len(preferred) > 0 {
		for _, d := range devices {
			for _, id := range preferred {
				if d.ID == id {
					return d, true
				}
			}
		}
		return Device{}, false
	}

	for _, d := range devices {
		if d.Default {
			return d, true
		}
	}
	if len(devices) > 0 {
		return devices[0], true
	}
	return Device{}, false
}
