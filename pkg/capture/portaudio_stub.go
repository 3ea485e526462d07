//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package capture

import (
	"fmt"

	"github.com/micmon/micmon-go/pkg/audio"
)

// PortAudio capture implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio capture driver
func NewPortAudio(format audio.Format, bufferMs int) *PortAudio {
	return &PortAudio{}
}

func errNotEnabled() error {
	return fmt.Errorf("%w: PortAudio support not enabled (build with -tags portaudio)", ErrUnavailable)
}

// Devices lists active capture endpoints
func (p *PortAudio) Devices() ([]Device, error) {
	return nil, errNotEnabled()
}

// Start begins capturing
func (p *PortAudio) Start(deviceID string, cb Callbacks) error {
	return errNotEnabled()
}

// Stop requests the active capture to end
func (p *PortAudio) Stop() error {
	return errNotEnabled()
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}
