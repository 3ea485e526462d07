//go:build !tray

// ABOUTME: Stub tray used when built without the tray tag
// ABOUTME: New always fails so callers fall back to other sinks
package tray

import "fmt"

// Available reports whether this build has tray support
const Available = false

// Tray is a placeholder; build with -tags tray for the real one
type Tray struct{}

// New returns ErrUnavailable
func New(onRestart func()) (*Tray, error) {
	return nil, fmt.Errorf("%w: build with -tags tray", ErrUnavailable)
}

// ShowIcon discards the icon
func (t *Tray) ShowIcon(data []byte) error {
	return ErrUnavailable
}

// Run returns immediately
func (t *Tray) Run() {}

// Quit does nothing
func (t *Tray) Quit() {}
