// ABOUTME: Capture package providing microphone input backends
// ABOUTME: Driver interface with malgo, PortAudio and test tone implementations
// Package capture delivers raw microphone buffers to the meter.
//
// A Driver enumerates active capture endpoints and runs at most one capture
// at a time. Buffers arrive on the backend's callback goroutine through
// Callbacks.OnData; the end of a capture, requested or not, is reported once
// through Callbacks.OnStopped.
//
// Supports: malgo (default), PortAudio (build with -tags portaudio), and a
// synthetic test tone.
//
// Example:
//
//	drv, err := capture.New("malgo", capture.DefaultFormat, capture.DefaultBufferMs)
//	devices, err := drv.Devices()
//	dev, _ := capture.SelectDevice(devices, nil)
//	err = drv.Start(dev.ID, capture.Callbacks{
//	    OnData:    func(buf []byte) { ... },
//	    OnStopped: func(err error) { ... },
//	})
package capture
