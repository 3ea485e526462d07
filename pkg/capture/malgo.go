// ABOUTME: Malgo-based capture implementation
// ABOUTME: Uses miniaudio via malgo to record 16-bit mono microphone audio
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/micmon/micmon-go/pkg/audio"
)

// Malgo capture implementation using malgo/miniaudio library
type Malgo struct {
	format   audio.Format
	bufferMs int

	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	cb       Callbacks
	stopping bool
	mu       sync.Mutex
	pending  sync.WaitGroup // in-flight asynchronous stops
}

// NewMalgo creates a new Malgo capture driver. The miniaudio context is
// created on first use.
func NewMalgo(format audio.Format, bufferMs int) *Malgo {
	return &Malgo{
		format:   format,
		bufferMs: bufferMs,
	}
}

// ensureContext initializes the malgo context (must hold m.mu)
func (m *Malgo) ensureContext() error {
	if m.malgoCtx != nil {
		return nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoCtx = ctx
	return nil
}

// Devices lists active capture endpoints
func (m *Malgo) Devices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos, err := m.captureInfos()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			ID:      info.ID.String(),
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		})
	}
	return devices, nil
}

// captureInfos enumerates capture devices (must hold m.mu)
func (m *Malgo) captureInfos() ([]malgo.DeviceInfo, error) {
	if err := m.ensureContext(); err != nil {
		return nil, err
	}
	infos, err := m.malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	return infos, nil
}

// Start begins capturing from deviceID
func (m *Malgo) Start(deviceID string, cb Callbacks) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return ErrAlreadyRunning
	}

	infos, err := m.captureInfos()
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(m.bufferMs)
	deviceConfig.Alsa.NoMMap = 1

	name := "default"
	if deviceID != "" {
		found := false
		for _, info := range infos {
			if info.ID.String() == deviceID {
				deviceConfig.Capture.DeviceID = info.ID.Pointer()
				name = info.Name()
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrNoDevice, deviceID)
		}
	}

	// Set up callbacks
	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		n := int(frameCount) * m.format.FrameBytes()
		if n > len(pInputSamples) {
			n = len(pInputSamples)
		}
		// miniaudio reuses its buffer after the callback returns
		buf := make([]byte, n)
		copy(buf, pInputSamples[:n])
		cb.data(buf)
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: onSamples,
		Stop: m.onDeviceStop,
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	m.device = device
	m.cb = cb
	m.stopping = false

	log.Printf("Capture started: %s, %dHz, %d channel(s), %d-bit (malgo)",
		name, m.format.SampleRate, m.format.Channels, m.format.BitDepth)

	return nil
}

// onDeviceStop is called by miniaudio whenever the device stops. Requested
// stops are reported by Stop itself.
func (m *Malgo) onDeviceStop() {
	m.mu.Lock()
	if m.stopping || m.device == nil {
		m.mu.Unlock()
		return
	}
	device := m.device
	cb := m.cb
	m.device = nil
	m.mu.Unlock()

	// Uninit must not run on the miniaudio callback thread
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		device.Uninit()
		log.Printf("Capture device stopped unexpectedly")
		cb.stopped(ErrDeviceLost)
	}()
}

// Stop requests the active capture to end
func (m *Malgo) Stop() error {
	m.mu.Lock()
	if m.device == nil || m.stopping {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.stopping = true
	device := m.device
	cb := m.cb
	m.mu.Unlock()

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		err := device.Stop()
		device.Uninit()

		m.mu.Lock()
		m.device = nil
		m.stopping = false
		m.mu.Unlock()

		if err != nil {
			err = fmt.Errorf("failed to stop capture device: %w", err)
		}
		cb.stopped(err)
	}()

	return nil
}

// Close releases capture resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	var device *malgo.Device
	var cb Callbacks
	if m.device != nil && !m.stopping {
		device = m.device
		cb = m.cb
		m.stopping = true
		m.device = nil
	}
	malgoCtx := m.malgoCtx
	m.malgoCtx = nil
	m.mu.Unlock()

	// Stop outside the lock: miniaudio calls onDeviceStop while stopping
	if device != nil {
		if err := device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		device.Uninit()
		cb.stopped(nil)
	}
	m.pending.Wait()

	if malgoCtx != nil {
		if err := malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		malgoCtx.Free()
	}

	return nil
}
