//go:build portaudio

// ABOUTME: PortAudio capture implementation
// ABOUTME: Cross-platform microphone capture using PortAudio
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/micmon/micmon-go/pkg/audio"
	"github.com/micmon/micmon-go/pkg/audio/resample"
)

// PortAudio capture implementation
type PortAudio struct {
	format   audio.Format
	bufferMs int

	initialized bool
	stream      *portaudio.Stream
	cb          Callbacks
	stopping    bool
	mu          sync.Mutex
	pending     sync.WaitGroup // in-flight asynchronous stops
}

// NewPortAudio creates a new PortAudio capture driver
func NewPortAudio(format audio.Format, bufferMs int) *PortAudio {
	return &PortAudio{
		format:   format,
		bufferMs: bufferMs,
	}
}

// ensureInit initializes PortAudio (must hold p.mu)
func (p *PortAudio) ensureInit() error {
	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	p.initialized = true
	return nil
}

// rateConverter is satisfied by resample.Resampler and resample.PeakDecimator
type rateConverter interface {
	Resample(input, output []int16) int
	OutputSamplesNeeded(inputSamples int) int
}

// deviceID builds a stable identifier from host API and device name
func deviceID(info *portaudio.DeviceInfo) string {
	return fmt.Sprintf("%s:%s", info.HostApi.Name, info.Name)
}

// inputDevices enumerates devices with input channels (must hold p.mu)
func (p *PortAudio) inputDevices() ([]*portaudio.DeviceInfo, *portaudio.DeviceInfo, error) {
	if err := p.ensureInit(); err != nil {
		return nil, nil, err
	}

	all, err := portaudio.Devices()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	var inputs []*portaudio.DeviceInfo
	for _, info := range all {
		if info.MaxInputChannels > 0 {
			inputs = append(inputs, info)
		}
	}

	def, err := portaudio.DefaultInputDevice()
	if err != nil {
		def = nil
	}
	return inputs, def, nil
}

// Devices lists active capture endpoints
func (p *PortAudio) Devices() ([]Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inputs, def, err := p.inputDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(inputs))
	for _, info := range inputs {
		devices = append(devices, Device{
			ID:      deviceID(info),
			Name:    info.Name,
			Default: def != nil && deviceID(def) == deviceID(info),
		})
	}
	return devices, nil
}

// Start begins capturing from deviceID
func (p *PortAudio) Start(id string, cb Callbacks) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return ErrAlreadyRunning
	}

	inputs, def, err := p.inputDevices()
	if err != nil {
		return err
	}

	target := def
	if id != "" {
		target = nil
		for _, info := range inputs {
			if deviceID(info) == id {
				target = info
				break
			}
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %q", ErrNoDevice, id)
	}

	params := portaudio.LowLatencyParameters(target, nil)
	params.Input.Channels = p.format.Channels

	// Prefer the meter rate; otherwise open at the native rate and convert.
	// Downsampling keeps each span's peak.
	rate := p.format.SampleRate
	var conv rateConverter
	params.SampleRate = float64(rate)
	params.FramesPerBuffer = rate * p.bufferMs / 1000
	if err := portaudio.IsFormatSupported(params, make([]int16, params.FramesPerBuffer)); err != nil {
		if native := int(target.DefaultSampleRate); native > 0 && native != rate {
			if native > rate {
				conv = resample.NewPeak(native, rate, p.format.Channels)
			} else {
				conv = resample.New(native, rate, p.format.Channels)
			}
			rate = native
			params.SampleRate = float64(rate)
			params.FramesPerBuffer = rate * p.bufferMs / 1000
		}
	}

	var scratch []int16
	stream, err := portaudio.OpenStream(params, func(in []int16) {
		if conv != nil {
			if need := conv.OutputSamplesNeeded(len(in)); cap(scratch) < need {
				scratch = make([]int16, need)
			}
			in = scratch[:conv.Resample(in, scratch[:cap(scratch)])]
		}
		buf := make([]byte, len(in)*2)
		for i, sample := range in {
			audio.PutSample16(buf, i, sample)
		}
		cb.data(buf)
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	p.cb = cb
	p.stopping = false

	log.Printf("Capture started: %s, %dHz (device %dHz), %d channel(s), %d-bit (portaudio)",
		target.Name, p.format.SampleRate, rate, p.format.Channels, p.format.BitDepth)

	return nil
}

// Stop requests the active capture to end
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	if p.stream == nil || p.stopping {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.stopping = true
	stream := p.stream
	cb := p.cb
	p.mu.Unlock()

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		err := stream.Stop()
		if closeErr := stream.Close(); err == nil {
			err = closeErr
		}

		p.mu.Lock()
		p.stream = nil
		p.stopping = false
		p.mu.Unlock()

		if err != nil {
			err = fmt.Errorf("failed to stop stream: %w", err)
		}
		cb.stopped(err)
	}()

	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	var stream *portaudio.Stream
	var cb Callbacks
	if p.stream != nil && !p.stopping {
		stream = p.stream
		cb = p.cb
		p.stream = nil
	}
	p.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			log.Printf("Warning: stream stop error: %v", err)
		}
		stream.Close()
		cb.stopped(nil)
	}
	p.pending.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		p.initialized = false
		return portaudio.Terminate()
	}
	return nil
}
