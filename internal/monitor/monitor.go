// ABOUTME: Capture session owner running the meter pipeline
// ABOUTME: Single goroutine loop reducing events and executing commands
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/micmon/micmon-go/pkg/capture"
	"github.com/micmon/micmon-go/pkg/meter"
)

// DefaultQueueSize bounds the number of pending events
const DefaultQueueSize = 64

// Config configures a Monitor
type Config struct {
	// Preferred lists device IDs to capture from, in order of preference
	Preferred []string

	// QueueSize is the event channel capacity (default: 64)
	QueueSize int

	// OnStatus is called from the monitor goroutine after every state
	// change and every rendered frame
	OnStatus func(Status)

	// Debug enables per-frame logging
	Debug bool
}

// Status is a snapshot of the monitor for display
type Status struct {
	State    State
	DeviceID string
	Session  string
	Levels   []float64
	Loudness float64
	Stats    meter.Stats
}

// Monitor owns the capture driver and the meter pipeline. All driver
// control and all pipeline calls happen on the Run goroutine.
type Monitor struct {
	config   Config
	driver   capture.Driver
	pipeline *meter.Pipeline
	events   chan Event
	done     chan struct{}
	machine  Machine
	now      func() time.Time

	// last successful driver start, owned by the Run goroutine
	driverDevice  string
	driverSession string
}

// New creates a monitor
func New(driver capture.Driver, pipeline *meter.Pipeline, config Config) *Monitor {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	return &Monitor{
		config:   config,
		driver:   driver,
		pipeline: pipeline,
		events:   make(chan Event, config.QueueSize),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Post queues an event without blocking. It returns false if the queue is
// full and the event was dropped.
func (m *Monitor) Post(ev Event) bool {
	select {
	case m.events <- ev:
		return true
	default:
		return false
	}
}

// send queues a control event, waiting for room
func (m *Monitor) send(ctx context.Context, ev Event) error {
	select {
	case m.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start requests capture on deviceID ("" = preferred or default device)
func (m *Monitor) Start(ctx context.Context, deviceID string) error {
	return m.send(ctx, StartRequested{DeviceID: deviceID})
}

// SwitchDevice requests a stop-then-restart onto deviceID
func (m *Monitor) SwitchDevice(ctx context.Context, deviceID string) error {
	return m.send(ctx, DeviceChanged{DeviceID: deviceID})
}

// Restart stops and restarts capture on the current device
func (m *Monitor) Restart(ctx context.Context) error {
	return m.send(ctx, RestartRequested{})
}

// Stop requests the capture to end
func (m *Monitor) Stop(ctx context.Context) error {
	return m.send(ctx, StopRequested{})
}

// Devices lists active capture devices
func (m *Monitor) Devices() ([]capture.Device, error) {
	return m.driver.Devices()
}

// Machine returns the reducer state. Only safe from the Run goroutine or
// after Run has returned.
func (m *Monitor) Machine() Machine {
	return m.machine
}

// Run processes events until ctx is cancelled. It must be called once.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil
		case ev := <-m.events:
			m.dispatch(ev)
		}
	}
}

// dispatch reduces ev and any follow-up events produced by its commands
func (m *Monitor) dispatch(ev Event) {
	queue := []Event{ev}
	for len(queue) > 0 {
		ev, queue = queue[0], queue[1:]

		prev := m.machine
		next, cmds := Reduce(m.machine, ev)
		m.machine = next

		if prev.State != next.State {
			log.Printf("Monitor: %s -> %s (device %q)", prev.State, next.State, next.DeviceID)
		}

		rendered := false
		for _, cmd := range cmds {
			followUp, ok := m.execute(cmd)
			if ok {
				queue = append(queue, followUp)
			}
			if _, isFrame := cmd.(ProcessBuffer); isFrame {
				rendered = true
			}
		}

		if prev != next || rendered {
			m.notify()
		}
	}
}

// execute performs one command, returning an event to feed back
func (m *Monitor) execute(cmd Command) (Event, bool) {
	switch cmd := cmd.(type) {
	case StartCapture:
		return m.startCapture(cmd.DeviceID), true

	case StopCapture:
		if err := m.driver.Stop(); err != nil {
			// Nothing is running, so the stop is already complete
			log.Printf("Capture stop: %v", err)
			return StopCompleted{Session: m.machine.Session, Err: err}, true
		}
		return nil, false

	case ProcessBuffer:
		ok, err := m.pipeline.Process(cmd.Buf, cmd.At)
		if err != nil {
			log.Printf("Frame dropped: %v", err)
		} else if ok && m.config.Debug {
			log.Printf("Frame rendered: levels=%v", m.pipeline.Snapshot())
		}
		return nil, false
	}

	return nil, false
}

// startCapture resolves the device and starts the driver
func (m *Monitor) startCapture(deviceID string) Event {
	if deviceID == "" {
		devices, err := m.driver.Devices()
		if err != nil {
			log.Printf("Failed to list capture devices: %v", err)
			return StartFailed{Err: err}
		}
		dev, ok := capture.SelectDevice(devices, m.config.Preferred)
		if !ok {
			log.Printf("No active capture device selected")
			return StartFailed{Err: capture.ErrNoDevice}
		}
		deviceID = dev.ID
		log.Printf("Selected capture device: %s (%s)", dev.Name, dev.ID)
	}

	session := uuid.NewString()
	cb := capture.Callbacks{
		OnData: func(buf []byte) {
			if !m.Post(DataAvailable{Buf: buf, At: m.now()}) && m.config.Debug {
				log.Printf("Event queue full, buffer dropped")
			}
		},
		OnStopped: func(err error) {
			if err != nil {
				log.Printf("Capture session %s ended: %v", session, err)
			}
			// Must not be dropped: a pending restart waits for it
			select {
			case m.events <- StopCompleted{Session: session, Err: err}:
			case <-m.done:
			}
		},
	}

	if err := m.driver.Start(deviceID, cb); err != nil {
		if errors.Is(err, capture.ErrAlreadyRunning) && m.driverSession != "" {
			// Keep tracking the session that is actually running
			log.Printf("Capture already running, keeping session %s on %q", m.driverSession, m.driverDevice)
			return CaptureStarted{DeviceID: m.driverDevice, Session: m.driverSession}
		}
		log.Printf("Failed to start capture on %q: %v", deviceID, err)
		return StartFailed{Err: fmt.Errorf("start %q: %w", deviceID, err)}
	}

	m.driverDevice = deviceID
	m.driverSession = session

	m.pipeline.Reset(m.now())
	log.Printf("Capture session %s started on %q", session, deviceID)
	return CaptureStarted{DeviceID: deviceID, Session: session}
}

// notify publishes the current status
func (m *Monitor) notify() {
	if m.config.OnStatus == nil {
		return
	}
	last := m.pipeline.Last()
	m.config.OnStatus(Status{
		State:    m.machine.State,
		DeviceID: m.machine.DeviceID,
		Session:  m.machine.Session,
		Levels:   m.pipeline.Snapshot(),
		Loudness: last.Loudness,
		Stats:    m.pipeline.Stats(),
	})
}

// shutdown stops any active capture when Run exits
func (m *Monitor) shutdown() {
	switch m.machine.State {
	case Capturing:
		if err := m.driver.Stop(); err != nil && !errors.Is(err, capture.ErrNotRunning) {
			log.Printf("Capture stop on shutdown: %v", err)
		}
	}
	m.machine.State = Idle
}
