// ABOUTME: Capture session state machine
// ABOUTME: Pure reducer from events to next state plus side-effect commands
package monitor

import (
	"fmt"
	"time"
)

// State is the capture session state
type State int

const (
	// Idle means no capture is running
	Idle State = iota
	// Capturing means a capture was started and buffers are processed
	Capturing
	// StoppingForRestart means a stop was issued and a start follows its completion
	StoppingForRestart
	// Stopping means a stop was issued and nothing follows
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case StoppingForRestart:
		return "restarting"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is an input to the reducer
type Event interface {
	eventMarker()
}

// StartRequested asks for capture on DeviceID ("" = preferred/default)
type StartRequested struct {
	DeviceID string
}

// StopRequested asks for the capture to end
type StopRequested struct{}

// StopCompleted reports that the driver finished stopping Session.
// Completions for any other session are stale and ignored.
type StopCompleted struct {
	Session string
	Err     error
}

// DeviceChanged selects a different capture device
type DeviceChanged struct {
	DeviceID string
}

// RestartRequested restarts capture on the current device
type RestartRequested struct{}

// DataAvailable carries one captured buffer
type DataAvailable struct {
	Buf []byte
	At  time.Time
}

// CaptureStarted reports a successful driver start
type CaptureStarted struct {
	DeviceID string
	Session  string
}

// StartFailed reports a failed driver start
type StartFailed struct {
	Err error
}

func (StartRequested) eventMarker()   {}
func (StopRequested) eventMarker()    {}
func (StopCompleted) eventMarker()    {}
func (DeviceChanged) eventMarker()    {}
func (RestartRequested) eventMarker() {}
func (DataAvailable) eventMarker()    {}
func (CaptureStarted) eventMarker()   {}
func (StartFailed) eventMarker()      {}

// Command is a side effect requested by the reducer
type Command interface {
	commandMarker()
}

// StartCapture starts the driver on DeviceID
type StartCapture struct {
	DeviceID string
}

// StopCapture asks the driver to stop
type StopCapture struct{}

// ProcessBuffer runs one buffer through the meter pipeline
type ProcessBuffer struct {
	Buf []byte
	At  time.Time
}

func (StartCapture) commandMarker()  {}
func (StopCapture) commandMarker()   {}
func (ProcessBuffer) commandMarker() {}

// Machine is the reducer state
type Machine struct {
	State    State
	DeviceID string // device of the current (or last) capture
	Pending  string // device to start once the stop completes
	Session  string
}

// Reduce computes the next machine state and the commands to execute. It
// performs no I/O.
func Reduce(m Machine, ev Event) (Machine, []Command) {
	switch ev := ev.(type) {
	case StartRequested:
		switch m.State {
		case Idle:
			m.State = Capturing
			m.DeviceID = ev.DeviceID
			return m, []Command{StartCapture{DeviceID: ev.DeviceID}}
		case StoppingForRestart, Stopping:
			m.State = StoppingForRestart
			m.Pending = ev.DeviceID
		}
		// Capturing: already running
		return m, nil

	case DeviceChanged:
		switch m.State {
		case Idle:
			m.State = Capturing
			m.DeviceID = ev.DeviceID
			return m, []Command{StartCapture{DeviceID: ev.DeviceID}}
		case Capturing:
			if ev.DeviceID == m.DeviceID {
				return m, nil
			}
			m.State = StoppingForRestart
			m.Pending = ev.DeviceID
			return m, []Command{StopCapture{}}
		case StoppingForRestart, Stopping:
			m.State = StoppingForRestart
			m.Pending = ev.DeviceID
		}
		return m, nil

	case RestartRequested:
		switch m.State {
		case Idle:
			m.State = Capturing
			return m, []Command{StartCapture{DeviceID: m.DeviceID}}
		case Capturing:
			m.State = StoppingForRestart
			m.Pending = m.DeviceID
			return m, []Command{StopCapture{}}
		case Stopping:
			m.State = StoppingForRestart
			m.Pending = m.DeviceID
		}
		return m, nil

	case StopRequested:
		switch m.State {
		case Capturing:
			m.State = Stopping
			return m, []Command{StopCapture{}}
		case StoppingForRestart:
			m.State = Stopping
			m.Pending = ""
		}
		return m, nil

	case StopCompleted:
		if ev.Session != m.Session {
			return m, nil
		}
		switch m.State {
		case StoppingForRestart:
			m.State = Capturing
			m.DeviceID = m.Pending
			m.Pending = ""
			m.Session = ""
			return m, []Command{StartCapture{DeviceID: m.DeviceID}}
		case Stopping, Capturing:
			// Capturing: the device went away on its own
			m.State = Idle
			m.Session = ""
		}
		return m, nil

	case CaptureStarted:
		if m.State == Capturing {
			m.DeviceID = ev.DeviceID
			m.Session = ev.Session
		}
		return m, nil

	case StartFailed:
		if m.State == Capturing {
			m.State = Idle
			m.Session = ""
		}
		return m, nil

	case DataAvailable:
		if m.State != Capturing || m.Session == "" {
			return m, nil
		}
		return m, []Command{ProcessBuffer{Buf: ev.Buf, At: ev.At}}
	}

	return m, nil
}
