// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and relays user actions to the monitor
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/micmon/micmon-go/internal/monitor"
	"github.com/micmon/micmon-go/pkg/capture"
)

// ActionKind identifies a user request from the TUI
type ActionKind int

const (
	ActionSwitchDevice ActionKind = iota
	ActionRestart
	ActionRefreshDevices
)

// Action is a user request; DeviceID is set for ActionSwitchDevice
type Action struct {
	Kind     ActionKind
	DeviceID string
}

// Controls holds channels for TUI to application communication
type Controls struct {
	Actions chan Action
	Quit    chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Actions: make(chan Action, 10),
		Quit:    make(chan struct{}, 1),
	}
}

func (c *Controls) send(a Action) {
	if c == nil {
		return
	}
	select {
	case c.Actions <- a:
	default:
		// Don't block the UI if the app is busy
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls, devices []capture.Device) Model {
	return Model{
		state:    monitor.Idle,
		devices:  devices,
		controls: controls,
	}
}

// TUI owns the running bubbletea program
type TUI struct {
	program *tea.Program
	updates chan tea.Msg
	done    chan struct{}
}

// New creates the TUI program without starting it
func New(controls *Controls, devices []capture.Device) *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(controls, devices), tea.WithAltScreen()),
		updates: make(chan tea.Msg, 32),
		done:    make(chan struct{}),
	}
}

// Run blocks until the user quits or Stop is called
func (t *TUI) Run() error {
	go func() {
		for {
			select {
			case msg := <-t.updates:
				t.program.Send(msg)
			case <-t.done:
				return
			}
		}
	}()

	_, err := t.program.Run()
	close(t.done)
	return err
}

func (t *TUI) post(msg tea.Msg) {
	select {
	case t.updates <- msg:
	default:
		// Don't block the monitor if the UI is behind
	}
}

// UpdateStatus forwards a monitor status snapshot
func (t *TUI) UpdateStatus(status monitor.Status) {
	t.post(StatusMsg(status))
}

// UpdateDevices forwards a refreshed device list
func (t *TUI) UpdateDevices(devices []capture.Device, err error) {
	t.post(DevicesMsg{Devices: devices, Err: err})
}

// ShowIcon records the size of the latest icon; it never fails
func (t *TUI) ShowIcon(data []byte) error {
	t.post(IconMsg{Size: len(data)})
	return nil
}

// Stop quits the program
func (t *TUI) Stop() {
	t.program.Quit()
}
