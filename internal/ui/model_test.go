// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, device picking and key handling
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/micmon/micmon-go/internal/monitor"
	"github.com/micmon/micmon-go/pkg/capture"
	"github.com/micmon/micmon-go/pkg/meter"
)

var testDevices = []capture.Device{
	{ID: "builtin", Name: "Built-in Microphone", Default: true},
	{ID: "usb", Name: "USB Microphone"},
	{ID: "headset", Name: "Headset"},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, testDevices)

	if model.state != monitor.Idle {
		t.Errorf("expected idle state initially, got %v", model.state)
	}
	if model.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", model.cursor)
	}
	if len(model.devices) != 3 {
		t.Errorf("expected 3 devices, got %d", len(model.devices))
	}
}

func TestApplyStatus(t *testing.T) {
	model := NewModel(nil, testDevices)

	model.applyStatus(StatusMsg{
		State:    monitor.Capturing,
		DeviceID: "usb",
		Levels:   []float64{0.2, 0.4, 0, 0, 1},
		Loudness: 0.5,
		Stats:    meter.Stats{Accepted: 10, Dropped: 4, Failed: 1},
	})

	if model.state != monitor.Capturing || model.deviceID != "usb" {
		t.Errorf("unexpected state %v / %q", model.state, model.deviceID)
	}
	if len(model.levels) != 5 || model.levels[4] != 1 {
		t.Errorf("unexpected levels %v", model.levels)
	}
	if model.accepted != 10 || model.dropped != 4 || model.failed != 1 {
		t.Errorf("unexpected stats %d/%d/%d", model.accepted, model.dropped, model.failed)
	}

	// a status without levels keeps the previous bars
	model.applyStatus(StatusMsg{State: monitor.Capturing, DeviceID: "usb"})
	if len(model.levels) != 5 {
		t.Errorf("expected levels to be kept, got %v", model.levels)
	}
}

func TestCursorMovement(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"down once", []string{"down"}, 1},
		{"clamped at bottom", []string{"down", "down", "down", "down"}, 2},
		{"clamped at top", []string{"up", "up"}, 0},
		{"down then up", []string{"down", "down", "up"}, 1},
		{"vim keys", []string{"j", "j", "k"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, NewModel(nil, testDevices), tt.keys...)
			if m.cursor != tt.want {
				t.Errorf("expected cursor %d, got %d", tt.want, m.cursor)
			}
		})
	}
}

func TestEnterSwitchesDevice(t *testing.T) {
	controls := NewControls()
	press(t, NewModel(controls, testDevices), "down", "enter")

	select {
	case a := <-controls.Actions:
		if a.Kind != ActionSwitchDevice || a.DeviceID != "usb" {
			t.Errorf("unexpected action %+v", a)
		}
	default:
		t.Fatal("expected a switch action")
	}
}

func TestEnterWithoutDevices(t *testing.T) {
	controls := NewControls()
	press(t, NewModel(controls, nil), "enter")

	select {
	case a := <-controls.Actions:
		t.Errorf("unexpected action %+v", a)
	default:
	}
}

func TestRestartAndRefreshKeys(t *testing.T) {
	controls := NewControls()
	press(t, NewModel(controls, testDevices), "r", "d")

	want := []ActionKind{ActionRestart, ActionRefreshDevices}
	for _, kind := range want {
		select {
		case a := <-controls.Actions:
			if a.Kind != kind {
				t.Errorf("expected action %v, got %v", kind, a.Kind)
			}
		default:
			t.Fatalf("expected action %v", kind)
		}
	}
}

func TestQuit(t *testing.T) {
	controls := NewControls()
	next, cmd := NewModel(controls, testDevices).Update(key("q"))
	m := next.(Model)

	if !m.quitting {
		t.Error("expected quitting to be set")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestKeysWithoutControls(t *testing.T) {
	// nil controls must not panic
	press(t, NewModel(nil, testDevices), "enter", "r", "d", "q")
}

func TestApplyDevices(t *testing.T) {
	m := press(t, NewModel(nil, testDevices), "down", "down")

	next, _ := m.Update(DevicesMsg{Devices: testDevices[:1]})
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.cursor)
	}

	next, _ = m.Update(DevicesMsg{Err: errors.New("enumeration failed")})
	m = next.(Model)
	if m.deviceErr == nil {
		t.Error("expected device error to be recorded")
	}
	if len(m.devices) != 1 {
		t.Error("expected device list kept on error")
	}
}

func TestIconMsg(t *testing.T) {
	next, _ := NewModel(nil, nil).Update(IconMsg{Size: 312})
	if next.(Model).iconSize != 312 {
		t.Errorf("expected icon size 312, got %d", next.(Model).iconSize)
	}
}

func TestView(t *testing.T) {
	m := NewModel(nil, testDevices)
	m.applyStatus(StatusMsg{
		State:    monitor.Capturing,
		DeviceID: "builtin",
		Levels:   []float64{0, 0, 0, 0, 0.5},
	})

	view := m.View()
	for _, want := range []string{"capturing", "builtin", "Built-in Microphone", "(default)", "Devices (3)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value  float64
		filled int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 10},
		{-1, 0},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, 10)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%v) filled %d, want %d", tt.value, got, tt.filled)
		}
		if got := strings.Count(bar, "░") + strings.Count(bar, "█"); got != 10 {
			t.Errorf("renderBar(%v) width %d, want 10", tt.value, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := truncate("a very long device name", 10); got != "a very ..." {
		t.Errorf("unexpected truncation %q", got)
	}
}
