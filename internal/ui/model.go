// ABOUTME: Bubbletea model for the micmon TUI
// ABOUTME: Shows capture state, bucket levels and the device picker
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micmon/micmon-go/internal/monitor"
	"github.com/micmon/micmon-go/internal/version"
	"github.com/micmon/micmon-go/pkg/capture"
)

const barWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Capture
	state    monitor.State
	deviceID string
	session  string

	// Meter
	levels   []float64
	loudness float64
	accepted int64
	dropped  int64
	failed   int64
	iconSize int

	// Device picker
	devices   []capture.Device
	cursor    int
	deviceErr error

	controls *Controls
	quitting bool

	width  int
	height int
}

// StatusMsg carries a monitor status snapshot
type StatusMsg monitor.Status

// DevicesMsg carries a refreshed device list
type DevicesMsg struct {
	Devices []capture.Device
	Err     error
}

// IconMsg reports that a new icon reached the sinks
type IconMsg struct {
	Size int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case DevicesMsg:
		m.applyDevices(msg)
	case IconMsg:
		m.iconSize = msg.Size
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping capture...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(version.String()))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderLevels())
	b.WriteString("\n")
	b.WriteString(m.renderDevices())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓:Select  enter:Use device  r:Restart  d:Refresh devices  q:Quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStatus() string {
	device := m.deviceID
	if device == "" {
		device = "(none)"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("State:  "))
	b.WriteString(valueStyle.Render(m.state.String()))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Device: "))
	b.WriteString(valueStyle.Render(truncate(device, 48)))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Stats:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("frames: %d  dropped: %d  sink errors: %d  icon: %d bytes",
		m.accepted, m.dropped, m.failed, m.iconSize)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLevels() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Level:  [%s] %3.0f%%", renderBar(m.loudness, barWidth), m.loudness*100)))
	b.WriteString("\n")

	// outermost band first, matching the icon
	for i := len(m.levels) - 1; i >= 0; i-- {
		b.WriteString(valueStyle.Render(fmt.Sprintf("  #%d   [%s] %.2f", i, renderBar(m.levels[i], barWidth), m.levels[i])))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDevices() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Devices (%d)", len(m.devices))))
	b.WriteString("\n")

	if m.deviceErr != nil {
		b.WriteString(errorStyle.Render("  " + m.deviceErr.Error()))
		b.WriteString("\n")
	}
	if len(m.devices) == 0 {
		b.WriteString(valueStyle.Render("  No capture devices"))
		b.WriteString("\n")
		return b.String()
	}

	for i, dev := range m.devices {
		marker := "  "
		if dev.ID == m.deviceID {
			marker = "● "
		}
		line := marker + truncate(dev.Name, 44)
		if dev.Default {
			line += " (default)"
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(valueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.controls.quit()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.devices) {
			m.controls.send(Action{Kind: ActionSwitchDevice, DeviceID: m.devices[m.cursor].ID})
		}
	case "r":
		m.controls.send(Action{Kind: ActionRestart})
	case "d":
		m.controls.send(Action{Kind: ActionRefreshDevices})
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.state = msg.State
	m.deviceID = msg.DeviceID
	m.session = msg.Session
	m.loudness = msg.Loudness
	if msg.Levels != nil {
		m.levels = msg.Levels
	}
	m.accepted = msg.Stats.Accepted
	m.dropped = msg.Stats.Dropped
	m.failed = msg.Stats.Failed
}

func (m *Model) applyDevices(msg DevicesMsg) {
	m.deviceErr = msg.Err
	if msg.Err != nil {
		return
	}
	m.devices = msg.Devices
	if m.cursor >= len(m.devices) {
		m.cursor = len(m.devices) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func renderBar(value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
