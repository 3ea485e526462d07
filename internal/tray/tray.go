//go:build tray

// ABOUTME: System tray sink backed by fyne
// ABOUTME: Shows each rendered meter icon as the tray icon
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/micmon/micmon-go/internal/version"
	"github.com/micmon/micmon-go/pkg/icon"
)

// Available reports whether this build has tray support
const Available = true

// Tray owns the fyne application and its system tray entry
type Tray struct {
	app  fyne.App
	desk desktop.App
}

// New creates the tray application. onRestart is invoked from the tray menu.
func New(onRestart func()) (*Tray, error) {
	a := app.NewWithID("io.github.micmon")
	desk, ok := a.(desktop.App)
	if !ok {
		return nil, fmt.Errorf("%w: driver has no system tray", ErrUnavailable)
	}

	menu := fyne.NewMenu(version.String(),
		fyne.NewMenuItem("Restart capture", func() {
			if onRestart != nil {
				onRestart()
			}
		}),
	)
	desk.SetSystemTrayMenu(menu)

	return &Tray{app: a, desk: desk}, nil
}

// ShowIcon replaces the tray icon. The tray takes the PNG payload of the
// ICO since fyne does not decode icon containers.
func (t *Tray) ShowIcon(data []byte) error {
	payload, err := icon.Payload(data)
	if err != nil {
		return fmt.Errorf("failed to extract tray image: %w", err)
	}
	res := fyne.NewStaticResource("micmon.png", payload)
	fyne.Do(func() {
		t.desk.SetSystemTrayIcon(res)
	})
	return nil
}

// Run blocks on the fyne event loop. It must be called from the main goroutine.
func (t *Tray) Run() {
	t.app.Run()
}

// Quit stops the event loop
func (t *Tray) Quit() {
	fyne.Do(t.app.Quit)
}
