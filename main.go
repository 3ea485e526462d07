// ABOUTME: Entry point for micmon, the microphone level tray meter
// ABOUTME: Parses CLI flags and wires capture, meter pipeline and icon sinks
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/micmon/micmon-go/internal/config"
	"github.com/micmon/micmon-go/internal/monitor"
	"github.com/micmon/micmon-go/internal/sink"
	"github.com/micmon/micmon-go/internal/tray"
	"github.com/micmon/micmon-go/internal/ui"
	"github.com/micmon/micmon-go/internal/version"
	"github.com/micmon/micmon-go/pkg/capture"
	"github.com/micmon/micmon-go/pkg/meter"
)

var (
	configPath  = flag.String("config", "", "Path to YAML config file")
	backend     = flag.String("backend", "malgo", "Capture backend: malgo, portaudio or tone")
	device      = flag.String("device", "", "Capture device ID (see -list-devices)")
	bufferMs    = flag.Int("buffer-ms", capture.DefaultBufferMs, "Capture buffer length in milliseconds")
	size        = flag.Int("size", 32, "Icon size in pixels (power of two)")
	decayMs     = flag.Int("decay-ms", 1500, "Time for a level to travel one band outward")
	iconFile    = flag.String("icon-file", "", "Write each rendered icon to this .ico path")
	useTray     = flag.Bool("tray", false, "Show the meter as a system tray icon (needs -tags tray)")
	logFile     = flag.String("log-file", "micmon.log", "Log file path")
	logLevel    = flag.String("log-level", "info", "Log level: info or debug")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	listDevices = flag.Bool("list-devices", false, "List capture devices and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flagOverrides().Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	driver, err := capture.New(cfg.Capture.Backend, cfg.Format(), cfg.Capture.BufferMS)
	if err != nil {
		log.Fatalf("Failed to create capture driver: %v", err)
	}
	if tone, ok := driver.(*capture.Tone); ok {
		tone.SetAmplitude(cfg.Capture.ToneAmplitude)
	}

	if *listDevices {
		printDevices(driver)
		_ = driver.Close()
		return
	}

	// Set up logging
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.Output.TUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s (backend: %s)", version.String(), cfg.Capture.Backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mon *monitor.Monitor
	var sinks sink.Multi

	if cfg.Output.IconFile != "" {
		fileSink, err := sink.NewFile(cfg.Output.IconFile)
		if err != nil {
			log.Fatalf("Failed to create icon file sink: %v", err)
		}
		sinks = append(sinks, fileSink)
		log.Printf("Writing icons to %s", fileSink.Path())
	}

	var trayApp *tray.Tray
	if cfg.Output.Tray {
		trayApp, err = tray.New(func() {
			if mon != nil {
				mon.Post(monitor.RestartRequested{})
			}
		})
		if err != nil {
			log.Printf("Tray disabled: %v", err)
		} else {
			sinks = append(sinks, trayApp)
		}
	}

	var tui *ui.TUI
	var controls *ui.Controls
	if cfg.Output.TUI {
		devices, err := driver.Devices()
		if err != nil {
			log.Printf("Failed to list devices: %v", err)
		}
		controls = ui.NewControls()
		tui = ui.New(controls, devices)
		sinks = append(sinks, tui)
	}

	if len(sinks) == 0 {
		log.Printf("No icon sink configured, icons are rendered and discarded")
	}

	pipeline, err := meter.New(cfg.MeterConfig(), sinks, time.Now())
	if err != nil {
		log.Fatalf("Failed to create meter pipeline: %v", err)
	}

	mon = monitor.New(driver, pipeline, monitor.Config{
		Preferred: cfg.Capture.Devices,
		Debug:     cfg.Debug(),
		OnStatus: func(status monitor.Status) {
			if tui != nil {
				tui.UpdateStatus(status)
			}
		},
	})

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := mon.Run(ctx); err != nil {
			log.Printf("Monitor error: %v", err)
		}
	}()

	if err := mon.Start(ctx, ""); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}

	var tuiDone chan struct{}
	if tui != nil {
		tuiDone = make(chan struct{})
		go handleControls(ctx, mon, tui, controls)
		go func() {
			defer close(tuiDone)
			if err := tui.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			cancel()
			<-runDone
			if err := driver.Close(); err != nil {
				log.Printf("Error closing capture driver: %v", err)
			}
			if tui != nil {
				tui.Stop()
				<-tuiDone
			}
			if trayApp != nil {
				trayApp.Quit()
			}
			log.Printf("Monitor stopped")
		})
	}

	if trayApp != nil {
		// fyne owns the main goroutine
		go func() {
			waitForShutdown(mon, controls)
			shutdown()
		}()
		trayApp.Run()
		shutdown()
		return
	}

	waitForShutdown(mon, controls)
	shutdown()
}

// flagOverrides collects the flags set explicitly on the command line
func flagOverrides() config.Overrides {
	var o config.Overrides
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			o.Backend = backend
		case "device":
			o.Device = device
		case "buffer-ms":
			o.BufferMS = bufferMs
		case "size":
			o.Size = size
		case "decay-ms":
			o.DecayMS = decayMs
		case "icon-file":
			o.IconFile = iconFile
		case "tray":
			o.Tray = useTray
		case "log-file":
			o.LogFile = logFile
		case "log-level":
			o.LogLevel = logLevel
		}
	})
	if *noTUI || *streamLogs {
		tui := false
		o.TUI = &tui
	}
	return o
}

// waitForShutdown blocks until a quit from the TUI or the OS. SIGHUP restarts
// capture on the current device.
func waitForShutdown(mon *monitor.Monitor, controls *ui.Controls) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	var quit <-chan struct{}
	if controls != nil {
		quit = controls.Quit
	}

	for {
		select {
		case <-quit:
			log.Printf("Received quit signal from TUI")
			return
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				log.Printf("SIGHUP received, restarting capture")
				mon.Post(monitor.RestartRequested{})
				continue
			}
			log.Printf("Shutdown signal received")
			return
		}
	}
}

// handleControls executes user actions from the TUI
func handleControls(ctx context.Context, mon *monitor.Monitor, tui *ui.TUI, controls *ui.Controls) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-controls.Actions:
			switch a.Kind {
			case ui.ActionSwitchDevice:
				log.Printf("Switching capture device to %s", a.DeviceID)
				if err := mon.SwitchDevice(ctx, a.DeviceID); err != nil {
					log.Printf("Failed to switch device: %v", err)
				}
			case ui.ActionRestart:
				log.Printf("Restarting capture")
				if err := mon.Restart(ctx); err != nil {
					log.Printf("Failed to restart capture: %v", err)
				}
			case ui.ActionRefreshDevices:
				devices, err := mon.Devices()
				if err != nil {
					log.Printf("Failed to list devices: %v", err)
				}
				tui.UpdateDevices(devices, err)
			}
		}
	}
}

func printDevices(driver capture.Driver) {
	devices, err := driver.Devices()
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}
	if len(devices) == 0 {
		fmt.Println("No capture devices found")
		return
	}
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %-40s %s\n", marker, d.ID, d.Name)
	}
}
