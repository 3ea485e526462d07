// ABOUTME: Tests for the monitor loop
// ABOUTME: Uses a fake driver to exercise start, device switch and rendering
package monitor

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/micmon/micmon-go/pkg/audio"
	"github.com/micmon/micmon-go/pkg/capture"
	"github.com/micmon/micmon-go/pkg/meter"
)

type fakeDriver struct {
	mu      sync.Mutex
	devices []capture.Device
	started []string
	stops   int
	running bool
	cb      capture.Callbacks

	// stuck makes Stop report completion while the capture keeps running
	stuck bool
}

func (d *fakeDriver) Devices() ([]capture.Device, error) {
	return d.devices, nil
}

func (d *fakeDriver) Start(deviceID string, cb capture.Callbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return capture.ErrAlreadyRunning
	}
	d.running = true
	d.started = append(d.started, deviceID)
	d.cb = cb
	return nil
}

func (d *fakeDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return capture.ErrNotRunning
	}
	if !d.stuck {
		d.running = false
	}
	d.stops++
	cb := d.cb
	go cb.OnStopped(nil)
	return nil
}

func (d *fakeDriver) Close() error { return nil }

// lose drops the running capture the way a vanished device does: the driver
// is idle at once and the stop notification is left to the caller.
func (d *fakeDriver) lose() capture.Callbacks {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	return d.cb
}

func (d *fakeDriver) snapshot() ([]string, int, capture.Callbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.started...), d.stops, d.cb
}

type fakeClock struct {
	nanos atomic.Int64
}

func (c *fakeClock) now() time.Time {
	return time.Unix(0, c.nanos.Load())
}

func (c *fakeClock) advance(d time.Duration) {
	c.nanos.Add(int64(d))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type statusRecorder struct {
	mu   sync.Mutex
	last Status
}

func (r *statusRecorder) record(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = s
}

func (r *statusRecorder) get() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func newTestMonitor(t *testing.T, driver capture.Driver, config Config) (*Monitor, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	clock.advance(time.Hour)

	sink := meter.SinkFunc(func([]byte) error { return nil })
	pipeline, err := meter.New(meter.DefaultConfig(), sink, clock.now())
	if err != nil {
		t.Fatalf("meter.New failed: %v", err)
	}

	m := New(driver, pipeline, config)
	m.now = clock.now
	return m, clock
}

func runMonitor(t *testing.T, m *Monitor) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestMonitorStartsPreferredDevice(t *testing.T) {
	driver := &fakeDriver{devices: []capture.Device{
		{ID: "a", Name: "Built-in", Default: true},
		{ID: "b", Name: "USB"},
	}}
	m, _ := newTestMonitor(t, driver, Config{Preferred: []string{"b"}})
	runMonitor(t, m)

	if err := m.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, "capture start", func() bool {
		started, _, _ := driver.snapshot()
		return len(started) == 1
	})
	started, _, _ := driver.snapshot()
	if started[0] != "b" {
		t.Errorf("expected preferred device b, got %q", started[0])
	}
}

func TestMonitorSwitchDeviceStopsThenStarts(t *testing.T) {
	driver := &fakeDriver{devices: []capture.Device{{ID: "a", Default: true}, {ID: "b"}}}
	m, _ := newTestMonitor(t, driver, Config{})
	runMonitor(t, m)

	ctx := context.Background()
	if err := m.Start(ctx, "a"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.SwitchDevice(ctx, "b"); err != nil {
		t.Fatalf("SwitchDevice failed: %v", err)
	}

	waitFor(t, "restart on b", func() bool {
		started, _, _ := driver.snapshot()
		return len(started) == 2
	})

	started, stops, _ := driver.snapshot()
	if started[0] != "a" || started[1] != "b" {
		t.Errorf("expected starts [a b], got %v", started)
	}
	if stops != 1 {
		t.Errorf("expected exactly one stop, got %d", stops)
	}
}

func TestMonitorRendersBuffers(t *testing.T) {
	driver := &fakeDriver{devices: []capture.Device{{ID: "a", Default: true}}}

	statuses := make(chan Status, 16)
	m, clock := newTestMonitor(t, driver, Config{
		OnStatus: func(s Status) {
			select {
			case statuses <- s:
			default:
			}
		},
	})
	runMonitor(t, m)

	if err := m.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "capture start", func() bool {
		started, _, _ := driver.snapshot()
		return len(started) == 1
	})

	buf := make([]byte, 1600)
	audio.PutSample16(buf, 3, -32768)

	_, _, cb := driver.snapshot()
	clock.advance(800 * time.Millisecond)
	cb.OnData(buf)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-statuses:
			if s.Stats.Accepted == 1 {
				if s.Levels[0] != 1.0 {
					t.Errorf("expected newest bucket 1.0, got %v", s.Levels[0])
				}
				if s.State != Capturing || s.Session == "" {
					t.Errorf("unexpected status %+v", s)
				}
				return
			}
		case <-deadline:
			t.Fatal("no rendered status received")
		}
	}
}

func TestMonitorNoDevice(t *testing.T) {
	driver := &fakeDriver{}

	statuses := make(chan Status, 16)
	m, _ := newTestMonitor(t, driver, Config{
		OnStatus: func(s Status) { statuses <- s },
	})
	runMonitor(t, m)

	if err := m.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// capturing, then back to idle after the failed start
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-statuses:
			if s.State == Idle {
				started, _, _ := driver.snapshot()
				if len(started) != 0 {
					t.Errorf("expected no driver start, got %v", started)
				}
				return
			}
		case <-deadline:
			t.Fatal("monitor never returned to idle")
		}
	}
}

func TestMonitorWithToneDriver(t *testing.T) {
	tone := capture.NewTone(capture.DefaultFormat, 5, 1.0)

	sink := meter.SinkFunc(func([]byte) error { return nil })
	pipeline, err := meter.New(meter.Config{MinInterval: 10 * time.Millisecond}, sink, time.Now())
	if err != nil {
		t.Fatalf("meter.New failed: %v", err)
	}

	levels := make(chan []float64, 16)
	m := New(tone, pipeline, Config{
		OnStatus: func(s Status) {
			if s.Stats.Accepted > 0 {
				select {
				case levels <- s.Levels:
				default:
				}
			}
		},
	})
	runMonitor(t, m)

	if err := m.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case l := <-levels:
		if l[0] != 1.0 {
			t.Errorf("expected full-scale tone to reach level 1.0, got %v", l[0])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tone never rendered")
	}
}

func TestMonitorIgnoresLateStopFromLostDevice(t *testing.T) {
	driver := &fakeDriver{devices: []capture.Device{{ID: "a", Default: true}, {ID: "b"}}}
	rec := &statusRecorder{}
	m, _ := newTestMonitor(t, driver, Config{OnStatus: rec.record})
	runMonitor(t, m)

	ctx := context.Background()
	if err := m.Start(ctx, "a"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "capture on a", func() bool { return rec.get().Session != "" })
	lostSession := rec.get().Session

	// device a vanishes; its stop notification is still in flight
	lost := driver.lose()

	if err := m.SwitchDevice(ctx, "b"); err != nil {
		t.Fatalf("SwitchDevice failed: %v", err)
	}
	waitFor(t, "capture on b", func() bool {
		s := rec.get()
		return s.DeviceID == "b" && s.Session != "" && s.Session != lostSession
	})

	lost.OnStopped(capture.ErrDeviceLost)

	if err := m.Restart(ctx); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	waitFor(t, "restart on b", func() bool {
		started, _, _ := driver.snapshot()
		return len(started) == 3
	})
	waitFor(t, "capturing after restart", func() bool {
		s := rec.get()
		return s.State == Capturing && s.Session != ""
	})

	started, _, _ := driver.snapshot()
	if want := []string{"a", "b", "b"}; !reflect.DeepEqual(started, want) {
		t.Errorf("expected starts %v, got %v", want, started)
	}
	if s := rec.get(); s.DeviceID != "b" {
		t.Errorf("expected device b, got %q", s.DeviceID)
	}
}

func TestMonitorStartWhileDriverRunningKeepsSession(t *testing.T) {
	driver := &fakeDriver{devices: []capture.Device{{ID: "a", Default: true}}, stuck: true}
	rec := &statusRecorder{}
	m, _ := newTestMonitor(t, driver, Config{OnStatus: rec.record})
	runMonitor(t, m)

	ctx := context.Background()
	if err := m.Start(ctx, "a"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "capture on a", func() bool { return rec.get().Session != "" })
	session := rec.get().Session

	// the driver reports the stop but never actually stops
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitFor(t, "idle", func() bool { return rec.get().State == Idle })

	if err := m.Restart(ctx); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	waitFor(t, "capturing again", func() bool {
		s := rec.get()
		return s.State == Capturing && s.Session != ""
	})

	if s := rec.get(); s.Session != session || s.DeviceID != "a" {
		t.Errorf("expected running session %s on a, got %s on %q", session, s.Session, s.DeviceID)
	}
}
