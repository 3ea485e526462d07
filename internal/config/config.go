// ABOUTME: YAML configuration for micmon
// ABOUTME: Centralized defaults, file loading, flag overrides and validation
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/micmon/micmon-go/pkg/audio"
	"github.com/micmon/micmon-go/pkg/capture"
	"github.com/micmon/micmon-go/pkg/meter"
	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration.
//
// The file is the primary configuration surface; flags override individual
// values for ad-hoc runs.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Meter   MeterConfig   `yaml:"meter"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

type CaptureConfig struct {
	Backend       string   `yaml:"backend"`           // malgo, portaudio or tone
	Devices       []string `yaml:"devices,omitempty"` // preferred device IDs, first active match wins
	SampleRate    int      `yaml:"sample_rate"`
	BufferMS      int      `yaml:"buffer_ms"`
	ToneAmplitude float64  `yaml:"tone_amplitude,omitempty"`
}

type MeterConfig struct {
	Size          int `yaml:"size"`
	Buckets       int `yaml:"buckets"`
	DecayMS       int `yaml:"decay_ms"`
	MinIntervalMS int `yaml:"min_interval_ms,omitempty"` // 0 = decay_ms / 2
}

type OutputConfig struct {
	IconFile string `yaml:"icon_file,omitempty"`
	TUI      bool   `yaml:"tui"`
	Tray     bool   `yaml:"tray"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // info or debug
	File  string `yaml:"file"`
}

// Default returns a fully-populated Config with defaults
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Backend:       capture.DefaultBackend,
			SampleRate:    capture.DefaultFormat.SampleRate,
			BufferMS:      capture.DefaultBufferMs,
			ToneAmplitude: capture.DefaultToneAmplitude,
		},
		Meter: MeterConfig{
			Size:    32,
			Buckets: 5,
			DecayMS: 1500,
		},
		Output: OutputConfig{
			TUI: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "micmon.log",
		},
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults. Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	return cfg, nil
}

// Overrides holds flag values; nil pointers are left alone
type Overrides struct {
	Backend  *string
	Device   *string
	BufferMS *int
	Size     *int
	DecayMS  *int
	IconFile *string
	TUI      *bool
	Tray     *bool
	LogLevel *string
	LogFile  *string
}

// Apply merges the overrides into cfg
func (o Overrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.Backend != nil {
		cfg.Capture.Backend = *o.Backend
	}
	if o.Device != nil {
		cfg.Capture.Devices = []string{*o.Device}
	}
	if o.BufferMS != nil {
		cfg.Capture.BufferMS = *o.BufferMS
	}
	if o.Size != nil {
		cfg.Meter.Size = *o.Size
	}
	if o.DecayMS != nil {
		cfg.Meter.DecayMS = *o.DecayMS
	}
	if o.IconFile != nil {
		cfg.Output.IconFile = *o.IconFile
	}
	if o.TUI != nil {
		cfg.Output.TUI = *o.TUI
	}
	if o.Tray != nil {
		cfg.Output.Tray = *o.Tray
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Logging.File = *o.LogFile
	}
}

// Validate checks the merged result of defaults, file and overrides
func (c *Config) Validate() error {
	switch c.Capture.Backend {
	case "malgo", "portaudio", "tone":
	default:
		return fmt.Errorf("capture.backend must be malgo, portaudio or tone, got %q", c.Capture.Backend)
	}
	for i, dev := range c.Capture.Devices {
		if dev == "" {
			return fmt.Errorf("capture.devices[%d] is empty", i)
		}
	}
	if c.Capture.SampleRate <= 0 {
		return errors.New("capture.sample_rate must be > 0")
	}
	if c.Capture.BufferMS <= 0 {
		return errors.New("capture.buffer_ms must be > 0")
	}
	if c.Capture.ToneAmplitude < 0 || c.Capture.ToneAmplitude > 1 {
		return errors.New("capture.tone_amplitude must be between 0 and 1")
	}

	if c.Meter.DecayMS <= 0 {
		return errors.New("meter.decay_ms must be > 0")
	}
	if c.Meter.MinIntervalMS < 0 {
		return errors.New("meter.min_interval_ms must be >= 0")
	}
	if err := c.MeterConfig().Validate(); err != nil {
		return fmt.Errorf("meter: %w", err)
	}

	switch c.Logging.Level {
	case "info", "debug":
	default:
		return fmt.Errorf("logging.level must be info or debug, got %q", c.Logging.Level)
	}
	if c.Logging.File == "" {
		return errors.New("logging.file must not be empty")
	}

	return nil
}

// MeterConfig converts the file settings into pipeline tunables
func (c *Config) MeterConfig() meter.Config {
	return meter.Config{
		Size:        c.Meter.Size,
		Buckets:     c.Meter.Buckets,
		Decay:       time.Duration(c.Meter.DecayMS) * time.Millisecond,
		MinInterval: time.Duration(c.Meter.MinIntervalMS) * time.Millisecond,
	}
}

// Format returns the capture format
func (c *Config) Format() audio.Format {
	return audio.Format{
		SampleRate: c.Capture.SampleRate,
		Channels:   capture.DefaultFormat.Channels,
		BitDepth:   capture.DefaultFormat.BitDepth,
	}
}

// Debug reports whether per-frame logging is enabled
func (c *Config) Debug() bool {
	return c.Logging.Level == "debug"
}
