// ABOUTME: Synchronous capture-to-icon pipeline
// ABOUTME: Hands fully encoded icons to a sink; failed frames are dropped
package meter

import (
	"fmt"
	"time"

	"github.com/micmon/micmon-go/pkg/history"
	"github.com/micmon/micmon-go/pkg/icon"
	"github.com/micmon/micmon-go/pkg/level"
	"github.com/micmon/micmon-go/pkg/render"
)

// Sink displays rendered icons. It may be called from a non-UI goroutine;
// marshaling onto a UI thread is the sink's job.
type Sink interface {
	ShowIcon(icon []byte) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(icon []byte) error

// ShowIcon calls f(icon)
func (f SinkFunc) ShowIcon(icon []byte) error { return f(icon) }

// Frame describes one rendered cycle
type Frame struct {
	Loudness float64
	Levels   []float64
	Icon     []byte
}

// Stats counts pipeline outcomes
type Stats struct {
	Accepted int64 // buffers that passed the rate gate
	Dropped  int64 // buffers rejected by the rate gate
	Failed   int64 // frames lost to encode or sink errors
}

// Pipeline runs level → history → render → icon → sink.
// It is not safe for concurrent use.
type Pipeline struct {
	cfg       Config
	extractor *level.Extractor
	history   *history.History
	encoder   *icon.Encoder
	sink      Sink
	last      Frame
	stats     Stats
}

// New creates a pipeline. now starts the first rate window.
func New(cfg Config, sink Sink, now time.Time) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid meter config: %w", err)
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	return &Pipeline{
		cfg:       cfg,
		extractor: level.NewExtractor(cfg.MinInterval, now),
		history:   history.New(cfg.Buckets, cfg.Decay),
		encoder:   icon.NewEncoder(),
		sink:      sink,
	}, nil
}

// Process feeds one capture buffer through the pipeline. It returns false
// when the buffer was dropped by the rate gate. On error the history has
// advanced but no icon reached the sink.
func (p *Pipeline) Process(buf []byte, now time.Time) (bool, error) {
	sample, ok := p.extractor.Extract(buf, now)
	if !ok {
		p.stats.Dropped++
		return false, nil
	}
	p.stats.Accepted++

	p.history.Advance(sample.Loudness, sample.Elapsed)
	levels := p.history.Values()

	data, err := p.Render(levels)
	if err != nil {
		p.stats.Failed++
		return true, err
	}

	if err := p.sink.ShowIcon(data); err != nil {
		p.stats.Failed++
		return true, fmt.Errorf("sink rejected icon: %w", err)
	}

	p.last = Frame{Loudness: sample.Loudness, Levels: levels, Icon: data}
	return true, nil
}

// Render draws and encodes levels without touching pipeline state
func (p *Pipeline) Render(levels []float64) ([]byte, error) {
	pb, err := render.Render(levels, p.cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to render history: %w", err)
	}
	data, err := p.encoder.Encode(pb)
	if err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return data, nil
}

// Reset silences the history and restarts the rate window at now
func (p *Pipeline) Reset(now time.Time) {
	p.history.Reset()
	p.extractor.Reset(now)
	p.last = Frame{}
}

// Snapshot returns the current bucket values, newest first
func (p *Pipeline) Snapshot() []float64 {
	return p.history.Values()
}

// Last returns the most recent frame delivered to the sink
func (p *Pipeline) Last() Frame {
	return p.last
}

// Stats returns the outcome counters
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}
