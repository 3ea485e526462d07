// ABOUTME: Meter package running the capture-to-icon pipeline
// ABOUTME: Gate, peak, history, render and encode in one synchronous step
// Package meter wires the level, history, render and icon packages into a
// single pipeline driven by capture buffers.
//
// A Pipeline is owned by one goroutine. Each Process call runs every stage
// synchronously and, when an icon was produced, hands it to the Sink.
//
// Example:
//
//	p, err := meter.New(meter.DefaultConfig(), sink, time.Now())
//	for buf := range buffers {
//	    if _, err := p.Process(buf, time.Now()); err != nil {
//	        log.Printf("Frame dropped: %v", err)
//	    }
//	}
package meter
