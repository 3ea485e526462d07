// ABOUTME: Sink package with headless icon destinations
// ABOUTME: File output and fan-out composition
// Package sink provides meter.Sink implementations that need no display:
// an icon file kept up to date for external viewers, and a fan-out that
// feeds several sinks from one pipeline.
package sink
