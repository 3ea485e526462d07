// ABOUTME: History package holding the decaying bar-graph data model
// ABOUTME: Quantizes loudness and rolls buckets every decay interval
// Package history keeps a fixed number of loudness buckets, newest first.
//
// Each bucket holds the peak quantized loudness seen during one decay
// interval. When the accumulated elapsed time reaches the interval, every
// bucket moves one slot toward the oldest end and a silent bucket opens at
// the front.
package history
