// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts captured audio to the meter sample rate
// Package resample provides sample rate conversion for 16-bit PCM.
//
// Capture devices often refuse low rates, so drivers open them at their
// native rate and downsample. Linear interpolation is enough for a level
// meter.
//
// Example:
//
//	r := resample.New(48000, 8000, 1)
//	out := make([]int16, r.OutputSamplesNeeded(len(in)))
//	n := r.Resample(in, out)
package resample
