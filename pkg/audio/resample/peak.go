// ABOUTME: Peak-preserving decimator for level metering
// ABOUTME: Emits the largest-magnitude sample of each input span
package resample

// PeakDecimator reduces the sample rate by keeping, for every output
// sample, the input sample with the largest magnitude in its span. Short
// transients survive, which linear interpolation would skip. Like
// Resampler it carries state across calls.
type PeakDecimator struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // input frames consumed toward the current span
	peak       []int16
	peakMag    []int32
}

// NewPeak creates a decimator. outputRate must not exceed inputRate.
func NewPeak(inputRate, outputRate, channels int) *PeakDecimator {
	if channels <= 0 {
		channels = 1
	}
	return &PeakDecimator{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		peak:       make([]int16, channels),
		peakMag:    make([]int32, channels),
	}
}

// Resample decimates interleaved input into output and returns the number
// of samples written. Output must hold OutputSamplesNeeded(len(input)).
func (d *PeakDecimator) Resample(input []int16, output []int16) int {
	inputFrames := len(input) / d.channels
	outputFrames := len(output) / d.channels

	outIdx := 0
	for i := 0; i < inputFrames; i++ {
		for ch := 0; ch < d.channels; ch++ {
			s := input[i*d.channels+ch]
			mag := int32(s)
			if mag < 0 {
				mag = -mag
			}
			if mag > d.peakMag[ch] {
				d.peakMag[ch] = mag
				d.peak[ch] = s
			}
		}

		d.position++
		if d.position >= d.ratio && outIdx < outputFrames {
			copy(output[outIdx*d.channels:], d.peak)
			outIdx++
			d.position -= d.ratio
			for ch := range d.peak {
				d.peak[ch] = 0
				d.peakMag[ch] = 0
			}
		}
	}

	return outIdx * d.channels
}

// Reset starts a new stream
func (d *PeakDecimator) Reset() {
	d.position = 0
	for ch := range d.peak {
		d.peak[ch] = 0
		d.peakMag[ch] = 0
	}
}

// OutputSamplesNeeded returns an upper bound on the samples produced from inputSamples
func (d *PeakDecimator) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / d.channels
	return (int(float64(inputFrames)/d.ratio) + 1) * d.channels
}
