// ABOUTME: Simple linear resampler for converting capture sample rates
// ABOUTME: Interpolates 16-bit PCM and carries the last frame across chunks
package resample

// Resampler performs linear interpolation to convert between sample rates.
// It is stateful: consecutive calls to Resample continue the same stream.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // relative to the first frame of the next chunk; -1 is lastFrame
	lastFrame  []int16
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels <= 0 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int16, channels),
	}
}

// InputRate returns the source rate
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the target rate
func (r *Resampler) OutputRate() int { return r.outputRate }

func (r *Resampler) frame(input []int16, idx, ch int) float64 {
	if idx < 0 {
		return float64(r.lastFrame[ch])
	}
	return float64(input[idx*r.channels+ch])
}

// Resample converts interleaved input at inputRate into output at
// outputRate. It returns the number of samples written. Output must hold
// at least OutputSamplesNeeded(len(input)) samples to consume all input.
func (r *Resampler) Resample(input []int16, output []int16) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if r.position < 0 {
			idx = -1
		}
		if idx+1 >= inputFrames {
			break
		}

		frac := r.position - float64(idx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := r.frame(input, idx, ch)
			s2 := r.frame(input, idx+1, ch)
			output[outIdx*r.channels+ch] = int16(s1*(1.0-frac) + s2*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// Continue from the last frame of this chunk next time
	r.position -= float64(inputFrames)
	if r.position < -1 {
		r.position = -1
	}
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])

	return outIdx * r.channels
}

// Reset starts a new stream
func (r *Resampler) Reset() {
	r.position = 0.0
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// OutputSamplesNeeded returns an upper bound on the samples produced from inputSamples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames+1)/r.ratio) + 1
	return outputFrames * r.channels
}
