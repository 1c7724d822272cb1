package audio

import (
	"errors"
	"math"
)

// ErrBadThreshold rejects thresholds that would fire on silence.
var ErrBadThreshold = errors.New("spike threshold must be positive")

// baselineAlpha is the EMA weight of the newest chunk when updating the
// loudness baseline. Roughly a one second memory at 44.1kHz / 1024 frames.
const baselineAlpha = 0.25

// Detector emits a spike whenever a chunk's loudness exceeds the rolling
// baseline by at least the configured absolute threshold.
//
// Spiking chunks are excluded from the baseline update; feeding spike energy
// back in would raise the baseline and suppress detection of the next spike.
type Detector struct {
	threshold float64
	baseline  float64
	primed    bool
}

func NewDetector(threshold float64) (*Detector, error) {
	if threshold <= 0 {
		return nil, ErrBadThreshold
	}
	return &Detector{threshold: threshold}, nil
}

// Observe consumes one chunk and reports whether it is a spike. The first
// chunk seeds the baseline and never spikes.
func (d *Detector) Observe(c Chunk) bool {
	m := RMS(c.Samples)
	if !d.primed {
		d.baseline = m
		d.primed = true
		return false
	}
	if m-d.baseline >= d.threshold {
		return true
	}
	d.baseline = baselineAlpha*m + (1-baselineAlpha)*d.baseline
	return false
}

// Baseline returns the current rolling loudness estimate.
func (d *Detector) Baseline() float64 {
	return d.baseline
}

// RMS computes root-mean-square loudness of a sample buffer. Empty buffers
// are silent.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		sumSquares += float64(s) * float64(s)
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}
