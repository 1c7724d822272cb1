package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkWithRMS builds a chunk of constant samples so its RMS is exactly v.
func chunkWithRMS(v float32) Chunk {
	samples := make([]float32, 64)
	for i := range samples {
		samples[i] = v
	}
	return Chunk{Samples: samples, SampleRate: 44100, Channels: 1}
}

func TestNewDetectorRejectsNonPositiveThreshold(t *testing.T) {
	_, err := NewDetector(0)
	require.ErrorIs(t, err, ErrBadThreshold)

	_, err = NewDetector(-3)
	require.ErrorIs(t, err, ErrBadThreshold)
}

func TestFirstChunkSeedsBaselineWithoutSpike(t *testing.T) {
	d, err := NewDetector(1)
	require.NoError(t, err)

	assert.False(t, d.Observe(chunkWithRMS(100)), "first chunk must never spike")
	assert.InDelta(t, 100, d.Baseline(), 1e-9)
}

func TestSpikeThresholdBoundary(t *testing.T) {
	d, err := NewDetector(8)
	require.NoError(t, err)

	// seed baseline at 10
	require.False(t, d.Observe(chunkWithRMS(10)))
	require.InDelta(t, 10, d.Baseline(), 1e-6)

	assert.True(t, d.Observe(chunkWithRMS(19)), "delta 9 >= threshold 8 must spike")
	assert.False(t, d.Observe(chunkWithRMS(17)), "delta 7 < threshold 8 must not spike")
}

func TestSpikeChunkExcludedFromBaseline(t *testing.T) {
	d, err := NewDetector(8)
	require.NoError(t, err)

	require.False(t, d.Observe(chunkWithRMS(10)))
	require.True(t, d.Observe(chunkWithRMS(19)))

	assert.InDelta(t, 10, d.Baseline(), 1e-6, "spike energy must not raise the baseline")
}

func TestQuietChunksUpdateBaseline(t *testing.T) {
	d, err := NewDetector(8)
	require.NoError(t, err)

	require.False(t, d.Observe(chunkWithRMS(10)))
	require.False(t, d.Observe(chunkWithRMS(14)))

	assert.InDelta(t, baselineAlpha*14+(1-baselineAlpha)*10, d.Baseline(), 1e-6)
}

func TestSilenceNeverSpikes(t *testing.T) {
	d, err := NewDetector(0.5)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.False(t, d.Observe(chunkWithRMS(0)))
	}
	assert.Zero(t, d.Baseline())
}

func TestSubThresholdSequenceNeverSpikes(t *testing.T) {
	d, err := NewDetector(5)
	require.NoError(t, err)

	levels := []float32{10, 12, 9, 13, 11, 14, 10, 12.5}
	for _, v := range levels {
		assert.Falsef(t, d.Observe(chunkWithRMS(v)), "level %v stayed within baseline+threshold", v)
		assert.GreaterOrEqual(t, d.Baseline(), 0.0)
	}
}

func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.Zero(t, RMS([]float32{}))
	assert.InDelta(t, 1, RMS([]float32{1, -1, 1, -1}), 1e-9)
	assert.InDelta(t, 3.5355339, RMS([]float32{3, -4, 3, -4}), 1e-6)
}
