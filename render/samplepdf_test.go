package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePDF_ConcentratedMass(t *testing.T) {
	t.Parallel()

	// All probability mass in bin 2 of [0,1,2,3,4,5].
	bins := [][]float32{{0, 1, 2, 3, 4, 5}}
	weights := [][]float32{{0, 0, 1, 0, 0}}

	out := SamplePDF(bins, weights, 16, true, nil)
	require.Len(t, out, 1)
	require.Len(t, out[0], 16)
	for _, s := range out[0] {
		assert.GreaterOrEqual(t, s, float32(2))
		assert.LessOrEqual(t, s, float32(3))
	}
}

func TestSamplePDF_UniformMedian(t *testing.T) {
	t.Parallel()

	bins := [][]float32{{0, 1, 2, 3, 4}}
	weights := [][]float32{{1, 1, 1, 1}}

	out := SamplePDF(bins, weights, 1, true, nil)
	require.Len(t, out[0], 1)
	assert.InDelta(t, 2.0, out[0][0], 1e-5, "single deterministic draw should land on the median boundary")
}

func TestSamplePDF_DeterministicQuantilesOrdered(t *testing.T) {
	t.Parallel()

	bins := [][]float32{{0, 0.5, 1.5, 2, 4}}
	weights := [][]float32{{0.1, 2, 0.7, 0.4}}

	out := SamplePDF(bins, weights, 32, true, nil)
	for i := 1; i < len(out[0]); i++ {
		assert.GreaterOrEqual(t, out[0][i], out[0][i-1], "deterministic samples must be non-decreasing")
	}
	assert.GreaterOrEqual(t, out[0][0], float32(0))
	assert.LessOrEqual(t, out[0][31], float32(4))
}

func TestSamplePDF_ZeroWeightsDegenerate(t *testing.T) {
	t.Parallel()

	// The epsilon floor turns an all-zero distribution into a uniform one
	// instead of dividing by zero.
	bins := [][]float32{{0, 1, 2}}
	weights := [][]float32{{0, 0}}

	out := SamplePDF(bins, weights, 4, true, nil)
	for _, s := range out[0] {
		assert.False(t, s != s, "sample must not be NaN")
		assert.GreaterOrEqual(t, s, float32(0))
		assert.LessOrEqual(t, s, float32(2))
	}
}

func TestSamplePDF_StochasticWithinSupport(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	bins := [][]float32{{1, 2, 3}, {0, 4, 8}}
	weights := [][]float32{{1, 3}, {5, 1}}

	out := SamplePDF(bins, weights, 64, false, rng)
	require.Len(t, out, 2)
	for b := range out {
		lo := bins[b][0]
		hi := bins[b][len(bins[b])-1]
		for _, s := range out[b] {
			assert.GreaterOrEqual(t, s, lo)
			assert.LessOrEqual(t, s, hi)
		}
	}
}
