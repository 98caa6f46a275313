package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeWeights_Conservation(t *testing.T) {
	t.Parallel()

	// Pre-mask weights must sum to at most 1 for any density profile.
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		n := 8 + rng.Intn(120)
		z := make([]float32, n)
		sigma := make([]float32, n)
		for j := range z {
			z[j] = float32(j) * 0.05
			sigma[j] = rng.Float32() * 50
		}
		out := make([]float32, n)
		compositeWeights(z, sigma, 0.05, 1, out)

		var sum float32
		for _, w := range out {
			sum += w
		}
		assert.LessOrEqual(t, sum, float32(1.0001), "trial %d", trial)
	}
}

func TestCompositeWeights_Vacuum(t *testing.T) {
	t.Parallel()

	z := []float32{0, 1, 2, 3}
	sigma := []float32{0, 0, 0, 0}
	out := make([]float32, 4)
	compositeWeights(z, sigma, 1, 1, out)
	for j, w := range out {
		assert.Zero(t, w, "sample %d", j)
	}
}

func TestCompositeWeights_OpaqueFront(t *testing.T) {
	t.Parallel()

	// A very dense first sample absorbs nearly everything.
	z := []float32{0, 1, 2}
	sigma := []float32{1000, 5, 5}
	out := make([]float32, 3)
	compositeWeights(z, sigma, 1, 1, out)

	require.InDelta(t, 1.0, out[0], 1e-5)
	assert.Less(t, out[1], float32(1e-6))
	assert.Less(t, out[2], float32(1e-6))
}

func TestCompositeWeights_DensityScaleSharpens(t *testing.T) {
	t.Parallel()

	z := []float32{0, 0.5, 1}
	sigma := []float32{1, 1, 1}

	plain := make([]float32, 3)
	compositeWeights(z, sigma, 0.5, 1, plain)
	scaled := make([]float32, 3)
	compositeWeights(z, sigma, 0.5, 10, scaled)

	assert.Greater(t, scaled[0], plain[0], "scaling densities must increase front opacity")
}
