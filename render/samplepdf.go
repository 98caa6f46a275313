package render

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	pdfWeightFloor = 1e-5
	cdfSpanFloor   = 1e-5
)

// SamplePDF draws n depths per ray proportional to a previously computed
// weight distribution by inverting its CDF. bins[b] holds T ordered depth
// boundaries and weights[b] the T-1 per-interval masses. In deterministic
// mode the quantiles are evenly spaced and offset by half a bin width;
// otherwise they are independent uniform draws from rng.
//
// It is the coarse-to-fine resampling primitive of a two-pass renderer. The
// single-pass Render path never calls it (a non-zero UpsampleSteps request
// is rejected up front), but it is kept as a standalone building block.
func SamplePDF(bins, weights [][]float32, n int, det bool, rng *rand.Rand) [][]float32 {
	out := make([][]float32, len(bins))

	for b := range bins {
		boundaries := bins[b]
		t := len(boundaries)

		// Floor the weights so an all-zero distribution still normalizes.
		pdf := make([]float64, t-1)
		var total float64
		for j, w := range weights[b] {
			pdf[j] = float64(w) + pdfWeightFloor
			total += pdf[j]
		}
		floats.Scale(1/total, pdf)

		cdf := make([]float64, t)
		floats.CumSum(cdf[1:], pdf)

		samples := make([]float32, n)
		for k := 0; k < n; k++ {
			var u float64
			if det {
				u = (0.5 + float64(k)) / float64(n)
			} else {
				u = rng.Float64()
			}

			// Right-inclusive search: first CDF entry strictly above u.
			idx := sort.Search(t, func(i int) bool { return cdf[i] > u })
			below := idx - 1
			if below < 0 {
				below = 0
			}
			above := idx
			if above > t-1 {
				above = t - 1
			}

			span := cdf[above] - cdf[below]
			var frac float64
			if span >= cdfSpanFloor {
				frac = (u - cdf[below]) / span
			}
			lo := float64(boundaries[below])
			hi := float64(boundaries[above])
			samples[k] = float32(lo + frac*(hi-lo))
		}
		out[b] = samples
	}
	return out
}
