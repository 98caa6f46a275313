package render

import "math"

const (
	// Floor added to per-step transmittance so a fully opaque sample does
	// not zero out everything behind it numerically.
	transmittanceFloor = 1e-15

	// Samples whose pre-mask weight is at or below this contribute nothing
	// and are skipped by the color query.
	weightCutoff = 1e-4
)

// compositeWeights runs the front-to-back emission-absorption recurrence for
// one ray. z and sigma hold the ordered sample depths and densities; the
// final interval falls back to the per-ray sample spacing. out receives
// alpha_j * Tr_j.
func compositeWeights(z, sigma []float32, sampleDist, densityScale float32, out []float32) {
	tr := float32(1)
	last := len(z) - 1
	for j := range z {
		delta := sampleDist
		if j < last {
			delta = z[j+1] - z[j]
		}
		alpha := 1 - float32(math.Exp(float64(-delta*densityScale*sigma[j])))
		out[j] = alpha * tr
		tr *= 1 - alpha + transmittanceFloor
	}
}
