package field

import (
	"math"

	"github.com/clipnerf/torch-ngp/types"
)

// Blob is an analytic stand-in field: an isotropic Gaussian density bump
// with a position-derived albedo. It lets the integration pipeline be
// exercised end to end without a trained network (CLI smoke renders, tests).
type Blob struct {
	Center types.Vec3
	Radius float32 // gaussian falloff radius
	Peak   float32 // density at the center
	Albedo types.Vec3
}

// NewBlob creates a unit blob at the origin.
func NewBlob() *Blob {
	return &Blob{
		Radius: 0.5,
		Peak:   20,
		Albedo: types.XYZ(0.8, 0.6, 0.4),
	}
}

func (b *Blob) FeatureDim() int { return 4 }

func (b *Blob) AuxDim() int { return 2 }

func (b *Blob) Density(positions []types.Vec3) ([]float32, []float32, error) {
	m := len(positions)
	sigma := make([]float32, m)
	feature := make([]float32, m*4)
	inv2r2 := 1.0 / float64(2*b.Radius*b.Radius)
	for i, p := range positions {
		d := p.Sub(b.Center)
		s := b.Peak * float32(math.Exp(-float64(d.Dot(d))*inv2r2))
		sigma[i] = s
		feature[i*4+0] = s / b.Peak
		feature[i*4+1] = p[0]
		feature[i*4+2] = p[1]
		feature[i*4+3] = p[2]
	}
	return sigma, feature, nil
}

func (b *Blob) Color(positions, directions []types.Vec3, mask []bool, feature []float32, sigma []float32) ([]types.Vec3, error) {
	rgb := make([]types.Vec3, len(positions))
	for i := range positions {
		if mask != nil && !mask[i] {
			continue
		}
		shade := 0.5 + 0.5*feature[i*4]
		dz := directions[i].Normalize()[2]
		if dz < 0 {
			dz = -dz
		}
		rgb[i] = b.Albedo.Mul(shade).Add(types.XYZ(0, 0, 0.1).Mul(dz))
	}
	return rgb, nil
}

func (b *Blob) AuxFeature(feature []float32, sigma []float32) ([]float32, error) {
	m := len(sigma)
	aux := make([]float32, m*2)
	for i := 0; i < m; i++ {
		aux[i*2+0] = feature[i*4]
		aux[i*2+1] = sigma[i]
	}
	return aux, nil
}
