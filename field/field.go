package field

import (
	"errors"

	"github.com/clipnerf/torch-ngp/types"
)

// ErrNotImplemented is returned by field capabilities that a concrete
// implementation does not provide.
var ErrNotImplemented = errors.New("field: operation not implemented")

// Field is the contract a learned radiance field must satisfy to be queried
// by the volumetric integrator. All slice arguments are batches of M samples;
// flat float32 buffers use row-major [M, dim] layout.
//
// Color receives the compositor's visibility mask as an optimization hint:
// entries whose mask is false will have their weight forced to zero by the
// caller, so the field may skip or cheapen their computation. The returned
// color for masked-out entries is never relied upon.
type Field interface {
	// FeatureDim reports the width of the intermediate feature vector
	// produced by Density and consumed by Color and AuxFeature.
	FeatureDim() int

	// AuxDim reports the width of the auxiliary embedding produced by
	// AuxFeature.
	AuxDim() int

	// Density queries volume density at the given positions. It returns
	// sigma [M] and feature [M, FeatureDim].
	Density(positions []types.Vec3) (sigma []float32, feature []float32, err error)

	// Color queries view-dependent radiance. feature and sigma are the
	// outputs of a prior Density call over the same positions.
	Color(positions, directions []types.Vec3, mask []bool, feature []float32, sigma []float32) ([]types.Vec3, error)

	// AuxFeature maps per-sample features to the auxiliary embedding
	// [M, AuxDim] accumulated alongside the rendered image.
	AuxFeature(feature []float32, sigma []float32) ([]float32, error)
}

// BackgroundField is an optional capability for fields that can shade rays
// escaping the volume from ray/sphere intersection parameters. The
// single-pass integrator does not support it and fails fast when a
// background model is configured.
type BackgroundField interface {
	Background(polar []types.Vec2, directions []types.Vec3) ([]types.Vec3, error)
}

// Unimplemented returns ErrNotImplemented from every capability. Concrete
// fields may embed it so partial implementations fail loudly instead of
// rendering garbage.
type Unimplemented struct{}

func (Unimplemented) FeatureDim() int { return 0 }

func (Unimplemented) AuxDim() int { return 0 }

func (Unimplemented) Density([]types.Vec3) ([]float32, []float32, error) {
	return nil, nil, ErrNotImplemented
}

func (Unimplemented) Color([]types.Vec3, []types.Vec3, []bool, []float32, []float32) ([]types.Vec3, error) {
	return nil, ErrNotImplemented
}

func (Unimplemented) AuxFeature([]float32, []float32) ([]float32, error) {
	return nil, ErrNotImplemented
}
