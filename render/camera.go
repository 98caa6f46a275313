package render

import (
	"github.com/clipnerf/torch-ngp/types"
)

// Intrinsics are shared pin-hole camera parameters.
type Intrinsics struct {
	Fx, Fy float32
	Cx, Cy float32
}

// RaysFromPose generates one ray per pixel for a rigid camera-to-world pose.
// Directions are not normalized; the returned norms convert parametric depth
// along them into metric depth.
func RaysFromPose(pose types.Mat4, intr Intrinsics, width, height int) (origins, directions []types.Vec3, norms []float32, err error) {
	if err := validatePose(pose); err != nil {
		return nil, nil, nil, err
	}
	if width <= 0 || height <= 0 || intr.Fx == 0 || intr.Fy == 0 {
		return nil, nil, nil, ErrBatchMismatch
	}

	n := width * height
	origins = make([]types.Vec3, n)
	directions = make([]types.Vec3, n)
	norms = make([]float32, n)

	origin := pose.Translation()
	k := 0
	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			// Pixel centers.
			camDir := types.XYZ(
				(float32(u)+0.5-intr.Cx)/intr.Fx,
				(float32(v)+0.5-intr.Cy)/intr.Fy,
				1,
			)
			dir := pose.RotateVec(camDir)
			origins[k] = origin
			directions[k] = dir
			norms[k] = dir.Len()
			k++
		}
	}
	return origins, directions, norms, nil
}

// validatePose rejects transforms whose bottom row is not (0, 0, 0, 1).
func validatePose(pose types.Mat4) error {
	for col := 0; col < 3; col++ {
		if pose.At(3, col) != 0 {
			return ErrInvalidPose
		}
	}
	if pose.At(3, 3) != 1 {
		return ErrInvalidPose
	}
	return nil
}

// RenderFromPose derives per-pixel rays from a pose plus intrinsics and
// delegates to Render. It returns the rays alongside the result so callers
// can reuse them.
func (r *Renderer) RenderFromPose(pose types.Mat4, intr Intrinsics, width, height int, params RenderParams) (*Result, []types.Vec3, []types.Vec3, error) {
	origins, directions, norms, err := RaysFromPose(pose, intr, width, height)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := r.Render(origins, directions, norms, params)
	if err != nil {
		return nil, nil, nil, err
	}
	return res, origins, directions, nil
}
