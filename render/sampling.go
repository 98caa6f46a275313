package render

import (
	"math/rand"

	"github.com/clipnerf/torch-ngp/types"
)

const slabEpsilon = 1e-15

// nearFarFromAABB intersects a ray with the sampling box using the slab
// method and clamps the entry distance to minNear. Rays that miss the box
// get a zero-measure interval at missDistance so they composite to pure
// background.
func nearFarFromAABB(o, d types.Vec3, aabb [6]float32, minNear float32) (near, far float32) {
	tmin := float32(-missDistance)
	tmax := float32(missDistance)

	for axis := 0; axis < 3; axis++ {
		if d[axis] > -slabEpsilon && d[axis] < slabEpsilon {
			if o[axis] < aabb[axis] || o[axis] > aabb[axis+3] {
				return missDistance, missDistance
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (aabb[axis] - o[axis]) * inv
		t2 := (aabb[axis+3] - o[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmin > tmax || tmax < 0 {
		return missDistance, missDistance
	}
	if tmin < minNear {
		tmin = minNear
	}
	if tmax < tmin {
		tmax = tmin
	}
	return tmin, tmax
}

// stratifiedDepths fills z with len(z) depths evenly spaced over
// [near, far], endpoints included.
func stratifiedDepths(z []float32, near, far float32) {
	if len(z) == 1 {
		z[0] = near
		return
	}
	span := far - near
	denom := float32(len(z) - 1)
	for j := range z {
		z[j] = near + span*float32(j)/denom
	}
}

// perturbDepths adds uniform jitter bounded by half the sample spacing.
// The result is not re-sorted, so under large jitter neighbouring depths may
// become locally non-monotonic.
func perturbDepths(z []float32, sampleDist float32, rng *rand.Rand) {
	for j := range z {
		z[j] += (rng.Float32() - 0.5) * sampleDist
	}
}
