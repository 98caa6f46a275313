package render

import "github.com/clipnerf/torch-ngp/types"

const (
	// Grid resolution per cascade.
	defaultGridSize = 128

	// Full-sweep refresh calls before switching to partial sweeps.
	warmupIters = 16

	// Slots in the marching step counter ring.
	stepCounterSlots = 16

	// Parametric depth assigned to rays that miss the volume.
	missDistance = 100.0

	defaultMinNear       = 0.2
	defaultDensityScale  = 1.0
	defaultDensityThresh = 0.01
	defaultNumSteps      = 256
	defaultMaxRayBatch   = 4096
	defaultQueryBatch    = 1 << 16
)

// Options configure a Renderer at construction time.
type Options struct {
	// Half-extent of the cubic volume. The cascade count is derived from it.
	Bound float32

	// Optional rectangular sampling AABB (xmin, ymin, zmin, xmax, ymax,
	// zmax). When set, Bound is replaced by the largest half-extent; the
	// rectangular box is still what positions are clipped into.
	AABB *[6]float32

	// Scale applied to queried densities. Values above 1 sharpen the
	// occupancy grid.
	DensityScale float32

	// Minimum near intersection distance.
	MinNear float32

	// Density threshold for deriving the occupancy bitfield.
	DensityThresh float32

	// Radius of the background sphere; <= 0 disables the background model.
	// The single-pass path rejects a positive radius.
	BGRadius float32

	// Grid resolution per cascade. Must be a power of two; defaults to 128.
	GridSize int

	// Marching selects the native adaptive marching path. No kernel
	// implementation ships with this module, so rendering with it set
	// fails fast.
	Marching bool

	// Seed for stochastic jitter. Zero seeds from the clock.
	Seed int64
}

func (o *Options) setDefaults() {
	if o.DensityScale == 0 {
		o.DensityScale = defaultDensityScale
	}
	if o.MinNear == 0 {
		o.MinNear = defaultMinNear
	}
	if o.DensityThresh == 0 {
		o.DensityThresh = defaultDensityThresh
	}
	if o.GridSize == 0 {
		o.GridSize = defaultGridSize
	}
}

// RenderParams are per-call knobs for Render.
type RenderParams struct {
	// Staged partitions the ray batch into MaxRayBatch chunks, bounding
	// peak working-set size. Ignored on the (unavailable) marching path.
	Staged bool

	// Rays per chunk when staging. Defaults to 4096.
	MaxRayBatch int

	// Background color blended under the accumulated radiance. Nil means
	// white.
	BGColor *types.Vec3

	// Perturb jitters sample depths within their stratum. Jittered depths
	// are intentionally not re-sorted, so they may be locally
	// non-monotonic under large jitter.
	Perturb bool

	// Samples per ray. Defaults to 256.
	NumSteps int

	// Importance-resampling passes. Must be zero: the single-pass path
	// does not invoke the resampler.
	UpsampleSteps int
}

func (p *RenderParams) setDefaults() {
	if p.MaxRayBatch == 0 {
		p.MaxRayBatch = defaultMaxRayBatch
	}
	if p.NumSteps == 0 {
		p.NumSteps = defaultNumSteps
	}
}

// Result holds the per-ray outputs of a render call. SampleRGB is the raw
// per-sample radiance in [N*NumSteps] row-major order.
type Result struct {
	Image         []types.Vec3
	Depth         []float32
	DepthVariance []float32
	Centroid      []types.Vec3
	AuxFeature    []float32 // [N, field.AuxDim]
	SampleRGB     []types.Vec3
}
