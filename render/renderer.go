package render

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/clipnerf/torch-ngp/field"
	"github.com/clipnerf/torch-ngp/log"
	"github.com/clipnerf/torch-ngp/types"
)

var logger = log.New("render")

// Renderer integrates a learned radiance field along camera rays and owns
// the multi-cascade occupancy grid that lets external marchers skip empty
// space. The occupancy state is the only data shared across calls; render
// calls hold the read lock for their full duration while the maintenance
// entrypoints (MarkUntrainedGrid, RefreshOccupancy, Reset, LoadState) take
// the write lock, so maintenance is an exclusive phase between render
// batches.
type Renderer struct {
	opts  Options
	field field.Field

	bound    float32
	cascade  int
	gridSize int

	aabbTrain [6]float32
	aabbInfer [6]float32
	training  bool

	mu          sync.RWMutex
	grid        []float32
	bitfield    []uint8
	meanDensity float32
	iterDensity int

	stepCounter [stepCounterSlots][2]int32
	meanCount   int
	localStep   int

	rng *rand.Rand
}

// New creates a renderer for the given field. The cascade count, occupancy
// grid and bitfield are fixed for the renderer's lifetime.
func New(f field.Field, opts Options) (*Renderer, error) {
	if f == nil {
		return nil, ErrFieldNotDefined
	}
	opts.setDefaults()

	bound := opts.Bound
	var aabb [6]float32
	if opts.AABB != nil {
		// Rectangular sampling box: positions are clipped into it, while
		// the cascade geometry uses the largest half-extent.
		aabb = *opts.AABB
		bound = 0
		for axis := 0; axis < 3; axis++ {
			if h := (aabb[axis+3] - aabb[axis]) / 2; h > bound {
				bound = h
			}
		}
	} else {
		aabb = [6]float32{-bound, -bound, -bound, bound, bound, bound}
	}
	if bound <= 0 {
		return nil, fmt.Errorf("render: bound must be positive, got %g", bound)
	}
	if opts.GridSize <= 0 || opts.GridSize&(opts.GridSize-1) != 0 {
		return nil, fmt.Errorf("render: grid size must be a power of two, got %d", opts.GridSize)
	}

	cascade := 1 + int(math.Ceil(math.Log2(float64(bound))))
	if cascade < 1 {
		cascade = 1
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h3 := opts.GridSize * opts.GridSize * opts.GridSize
	r := &Renderer{
		opts:      opts,
		field:     f,
		bound:     bound,
		cascade:   cascade,
		gridSize:  opts.GridSize,
		aabbTrain: aabb,
		aabbInfer: aabb,
		grid:      make([]float32, cascade*h3),
		bitfield:  make([]uint8, cascade*h3/8),
		rng:       rand.New(rand.NewSource(seed)),
	}
	logger.Debugf("renderer created: bound=%g cascade=%d grid=%d^3", bound, cascade, opts.GridSize)
	return r, nil
}

// Bound returns the scalar half-extent of the cubic cascade volume.
func (r *Renderer) Bound() float32 { return r.bound }

// Cascade returns the number of nested occupancy cascades.
func (r *Renderer) Cascade() int { return r.cascade }

// GridSize returns the per-cascade grid resolution.
func (r *Renderer) GridSize() int { return r.gridSize }

// SetTraining selects which AABB render calls sample against.
func (r *Renderer) SetTraining(training bool) { r.training = training }

// SetInferAABB replaces the inference-time sampling box. Both boxes share
// the cascade half-extent; only their values may diverge.
func (r *Renderer) SetInferAABB(aabb [6]float32) { r.aabbInfer = aabb }

func (r *Renderer) activeAABB() [6]float32 {
	if r.training {
		return r.aabbTrain
	}
	return r.aabbInfer
}

// Render integrates the field along the given rays. Origins, directions and
// direction norms must have equal lengths; directions need not be unit
// length, and norms convert parametric depth into metric depth.
func (r *Renderer) Render(origins, directions []types.Vec3, directionNorms []float32, params RenderParams) (*Result, error) {
	if len(origins) != len(directions) || len(origins) != len(directionNorms) {
		return nil, ErrBatchMismatch
	}
	params.setDefaults()
	if params.UpsampleSteps != 0 {
		return nil, ErrUpsampleNotSupported
	}
	if r.opts.Marching {
		// The adaptive marching path needs native kernels that this
		// module does not ship.
		return nil, ErrMarchingNotSupported
	}
	if r.opts.BGRadius > 0 {
		return nil, ErrBackgroundNotSupported
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !params.Staged {
		return r.run(origins, directions, directionNorms, params)
	}

	n := len(origins)
	auxDim := r.field.AuxDim()
	out := newResult(n, params.NumSteps, auxDim)
	for head := 0; head < n; head += params.MaxRayBatch {
		tail := head + params.MaxRayBatch
		if tail > n {
			tail = n
		}
		chunk, err := r.run(origins[head:tail], directions[head:tail], directionNorms[head:tail], params)
		if err != nil {
			return nil, err
		}
		copy(out.Image[head:tail], chunk.Image)
		copy(out.Depth[head:tail], chunk.Depth)
		copy(out.DepthVariance[head:tail], chunk.DepthVariance)
		copy(out.Centroid[head:tail], chunk.Centroid)
		copy(out.AuxFeature[head*auxDim:tail*auxDim], chunk.AuxFeature)
		copy(out.SampleRGB[head*params.NumSteps:tail*params.NumSteps], chunk.SampleRGB)
	}
	return out, nil
}

func newResult(n, numSteps, auxDim int) *Result {
	return &Result{
		Image:         make([]types.Vec3, n),
		Depth:         make([]float32, n),
		DepthVariance: make([]float32, n),
		Centroid:      make([]types.Vec3, n),
		AuxFeature:    make([]float32, n*auxDim),
		SampleRGB:     make([]types.Vec3, n*numSteps),
	}
}

// run executes the single-pass integration over one ray batch. Caller holds
// the read lock.
func (r *Renderer) run(origins, dirs []types.Vec3, norms []float32, params RenderParams) (*Result, error) {
	n := len(origins)
	steps := params.NumSteps
	aabb := r.activeAABB()
	boxMin := types.XYZ(aabb[0], aabb[1], aabb[2])
	boxMax := types.XYZ(aabb[3], aabb[4], aabb[5])

	zVals := make([]float32, n*steps)
	sampleDist := make([]float32, n)
	positions := make([]types.Vec3, n*steps)
	sampleDirs := make([]types.Vec3, n*steps)

	for i := 0; i < n; i++ {
		near, far := nearFarFromAABB(origins[i], dirs[i], aabb, r.opts.MinNear)
		sampleDist[i] = (far - near) / float32(steps)
		z := zVals[i*steps : (i+1)*steps]
		stratifiedDepths(z, near, far)
		if params.Perturb {
			perturbDepths(z, sampleDist[i], r.rng)
		}
		for j, depth := range z {
			positions[i*steps+j] = origins[i].Add(dirs[i].Mul(depth)).Clamp(boxMin, boxMax)
			sampleDirs[i*steps+j] = dirs[i]
		}
	}

	sigma, feat, err := r.field.Density(positions)
	if err != nil {
		return nil, err
	}

	weights := make([]float32, n*steps)
	for i := 0; i < n; i++ {
		compositeWeights(zVals[i*steps:(i+1)*steps], sigma[i*steps:(i+1)*steps], sampleDist[i], r.opts.DensityScale, weights[i*steps:(i+1)*steps])
	}

	// The visibility mask is fixed before the color query so that whatever
	// the field returns for masked-out samples cannot affect the output.
	mask := make([]bool, n*steps)
	for k, w := range weights {
		mask[k] = w > weightCutoff
	}

	rgb, err := r.field.Color(positions, sampleDirs, mask, feat, sigma)
	if err != nil {
		return nil, err
	}

	for k := range weights {
		if !mask[k] {
			weights[k] = 0
		}
	}

	aux, err := r.field.AuxFeature(feat, sigma)
	if err != nil {
		return nil, err
	}
	auxDim := r.field.AuxDim()

	bg := types.XYZ(1, 1, 1)
	if params.BGColor != nil {
		bg = *params.BGColor
	}

	out := newResult(n, steps, auxDim)
	copy(out.SampleRGB, rgb)

	for i := 0; i < n; i++ {
		w := weights[i*steps : (i+1)*steps]
		z := zVals[i*steps : (i+1)*steps]

		var weightSum, depth float32
		for j, wj := range w {
			weightSum += wj
			depth += wj * z[j]
		}
		depth /= norms[i]
		out.Depth[i] = depth

		// Depth variance is a plain statistic over the composited depths;
		// it carries no sensitivity back to the field.
		var depthVar float32
		var image, centroid types.Vec3
		for j, wj := range w {
			dz := z[j] / norms[i]
			depthVar += wj * (depth - dz) * (depth - dz)
			image = image.Add(rgb[i*steps+j].Mul(wj))
			centroid = centroid.Add(positions[i*steps+j].Mul(wj))
		}
		out.DepthVariance[i] = depthVar
		out.Centroid[i] = centroid
		out.Image[i] = image.Add(bg.Mul(1 - weightSum))

		for j, wj := range w {
			if wj == 0 {
				continue
			}
			for d := 0; d < auxDim; d++ {
				out.AuxFeature[i*auxDim+d] += wj * aux[(i*steps+j)*auxDim+d]
			}
		}
	}
	return out, nil
}
