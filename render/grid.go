package render

import (
	"fmt"

	"github.com/clipnerf/torch-ngp/types"
)

// excludedCell marks grid cells no training camera ever sees. The sentinel
// is load-bearing: visibility marking writes it once up front, and the EMA
// refresh only updates a cell when both its old and new values are
// non-negative, so an excluded cell stays excluded for the renderer's
// lifetime.
const excludedCell = -1

const (
	defaultDecay       = 0.95
	defaultCameraBatch = 64
)

// cascadeExtent returns the half-extent covered by a cascade and the half
// width of one of its cells. Cascade c covers a cube of half-extent
// min(2^c, bound).
func (r *Renderer) cascadeExtent(cas int) (extent, halfCell float32) {
	extent = float32(uint32(1) << uint(cas))
	if extent > r.bound {
		extent = r.bound
	}
	return extent, extent / float32(r.gridSize)
}

// cellUnitCoord maps a grid coordinate to [-1, 1].
func (r *Renderer) cellUnitCoord(c uint32) float32 {
	return 2*float32(c)/float32(r.gridSize-1) - 1
}

// CellDensity reads one occupancy grid cell. Valid between maintenance
// calls only, like any other grid read.
func (r *Renderer) CellDensity(cas int, x, y, z uint32) float32 {
	h3 := r.gridSize * r.gridSize * r.gridSize
	return r.grid[cas*h3+int(mortonEncode(x, y, z))]
}

// Bitfield exposes the packed occupancy bits consumed by external marching
// kernels. The slice is owned by the renderer and is only rewritten by
// maintenance calls.
func (r *Renderer) Bitfield() []byte { return r.bitfield }

// MeanDensity returns the grid mean with excluded cells treated as zero.
func (r *Renderer) MeanDensity() float32 { return r.meanDensity }

// MarkUntrainedGrid excludes every grid cell that falls outside all training
// camera frusta. poses are rigid camera-to-world transforms sharing one set
// of intrinsics; cameras are processed in batches of at most cameraBatch to
// bound the working set. Meant to run once, before the first refresh.
func (r *Renderer) MarkUntrainedGrid(poses []types.Mat4, intr Intrinsics, cameraBatch int) error {
	if len(poses) == 0 {
		return fmt.Errorf("render: mark grid requires at least one camera pose")
	}
	if intr.Fx == 0 || intr.Fy == 0 {
		return fmt.Errorf("render: mark grid requires non-zero focal lengths")
	}
	if cameraBatch <= 0 {
		cameraBatch = defaultCameraBatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := uint32(r.gridSize)
	h3 := r.gridSize * r.gridSize * r.gridSize
	seen := make([]bool, len(r.grid))

	tanX := intr.Cx / intr.Fx
	tanY := intr.Cy / intr.Fy

	for x := uint32(0); x < h; x++ {
		for y := uint32(0); y < h; y++ {
			for z := uint32(0); z < h; z++ {
				idx := int(mortonEncode(x, y, z))
				unit := types.XYZ(r.cellUnitCoord(x), r.cellUnitCoord(y), r.cellUnitCoord(z))

				for cas := 0; cas < r.cascade; cas++ {
					extent, halfCell := r.cascadeExtent(cas)
					p := unit.Mul(extent - halfCell)
					// Inflate the frustum by twice the cell half-width so
					// boundary cells are not excluded.
					margin := 2 * halfCell

					cell := cas*h3 + idx
					for head := 0; head < len(poses) && !seen[cell]; head += cameraBatch {
						tail := head + cameraBatch
						if tail > len(poses) {
							tail = len(poses)
						}
						for _, pose := range poses[head:tail] {
							// World to camera for a rigid c2w pose.
							q := pose.RotateVecT(p.Sub(pose.Translation()))
							if q[2] <= 0 {
								continue
							}
							ax, ay := q[0], q[1]
							if ax < 0 {
								ax = -ax
							}
							if ay < 0 {
								ay = -ay
							}
							if ax < tanX*q[2]+margin && ay < tanY*q[2]+margin {
								seen[cell] = true
								break
							}
						}
					}
				}
			}
		}
	}

	excluded := 0
	for i, ok := range seen {
		if !ok {
			r.grid[i] = excludedCell
			excluded++
		}
	}
	logger.Infof("marked %d/%d cells as untrained", excluded, len(r.grid))
	return nil
}

// RefreshOccupancy re-estimates the occupancy grid from the field and
// re-derives the bitfield and the marching step budget. Call once per outer
// training iteration, never concurrently with a render.
//
// The first warmupIters calls sweep every cell; afterwards each cascade
// refreshes gridSize^3/4 uniformly random cells plus the same number drawn
// with replacement from currently occupied cells. The switch is one way.
func (r *Renderer) RefreshOccupancy(decay float32, queryBatch int) error {
	if decay <= 0 {
		decay = defaultDecay
	}
	if queryBatch <= 0 {
		queryBatch = defaultQueryBatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := make([]float32, len(r.grid))
	for i := range tmp {
		tmp[i] = excludedCell
	}

	var err error
	if r.iterDensity < warmupIters {
		err = r.refreshFull(tmp, queryBatch)
	} else {
		err = r.refreshPartial(tmp, queryBatch)
	}
	if err != nil {
		return err
	}

	emaCombine(r.grid, tmp, decay)

	var sum float64
	for _, v := range r.grid {
		if v > 0 {
			sum += float64(v)
		}
	}
	r.meanDensity = float32(sum / float64(len(r.grid)))
	r.iterDensity++

	threshold := r.meanDensity
	if r.opts.DensityThresh < threshold {
		threshold = r.opts.DensityThresh
	}
	r.packBits(threshold)

	r.updateStepBudget()

	logger.Debugf("occupancy refresh #%d: mean=%.5f threshold=%.5f budget=%d",
		r.iterDensity, r.meanDensity, threshold, r.meanCount)
	return nil
}

// refreshFull queries the field at every cell of every cascade.
func (r *Renderer) refreshFull(tmp []float32, queryBatch int) error {
	h := uint32(r.gridSize)
	h3 := r.gridSize * r.gridSize * r.gridSize

	positions := make([]types.Vec3, 0, queryBatch)
	cells := make([]int, 0, queryBatch)

	flush := func() error {
		if len(positions) == 0 {
			return nil
		}
		sigma, _, err := r.field.Density(positions)
		if err != nil {
			return err
		}
		for k, cell := range cells {
			tmp[cell] = sigma[k] * r.opts.DensityScale
		}
		positions = positions[:0]
		cells = cells[:0]
		return nil
	}

	for cas := 0; cas < r.cascade; cas++ {
		extent, halfCell := r.cascadeExtent(cas)
		for x := uint32(0); x < h; x++ {
			for y := uint32(0); y < h; y++ {
				for z := uint32(0); z < h; z++ {
					idx := int(mortonEncode(x, y, z))
					unit := types.XYZ(r.cellUnitCoord(x), r.cellUnitCoord(y), r.cellUnitCoord(z))
					positions = append(positions, r.jitterCell(unit.Mul(extent-halfCell), halfCell))
					cells = append(cells, cas*h3+idx)
					if len(positions) == queryBatch {
						if err := flush(); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return flush()
}

// refreshPartial samples a quarter of each cascade uniformly plus a quarter
// resampled from occupied cells, biasing refresh toward regions still likely
// relevant while keeping exploration.
func (r *Renderer) refreshPartial(tmp []float32, queryBatch int) error {
	h := r.gridSize
	h3 := h * h * h
	nq := h3 / 4

	for cas := 0; cas < r.cascade; cas++ {
		extent, halfCell := r.cascadeExtent(cas)

		cells := make([]int, 0, 2*nq)
		coords := make([][3]uint32, 0, 2*nq)
		for i := 0; i < nq; i++ {
			x, y, z := uint32(r.rng.Intn(h)), uint32(r.rng.Intn(h)), uint32(r.rng.Intn(h))
			cells = append(cells, cas*h3+int(mortonEncode(x, y, z)))
			coords = append(coords, [3]uint32{x, y, z})
		}

		occupied := make([]int, 0, nq)
		for i := 0; i < h3; i++ {
			if r.grid[cas*h3+i] > 0 {
				occupied = append(occupied, i)
			}
		}
		if len(occupied) > 0 {
			for i := 0; i < nq; i++ {
				idx := occupied[r.rng.Intn(len(occupied))]
				x, y, z := mortonDecode(uint32(idx))
				cells = append(cells, cas*h3+idx)
				coords = append(coords, [3]uint32{x, y, z})
			}
		}

		for head := 0; head < len(cells); head += queryBatch {
			tail := head + queryBatch
			if tail > len(cells) {
				tail = len(cells)
			}
			positions := make([]types.Vec3, 0, tail-head)
			for _, c := range coords[head:tail] {
				unit := types.XYZ(r.cellUnitCoord(c[0]), r.cellUnitCoord(c[1]), r.cellUnitCoord(c[2]))
				positions = append(positions, r.jitterCell(unit.Mul(extent-halfCell), halfCell))
			}
			sigma, _, err := r.field.Density(positions)
			if err != nil {
				return err
			}
			for k, cell := range cells[head:tail] {
				tmp[cell] = sigma[k] * r.opts.DensityScale
			}
		}
	}
	return nil
}

// emaCombine folds freshly sampled densities into the grid. A cell only
// updates when both its old and new values are valid (non-negative), taking
// max(old*decay, sampled); cells invalid on either side are left untouched,
// which is what keeps exclusion permanent.
func emaCombine(grid, sampled []float32, decay float32) {
	for i, old := range grid {
		s := sampled[i]
		if old < 0 || s < 0 {
			continue
		}
		if decayed := old * decay; s > decayed {
			grid[i] = s
		} else {
			grid[i] = decayed
		}
	}
}

// jitterCell offsets a cell center by uniform noise within the cell.
func (r *Renderer) jitterCell(p types.Vec3, halfCell float32) types.Vec3 {
	return types.XYZ(
		p[0]+(2*r.rng.Float32()-1)*halfCell,
		p[1]+(2*r.rng.Float32()-1)*halfCell,
		p[2]+(2*r.rng.Float32()-1)*halfCell,
	)
}

// packBits re-derives the occupancy bitfield: one bit per cell, set when the
// cell density exceeds the threshold.
func (r *Renderer) packBits(threshold float32) {
	for i := range r.bitfield {
		r.bitfield[i] = 0
	}
	for i, v := range r.grid {
		if v > threshold {
			r.bitfield[i>>3] |= 1 << uint(i&7)
		}
	}
}

// Reset clears the occupancy grid, bitfield, step counter and derived
// statistics. Use it when the underlying scene or dataset changes.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.grid {
		r.grid[i] = 0
	}
	for i := range r.bitfield {
		r.bitfield[i] = 0
	}
	r.stepCounter = [stepCounterSlots][2]int32{}
	r.meanDensity = 0
	r.iterDensity = 0
	r.meanCount = 0
	r.localStep = 0
}
