package render

import "gonum.org/v1/gonum/stat"

// GridStats summarises the occupancy state for diagnostics.
type GridStats struct {
	Cascade      int
	GridSize     int
	MinDensity   float32
	MaxDensity   float32
	MeanDensity  float32
	OccupancyPct float64 // fraction of cells above the density threshold
	RefreshCount int
	StepBudget   int
}

// RecordMarchSteps logs one (stepsUsed, raysProcessed) pair from the external
// marching kernel into the 16-slot ring. The next RefreshOccupancy call folds
// the populated slots into the running step budget and resets the cursor.
func (r *Renderer) RecordMarchSteps(steps, rays int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepCounter[r.localStep%stepCounterSlots] = [2]int32{steps, rays}
	r.localStep++
}

// MeanStepCount returns the current marching step budget hint.
func (r *Renderer) MeanStepCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meanCount
}

// updateStepBudget derives the mean step count from however many slots were
// recorded since the last refresh. Caller holds the write lock.
func (r *Renderer) updateStepBudget() {
	total := r.localStep
	if total > stepCounterSlots {
		total = stepCounterSlots
	}
	if total > 0 {
		steps := make([]float64, total)
		for i := 0; i < total; i++ {
			steps[i] = float64(r.stepCounter[i][0])
		}
		r.meanCount = int(stat.Mean(steps, nil))
	}
	r.localStep = 0
}

// Stats snapshots the occupancy grid diagnostics.
func (r *Renderer) Stats() GridStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := GridStats{
		Cascade:      r.cascade,
		GridSize:     r.gridSize,
		MeanDensity:  r.meanDensity,
		RefreshCount: r.iterDensity,
		StepBudget:   r.meanCount,
	}
	if len(r.grid) == 0 {
		return s
	}
	s.MinDensity = r.grid[0]
	s.MaxDensity = r.grid[0]
	occupied := 0
	for _, v := range r.grid {
		if v < s.MinDensity {
			s.MinDensity = v
		}
		if v > s.MaxDensity {
			s.MaxDensity = v
		}
		if v > r.opts.DensityThresh {
			occupied++
		}
	}
	s.OccupancyPct = float64(occupied) / float64(len(r.grid))
	return s
}
