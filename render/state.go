package render

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// snapshot is the persisted occupancy state: everything needed to resume
// training or reload a scene. Sample buffers, weights and colors are
// call-local and never persisted.
type snapshot struct {
	GridSize int
	Cascade  int

	Grid        []float32
	Bitfield    []byte
	StepCounter [stepCounterSlots][2]int32

	MeanDensity float32
	IterDensity int
	MeanCount   int
	LocalStep   int

	AABBTrain [6]float32
	AABBInfer [6]float32
}

// SaveState writes a gzip-compressed snapshot of the occupancy state and
// both sampling boxes.
func (r *Renderer) SaveState(w io.Writer) error {
	r.mu.RLock()
	snap := snapshot{
		GridSize:    r.gridSize,
		Cascade:     r.cascade,
		Grid:        append([]float32(nil), r.grid...),
		Bitfield:    append([]byte(nil), r.bitfield...),
		StepCounter: r.stepCounter,
		MeanDensity: r.meanDensity,
		IterDensity: r.iterDensity,
		MeanCount:   r.meanCount,
		LocalStep:   r.localStep,
		AABBTrain:   r.aabbTrain,
		AABBInfer:   r.aabbInfer,
	}
	r.mu.RUnlock()

	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(&snap); err != nil {
		gz.Close()
		return fmt.Errorf("render: encode snapshot: %w", err)
	}
	return gz.Close()
}

// LoadState restores a snapshot previously written by SaveState. The
// snapshot must have been taken from a renderer with the same grid geometry.
func (r *Renderer) LoadState(rd io.Reader) error {
	gz, err := gzip.NewReader(rd)
	if err != nil {
		return fmt.Errorf("render: open snapshot: %w", err)
	}
	defer gz.Close()

	var snap snapshot
	if err := gob.NewDecoder(gz).Decode(&snap); err != nil {
		return fmt.Errorf("render: decode snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.GridSize != r.gridSize || snap.Cascade != r.cascade ||
		len(snap.Grid) != len(r.grid) || len(snap.Bitfield) != len(r.bitfield) {
		return ErrStateMismatch
	}

	copy(r.grid, snap.Grid)
	copy(r.bitfield, snap.Bitfield)
	r.stepCounter = snap.StepCounter
	r.meanDensity = snap.MeanDensity
	r.iterDensity = snap.IterDensity
	r.meanCount = snap.MeanCount
	r.localStep = snap.LocalStep
	r.aabbTrain = snap.AABBTrain
	r.aabbInfer = snap.AABBInfer
	return nil
}
