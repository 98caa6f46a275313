package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipnerf/torch-ngp/field"
	"github.com/clipnerf/torch-ngp/types"
)

func TestStateRoundtrip(t *testing.T) {
	t.Parallel()

	src := testRenderer(t, field.NewBlob(), Options{})
	require.NoError(t, src.MarkUntrainedGrid([]types.Mat4{types.Ident4()}, testIntrinsics(), 0))
	require.NoError(t, src.RefreshOccupancy(0.95, 0))
	src.RecordMarchSteps(128, 2048)
	src.SetInferAABB([6]float32{-0.5, -0.5, -0.5, 0.5, 0.5, 0.5})

	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	dst := testRenderer(t, field.NewBlob(), Options{})
	require.NoError(t, dst.LoadState(&buf))

	assert.Equal(t, src.grid, dst.grid)
	assert.Equal(t, src.bitfield, dst.bitfield)
	assert.Equal(t, src.stepCounter, dst.stepCounter)
	assert.Equal(t, src.meanDensity, dst.meanDensity)
	assert.Equal(t, src.iterDensity, dst.iterDensity)
	assert.Equal(t, src.localStep, dst.localStep)
	assert.Equal(t, src.aabbTrain, dst.aabbTrain)
	assert.Equal(t, src.aabbInfer, dst.aabbInfer)
}

func TestLoadState_DimensionMismatch(t *testing.T) {
	t.Parallel()

	src := testRenderer(t, field.NewBlob(), Options{GridSize: 16})
	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	dst := testRenderer(t, field.NewBlob(), Options{GridSize: 32})
	assert.ErrorIs(t, dst.LoadState(&buf), ErrStateMismatch)
}

func TestLoadState_Garbage(t *testing.T) {
	t.Parallel()

	r := testRenderer(t, field.NewBlob(), Options{})
	err := r.LoadState(bytes.NewBufferString("not a snapshot"))
	assert.Error(t, err)
}
