package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipnerf/torch-ngp/types"
)

func TestBlobDensity(t *testing.T) {
	t.Parallel()

	b := NewBlob()
	sigma, feat, err := b.Density([]types.Vec3{
		{0, 0, 0},
		{0.5, 0, 0},
		{5, 5, 5},
	})
	require.NoError(t, err)
	require.Len(t, sigma, 3)
	require.Len(t, feat, 3*b.FeatureDim())

	assert.InDelta(t, b.Peak, sigma[0], 1e-5, "density peaks at the center")
	assert.Less(t, sigma[1], sigma[0], "density falls off with distance")
	assert.Less(t, sigma[2], float32(1e-6), "density vanishes far from the blob")

	assert.InDelta(t, 1, feat[0], 1e-6, "normalized density feature at the center")
	assert.Equal(t, float32(0.5), feat[b.FeatureDim()+1], "position feature")
}

func TestBlobColorHonorsMask(t *testing.T) {
	t.Parallel()

	b := NewBlob()
	positions := []types.Vec3{{0, 0, 0}, {0, 0, 0}}
	directions := []types.Vec3{{0, 0, 1}, {0, 0, 1}}
	sigma, feat, err := b.Density(positions)
	require.NoError(t, err)

	rgb, err := b.Color(positions, directions, []bool{true, false}, feat, sigma)
	require.NoError(t, err)
	require.Len(t, rgb, 2)
	assert.NotEqual(t, types.Vec3{}, rgb[0])
	assert.Equal(t, types.Vec3{}, rgb[1], "masked-out samples are skipped")
}

func TestUnimplemented(t *testing.T) {
	t.Parallel()

	var u Unimplemented
	_, _, err := u.Density(nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = u.Color(nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = u.AuxFeature(nil, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
