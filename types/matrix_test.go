package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4Accessors(t *testing.T) {
	t.Parallel()

	m := Ident4()
	m.Set(0, 3, 5)
	m.Set(2, 1, -2)

	assert.Equal(t, float32(5), m.At(0, 3))
	assert.Equal(t, float32(-2), m.At(2, 1))
	assert.Equal(t, XYZ(5, 0, 0), m.Translation())
}

func TestMat4RotateRoundtrip(t *testing.T) {
	t.Parallel()

	// 90 degree rotation around z.
	var m Mat4
	m.Set(0, 1, -1)
	m.Set(1, 0, 1)
	m.Set(2, 2, 1)
	m.Set(3, 3, 1)

	v := XYZ(1, 0, 0)
	rotated := m.RotateVec(v)
	assert.InDelta(t, 0, rotated[0], 1e-6)
	assert.InDelta(t, 1, rotated[1], 1e-6)

	// RotateVecT inverts a pure rotation.
	back := m.RotateVecT(rotated)
	assert.InDelta(t, v[0], back[0], 1e-6)
	assert.InDelta(t, v[1], back[1], 1e-6)
	assert.InDelta(t, v[2], back[2], 1e-6)
}

func TestVec3Clamp(t *testing.T) {
	t.Parallel()

	min := XYZ(-1, -1, -1)
	max := XYZ(1, 1, 1)
	assert.Equal(t, XYZ(1, -1, 0.5), XYZ(4, -7, 0.5).Clamp(min, max))
}
