package types

// Mat4 is a 4x4 matrix stored in column-major order, matching the layout
// used by github.com/go-gl/mathgl/mgl32.
type Mat4 [16]float32

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Get matrix element at (row, col).
func (m Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Set matrix element at (row, col).
func (m *Mat4) Set(row, col int, val float32) {
	m[col*4+row] = val
}

// Multiply a 4 component vector with this matrix.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]*v[3],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]*v[3],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]*v[3],
		m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]*v[3],
	}
}

// Extract the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Rotate a vector by the upper-left 3x3 block.
func (m Mat4) RotateVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// Rotate a vector by the transpose of the upper-left 3x3 block. For a rigid
// camera-to-world pose this maps world space back into camera space.
func (m Mat4) RotateVecT(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}
