package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMortonBijection(t *testing.T) {
	t.Parallel()

	const h = 128
	seen := make([]bool, h*h*h)
	for x := uint32(0); x < h; x++ {
		for y := uint32(0); y < h; y++ {
			for z := uint32(0); z < h; z++ {
				idx := mortonEncode(x, y, z)
				if idx >= h*h*h {
					t.Fatalf("index %d out of range for (%d,%d,%d)", idx, x, y, z)
				}
				if seen[idx] {
					t.Fatalf("collision at (%d,%d,%d)", x, y, z)
				}
				seen[idx] = true

				rx, ry, rz := mortonDecode(idx)
				if rx != x || ry != y || rz != z {
					t.Fatalf("roundtrip mismatch: (%d,%d,%d) -> %d -> (%d,%d,%d)", x, y, z, idx, rx, ry, rz)
				}
			}
		}
	}
}

func TestMortonLocality(t *testing.T) {
	t.Parallel()

	// Neighbouring cells inside an aligned 2x2x2 block share all but the
	// low three index bits.
	base := mortonEncode(4, 4, 4)
	for _, next := range []uint32{
		mortonEncode(5, 4, 4),
		mortonEncode(4, 5, 4),
		mortonEncode(4, 4, 5),
	} {
		require.Equal(t, base>>3, next>>3)
	}
}
