package render

// Bit-interleaved (Morton) mapping between 3D cell coordinates and linear
// grid indices. Interleaving keeps spatially close cells close in memory,
// which is what the external marching kernels index the bitfield by. The
// magic-constant spread/compact pair covers coordinates up to 10 bits per
// axis, comfortably above the 128^3 default grid.

func spreadBits3(v uint32) uint32 {
	v = (v | v<<16) & 0x030000FF
	v = (v | v<<8) & 0x0300F00F
	v = (v | v<<4) & 0x030C30C3
	v = (v | v<<2) & 0x09249249
	return v
}

func compactBits3(v uint32) uint32 {
	v &= 0x09249249
	v = (v | v>>2) & 0x030C30C3
	v = (v | v>>4) & 0x0300F00F
	v = (v | v>>8) & 0x030000FF
	v = (v | v>>16) & 0x000003FF
	return v
}

// mortonEncode maps grid coordinates to a linear cell index.
func mortonEncode(x, y, z uint32) uint32 {
	return spreadBits3(x) | spreadBits3(y)<<1 | spreadBits3(z)<<2
}

// mortonDecode inverts mortonEncode.
func mortonDecode(idx uint32) (x, y, z uint32) {
	return compactBits3(idx), compactBits3(idx >> 1), compactBits3(idx >> 2)
}
