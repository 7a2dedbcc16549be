package dhash

import "math/bits"

// NextPowerOf2 returns the next power of two for v (v itself, if v is
// already a power of two).
func NextPowerOf2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return uint32(1) << min(bits.Len32(v-1), 31)
}
