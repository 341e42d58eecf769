package format

import "math/bits"

// Alignment utilities for power-of-two block sizes.

// BlockSize returns the size in bytes of a block at level with minimum
// exponent minExp: 2^(minExp+level).
func BlockSize(level, minExp int) uint64 {
	return uint64(1) << uint(level+minExp)
}

// IsAligned reports whether off is a multiple of size. size must be a power of two.
//
// Example:
//
//	IsAligned(64, 32) = true
//	IsAligned(48, 32) = false
func IsAligned(off, size uint64) bool {
	return off&(size-1) == 0
}

// CeilLog2 returns the smallest e such that 1<<e >= n. CeilLog2(0) and
// CeilLog2(1) are both 0.
//
// Example:
//
//	CeilLog2(100) = 7
//	CeilLog2(128) = 7
//	CeilLog2(129) = 8
func CeilLog2(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}
