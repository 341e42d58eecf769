package buddy

import "github.com/joshuapare/buddykit/internal/format"

// Address helpers. All addresses are byte offsets from the arena base, which
// sits at offset 0 and is therefore aligned to every block size.

// BuddyAddress returns the offset of the other half of the pair that off
// belongs to at level: off XOR 2^(level+minExp).
func BuddyAddress(off uint32, level, minExp int) uint32 {
	return uint32(uint64(off) ^ format.BlockSize(level, minExp))
}

// SplitAddress returns the upper-half offset produced by splitting the
// level block at off one level down: off OR 2^(level-1+minExp).
func SplitAddress(off uint32, level, minExp int) uint32 {
	return uint32(uint64(off) | format.BlockSize(level-1, minExp))
}

// PrimaryAddress returns the lower (canonical) offset of the level+1 pair
// containing off: off AND ^(2^(level+1+minExp) - 1).
func PrimaryAddress(off uint32, level, minExp int) uint32 {
	return uint32(uint64(off) &^ (format.BlockSize(level+1, minExp) - 1))
}
