// Package format holds the on-arena layout of buddy block headers. Headers
// are encoded into the arena bytes with little-endian helpers so higher-level
// packages never alias the arena as structured memory.
package format

const (
	// HeaderSize is the number of bytes reserved at the start of every block,
	// free or taken. Layout (little-endian):
	//   0x00  magic     uint16
	//   0x02  status    uint8
	//   0x03  level     uint8
	//   0x04  requested uint32
	//   0x08  prev      uint32
	//   0x0C  next      uint32
	HeaderSize = 16

	// HeaderMagic marks a header written by the allocator ("BK").
	HeaderMagic = uint16(0x4B42)

	// NilOffset terminates a free list. It is never aligned to a block size,
	// so it cannot collide with a real block offset.
	NilOffset = uint32(0xFFFFFFFF)

	// MinExpLimit is the smallest block exponent that still fits a header.
	MinExpLimit = 4

	// MaxExpLimit bounds the arena so every offset fits a uint32 link field.
	MaxExpLimit = 32
)

// Header field offsets.
const (
	MagicOffset     = 0x00
	StatusOffset    = 0x02
	LevelOffset     = 0x03
	RequestedOffset = 0x04
	PrevOffset      = 0x08
	NextOffset      = 0x0C
)

// Status is the allocation state recorded in a block header.
type Status uint8

const (
	// StatusUnset is the zero byte of a fresh mapping; no header was written.
	StatusUnset Status = 0
	// StatusFree marks a block that sits on a free list.
	StatusFree Status = 1
	// StatusTaken marks a block owned by a caller.
	StatusTaken Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusTaken:
		return "taken"
	case StatusUnset:
		return "unset"
	default:
		return "invalid"
	}
}
