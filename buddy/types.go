package buddy

import "github.com/joshuapare/buddykit/internal/format"

// Ref is the payload offset handed to callers: the block offset plus
// HeaderSize. It plays the role of the pointer returned by balloc.
type Ref = uint32

// NilRef is never returned by a successful allocation.
const NilRef Ref = 0

// HeaderSize is the number of bytes every block reserves for its header.
const HeaderSize = format.HeaderSize

// Status is the Free/Taken state of a block.
type Status = format.Status

const (
	StatusFree  = format.StatusFree
	StatusTaken = format.StatusTaken
)

// Block describes one block of the arena partition.
type Block struct {
	Offset    uint32 // block start (header position)
	Level     int    // size is 2^(MinExp+Level)
	Size      uint64 // bytes including header
	Status    Status
	Requested uint32 // caller's request while taken, 0 when free
}

// Ref returns the payload reference of the block.
func (b Block) Ref() Ref { return b.Offset + HeaderSize }

// End returns the exclusive end offset of the block.
func (b Block) End() uint64 { return uint64(b.Offset) + b.Size }

// Capacity returns the usable payload bytes of the block.
func (b Block) Capacity() uint64 { return b.Size - HeaderSize }

// Allocator is the allocation contract shared by Arena and SyncArena.
type Allocator interface {
	// Alloc reserves at least n usable bytes. It returns the payload reference
	// and a slice of length n whose capacity is the block's usable size.
	Alloc(n int) (Ref, []byte, error)

	// Free returns a block obtained from Alloc and coalesces it with its
	// buddies.
	Free(ref Ref) error
}
