package buddy

import (
	"fmt"

	"github.com/joshuapare/buddykit/internal/buf"
	"github.com/joshuapare/buddykit/internal/format"
)

// Stats holds allocator counters for tests and instrumentation.
type Stats struct {
	AllocCalls     int    // Total Alloc() calls
	FreeCalls      int    // Total Free() calls
	FailedAllocs   int    // Alloc() calls that returned an error
	FailedFrees    int    // Free() calls that returned an error
	Splits         int    // Blocks split in half during allocation
	Merges         int    // Buddy pairs merged during deallocation
	Maps           int    // Successful arena mappings (0 or 1)
	MapFailures    int    // Failed arena mapping attempts
	InUseBytes     uint64 // Bytes of taken blocks, headers included
	RequestedBytes uint64 // Bytes requested by callers for taken blocks
}

// Usage summarises the current partition.
type Usage struct {
	ArenaBytes  uint64
	FreeBytes   uint64
	TakenBytes  uint64
	FreeBlocks  []int // free blocks per level
	LargestFree int   // highest level with a free block, -1 when none
}

// Stats returns current allocator statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Usage reports free and taken bytes from the free-list table. Before the
// first allocation the arena is unmapped and every gauge is zero.
func (a *Arena) Usage() Usage {
	u := Usage{
		FreeBlocks:  make([]int, a.top+1),
		LargestFree: -1,
	}
	if a.data == nil {
		return u
	}
	u.ArenaBytes = a.cfg.ArenaSize()
	for level, n := range a.counts {
		u.FreeBlocks[level] = n
		u.FreeBytes += uint64(n) * a.cfg.LevelSize(level)
		if n > 0 {
			u.LargestFree = level
		}
	}
	u.TakenBytes = u.ArenaBytes - u.FreeBytes
	return u
}

// BlockInfo describes the block behind ref.
func (a *Arena) BlockInfo(ref Ref) (Block, error) {
	off, h, err := a.headerFor(ref)
	if err != nil {
		return Block{}, err
	}
	return a.block(off, h), nil
}

// Bytes returns the payload of a taken block: length is the original
// request, capacity is the block's usable size.
func (a *Arena) Bytes(ref Ref) ([]byte, error) {
	off, h, err := a.headerFor(ref)
	if err != nil {
		return nil, err
	}
	if h.Status != format.StatusTaken {
		return nil, fmt.Errorf("%w: ref 0x%X is free", ErrInvalidPointer, ref)
	}
	capacity := a.cfg.Capacity(int(h.Level))
	payload, ok := buf.Window(a.data, int(off+HeaderSize), int(h.Requested), int(capacity))
	if !ok {
		return nil, fmt.Errorf("%w: ref 0x%X: payload out of bounds", ErrInvalidPointer, ref)
	}
	return payload, nil
}

// Layout walks the arena from offset 0, hopping from header to header by
// block size. A healthy arena yields blocks that exactly tile the region.
// The walk stops with an error at the first unreadable header.
func (a *Arena) Layout() ([]Block, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if a.data == nil {
		return nil, nil
	}
	blocks := make([]Block, 0, a.top+1)
	end := uint64(len(a.data))
	for off := uint64(0); off < end; {
		h, err := format.DecodeHeader(a.data, int(off))
		if err != nil {
			return blocks, err
		}
		if int(h.Level) > a.top {
			return blocks, fmt.Errorf("header at 0x%X: level %d out of range", off, h.Level)
		}
		b := a.block(uint32(off), h)
		blocks = append(blocks, b)
		off += b.Size
	}
	return blocks, nil
}

// FreeList returns the block offsets on the level list, head first.
func (a *Arena) FreeList(level int) []uint32 {
	if level < 0 || level > a.top || a.data == nil {
		return nil
	}
	out := make([]uint32, 0, a.counts[level])
	for off := a.heads[level]; off != format.NilOffset; {
		out = append(out, off)
		if len(out) > a.counts[level] {
			// A cycle or a stale count; hand back what we saw for the verifier.
			break
		}
		_, off = format.ReadLinks(a.data, int(off))
	}
	return out
}

// FreeCount returns the recorded length of the level list.
func (a *Arena) FreeCount(level int) int {
	if level < 0 || level > a.top {
		return 0
	}
	return a.counts[level]
}

func (a *Arena) block(off uint32, h format.Header) Block {
	return Block{
		Offset:    off,
		Level:     int(h.Level),
		Size:      a.cfg.LevelSize(int(h.Level)),
		Status:    h.Status,
		Requested: h.Requested,
	}
}
