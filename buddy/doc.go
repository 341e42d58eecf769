// Package buddy provides a fixed-arena buddy-system allocator.
//
// # Overview
//
// An Arena manages one region of 2^MaxExp bytes, reserved from the operating
// system on the first allocation. The region is carved into power-of-two
// blocks: a block at level L spans 2^(MinExp+L) bytes, from the 2^MinExp
// minimum up to the whole arena at level MaxExp-MinExp.
//
// Every block, free or taken, starts with a 16-byte header recording its
// status, level and free-list links, so a block at level L offers
// 2^(MinExp+L)-16 usable bytes.
//
// # Allocation
//
// Alloc maps a byte request to the smallest level that fits it plus the
// header, takes the first free block at that level or above, and splits it
// in half until it reaches the requested level. Upper halves go onto the
// free lists. Both Alloc and Free run in O(MaxExp-MinExp).
//
//	a, err := buddy.New(&buddy.ConfigReference)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	ref, buf, err := a.Alloc(100) // 128B block at level 2
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	err = a.Free(ref)
//
// # Deallocation
//
// Free marks the block free and merges it with its buddy (the other half of
// the pair it was split from) while the buddy is free at the same level.
// Freeing every block returns the arena to a single free block at the top
// level, whatever the order of the frees.
//
// # References
//
// Addresses are byte offsets from the arena base. A Ref is the payload
// offset (block offset + 16); it is what callers hold instead of a pointer.
// Buddy arithmetic works on offsets:
//
//	buddy   = off XOR 2^(level+MinExp)
//	split   = off OR  2^(level-1+MinExp)
//	primary = off AND ^(2^(level+1+MinExp) - 1)
//
// # Errors
//
// Failures are returned, never raised: ErrRequestTooLarge, ErrOutOfMemory,
// ErrDoubleFree, ErrInvalidPointer, ErrBadConfig and ErrClosed. Use errors.Is.
//
// # Thread Safety
//
// Arena instances are not thread-safe. SyncArena wraps an Arena in a single
// mutex for callers that share one arena between goroutines.
//
// # Related Packages
//
//   - github.com/joshuapare/buddykit/buddy/verify: partition and free-list invariants
//   - github.com/joshuapare/buddykit/buddy/printer: layout dumps
//   - github.com/joshuapare/buddykit/pkg/trace: allocation trace replay
package buddy
