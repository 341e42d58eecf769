package buddy

import (
	"fmt"

	"github.com/joshuapare/buddykit/internal/format"
)

// Free returns the block behind ref to the arena and coalesces it with its
// buddy for as long as the buddy is free at the same level. Coalescing is
// maximal: no two free buddies are left unmerged.
//
// Errors:
//   - ErrInvalidPointer: ref does not resolve to a block header.
//   - ErrDoubleFree: the block is already free. State is left untouched.
//   - ErrClosed: Close was called.
func (a *Arena) Free(ref Ref) error {
	a.stats.FreeCalls++

	off, h, err := a.headerFor(ref)
	if err != nil {
		a.stats.FailedFrees++
		return err
	}
	if h.Status == format.StatusFree {
		a.stats.FailedFrees++
		return fmt.Errorf("%w: ref 0x%X", ErrDoubleFree, ref)
	}

	level := int(h.Level)
	a.stats.InUseBytes -= a.cfg.LevelSize(level)
	a.stats.RequestedBytes -= uint64(h.Requested)

	format.EncodeHeader(a.data, int(off), format.Header{
		Status: format.StatusFree,
		Level:  h.Level,
		Prev:   format.NilOffset,
		Next:   format.NilOffset,
	})

	for level < a.top {
		buddy := BuddyAddress(off, level, a.cfg.MinExp)
		if uint64(buddy)+HeaderSize > uint64(len(a.data)) {
			break
		}
		if format.ReadStatus(a.data, int(buddy)) != format.StatusFree ||
			int(format.ReadLevel(a.data, int(buddy))) != level {
			break
		}
		a.unlink(buddy, level)
		off = PrimaryAddress(off, level, a.cfg.MinExp)
		level++
		a.stats.Merges++
	}

	format.EncodeHeader(a.data, int(off), format.Header{
		Status: format.StatusFree,
		Level:  uint8(level),
		Prev:   format.NilOffset,
		Next:   format.NilOffset,
	})
	a.push(off, level)
	if level != int(h.Level) {
		a.logDebug("free coalesced", "ref", ref, "from", h.Level, "to", level, "off", off)
	}
	return nil
}

// headerFor resolves ref to its block offset and decoded header, rejecting
// anything that is not the payload of a block at a level-aligned offset.
func (a *Arena) headerFor(ref Ref) (uint32, format.Header, error) {
	if a.closed {
		return 0, format.Header{}, ErrClosed
	}
	if a.data == nil {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X: arena not mapped", ErrInvalidPointer, ref)
	}
	if ref < HeaderSize {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X below first payload", ErrInvalidPointer, ref)
	}
	off := ref - HeaderSize
	minBlock := a.cfg.LevelSize(0)
	if !format.IsAligned(uint64(off), minBlock) || uint64(off)+minBlock > uint64(len(a.data)) {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X not on a block boundary", ErrInvalidPointer, ref)
	}
	h, err := format.DecodeHeader(a.data, int(off))
	if err != nil {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X: %w", ErrInvalidPointer, ref, err)
	}
	level := int(h.Level)
	if level > a.top {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X: level %d out of range", ErrInvalidPointer, ref, level)
	}
	size := a.cfg.LevelSize(level)
	if !format.IsAligned(uint64(off), size) || uint64(off)+size > uint64(len(a.data)) {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X: misaligned for level %d", ErrInvalidPointer, ref, level)
	}
	if h.Status != format.StatusFree && h.Status != format.StatusTaken {
		return 0, format.Header{}, fmt.Errorf("%w: ref 0x%X: status %s", ErrInvalidPointer, ref, h.Status)
	}
	return off, h, nil
}
