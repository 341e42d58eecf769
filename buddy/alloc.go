package buddy

import (
	"fmt"

	"github.com/joshuapare/buddykit/internal/buf"
	"github.com/joshuapare/buddykit/internal/format"
)

// Alloc reserves a block holding at least n usable bytes.
//
// The returned slice has length n and a capacity equal to the block's usable
// size; it aliases arena memory and stays valid until Free or Close. Alloc(0)
// succeeds with a minimum-size block.
//
// Errors:
//   - ErrRequestTooLarge: n is negative or n+HeaderSize exceeds the arena.
//   - ErrOutOfMemory: the arena could not be mapped, or no free block of a
//     large enough level exists.
//   - ErrClosed: Close was called.
func (a *Arena) Alloc(n int) (Ref, []byte, error) {
	a.stats.AllocCalls++

	level, ok := a.cfg.LevelFor(n)
	if !ok {
		a.stats.FailedAllocs++
		return NilRef, nil, fmt.Errorf("%w: %d bytes (largest block holds %d)",
			ErrRequestTooLarge, n, a.cfg.Capacity(a.top))
	}
	if err := a.ensureArena(); err != nil {
		a.stats.FailedAllocs++
		return NilRef, nil, err
	}

	found := a.firstNonEmpty(level)
	if found < 0 {
		a.stats.FailedAllocs++
		a.logDebug("alloc failed", "size", n, "level", level)
		return NilRef, nil, fmt.Errorf("%w: no free block at level %d or above", ErrOutOfMemory, level)
	}
	off, _ := a.pop(found)

	// Split down to the requested level, keeping the lower half each time.
	for cur := found; cur > level; cur-- {
		upper := SplitAddress(off, cur, a.cfg.MinExp)
		format.EncodeHeader(a.data, int(upper), format.Header{
			Status: format.StatusFree,
			Level:  uint8(cur - 1),
			Prev:   format.NilOffset,
			Next:   format.NilOffset,
		})
		a.push(upper, cur-1)
		a.stats.Splits++
	}

	format.EncodeHeader(a.data, int(off), format.Header{
		Status:    format.StatusTaken,
		Level:     uint8(level),
		Requested: uint32(n),
		Prev:      format.NilOffset,
		Next:      format.NilOffset,
	})

	size := a.cfg.LevelSize(level)
	a.stats.InUseBytes += size
	a.stats.RequestedBytes += uint64(n)
	if found != level {
		a.logDebug("alloc split", "size", n, "from", found, "to", level, "off", off)
	}

	ref := off + HeaderSize
	payload, _ := buf.Window(a.data, int(ref), n, int(size-HeaderSize))
	return ref, payload, nil
}
