package buddy

import "github.com/joshuapare/buddykit/internal/format"

// push inserts the block at off at the head of the level list. The block's
// status and level must already be written.
func (a *Arena) push(off uint32, level int) {
	head := a.heads[level]
	format.SetPrev(a.data, int(off), format.NilOffset)
	format.SetNext(a.data, int(off), head)
	if head != format.NilOffset {
		format.SetPrev(a.data, int(head), off)
	}
	a.heads[level] = off
	a.counts[level]++
}

// pop removes and returns the head of the level list.
func (a *Arena) pop(level int) (uint32, bool) {
	off := a.heads[level]
	if off == format.NilOffset {
		return 0, false
	}
	a.unlink(off, level)
	return off, true
}

// unlink removes the block at off from the level list in O(1).
func (a *Arena) unlink(off uint32, level int) {
	prev, next := format.ReadLinks(a.data, int(off))
	if prev == format.NilOffset {
		a.heads[level] = next
	} else {
		format.SetNext(a.data, int(prev), next)
	}
	if next != format.NilOffset {
		format.SetPrev(a.data, int(next), prev)
	}
	format.SetPrev(a.data, int(off), format.NilOffset)
	format.SetNext(a.data, int(off), format.NilOffset)
	a.counts[level]--
}

// firstNonEmpty returns the lowest level >= from with a free block, or -1.
func (a *Arena) firstNonEmpty(from int) int {
	for i := from; i <= a.top; i++ {
		if a.heads[i] != format.NilOffset {
			return i
		}
	}
	return -1
}
