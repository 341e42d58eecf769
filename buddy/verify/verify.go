package verify

import (
	"fmt"

	"github.com/joshuapare/buddykit/buddy"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int64
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all arena invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a *buddy.Arena) error {
	if err := Partition(a); err != nil {
		return err
	}
	if err := FreeLists(a); err != nil {
		return err
	}
	if err := NoFreeBuddies(a); err != nil {
		return err
	}
	return nil
}

// Partition validates that the header walk tiles the arena exactly.
func Partition(a *buddy.Arena) error {
	if !a.Mapped() {
		return nil
	}
	// Check the blocks the walk did reach before reporting where it broke.
	blocks, walkErr := a.Layout()

	cfg := a.Config()
	var next uint64
	for _, b := range blocks {
		if uint64(b.Offset) != next {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block starts at 0x%X, expected 0x%X", b.Offset, next),
				Offset:  int64(b.Offset),
			}
		}
		if uint64(b.Offset)%b.Size != 0 {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("level %d block not aligned to %d bytes", b.Level, b.Size),
				Offset:  int64(b.Offset),
			}
		}
		if b.Status != buddy.StatusFree && b.Status != buddy.StatusTaken {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("unexpected status %s", b.Status),
				Offset:  int64(b.Offset),
			}
		}
		next = b.End()
	}
	if walkErr != nil {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("layout walk failed after %d blocks: %v", len(blocks), walkErr),
			Offset:  -1,
		}
	}
	if next != cfg.ArenaSize() {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("blocks cover 0x%X bytes, arena is 0x%X", next, cfg.ArenaSize()),
			Offset:  -1,
		}
	}
	return nil
}

// FreeLists validates that free-list membership matches block status.
func FreeLists(a *buddy.Arena) error {
	if !a.Mapped() {
		return nil
	}
	blocks, err := a.Layout()
	if err != nil {
		return &ValidationError{Type: "FreeLists", Message: err.Error(), Offset: -1}
	}
	byOff := make(map[uint32]buddy.Block, len(blocks))
	free := 0
	for _, b := range blocks {
		byOff[b.Offset] = b
		if b.Status == buddy.StatusFree {
			free++
		}
	}

	seen := make(map[uint32]int)
	top := a.Config().TopLevel()
	for level := 0; level <= top; level++ {
		list := a.FreeList(level)
		if len(list) != a.FreeCount(level) {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("level %d list has %d entries, count says %d", level, len(list), a.FreeCount(level)),
				Offset:  -1,
			}
		}
		for _, off := range list {
			if prev, dup := seen[off]; dup {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("block listed on level %d and level %d", prev, level),
					Offset:  int64(off),
				}
			}
			seen[off] = level
			b, ok := byOff[off]
			if !ok {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("level %d list entry is not a block start", level),
					Offset:  int64(off),
				}
			}
			if b.Status != buddy.StatusFree {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("level %d list holds a %s block", level, b.Status),
					Offset:  int64(off),
				}
			}
			if b.Level != level {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("level %d block on level %d list", b.Level, level),
					Offset:  int64(off),
				}
			}
		}
	}
	if len(seen) != free {
		return &ValidationError{
			Type:    "FreeLists",
			Message: fmt.Sprintf("%d free blocks in layout, %d on free lists", free, len(seen)),
			Offset:  -1,
		}
	}
	return nil
}

// NoFreeBuddies validates that coalescing left no mergeable pair behind.
func NoFreeBuddies(a *buddy.Arena) error {
	if !a.Mapped() {
		return nil
	}
	blocks, err := a.Layout()
	if err != nil {
		return &ValidationError{Type: "NoFreeBuddies", Message: err.Error(), Offset: -1}
	}
	cfg := a.Config()
	byOff := make(map[uint32]buddy.Block, len(blocks))
	for _, b := range blocks {
		byOff[b.Offset] = b
	}
	for _, b := range blocks {
		if b.Status != buddy.StatusFree || b.Level >= cfg.TopLevel() {
			continue
		}
		other, ok := byOff[buddy.BuddyAddress(b.Offset, b.Level, cfg.MinExp)]
		if ok && other.Status == buddy.StatusFree && other.Level == b.Level {
			return &ValidationError{
				Type:    "NoFreeBuddies",
				Message: fmt.Sprintf("free level %d block has free buddy at 0x%X", b.Level, other.Offset),
				Offset:  int64(b.Offset),
			}
		}
	}
	return nil
}
