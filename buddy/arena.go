package buddy

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/buddykit/internal/format"
)

// Arena is a buddy allocator over one 2^MaxExp-byte region.
//   - The region is mapped lazily on the first Alloc and never grows.
//   - heads/counts form the free-list table, one list per level.
//   - Free-list links live in the block headers as block offsets.
//
// Arena is not safe for concurrent use; see SyncArena.
type Arena struct {
	cfg   Config
	top   int
	log   *slog.Logger
	debug bool

	data    []byte
	release func() error
	closed  bool

	// Free-list table: head block offset and length per level.
	heads  []uint32
	counts []int

	stats Stats
}

// New creates an arena for config. A nil config selects DefaultConfig.
// No memory is reserved until the first Alloc.
func New(config *Config) (*Arena, error) {
	cfg := DefaultConfig
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	top := cfg.TopLevel()
	a := &Arena{
		cfg:    cfg,
		top:    top,
		log:    cfg.logger(),
		heads:  make([]uint32, top+1),
		counts: make([]int, top+1),
	}
	a.debug = a.log.Enabled(context.Background(), slog.LevelDebug)
	a.resetFreeLists()
	return a, nil
}

// ensureArena maps the region on first use and seeds the top-level free block.
// A failed mapping leaves the arena unmapped so a later call can try again.
func (a *Arena) ensureArena() error {
	if a.closed {
		return ErrClosed
	}
	if a.data != nil {
		return nil
	}

	size := a.cfg.ArenaSize()
	if size > math.MaxInt {
		return fmt.Errorf("%w: arena of %d bytes exceeds address space", ErrOutOfMemory, size)
	}
	data, release, err := a.cfg.mapper()(int(size))
	if err != nil {
		a.stats.MapFailures++
		a.logDebug("arena map failed", "size", size, "error", err)
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if uint64(len(data)) < size {
		if release != nil {
			_ = release()
		}
		a.stats.MapFailures++
		return fmt.Errorf("%w: mapper returned %d of %d bytes", ErrOutOfMemory, len(data), size)
	}

	a.data = data[:size:size]
	a.release = release
	a.stats.Maps++

	format.EncodeHeader(a.data, 0, format.Header{
		Status: format.StatusFree,
		Level:  uint8(a.top),
		Prev:   format.NilOffset,
		Next:   format.NilOffset,
	})
	a.push(0, a.top)
	a.logDebug("arena mapped", "config", a.cfg.Name, "size", size, "levels", a.top+1)
	return nil
}

// Close releases the mapping. Refs and payload slices become invalid, and
// every later call fails with ErrClosed. Close is idempotent.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	var err error
	if a.release != nil {
		err = a.release()
	}
	a.data = nil
	a.release = nil
	a.resetFreeLists()
	return err
}

// Config returns the arena's configuration.
func (a *Arena) Config() Config { return a.cfg }

// Mapped reports whether the region has been reserved from the OS.
func (a *Arena) Mapped() bool { return a.data != nil }

func (a *Arena) resetFreeLists() {
	for i := range a.heads {
		a.heads[i] = format.NilOffset
		a.counts[i] = 0
	}
}

func (a *Arena) logDebug(msg string, args ...any) {
	if a.debug {
		a.log.Debug(msg, args...)
	}
}
