package buddy

import (
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"os"

	"github.com/joshuapare/buddykit/internal/format"
	"github.com/joshuapare/buddykit/internal/mmap"
)

// Runtime debug flag for allocation logging - controlled by BUDDY_LOG_ALLOC env var.
var logAlloc = os.Getenv("BUDDY_LOG_ALLOC") != ""

// MapFunc reserves size bytes of zeroed memory and returns a cleanup that
// releases them. mmap.Anon is the default.
type MapFunc func(size int) ([]byte, func() error, error)

// Config describes the arena geometry and its ambient hooks.
type Config struct {
	// Name for this configuration (for logs and dumps)
	Name string

	// MinExp is the minimum block size exponent (smallest block is 2^MinExp bytes).
	MinExp int

	// MaxExp is the arena size exponent (the arena is 2^MaxExp bytes).
	MaxExp int

	// Logger receives debug records for mapping, splits, merges and failures.
	// Nil discards everything unless BUDDY_LOG_ALLOC is set.
	Logger *slog.Logger

	// Mapper reserves the arena. Nil selects mmap.Anon.
	Mapper MapFunc
}

// Predefined configurations.
var (
	// Reference: 32B minimum blocks in a 64KB arena.
	ConfigReference = Config{
		Name:   "Reference",
		MinExp: 5,
		MaxExp: 16,
	}

	// Large: 64B minimum blocks in a 16MB arena.
	ConfigLarge = Config{
		Name:   "Large",
		MinExp: 6,
		MaxExp: 24,
	}

	// Default configuration (used if none specified).
	DefaultConfig = ConfigReference
)

// Validate checks that the exponents describe a usable arena on this platform.
func (c Config) Validate() error {
	if c.MinExp < format.MinExpLimit {
		return fmt.Errorf("%w: MinExp %d leaves no room for a %d-byte header (need >= %d)",
			ErrBadConfig, c.MinExp, format.HeaderSize, format.MinExpLimit)
	}
	if c.MaxExp <= c.MinExp {
		return fmt.Errorf("%w: MaxExp %d must exceed MinExp %d", ErrBadConfig, c.MaxExp, c.MinExp)
	}
	if c.MaxExp > format.MaxExpLimit {
		return fmt.Errorf("%w: MaxExp %d exceeds %d", ErrBadConfig, c.MaxExp, format.MaxExpLimit)
	}
	if c.MaxExp > bits.UintSize-2 {
		return fmt.Errorf("%w: MaxExp %d does not fit a %d-bit address space", ErrBadConfig, c.MaxExp, bits.UintSize)
	}
	return nil
}

// TopLevel returns the level of the whole-arena block, MaxExp-MinExp.
func (c Config) TopLevel() int { return c.MaxExp - c.MinExp }

// ArenaSize returns 2^MaxExp.
func (c Config) ArenaSize() uint64 { return uint64(1) << uint(c.MaxExp) }

// LevelSize returns the block size of level, header included.
func (c Config) LevelSize(level int) uint64 { return format.BlockSize(level, c.MinExp) }

// Capacity returns the usable bytes of a block at level.
func (c Config) Capacity(level int) uint64 { return c.LevelSize(level) - HeaderSize }

// LevelFor returns the smallest level whose blocks hold n bytes plus the
// header. ok is false for negative n or when no level is large enough.
func (c Config) LevelFor(n int) (level int, ok bool) {
	if n < 0 {
		return 0, false
	}
	need := uint64(n) + HeaderSize
	exp := format.CeilLog2(need)
	if exp <= c.MinExp {
		return 0, true
	}
	level = exp - c.MinExp
	if level > c.TopLevel() {
		return 0, false
	}
	return level, true
}

func (c Config) mapper() MapFunc {
	if c.Mapper != nil {
		return c.Mapper
	}
	return mmap.Anon
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
