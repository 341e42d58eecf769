package buddy

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// heapConfig returns cfg backed by heap memory instead of an OS mapping.
func heapConfig(cfg Config) Config {
	cfg.Mapper = heapMapper
	return cfg
}

func heapMapper(size int) ([]byte, func() error, error) {
	return make([]byte, size), func() error { return nil }, nil
}

// newArena creates an arena that is closed when the test ends.
func newArena(t testing.TB, cfg Config) *Arena {
	t.Helper()
	a, err := New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})
	return a
}

// snapshotFreeLists copies every level's free list in list order.
func snapshotFreeLists(a *Arena) [][]uint32 {
	out := make([][]uint32, a.top+1)
	for level := range out {
		out[level] = a.FreeList(level)
	}
	return out
}

// sortedFreeLists is snapshotFreeLists with each level sorted, for
// comparisons that ignore list order.
func sortedFreeLists(a *Arena) [][]uint32 {
	out := snapshotFreeLists(a)
	for _, l := range out {
		sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	}
	return out
}

// requireSingleTopBlock asserts the arena is back to one free top-level block.
func requireSingleTopBlock(t testing.TB, a *Arena) {
	t.Helper()
	for level := 0; level < a.top; level++ {
		require.Empty(t, a.FreeList(level), "level %d should have no free blocks", level)
	}
	require.Equal(t, []uint32{0}, a.FreeList(a.top))

	blocks, err := a.Layout()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, StatusFree, blocks[0].Status)
	require.Equal(t, a.top, blocks[0].Level)
}

// requireTiles asserts the layout walk covers the arena with no gaps and
// that free-list membership matches header status.
func requireTiles(t testing.TB, a *Arena) {
	t.Helper()
	blocks, err := a.Layout()
	require.NoError(t, err)

	var next uint64
	free := make(map[uint32]int)
	for _, b := range blocks {
		require.Equal(t, next, uint64(b.Offset), "gap or overlap at 0x%X", b.Offset)
		require.Zero(t, uint64(b.Offset)%b.Size, "block 0x%X misaligned for level %d", b.Offset, b.Level)
		next = b.End()
		if b.Status == StatusFree {
			free[b.Offset] = b.Level
		}
	}
	require.Equal(t, a.cfg.ArenaSize(), next)

	listed := 0
	for level := 0; level <= a.top; level++ {
		for _, off := range a.FreeList(level) {
			lvl, ok := free[off]
			require.True(t, ok, "listed block 0x%X is not free in the layout", off)
			require.Equal(t, level, lvl, "block 0x%X on wrong list", off)
			listed++
		}
		require.Equal(t, a.FreeCount(level), len(a.FreeList(level)))
	}
	require.Equal(t, len(free), listed, "free blocks missing from the free lists")
}
