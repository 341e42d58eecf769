package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/buddykit/buddy"
	"github.com/joshuapare/buddykit/buddy/verify"
)

func newReferenceArena(t *testing.T) *buddy.Arena {
	t.Helper()

	cfg := buddy.ConfigReference
	cfg.Mapper = func(size int) ([]byte, func() error, error) {
		return make([]byte, size), func() error { return nil }, nil
	}
	a, err := buddy.New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func mustParse(t *testing.T, s string) []Op {
	t.Helper()
	ops, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return ops
}

func TestReplay_ReuseScenario(t *testing.T) {
	a := newReferenceArena(t)
	checks := 0
	opts := Options{
		CheckPayload: true,
		Check: func() error {
			checks++
			return verify.AllInvariants(a)
		},
	}

	res, err := Replay(a, mustParse(t, sampleTrace), opts)
	require.NoError(t, err)

	require.Equal(t, 3, res.Allocs)
	require.Equal(t, 3, res.Frees)
	require.Zero(t, res.Failures)
	require.Equal(t, 1, res.Checks)
	require.Equal(t, 1, checks)
	require.Empty(t, res.Live)

	// The freed first block is handed out again to the third allocation.
	require.Equal(t, buddy.Ref(16), res.Outcomes[0].Ref)
	require.Equal(t, buddy.Ref(144), res.Outcomes[1].Ref)
	require.Equal(t, res.Outcomes[0].Ref, res.Outcomes[3].Ref)

	blocks, err := a.Layout()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, buddy.StatusFree, blocks[0].Status)
}

func TestReplay_RecordsAllocatorErrors(t *testing.T) {
	a := newReferenceArena(t)
	ops := mustParse(t, "alloc big 65536\nalloc all 65520\nalloc more 1\ncheck\n")

	res, err := Replay(a, ops, Options{Check: func() error { return verify.AllInvariants(a) }})
	require.NoError(t, err)

	require.ErrorIs(t, res.Outcomes[0].Err, buddy.ErrRequestTooLarge)
	require.NoError(t, res.Outcomes[1].Err)
	require.ErrorIs(t, res.Outcomes[2].Err, buddy.ErrOutOfMemory)
	require.Equal(t, 2, res.Failures)
	require.Equal(t, 1, res.Allocs)
	require.Equal(t, map[string]buddy.Ref{"all": 16}, res.Live)
}

func TestReplay_StopOnAllocatorError(t *testing.T) {
	a := newReferenceArena(t)
	ops := mustParse(t, "alloc big 65536\nalloc small 1\n")

	res, err := Replay(a, ops, Options{StopOnAllocatorError: true})
	require.ErrorIs(t, err, buddy.ErrRequestTooLarge)
	require.Contains(t, err.Error(), "line 1")
	require.Len(t, res.Outcomes, 1)
}

func TestReplay_TraceErrors(t *testing.T) {
	tests := []struct {
		name  string
		trace string
		msg   string
	}{
		{"free unknown", "free ghost\n", `"ghost" is not allocated`},
		{"free twice", "alloc x 1\nfree x\nfree x\n", `line 3: "x" is not allocated`},
		{"name reused", "alloc x 1\nalloc x 2\n", `"x" is already allocated`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newReferenceArena(t)
			_, err := Replay(a, mustParse(t, tt.trace), Options{})
			require.ErrorIs(t, err, ErrReplay)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReplay_CheckFailure(t *testing.T) {
	a := newReferenceArena(t)
	boom := errors.New("boom")

	res, err := Replay(a, mustParse(t, "alloc x 1\ncheck\nfree x\n"), Options{
		Check: func() error { return boom },
	})
	require.ErrorIs(t, err, ErrReplay)
	require.ErrorIs(t, err, boom)
	require.Len(t, res.Outcomes, 2)
	require.Equal(t, 1, res.Allocs)
	require.Zero(t, res.Frees)
}

// sharedAllocator hands every caller the same buffer so payloads clobber
// each other.
type sharedAllocator struct {
	buf  []byte
	next buddy.Ref
}

func (s *sharedAllocator) Alloc(n int) (buddy.Ref, []byte, error) {
	s.next += 32
	return s.next, s.buf[:n], nil
}

func (s *sharedAllocator) Free(buddy.Ref) error { return nil }

func TestReplay_DetectsPayloadCorruption(t *testing.T) {
	a := &sharedAllocator{buf: make([]byte, 64)}

	_, err := Replay(a, mustParse(t, "alloc x 8\nalloc y 8\nfree x\n"), Options{CheckPayload: true})
	require.ErrorIs(t, err, ErrReplay)
	require.Contains(t, err.Error(), `payload of "x" corrupted at byte 0`)

	// Without payload checks the same trace replays cleanly.
	a = &sharedAllocator{buf: make([]byte, 64)}
	res, err := Replay(a, mustParse(t, "alloc x 8\nalloc y 8\nfree x\n"), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Frees)
}

func TestReplay_SyncArena(t *testing.T) {
	cfg := buddy.ConfigReference
	cfg.Mapper = func(size int) ([]byte, func() error, error) {
		return make([]byte, size), func() error { return nil }, nil
	}
	s, err := buddy.NewSync(&cfg)
	require.NoError(t, err)
	defer s.Close()

	res, err := Replay(s, mustParse(t, sampleTrace), Options{CheckPayload: true})
	require.NoError(t, err)
	require.Equal(t, 3, res.Frees)
	require.Equal(t, 3, s.Stats().FreeCalls)
}
