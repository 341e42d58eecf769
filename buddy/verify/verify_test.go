package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/buddykit/buddy"
)

// newExposedArena returns an arena whose backing memory the test can corrupt.
func newExposedArena(t *testing.T) (*buddy.Arena, *[]byte) {
	t.Helper()
	var mem []byte
	cfg := buddy.ConfigReference
	cfg.Mapper = func(size int) ([]byte, func() error, error) {
		mem = make([]byte, size)
		return mem, func() error { return nil }, nil
	}
	a, err := buddy.New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &mem
}

func requireValidationError(t *testing.T, err error, typ string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	require.Equal(t, typ, ve.Type)
	return ve
}

func Test_AllInvariantsUnmapped(t *testing.T) {
	a, _ := newExposedArena(t)
	require.NoError(t, AllInvariants(a))
}

func Test_AllInvariantsHealthy(t *testing.T) {
	a, _ := newExposedArena(t)

	var refs []buddy.Ref
	for _, n := range []int{100, 100, 0, 5000, 17, 300} {
		ref, _, err := a.Alloc(n)
		require.NoError(t, err)
		refs = append(refs, ref)
		require.NoError(t, AllInvariants(a))
	}
	for _, ref := range refs {
		require.NoError(t, a.Free(ref))
		require.NoError(t, AllInvariants(a))
	}
}

func Test_PartitionMisalignedBlock(t *testing.T) {
	a, mem := newExposedArena(t)
	_, _, err := a.Alloc(100) // taken L2 at 0, free L2 at 128
	require.NoError(t, err)

	(*mem)[128+3] = 3 // claim the free block at 128 is 256 bytes
	ve := requireValidationError(t, Partition(a), "Partition")
	require.Equal(t, int64(128), ve.Offset)
}

func Test_PartitionBrokenWalk(t *testing.T) {
	a, mem := newExposedArena(t)
	_, _, err := a.Alloc(100)
	require.NoError(t, err)

	(*mem)[3] = 1 // block at 0 now claims 64 bytes; 64 holds no header
	ve := requireValidationError(t, Partition(a), "Partition")
	require.Equal(t, int64(-1), ve.Offset)
	require.Contains(t, ve.Error(), "layout walk failed")
}

func Test_FreeListsStatusMismatch(t *testing.T) {
	a, mem := newExposedArena(t)
	_, _, err := a.Alloc(100)
	require.NoError(t, err)

	(*mem)[128+2] = byte(buddy.StatusTaken)
	require.NoError(t, Partition(a))
	ve := requireValidationError(t, FreeLists(a), "FreeLists")
	require.Equal(t, int64(128), ve.Offset)
	require.Contains(t, ve.Message, "taken")
}

func Test_FreeListsUnlistedFreeBlock(t *testing.T) {
	a, mem := newExposedArena(t)
	_, _, err := a.Alloc(100)
	require.NoError(t, err)

	(*mem)[2] = byte(buddy.StatusFree) // free in the header, absent from the lists
	ve := requireValidationError(t, FreeLists(a), "FreeLists")
	require.Contains(t, ve.Message, "on free lists")
}

func Test_NoFreeBuddiesDetectsUnmergedPair(t *testing.T) {
	a, mem := newExposedArena(t)
	_, _, err := a.Alloc(1) // L0 at 0
	require.NoError(t, err)
	_, _, err = a.Alloc(1) // L0 at 32
	require.NoError(t, err)
	require.NoError(t, NoFreeBuddies(a))

	(*mem)[2] = byte(buddy.StatusFree)
	(*mem)[32+2] = byte(buddy.StatusFree)
	ve := requireValidationError(t, NoFreeBuddies(a), "NoFreeBuddies")
	require.Equal(t, int64(0), ve.Offset)
	requireValidationError(t, AllInvariants(a), "FreeLists")
}

func Test_ValidationErrorString(t *testing.T) {
	e := &ValidationError{Type: "Partition", Message: "gap", Offset: 0x40}
	require.Equal(t, "Partition at offset 0x40: gap", e.Error())
	e.Offset = -1
	require.Equal(t, "Partition: gap", e.Error())
}
