package shm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchRegister_PulsesOnWrite(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))
	require.NoError(t, WatchRegister(r, []byte("k"), 5))

	c0, err := GetSignalCount(r, 5)
	require.NoError(t, err)

	require.NoError(t, Set(r, []byte("k"), []byte("v2")))

	c1, err := GetSignalCount(r, 5)
	require.NoError(t, err)
	require.Equal(t, c0+1, c1)
}

func TestWatchRegisterUnregister_Idempotent(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))

	before, err := GetSlotSnapshot(r, []byte("k"))
	require.NoError(t, err)

	require.NoError(t, WatchRegister(r, []byte("k"), 2))
	require.NoError(t, WatchUnregister(r, []byte("k"), 2))

	after, err := GetSlotSnapshot(r, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, before.Watcher, after.Watcher)
}

func TestSetLabel_IsAdditive(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))
	require.NoError(t, SetLabel(r, []byte("k"), 0b0001))
	require.NoError(t, SetLabel(r, []byte("k"), 0b0100))

	snap, err := GetSlotSnapshot(r, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, uint64(0b0101), snap.Bloom)
}

func TestWatchRegister_InvalidGroup(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))
	require.ErrorIs(t, WatchRegister(r, []byte("k"), 64), ErrInvalid)
	require.ErrorIs(t, WatchRegister(r, []byte("k"), -1), ErrInvalid)
}
