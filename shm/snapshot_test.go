package shm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGetSlotSnapshot_MatchesWrittenState(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("hello")))
	require.NoError(t, WatchRegister(r, []byte("k"), 3))
	require.NoError(t, SetLabel(r, []byte("k"), 1<<2))

	got, err := GetSlotSnapshot(r, []byte("k"))
	require.NoError(t, err)

	want := SlotSnapshot{
		Key:      "k",
		ValLen:   5,
		TypeFlag: TypeVoid,
		UserFlag: 0,
		Watcher:  1 << 3,
		Ctime:    0,
		Atime:    0,
		Bloom:    1 << 2,
		Value:    []byte("hello"),
	}
	if EmbedDim > 0 {
		want.Embedding = make([]float32, EmbedDim)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSlotSnapshot_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	_, err := GetSlotSnapshot(r, []byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetRawPtr_EpochTearCheck(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v1")))

	view, err := GetRawPtr(r, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(view.Data))
	require.Zero(t, view.Epoch%2, "epoch must be even outside a write")

	cur, err := CurrentEpoch(r, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, view.Epoch, cur)

	require.NoError(t, Set(r, []byte("k"), []byte("v2")))
	cur, err = CurrentEpoch(r, []byte("k"))
	require.NoError(t, err)
	require.NotEqual(t, view.Epoch, cur, "epoch must advance after a write commits")
}

func TestSetSlotTime_CtimeAndAtime(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))

	require.NoError(t, SetSlotTime(r, []byte("k"), CTime, 100, 10))
	require.NoError(t, SetSlotTime(r, []byte("k"), ATime, 100, 20))

	snap, err := GetSlotSnapshot(r, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, uint64(90), snap.Ctime)
	require.Equal(t, uint64(80), snap.Atime)
}

func TestSetSlotTime_UnsupportedMode(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))
	require.ErrorIs(t, SetSlotTime(r, []byte("k"), TimeMode(99), 0, 0), ErrUnsupported)
}

func TestHeaderSnapshot_ReflectsGeometryAndCounters(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 8, 32)
	require.NoError(t, Set(r, []byte("k"), []byte("v")))

	snap := r.Header().Snapshot()
	require.Equal(t, Magic, snap.Magic)
	require.Equal(t, Version, snap.Version)
	require.Equal(t, uint64(8), snap.Slots)
	require.Equal(t, uint64(32), snap.MaxValSize)
	require.Equal(t, uint64(8*32), snap.ValSize)
	require.Equal(t, uint64(1), snap.Epoch)
}
