package shm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrub_HybridRequiresMasterBit(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 4, 128)
	SetHybridScrub(r)
	require.True(t, AutoScrubEnabled(r))
	require.True(t, HybridScrubEnabled(r))

	SetAutoScrub(r, false)
	require.False(t, AutoScrubEnabled(r))
	require.False(t, HybridScrubEnabled(r), "clearing the master bit must also clear hybrid")
}

func TestPurge_NeverTouchesLivePayload(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 4, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("hello")))

	Purge(r)

	buf := make([]byte, 5)
	n, err := Get(r, []byte("k"), buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestPurge_ZeroesFreeSlotTrailingBytes(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 4, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("hello")))
	_, err := Unset(r, []byte("k"))
	require.NoError(t, err)

	Purge(r)

	arena := r.arena()
	for _, b := range arena[:64] {
		require.Zero(t, b)
	}
}

func TestPurgeParallel_MatchesSerialPurgeSemantics(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 32, 64)
	for i := 0; i < 20; i++ {
		key := []byte{byte('a' + i)}
		require.NoError(t, Set(r, key, []byte("hello")))
		if i%2 == 0 {
			_, err := Unset(r, key)
			require.NoError(t, err)
		}
	}

	require.NoError(t, PurgeParallel(context.Background(), r))

	for i := 0; i < 20; i++ {
		key := []byte{byte('a' + i)}
		if i%2 == 0 {
			continue
		}
		buf := make([]byte, 5)
		n, err := Get(r, key, buf)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buf[:n]))
	}
}

func TestPurgeParallel_ZeroesFreeSlotTrailingBytes(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 4, 64)
	require.NoError(t, Set(r, []byte("k"), []byte("hello")))
	_, err := Unset(r, []byte("k"))
	require.NoError(t, err)

	require.NoError(t, PurgeParallel(context.Background(), r))

	arena := r.arena()
	for _, b := range arena[:64] {
		require.Zero(t, b)
	}
}
