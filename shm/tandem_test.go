package shm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTandem_SetAndUnset(t *testing.T) {
	t.Parallel()

	r := newTestRegion(t, 16, 64)
	vals := [][]byte{[]byte("base-val"), []byte("first"), []byte("second")}
	require.NoError(t, SetTandem(r, "vec", vals))

	buf := make([]byte, 64)
	n, err := Get(r, []byte("vec"), buf)
	require.NoError(t, err)
	require.Equal(t, "base-val", string(buf[:n]))

	n, err = Get(r, []byte("vec.1"), buf)
	require.NoError(t, err)
	require.Equal(t, "first", string(buf[:n]))

	n, err = Get(r, []byte("vec.2"), buf)
	require.NoError(t, err)
	require.Equal(t, "second", string(buf[:n]))

	require.NoError(t, UnsetTandem(r, "vec", len(vals)))
	_, err = Get(r, []byte("vec"), nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = Get(r, []byte("vec.1"), nil)
	require.ErrorIs(t, err, ErrNotFound)
}
