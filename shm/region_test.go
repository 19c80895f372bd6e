package shm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreate_RejectsZeroGeometry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "a"), 0, 64)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Create(filepath.Join(dir, "b"), 16, 0)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestOpenOrCreate_CreatesThenReopens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "region")

	r1, err := OpenOrCreate(path, 8, 32)
	require.NoError(t, err)
	require.NoError(t, Set(r1, []byte("k"), []byte("v")))
	require.NoError(t, r1.Close())

	r2, err := OpenOrCreate(path, 8, 32)
	require.NoError(t, err)
	defer r2.Close()

	buf := make([]byte, 8)
	n, err := Get(r2, []byte("k"), buf)
	require.NoError(t, err)
	require.Equal(t, "v", string(buf[:n]))
}

func TestCreateOrOpen_CreatesThenFallsBackToOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "region")

	r1, err := CreateOrOpen(path, 8, 32)
	require.NoError(t, err)
	require.NoError(t, Set(r1, []byte("k"), []byte("v")))
	require.NoError(t, r1.Close())

	r2, err := CreateOrOpen(path, 8, 32)
	require.NoError(t, err)
	defer r2.Close()

	buf := make([]byte, 8)
	n, err := Get(r2, []byte("k"), buf)
	require.NoError(t, err)
	require.Equal(t, "v", string(buf[:n]))
}

func TestOpen_RejectsTruncatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "region")
	r, err := Create(path, 4, 16)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, os.Truncate(path, 1))

	_, err = Open(path)
	require.Error(t, err)
}
