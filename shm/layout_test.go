package shm

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestHeaderSize_CacheLineAligned(t *testing.T) {
	t.Parallel()
	require.Zero(t, unsafe.Sizeof(Header{})%64, "header size must be a multiple of 64")
}

func TestSlotSize_CacheLineAligned(t *testing.T) {
	t.Parallel()
	require.Zero(t, unsafe.Sizeof(Slot{})%64, "slot size must be a multiple of 64")
}

func TestTotalSize_MatchesGeometry(t *testing.T) {
	t.Parallel()

	const slots, maxVal = 16, 64
	got := totalSize(slots, maxVal)
	want := uint64(headerSize) + slots*uint64(slotSize) + slots*maxVal + bumpCapacity(slots)
	require.Equal(t, want, got)
}
