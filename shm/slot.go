package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Slot is one 64-byte-aligned table entry. hash == 0 means free; the
// key buffer of a free slot is never consulted.
type Slot struct {
	hash   atomic.Uint64
	epoch  atomic.Uint64 // seqlock: even = quiescent, odd = writer active
	valOff uint64        // current value offset; moves into the bump
	// region once the slot is BIGUINT-converted
	valLen   atomic.Uint32
	typeFlag atomic.Uint32 // one-hot, low byte meaningful
	userFlag atomic.Uint32 // low byte meaningful
	_pad0    [4]byte

	// homeOff is the slot's fixed per-slot arena partition offset,
	// assigned once at create time and never overwritten. unset()
	// restores valOff here so a reused slot never keeps writing into a
	// stale bump-region address.
	homeOff uint64

	watcherMask atomic.Uint64
	ctime       atomic.Uint64
	atime       atomic.Uint64
	bloom       atomic.Uint64

	key   [keyCap]byte
	_pad1 [48]byte

	embed embeddingArea
}

const slotSize = unsafe.Sizeof(Slot{})

func init() {
	if slotSize%64 != 0 {
		panic(fmt.Sprintf("shm: slot size %d is not cache-line aligned", slotSize))
	}
}

// slotAt returns a pointer to slot i within the mapped region. offset is
// the byte offset of slots[0] (== headerSize).
func slotAt(data []byte, offset, i uint64) *Slot {
	return (*Slot)(unsafe.Pointer(&data[offset+i*uint64(slotSize)]))
}

// keyBytes returns the slot's key up to its null terminator. Not safe to
// call without holding or having validated the seqlock.
func (s *Slot) keyBytes() []byte {
	n := 0
	for n < len(s.key) && s.key[n] != 0 {
		n++
	}
	return s.key[:n:n]
}

// setKey copies key into the slot's fixed buffer, truncating to MaxKeyLen
// and always null-terminating.
func (s *Slot) setKey(key []byte) {
	n := len(key)
	if n > MaxKeyLen {
		n = MaxKeyLen
	}
	copy(s.key[:], key[:n])
	for i := n; i < keyCap; i++ {
		s.key[i] = 0
	}
}

func keyEquals(a []byte, s *Slot) bool {
	n := len(a)
	if n > MaxKeyLen {
		n = MaxKeyLen
	}
	if n >= keyCap || s.key[n] != 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if s.key[i] != a[i] {
			return false
		}
	}
	return true
}
