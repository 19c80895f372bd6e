package shm

import (
	"fmt"
	"time"
)

// findSlot performs a read-only bounded linear probe over up to slots
// positions looking for an occupied slot whose hash and key both match.
// It never stops early on an empty slot: because unset() clears hash in
// place instead of leaving a tombstone, an earlier deletion can expose an
// empty cell in front of a key that still lives further down its probe
// chain. Stopping early would silently hide that key, so the scan always
// walks the full bound.
func findSlot(r *Region, key []byte, hash uint64) (idx uint64, s *Slot, found bool) {
	slots := r.slotCount()
	start := probeIndex(hash, slots)
	for i := uint64(0); i < slots; i++ {
		at := (start + i) % slots
		slot := r.slot(at)
		if slot.hash.Load() == hash && keyEquals(key, slot) {
			return at, slot, true
		}
	}
	return 0, nil, false
}

// acquireForSet walks the probe chain from hash's home position and
// acquires the seqlock on the first slot that is either free or already
// bound to key. If the probe target no longer satisfies that condition
// once locked, the lock is released and probing continues.
func acquireForSet(r *Region, key []byte, hash uint64) (idx uint64, s *Slot, start uint64, err error) {
	slots := r.slotCount()
	home := probeIndex(hash, slots)
	for i := uint64(0); i < slots; i++ {
		at := (home + i) % slots
		slot := r.slot(at)
		h := slot.hash.Load()
		if !(h == 0 || (h == hash && keyEquals(key, slot))) {
			continue
		}
		st, ok := tryAcquireWrite(slot)
		if !ok {
			continue // writer active elsewhere; try the next position
		}
		h2 := slot.hash.Load()
		if !(h2 == 0 || (h2 == hash && keyEquals(key, slot))) {
			abortWrite(slot, st)
			continue
		}
		return at, slot, st, nil
	}
	return 0, nil, 0, ErrFull
}

func roundUp64(n uint64) uint64 { return (n + 63) &^ 63 }

// applyScrub zeroes value bytes inside the critical section per the
// header's current scrub policy, read fresh on every write.
func applyScrub(r *Region, s *Slot) {
	flags := r.Header().coreFlags.Load()
	if flags&FlagAutoScrub == 0 {
		return
	}
	arena := r.arena()
	maxSz := r.Header().maxValSz
	base := s.valOff
	if flags&FlagHybrid != 0 {
		n := roundUp64(uint64(s.valLen.Load()))
		if n > maxSz {
			n = maxSz
		}
		zero(arena[base : base+n])
		return
	}
	zero(arena[base : base+maxSz])
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Set implements set(key, val).
func Set(r *Region, key, val []byte) error {
	if len(val) == 0 || uint64(len(val)) > r.Header().maxValSz {
		return fmt.Errorf("set %q: %w", key, ErrInvalid)
	}
	hash := fnv1a(key)

	idx, s, start, err := acquireForSet(r, key, hash)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	_ = idx

	if s.valOff+uint64(len(val)) > r.Header().valSz {
		abortWrite(s, start)
		return fmt.Errorf("set %q: %w", key, ErrFull)
	}

	applyScrub(r, s)

	arena := r.arena()
	copy(arena[s.valOff:s.valOff+uint64(len(val))], val)
	s.valLen.Store(uint32(len(val)))
	s.setKey(key)

	// Publish: hash is the final commit making the slot addressable.
	s.hash.Store(hash)
	commitWrite(s, start)

	pulse(r, s)
	r.Header().epoch.Add(1)
	return nil
}

// Get implements get(key, buf). If buf is nil, only the length is
// returned, as n.
func Get(r *Region, key []byte, buf []byte) (n int, err error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return 0, fmt.Errorf("get %q: %w", key, ErrNotFound)
	}

	var outLen uint32
	var bufTooSmall bool
	rerr := readSeqlock(s, func() {
		outLen = s.valLen.Load()
		if buf == nil {
			return
		}
		if uint32(len(buf)) < outLen {
			bufTooSmall = true
			return
		}
		copy(buf, r.arena()[s.valOff:s.valOff+uint64(outLen)])
	})
	if rerr != nil {
		return 0, fmt.Errorf("get %q: %w", key, rerr)
	}
	if bufTooSmall {
		return int(outLen), fmt.Errorf("get %q: %w", key, ErrBufferTooSmall)
	}
	return int(outLen), nil
}

// Unset implements unset(key), returning the payload length the
// slot held before deletion.
func Unset(r *Region, key []byte) (int, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return 0, fmt.Errorf("unset %q: %w", key, ErrNotFound)
	}

	start, ok := tryAcquireWrite(s)
	if !ok {
		return 0, fmt.Errorf("unset %q: %w", key, ErrRetry)
	}
	// Re-validate: the slot may have been freed between findSlot and lock.
	if s.hash.Load() != hash || !keyEquals(key, s) {
		abortWrite(s, start)
		return 0, fmt.Errorf("unset %q: %w", key, ErrNotFound)
	}

	prevLen := int(s.valLen.Load())

	s.hash.Store(0) // unreachable to new probers from here on

	flags := r.Header().coreFlags.Load()
	if flags&FlagAutoScrub != 0 {
		// Only the live payload bytes are guaranteed to belong to this
		// slot: a BIGUINT-converted slot's valOff points into the shared
		// bump region, which holds just prevLen (8) bytes for it, not a
		// full maxValSz partition.
		zero(r.arena()[s.valOff : s.valOff+uint64(prevLen)])
		zero(s.key[:])
	} else {
		s.key[0] = 0
	}

	// A converted slot's valOff may point into the bump region; restore
	// it to the slot's own partition so the next set() never writes a
	// full-size value into an 8-byte bump allocation.
	s.valOff = s.homeOff

	s.typeFlag.Store(TypeVoid)
	s.valLen.Store(0)
	s.ctime.Store(0)
	s.atime.Store(0)
	s.userFlag.Store(0)
	s.watcherMask.Store(0)
	s.bloom.Store(0)

	commitWrite(s, start)
	r.Header().epoch.Add(1)
	return prevLen, nil
}

// List implements list(): an unlocked best-effort scan returning
// the keys of every occupied, non-empty slot.
func List(r *Region) []string {
	slots := r.slotCount()
	out := make([]string, 0, 16)
	for i := uint64(0); i < slots; i++ {
		s := r.slot(i)
		if s.hash.Load() != 0 && s.valLen.Load() > 0 {
			out = append(out, string(s.keyBytes()))
		}
	}
	return out
}

// Poll implements poll(key, timeout): a cooperative, non-kernel
// wait for the slot's epoch to change.
func Poll(r *Region, key []byte, timeout time.Duration) error {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("poll %q: %w", key, ErrNotFound)
	}

	start := s.epoch.Load()
	if start&1 != 0 {
		return fmt.Errorf("poll %q: %w", key, ErrRetry)
	}

	const quantum = 10 * time.Millisecond
	deadline := time.Now().Add(timeout)
	for {
		cur := s.epoch.Load()
		if cur&1 != 0 {
			return fmt.Errorf("poll %q: %w", key, ErrRetry)
		}
		if cur != start {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("poll %q: %w", key, ErrTimeout)
		}
		sleep := quantum
		if remaining := time.Until(deadline); remaining < sleep {
			sleep = remaining
		}
		time.Sleep(sleep)
	}
}
