package shm

import "fmt"

// RawView is the non-owning escape hatch returned by GetRawPtr. It is never valid once the
// region is closed or the slot's epoch has moved; callers MUST re-check
// Epoch after consuming Data to detect tearing — Data itself carries no
// ownership or locking.
type RawView struct {
	Data  []byte
	Len   int
	Epoch uint64
}

// GetRawPtr implements get_raw_ptr(key). The caller is required to
// verify Epoch is even and to re-read the slot's epoch after using Data.
func GetRawPtr(r *Region, key []byte) (RawView, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return RawView{}, fmt.Errorf("get_raw_ptr %q: %w", key, ErrNotFound)
	}
	e := s.epoch.Load()
	n := s.valLen.Load()
	arena := r.arena()
	capEnd := s.valOff + r.Header().maxValSz
	if s.valOff >= r.Header().valSz {
		capEnd = s.valOff + 8 // 8-byte chunk in the BIGUINT bump region
	}
	return RawView{
		Data:  arena[s.valOff : s.valOff+uint64(n) : capEnd],
		Len:   int(n),
		Epoch: e,
	}, nil
}

// CurrentEpoch re-samples a slot's epoch for tear detection against a
// previously obtained RawView.
func CurrentEpoch(r *Region, key []byte) (uint64, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return 0, fmt.Errorf("epoch %q: %w", key, ErrNotFound)
	}
	return s.epoch.Load(), nil
}

// SlotSnapshot is the non-atomic client struct returned by
// get_slot_snapshot.
type SlotSnapshot struct {
	Key       string
	ValLen    uint32
	TypeFlag  uint32
	UserFlag  uint32
	Watcher   uint64
	Ctime     uint64
	Atime     uint64
	Bloom     uint64
	Value     []byte
	Embedding []float32
}

// GetSlotSnapshot implements get_slot_snapshot(key): the seqlock
// reader loop over all slot metadata, the value bytes, and the optional
// embedding vector.
func GetSlotSnapshot(r *Region, key []byte) (SlotSnapshot, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return SlotSnapshot{}, fmt.Errorf("get_slot_snapshot %q: %w", key, ErrNotFound)
	}

	var out SlotSnapshot
	rerr := readSeqlock(s, func() {
		n := s.valLen.Load()
		out = SlotSnapshot{
			Key:      string(s.keyBytes()),
			ValLen:   n,
			TypeFlag: s.typeFlag.Load(),
			UserFlag: s.userFlag.Load(),
			Watcher:  s.watcherMask.Load(),
			Ctime:    s.ctime.Load(),
			Atime:    s.atime.Load(),
			Bloom:    s.bloom.Load(),
		}
		out.Value = append([]byte(nil), r.arena()[s.valOff:s.valOff+uint64(n)]...)
		if EmbedDim > 0 {
			out.Embedding = append([]float32(nil), s.embed[:]...)
		}
	})
	if rerr != nil {
		return SlotSnapshot{}, fmt.Errorf("get_slot_snapshot %q: %w", key, rerr)
	}
	return out, nil
}

// SetSlotTime implements set_slot_time(key, mode, epoch, offset):
// a reader-style check (no write lock) storing epoch-offset into ctime or
// atime depending on mode.
func SetSlotTime(r *Region, key []byte, mode TimeMode, epoch, offset uint64) error {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("set_slot_time %q: %w", key, ErrNotFound)
	}
	if s.epoch.Load()&1 != 0 {
		return fmt.Errorf("set_slot_time %q: %w", key, ErrRetry)
	}

	switch mode {
	case CTime:
		s.ctime.Store(epoch - offset)
	case ATime:
		s.atime.Store(epoch - offset)
	default:
		return fmt.Errorf("set_slot_time %q: %w", key, ErrUnsupported)
	}
	return nil
}
