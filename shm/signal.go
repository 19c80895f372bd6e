package shm

import "fmt"

// WatchRegister implements watch_register(key, group): sets bit
// group in the addressed slot's watcher_mask.
func WatchRegister(r *Region, key []byte, group int) error {
	if group < 0 || group >= NumBloomBits {
		return fmt.Errorf("watch_register %q: %w", key, ErrInvalid)
	}
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("watch_register %q: %w", key, ErrNotFound)
	}
	s.watcherMask.Or(uint64(1) << uint(group))
	return nil
}

// WatchUnregister implements watch_unregister(key, group).
func WatchUnregister(r *Region, key []byte, group int) error {
	if group < 0 || group >= NumBloomBits {
		return fmt.Errorf("watch_unregister %q: %w", key, ErrInvalid)
	}
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("watch_unregister %q: %w", key, ErrNotFound)
	}
	s.watcherMask.And(^(uint64(1) << uint(group)))
	return nil
}

// WatchLabelRegister implements watch_label_register(mask, group):
// for each bit set in mask, routes that label bit to group, overwriting
// any prior routing.
func WatchLabelRegister(r *Region, mask uint64, group int) error {
	if group < 0 || group >= NumBloomBits {
		return fmt.Errorf("watch_label_register: %w", ErrInvalid)
	}
	h := r.Header()
	for bit := 0; bit < NumBloomBits; bit++ {
		if mask&(uint64(1)<<uint(bit)) != 0 {
			h.bloomWatches[bit].Store(uint32(group))
		}
	}
	return nil
}

// SetLabel implements set_label(key, mask): OR mask into the
// slot's bloom label set.
func SetLabel(r *Region, key []byte, mask uint64) error {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("set_label %q: %w", key, ErrNotFound)
	}
	s.bloom.Or(mask)
	r.Header().epoch.Add(1)
	return nil
}

// pulse runs the signal-arena notification at write commit: one
// increment per watcher bit set, plus one per matched, routed label bit.
func pulse(r *Region, s *Slot) {
	h := r.Header()
	watchers := s.watcherMask.Load()
	for bit := 0; bit < NumBloomBits; bit++ {
		if watchers&(uint64(1)<<uint(bit)) != 0 {
			h.signalGroups[bit].counter.Add(1)
		}
	}
	labels := s.bloom.Load()
	for bit := 0; bit < NumBloomBits; bit++ {
		if labels&(uint64(1)<<uint(bit)) == 0 {
			continue
		}
		group := h.bloomWatches[bit].Load()
		if group != NoWatcher {
			h.signalGroups[group].counter.Add(1)
		}
	}
}

// GetSignalCount implements get_signal_count(group).
func GetSignalCount(r *Region, group int) (uint64, error) {
	if group < 0 || group >= NumBloomBits {
		return 0, fmt.Errorf("get_signal_count: %w", ErrInvalid)
	}
	return r.Header().signalGroups[group].counter.Load(), nil
}
