package shm

import "fmt"

// SetEmbedding implements set_embedding(key, vec): copies EmbedDim
// 32-bit floats into the slot's fixed embedding area, distinct from the
// value arena. A region built with the nosplinterembed tag rejects any
// non-empty vector since EmbedDim is 0.
func SetEmbedding(r *Region, key []byte, vec []float32) error {
	if len(vec) != EmbedDim {
		return fmt.Errorf("set_embedding %q: %w", key, ErrInvalid)
	}
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("set_embedding %q: %w", key, ErrNotFound)
	}

	start, ok := tryAcquireWrite(s)
	if !ok {
		return fmt.Errorf("set_embedding %q: %w", key, ErrRetry)
	}
	if s.hash.Load() != hash || !keyEquals(key, s) {
		abortWrite(s, start)
		return fmt.Errorf("set_embedding %q: %w", key, ErrNotFound)
	}

	copy(s.embed[:], vec)
	commitWrite(s, start)

	pulse(r, s)
	r.Header().epoch.Add(1)
	return nil
}

// GetEmbedding implements get_embedding(key), mirroring the
// ordinary seqlock reader protocol.
func GetEmbedding(r *Region, key []byte) ([]float32, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return nil, fmt.Errorf("get_embedding %q: %w", key, ErrNotFound)
	}

	out := make([]float32, EmbedDim)
	rerr := readSeqlock(s, func() {
		copy(out, s.embed[:])
	})
	if rerr != nil {
		return nil, fmt.Errorf("get_embedding %q: %w", key, rerr)
	}
	return out, nil
}
