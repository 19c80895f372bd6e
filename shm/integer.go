package shm

import (
	"encoding/binary"
	"fmt"
)

// IntegerOp implements integer_op(key, op, mask). It is restricted
// to slots whose type_flag carries BIGUINT; mask is the operand for AND,
// OR, XOR, INC, and DEC (NOT is unary and ignores mask).
func IntegerOp(r *Region, key []byte, op IntOp, mask uint64) error {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("integer_op %q: %w", key, ErrNotFound)
	}

	start, ok := tryAcquireWrite(s)
	if !ok {
		return fmt.Errorf("integer_op %q: %w", key, ErrRetry)
	}
	if s.hash.Load() != hash || !keyEquals(key, s) {
		abortWrite(s, start)
		return fmt.Errorf("integer_op %q: %w", key, ErrNotFound)
	}
	if s.typeFlag.Load()&TypeBiguint == 0 {
		abortWrite(s, start)
		return fmt.Errorf("integer_op %q: %w", key, ErrTypeMismatch)
	}

	arena := r.arena()
	buf := arena[s.valOff : s.valOff+8]
	v := binary.LittleEndian.Uint64(buf)

	switch op {
	case OpAnd:
		v &= mask
	case OpOr:
		v |= mask
	case OpXor:
		v ^= mask
	case OpNot:
		v = ^v
	case OpInc:
		v += mask
	case OpDec:
		v -= mask
	default:
		abortWrite(s, start)
		return fmt.Errorf("integer_op %q: %w", key, ErrInvalid)
	}

	binary.LittleEndian.PutUint64(buf, v)
	commitWrite(s, start)

	pulse(r, s)
	r.Header().epoch.Add(1)
	return nil
}

// SetNamedType implements set_named_type(key, mask). Converting to
// BIGUINT with a payload shorter than 8 bytes relocates the value into the
// arena's bump region: if the existing bytes begin with an ASCII decimal
// digit, they are parsed as an unsigned decimal numeral (up to 15 bytes);
// otherwise the raw bytes are copied, zero-extended.
func SetNamedType(r *Region, key []byte, mask uint32) error {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return fmt.Errorf("set_named_type %q: %w", key, ErrNotFound)
	}

	start, ok := tryAcquireWrite(s)
	if !ok {
		return fmt.Errorf("set_named_type %q: %w", key, ErrRetry)
	}
	if s.hash.Load() != hash || !keyEquals(key, s) {
		abortWrite(s, start)
		return fmt.Errorf("set_named_type %q: %w", key, ErrNotFound)
	}

	if mask&TypeBiguint != 0 && s.valLen.Load() < 8 {
		if err := convertToBiguint(r, s); err != nil {
			abortWrite(s, start)
			return fmt.Errorf("set_named_type %q: %w", key, err)
		}
	}

	s.typeFlag.Store(mask)
	commitWrite(s, start)
	r.Header().epoch.Add(1)
	return nil
}

// convertToBiguint must be called with the seqlock already held on s. It
// carves its 8 bytes out of the bump region trailing the partitioned value
// arena, never out of another slot's live partition.
func convertToBiguint(r *Region, s *Slot) error {
	h := r.Header()
	limit := h.valSz + bumpCapacity(h.slots)
	for {
		brk := h.valBrk.Load()
		newBrk := brk + 8
		if newBrk > limit {
			return ErrNoMem
		}
		if h.valBrk.CompareAndSwap(brk, newBrk) {
			old := r.arena()[s.valOff : s.valOff+uint64(s.valLen.Load())]
			v := decimalOrRaw(old)

			var encoded [8]byte
			binary.LittleEndian.PutUint64(encoded[:], v)
			copy(r.arena()[brk:brk+8], encoded[:])

			s.valOff = brk
			s.valLen.Store(8)
			return nil
		}
	}
}

func decimalOrRaw(b []byte) uint64 {
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		n := len(b)
		if n > 15 {
			n = 15
		}
		var v uint64
		for _, c := range b[:n] {
			if c < '0' || c > '9' {
				break
			}
			v = v*10 + uint64(c-'0')
		}
		return v
	}
	var encoded [8]byte
	n := len(b)
	if n > 8 {
		n = 8
	}
	copy(encoded[:n], b[:n])
	return binary.LittleEndian.Uint64(encoded[:])
}
