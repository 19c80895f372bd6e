package shm

// The seqlock protocol. Each slot's epoch is the sequence counter:
// even means quiescent, odd means a writer is active. A writer CASes
// epoch from an even value to epoch+1 to acquire, performs plain field
// writes, then stores epoch+2 (even) to commit. A reader loads epoch
// (acquire); if odd it retries; otherwise it reads the payload, then
// reloads epoch and retries unless the two samples match and are even.

// tryAcquireWrite attempts to move the slot from quiescent to
// writer-active. It returns the even epoch value that was observed and
// whether the CAS succeeded.
func tryAcquireWrite(s *Slot) (start uint64, ok bool) {
	cur := s.epoch.Load()
	if cur&1 != 0 {
		return 0, false // writer already active
	}
	if !s.epoch.CompareAndSwap(cur, cur+1) {
		return 0, false
	}
	return cur, true
}

// commitWrite ends the critical section begun at start, restoring even
// parity two past the observed start value.
func commitWrite(s *Slot, start uint64) {
	s.epoch.Store(start + 2)
}

// abortWrite restores even parity without having changed the payload.
func abortWrite(s *Slot, start uint64) {
	s.epoch.Store(start + 2)
}

// readSeqlock runs body() under the reader protocol: it loads epoch
// (acquire), skips the body and reports a retry if odd, otherwise runs
// body and reloads epoch; it returns ErrRetry unless the two samples
// match and are even.
func readSeqlock(s *Slot, body func()) error {
	e1 := s.epoch.Load()
	if e1&1 != 0 {
		return ErrRetry
	}
	body()
	e2 := s.epoch.Load()
	if e2 != e1 {
		return ErrRetry
	}
	return nil
}
