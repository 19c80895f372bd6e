package shm

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SetAutoScrub implements set_av(mode). Clearing the master bit
// also clears the hybrid bit in the same atomic update.
func SetAutoScrub(r *Region, on bool) {
	h := r.Header()
	if on {
		h.coreFlags.Or(FlagAutoScrub)
		return
	}
	for {
		cur := h.coreFlags.Load()
		next := cur &^ (FlagAutoScrub | FlagHybrid)
		if h.coreFlags.CompareAndSwap(cur, next) {
			return
		}
	}
}

// SetHybridScrub implements set_hybrid_av(): sets both the master
// and hybrid bits in one atomic OR.
func SetHybridScrub(r *Region) {
	r.Header().coreFlags.Or(FlagAutoScrub | FlagHybrid)
}

// AutoScrubEnabled reports the master auto-scrub bit.
func AutoScrubEnabled(r *Region) bool {
	return r.Header().coreFlags.Load()&FlagAutoScrub != 0
}

// HybridScrubEnabled reports the hybrid bit.
func HybridScrubEnabled(r *Region) bool {
	return r.Header().coreFlags.Load()&FlagHybrid != 0
}

// purgeSlot implements one iteration of purge() over slot i: skip if a
// writer currently holds it; zero the full partition for free slots, or
// just the trailing garbage past val_len for occupied, non-BIGUINT ones.
// A BIGUINT-converted slot's valOff lives in the shared bump region,
// where its chunk holds exactly val_len live bytes and nothing past it
// belongs to this slot, so it is left alone. Live payload bytes are
// never touched.
func purgeSlot(r *Region, i uint64) {
	s := r.slot(i)
	start, ok := tryAcquireWrite(s)
	if !ok {
		return
	}
	maxSz := r.Header().maxValSz
	arena := r.arena()
	switch {
	case s.hash.Load() == 0:
		zero(arena[s.homeOff : s.homeOff+maxSz])
	case s.typeFlag.Load()&TypeBiguint != 0:
		// bump-region chunk; no trailing bytes to reclaim.
	default:
		if n := uint64(s.valLen.Load()); n < maxSz {
			zero(arena[s.valOff+n : s.valOff+maxSz])
		}
	}
	abortWrite(s, start)
}

// Purge implements purge(): a serial backfill-time maintenance
// pass over every slot.
func Purge(r *Region) {
	slots := r.slotCount()
	for i := uint64(0); i < slots; i++ {
		purgeSlot(r, i)
	}
}

// PurgeParallel is Purge sharded across GOMAXPROCS goroutines with an
// errgroup.Group, for large slot counts where a serial pass is too slow
// between I/O bursts. Semantics are identical to Purge: each slot is
// still only ever touched by the worker handling its shard, under the
// same per-slot seqlock skip-if-active rule.
func PurgeParallel(ctx context.Context, r *Region) error {
	slots := r.slotCount()
	workers := runtime.GOMAXPROCS(0)
	if uint64(workers) > slots {
		workers = int(slots)
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (slots + uint64(workers) - 1) / uint64(workers)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if hi > slots {
			hi = slots
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				purgeSlot(r, i)
			}
			return nil
		})
	}
	return g.Wait()
}
