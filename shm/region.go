package shm

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region wraps one mapped manifold: the header, the slot table, and the
// value arena, all inside a single mmap of a POSIX shared-memory object or
// a regular file.
type Region struct {
	data         []byte
	slotsOffset  uint64
	arenaOffset  uint64
	arenaLimit   uint64
	closed       bool
}

// bumpCapacity is the size of the BIGUINT conversion region held beyond
// the partitioned value arena: one 8-byte slot per table slot, enough for
// every slot to be converted once without touching live neighbors. A
// slot converted and reused repeatedly can still exhaust it over time;
// callers see ErrNoMem when that happens.
func bumpCapacity(slots uint64) uint64 {
	return slots * 8
}

// totalSize computes the mapped region size for the given geometry: the
// header, the slot table, the partitioned value arena, and the trailing
// bump region.
func totalSize(slots, maxValSz uint64) uint64 {
	return uint64(headerSize) + slots*uint64(slotSize) + slots*maxValSz + bumpCapacity(slots)
}

// Create computes the total size, atomically creates the backing object
// (failing if it already exists), truncates it, maps it read-write and
// shared, and initializes the header and every slot to the Free state.
func Create(path string, slots, maxValSz uint64) (*Region, error) {
	if slots == 0 || maxValSz == 0 {
		return nil, fmt.Errorf("create %s: %w", path, ErrInvalid)
	}

	size := totalSize(slots, maxValSz)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("create %s: %w", path, ErrExists)
		}
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	r := &Region{
		data:        data,
		slotsOffset: uint64(headerSize),
		arenaOffset: uint64(headerSize) + slots*uint64(slotSize),
		arenaLimit:  slots*maxValSz + bumpCapacity(slots),
	}

	h := headerAt(r.data)
	h.magic = Magic
	h.version = Version
	h.slots = slots
	h.maxValSz = maxValSz
	h.valSz = slots * maxValSz
	h.alignment = DeclaredAlignment
	h.valBrk.Store(h.valSz) // bump region starts right after the partitioned arena
	for i := range h.bloomWatches {
		h.bloomWatches[i].Store(NoWatcher)
	}

	for i := uint64(0); i < slots; i++ {
		s := slotAt(r.data, r.slotsOffset, i)
		s.valOff = i * maxValSz
		s.homeOff = i * maxValSz
		s.typeFlag.Store(TypeVoid)
	}

	return r, nil
}

// Open maps an existing backing object read-write and verifies the
// header's magic and version.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := fi.Size()
	if size < int64(headerSize) {
		return nil, fmt.Errorf("open %s: %w", path, ErrFormat)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	h := headerAt(data)
	if h.magic != Magic || h.version != Version {
		unix.Munmap(data)
		return nil, fmt.Errorf("open %s: %w", path, ErrFormat)
	}

	r := &Region{
		data:        data,
		slotsOffset: uint64(headerSize),
		arenaOffset: uint64(headerSize) + h.slots*uint64(slotSize),
		arenaLimit:  h.valSz + bumpCapacity(h.slots),
	}
	return r, nil
}

// OpenOrCreate opens path if it exists, otherwise creates it with the
// given geometry.
func OpenOrCreate(path string, slots, maxValSz uint64) (*Region, error) {
	r, err := Open(path)
	if err == nil {
		return r, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Create(path, slots, maxValSz)
	}
	return nil, err
}

// CreateOrOpen creates path, falling back to opening it if it already
// exists.
func CreateOrOpen(path string, slots, maxValSz uint64) (*Region, error) {
	r, err := Create(path, slots, maxValSz)
	if err == nil {
		return r, nil
	}
	if errors.Is(err, ErrExists) {
		return Open(path)
	}
	return nil, err
}

// Close unmaps the region. The backing object itself persists until
// unlinked externally.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return unix.Munmap(r.data)
}

// Header returns the region's header.
func (r *Region) Header() *Header {
	return headerAt(r.data)
}

func (r *Region) slotCount() uint64 {
	return r.Header().slots
}

func (r *Region) slot(i uint64) *Slot {
	return slotAt(r.data, r.slotsOffset, i)
}

func (r *Region) arena() []byte {
	return r.data[r.arenaOffset : r.arenaOffset+r.arenaLimit]
}
