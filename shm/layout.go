package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Header constants.
const (
	// Magic is the little-endian 32-bit pattern "SLNT".
	Magic uint32 = 0x534C4E54
	// Version is the on-disk/in-memory layout version. open() rejects any
	// region whose stored version does not match exactly.
	Version uint32 = 2
	// DeclaredAlignment is the alignment the header advertises.
	DeclaredAlignment uint64 = 64

	// NumBloomBits is the width of the per-slot label mask and the size of
	// the header's bloom_watches / signal_groups arrays.
	NumBloomBits = 64
	// NoWatcher is the bloom_watches sentinel meaning "no watcher".
	NoWatcher uint32 = 0xFF

	// MaxKeyLen is the maximum key length, excluding the null terminator
	// (capacity 64 total).
	MaxKeyLen = 63
	keyCap    = MaxKeyLen + 1
)

// System flag bits in Header.coreFlags.
const (
	FlagAutoScrub uint32 = 1 << 0
	FlagHybrid    uint32 = 1 << 1
)

// Type-flag enumeration, one-hot, stored in Slot.typeFlag.
const (
	TypeVoid    uint32 = 1 << 0
	TypeBigint  uint32 = 1 << 1
	TypeBiguint uint32 = 1 << 2
	TypeJSON    uint32 = 1 << 3
	TypeBinary  uint32 = 1 << 4
	TypeImgdata uint32 = 1 << 5
	TypeAudio   uint32 = 1 << 6
	TypeVartext uint32 = 1 << 7
)

// Integer-op enumeration.
type IntOp int

const (
	OpAnd IntOp = iota
	OpOr
	OpXor
	OpNot
	OpInc
	OpDec
)

// Time modes.
type TimeMode int

const (
	CTime TimeMode = 0
	ATime TimeMode = 1
)

// ScrubMode names the zeroing policies set() can apply inside the
// critical section. set() does not take a ScrubMode: it derives the
// policy from the header's core flags on every write.
type ScrubMode int

const (
	ScrubNone ScrubMode = iota
	ScrubHybrid
	ScrubFull
)

// signalLine is one cache-line-resident pulse counter.
type signalLine struct {
	counter atomic.Uint64
	_pad    [56]byte
}

// Header is the process-global metadata block at offset 0 of the mapped
// region. The fixed fields, the four global counters, and the two flag
// words each fill one 64-byte block (the counters share theirs); every
// signal-group counter has a cache line of its own.
type Header struct {
	magic     uint32
	version   uint32
	slots     uint64
	maxValSz  uint64
	valSz     uint64
	alignment uint64
	_pad0     [24]byte // pad fixed block to 64 bytes

	epoch            atomic.Uint64
	valBrk           atomic.Uint64
	parseFailures    atomic.Uint64
	lastFailureEpoch atomic.Uint64
	_pad1            [32]byte // pad counters block to 64 bytes

	coreFlags atomic.Uint32
	userFlags atomic.Uint32
	_pad2     [56]byte // pad flags block to 64 bytes

	// bloomWatches[i] holds the signal-group id routed for label bit i, or
	// NoWatcher. Go lacks single-byte atomics; the low byte is the only
	// meaningful part of each 32-bit slot (see DESIGN.md).
	bloomWatches [NumBloomBits]atomic.Uint32

	// signalGroups[i] is an independent monotonic pulse counter, each on
	// its own cache line.
	signalGroups [NumBloomBits]signalLine
}

const headerSize = unsafe.Sizeof(Header{})

func init() {
	if headerSize%64 != 0 {
		panic(fmt.Sprintf("shm: header size %d is not cache-line aligned", headerSize))
	}
}

// headerAt casts the region's base bytes to a *Header. The caller owns
// keeping data alive and large enough.
func headerAt(data []byte) *Header {
	return (*Header)(unsafe.Pointer(&data[0]))
}

// Slots returns the configured slot count.
func (h *Header) Slots() uint64 { return h.slots }

// MaxValSize returns the per-slot value capacity in bytes.
func (h *Header) MaxValSize() uint64 { return h.maxValSz }

// ValAreaSize returns the total arena byte size.
func (h *Header) ValAreaSize() uint64 { return h.valSz }

// Epoch returns the current global write counter (relaxed liveness signal
// only — see DESIGN NOTES, "Global epoch drift").
func (h *Header) Epoch() uint64 { return h.epoch.Load() }

// HeaderSnapshot is the non-atomic client-facing copy returned by
// get_header_snapshot. Each field is one independent atomic load,
// taken in any order, since the fields carry no cross-field invariant.
type HeaderSnapshot struct {
	Magic            uint32
	Version          uint32
	Slots            uint64
	MaxValSize       uint64
	ValSize          uint64
	Alignment        uint64
	Epoch            uint64
	ValBrk           uint64
	ParseFailures    uint64
	LastFailureEpoch uint64
	CoreFlags        uint32
	UserFlags        uint32
}

// Snapshot implements get_header_snapshot.
func (h *Header) Snapshot() HeaderSnapshot {
	return HeaderSnapshot{
		Magic:            h.magic,
		Version:          h.version,
		Slots:            h.slots,
		MaxValSize:       h.maxValSz,
		ValSize:          h.valSz,
		Alignment:        h.alignment,
		Epoch:            h.epoch.Load(),
		ValBrk:           h.valBrk.Load(),
		ParseFailures:    h.parseFailures.Load(),
		LastFailureEpoch: h.lastFailureEpoch.Load(),
		CoreFlags:        h.coreFlags.Load(),
		UserFlags:        h.userFlags.Load(),
	}
}
