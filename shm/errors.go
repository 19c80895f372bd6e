package shm

import "errors"

// Error classification. Store operations that can fail return one of these
// sentinels, optionally wrapped with fmt.Errorf("...: %w", ...) for
// context. The region lifecycle functions (Create, Open) may instead
// return a wrapped OS error from opening, truncating or mapping the file. Callers classify with errors.Is. The core never retries on a
// caller's behalf and never logs or panics on these conditions.
var (
	// ErrInvalid is a usage error — bad arguments, no state change.
	ErrInvalid = errors.New("shm: invalid argument")
	// ErrNotFound indicates the key is not present in the store.
	ErrNotFound = errors.New("shm: not found")
	// ErrFull indicates the slot table or value arena has no room left.
	ErrFull = errors.New("shm: store full")
	// ErrRetry indicates transient seqlock contention; the caller may spin,
	// back off, or propagate.
	ErrRetry = errors.New("shm: retry")
	// ErrTimeout indicates a poll deadline elapsed before the slot changed.
	ErrTimeout = errors.New("shm: timeout")
	// ErrBufferTooSmall indicates the caller's buffer cannot hold the value.
	ErrBufferTooSmall = errors.New("shm: buffer too small")
	// ErrTypeMismatch indicates an integer op on a non-BIGUINT slot.
	ErrTypeMismatch = errors.New("shm: type mismatch")
	// ErrNoMem indicates the bump-allocated conversion region is exhausted.
	ErrNoMem = errors.New("shm: out of arena")
	// ErrFormat indicates a magic/version mismatch on open.
	ErrFormat = errors.New("shm: invalid store")
	// ErrUnsupported indicates an unrecognized mode argument.
	ErrUnsupported = errors.New("shm: not supported")
	// ErrExists indicates create() was asked to create an object that
	// already exists.
	ErrExists = errors.New("shm: already exists")
	// ErrClosed names an operation against an already-closed region. No
	// function in this package returns it; operations do not check
	// whether their Region has been closed.
	ErrClosed = errors.New("shm: region closed")
)
