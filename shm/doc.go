// Package shm provides a passive, lock-free, shared-memory key→value
// manifold for inter-process use on POSIX hosts.
//
// There is no daemon: unrelated processes attach to the same backing
// object — an anonymous /dev/shm segment or a regular file — and perform
// reads, writes, atomic integer ops, vector publication, label tagging,
// and change-notification signalling directly against the mapped region.
// All coordination lives in atomic state embedded in the mapping itself:
// a seqlock per slot arbitrates the single-writer/many-reader protocol,
// and a fixed array of pulse counters (the signal arena) lets readers
// detect change without a kernel wait.
//
// Layout (bit-exact, little-endian):
//
//	offset 0                     : header
//	offset sizeof(header)        : slots[0..N-1]
//	offset above + N*sizeof(slot): value arena (N * maxValSize bytes)
//	offset above + N*maxValSize  : BIGUINT bump region (N * 8 bytes)
package shm
