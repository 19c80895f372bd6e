package shm

import "testing"

func TestFNV1a_KnownVectors(t *testing.T) {
	t.Parallel()

	// FNV-1a 64-bit reference vectors (offset basis for the empty string,
	// and the textbook "a" vector).
	if got := fnv1a(nil); got != fnvOffset64 {
		t.Fatalf("fnv1a(empty) = %d, want offset basis %d", got, fnvOffset64)
	}
	if got := fnv1a([]byte("a")); got != 0xaf63dc4c8601ec8c {
		t.Fatalf("fnv1a(%q) = %#x, want %#x", "a", got, uint64(0xaf63dc4c8601ec8c))
	}
}

func TestFNV1a_ZeroSubstitution(t *testing.T) {
	t.Parallel()

	// The free-slot sentinel (0) must never be returned as a real hash.
	if got := fnv1a(nil); got == 0 {
		t.Fatalf("fnv1a must never return the reserved sentinel 0")
	}
}

func TestProbeIndex_Wraps(t *testing.T) {
	t.Parallel()

	if got := probeIndex(10, 8); got != 2 {
		t.Fatalf("probeIndex(10, 8) = %d, want 2", got)
	}
}
