//go:build !nosplinterembed

package shm

// EmbedDim is the fixed embedding vector dimension. Embeddings are
// compiled in by default; build with the nosplinterembed tag to drop the
// per-slot vector region entirely.
const EmbedDim = 768

const embeddingBytes = EmbedDim * 4

type embeddingArea [EmbedDim]float32

func (s *Slot) embedding() *embeddingArea { return &s.embed }
