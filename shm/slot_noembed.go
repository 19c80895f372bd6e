//go:build nosplinterembed

package shm

const EmbedDim = 0

const embeddingBytes = 0

type embeddingArea [0]float32

func (s *Slot) embedding() *embeddingArea { return &s.embed }
