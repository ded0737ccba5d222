package simulation

import "math/rand/v2"

// NormalSource yields standard normal variates. *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// StreamFactory hands out an independent random stream per simulated path
type StreamFactory interface {
	Stream(asset, draw int) NormalSource
}

// SeededStreams derives one PCG stream per (asset, draw) from a single seed,
// so a sampled matrix depends only on the seed and not on scheduling.
type SeededStreams struct {
	seed uint64
}

// NewSeededStreams creates a stream factory. Seed 0 picks a random seed once.
func NewSeededStreams(seed uint64) *SeededStreams {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return &SeededStreams{seed: seed}
}

// Seed returns the effective seed, useful to reproduce a run started with 0
func (s *SeededStreams) Seed() uint64 {
	return s.seed
}

// Stream returns a fresh generator for one path
func (s *SeededStreams) Stream(asset, draw int) NormalSource {
	return rand.New(rand.NewPCG(s.seed, streamKey(asset, draw)))
}

// streamKey mixes the path coordinates with the splitmix64 finalizer
func streamKey(asset, draw int) uint64 {
	z := uint64(asset)<<32 ^ uint64(uint32(draw))
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
