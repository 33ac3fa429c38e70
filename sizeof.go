package threadlet

import "sync/atomic"

// Layout constants for cache-line padding.
const (
	// sizeOfCacheLine is the size of a CPU cache line.
	// 64 bytes is standard for x86-64.
	// 128 bytes is standard for Apple Silicon (M1/M2/M3) and other ARM64.
	// We use 128 to satisfy the largest common alignment requirement.
	sizeOfCacheLine = 128

	// sizeOfAtomicUint64 is the size of an atomic.Uint64 variable.
	sizeOfAtomicUint64 = 8
)

// paddedSeqCounter is a global atomic.Uint64 sequence generator isolated on
// its own cache line, so that Loop and Task creation (every goroutine that
// ever spawns one) don't contend with whatever else happens to share a cache
// line with a bare package-level atomic.
type paddedSeqCounter struct {
	_ [sizeOfCacheLine]byte
	v atomic.Uint64
	_ [sizeOfCacheLine - sizeOfAtomicUint64]byte
}

func (c *paddedSeqCounter) next() uint64 {
	return c.v.Add(1)
}
