package hash

import (
	"github.com/cespare/xxhash/v2"
	"hash/crc32"
)

// LinearProbingHashAlgorithm - The internally used home slot selection algorithm. It hashes the key using a
// checksum function and applies slot = hash mod tableSize. The table size is used as given since the hash map
// has a fixed capacity.
type LinearProbingHashAlgorithm struct {
	tableSize int64
	sum       func(key []byte) uint64
}

// NewLinearProbingHashAlgorithm - Returns a pointer to a new LinearProbingHashAlgorithm instance using
// crc32.ChecksumIEEE as hash function.
func NewLinearProbingHashAlgorithm(tableSize int64) *LinearProbingHashAlgorithm {
	ha := &LinearProbingHashAlgorithm{sum: crc32Sum}
	ha.SetTableSize(tableSize)
	return ha
}

// NewXXHashLinearProbingAlgorithm - Returns a pointer to a new LinearProbingHashAlgorithm instance using
// xxhash as hash function. It spreads keys with long common prefixes better than crc32.
func NewXXHashLinearProbingAlgorithm(tableSize int64) *LinearProbingHashAlgorithm {
	ha := &LinearProbingHashAlgorithm{sum: xxhash.Sum64}
	ha.SetTableSize(tableSize)
	return ha
}

// SetTableSize - Sets the table size for the hash algorithm.
func (L *LinearProbingHashAlgorithm) SetTableSize(tableSize int64) {
	L.tableSize = tableSize
}

// HashFunc1 - Given key it generates an index (home slot) between 0 and table size - 1
func (L *LinearProbingHashAlgorithm) HashFunc1(key []byte) int64 {
	return int64(L.sum(key) % uint64(L.tableSize))
}

// GetTableSize - Returns the table size the implemented hash functions are supporting
func (L *LinearProbingHashAlgorithm) GetTableSize() int64 {
	return L.tableSize
}

// ProbeIteration - Implements Linear Probing
func (L *LinearProbingHashAlgorithm) ProbeIteration(hf1Value, iteration int64) int64 {
	probe := hf1Value + iteration
	if probe >= L.tableSize {
		probe %= L.tableSize
	}

	return probe
}

func crc32Sum(key []byte) uint64 {
	return uint64(crc32.ChecksumIEEE(key))
}
