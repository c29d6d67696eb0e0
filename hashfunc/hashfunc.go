package hashfunc

// HashAlgorithm - Interface that permits an implementation using the dictionary to supply a custom home slot
// selection algorithm suited for its particular distribution of keys.
type HashAlgorithm interface {
	// SetTableSize - Sets the table size for the hash algorithm.
	// It is called when the dictionary is created. If a custom hash algorithm is supplied that implements this
	// interface and the instance already has a table size, it will be overwritten by the capacity given when
	// creating the dictionary.
	//   - tableSize is the number of buckets the hash map addresses
	SetTableSize(tableSize int64)

	// HashFunc1 - Given key it generates a home slot between 0 and table size - 1
	// Any number returned outside the table size (0 -> table size - 1) will result in an error down stream.
	HashFunc1(key []byte) int64

	// GetTableSize - Returns the table size the implemented hash function is supporting.
	// The hash map has a fixed capacity, so an implementation must not round the table size given in SetTableSize.
	GetTableSize() int64

	// ProbeIteration - Returns the slot to visit in the given iteration of a probe sequence starting at the
	// home slot from HashFunc1. Iteration 0 must return the home slot itself, and iterations 0 to table size - 1
	// must together visit every slot exactly once.
	ProbeIteration(hf1Value, iteration int64) int64
}
