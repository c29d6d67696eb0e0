package model

import (
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/hashfunc"
	"log/slog"
)

// RecordEmpty - State indicating a bucket that is or has never been in use
const RecordEmpty uint8 = 0

// RecordOccupied - State indicating a bucket that is in use
const RecordOccupied uint8 = 1

// RecordDeleted - State indicating a bucket that has been in use but was deleted (a tombstone)
const RecordDeleted uint8 = 2

// StateBytes - Number of bytes accounted for the state tag of each bucket
const StateBytes int64 = 1

// WriteConcern - Policy governing whether a write may overwrite an existing key
type WriteConcern int

const (
	// WriteConcernInsertUnique - Inserting an existing key fails, updating a missing key fails
	WriteConcernInsertUnique WriteConcern = iota
	// WriteConcernUpsert - Inserting an existing key overwrites it, updating a missing key inserts it
	WriteConcernUpsert
)

// Bucket - Represents one slot in the hash map, its identity is its index in the bucket array
type Bucket struct {
	State uint8
	Key   []byte
	Value []byte
}

// StorageParameters - Represents parameters and utilization of a hash map instance
type StorageParameters struct {
	KeyLength         int64
	ValueLength       int64
	Capacity          int64
	TableBytes        int64
	WriteConcern      WriteConcern
	InternalAlgorithm bool
	Empty             int64
	Occupied          int64
	Deleted           int64
}

// DictionaryConf - Is a struct to be passed in the call to NewHashMap and contains configuration that affects
// table layout and processing.
//   - ID is the caller's dictionary identifier, only used for logging
//   - KeyType selects the built-in comparator if Compare is nil
//   - KeyLength is the fixed length of keys to store
//   - ValueLength is the fixed length of values to store
//   - Capacity is the fixed number of buckets
//   - Compare is the key comparator
//   - HashAlgorithm is the hash function to use, nil selects the internal crc32 algorithm
//   - WriteConcern governs duplicate handling
//   - MemoryLimit is the max number of bytes the bucket array may occupy, 0 (zero) means no limit
//   - Logger receives structured log output, nil discards it
type DictionaryConf struct {
	ID            int64
	KeyType       compare.KeyType
	KeyLength     int64
	ValueLength   int64
	Capacity      int64
	Compare       compare.Func
	HashAlgorithm hashfunc.HashAlgorithm
	WriteConcern  WriteConcern
	MemoryLimit   int64
	Logger        *slog.Logger
}
