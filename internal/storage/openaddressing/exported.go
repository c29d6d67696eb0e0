package openaddressing

import (
	"errors"
	"fmt"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/hashfunc"
	"github.com/gostonefire/flashkv/internal/hash"
	"github.com/gostonefire/flashkv/internal/logging"
	"github.com/gostonefire/flashkv/internal/model"
	"github.com/gostonefire/flashkv/kverr"
	"log/slog"
	"math"
)

// HashMap - Represents a fixed capacity hash map using the Open Addressing Collision Resolution Technique with
// linear probing. It uses one contiguous array of buckets where each bucket holds one record. In case of a
// collision, it probes forward through the table (wrapping around) looking for a free slot.
// Deleted records leave a tombstone so that probe chains of other keys stay intact.
// Once all slots are occupied the table will accept no more records, it is never resized.
type HashMap struct {
	id                int64
	keyLength         int64
	valueLength       int64
	capacity          int64
	tableBytes        int64
	compare           compare.Func
	hashAlgorithm     hashfunc.HashAlgorithm
	internalAlgorithm bool
	writeConcern      model.WriteConcern
	buckets           []model.Bucket
	logger            *slog.Logger
	destroyed         bool
	nEmpty            int64
	nOccupied         int64
	nDeleted          int64
}

// NewHashMap - Returns a pointer to a new instance of the open addressing hash map with all buckets empty.
//   - conf is a model.DictionaryConf struct providing configuration parameters affecting layout and processing
//
// It returns:
//   - hashMap which is a pointer to the created instance
//   - err which is kverr.OutOfMemory if the bucket array doesn't fit, or a standard Go error for invalid parameters
func NewHashMap(conf model.DictionaryConf) (hashMap *HashMap, err error) {
	if conf.Capacity <= 0 {
		err = fmt.Errorf("capacity must be a positive value higher than 0 (zero)")
		return
	}
	if conf.KeyLength <= 0 {
		err = fmt.Errorf("key length must be a positive value higher than 0 (zero)")
		return
	}
	if conf.ValueLength <= 0 {
		err = fmt.Errorf("value length must be a positive value higher than 0 (zero)")
		return
	}

	logger := logging.OrNoop(conf.Logger)

	// Calculate the size of the bucket array and check it against the memory available
	bucketLength := model.StateBytes + conf.KeyLength + conf.ValueLength
	if conf.Capacity > math.MaxInt64/bucketLength {
		err = kverr.NewOutOfMemory(fmt.Sprintf("capacity %d overflows table size", conf.Capacity))
		return
	}
	tableBytes := bucketLength * conf.Capacity
	if conf.MemoryLimit > 0 && tableBytes > conf.MemoryLimit {
		logger.Warn("hash map exceeds memory limit", "id", conf.ID, "tableBytes", tableBytes, "memoryLimit", conf.MemoryLimit)
		err = kverr.NewOutOfMemory(fmt.Sprintf("table of %d bytes exceeds memory limit of %d bytes", tableBytes, conf.MemoryLimit))
		return
	}
	if tableBytes > int64(math.MaxInt) {
		err = kverr.NewOutOfMemory(fmt.Sprintf("table of %d bytes can't be addressed", tableBytes))
		return
	}

	// If no HashAlgorithm was given then use the default internal
	var internalAlg bool
	if conf.HashAlgorithm == nil {
		conf.HashAlgorithm = hash.NewLinearProbingHashAlgorithm(conf.Capacity)
		internalAlg = true
	} else {
		conf.HashAlgorithm.SetTableSize(conf.Capacity)
		if conf.HashAlgorithm.GetTableSize() != conf.Capacity {
			err = fmt.Errorf("hash algorithm table size %d differs from capacity %d", conf.HashAlgorithm.GetTableSize(), conf.Capacity)
			return
		}
	}

	// If no comparator was given then use the built-in one for the key type
	if conf.Compare == nil {
		conf.Compare = compare.ForKeyType(conf.KeyType, int(conf.KeyLength))
	}

	hashMap = &HashMap{
		id:                conf.ID,
		keyLength:         conf.KeyLength,
		valueLength:       conf.ValueLength,
		capacity:          conf.Capacity,
		tableBytes:        tableBytes,
		compare:           conf.Compare,
		hashAlgorithm:     conf.HashAlgorithm,
		internalAlgorithm: internalAlg,
		writeConcern:      conf.WriteConcern,
		logger:            logger,
		nEmpty:            conf.Capacity,
	}

	hashMap.createBuckets()

	logger.Debug("hash map created",
		"id", conf.ID,
		"capacity", conf.Capacity,
		"keyLength", conf.KeyLength,
		"valueLength", conf.ValueLength,
		"tableBytes", tableBytes,
		"internalAlgorithm", internalAlg,
	)

	return
}

// Destroy - Releases the bucket array. Any later operation on the hash map, or on cursors bound to it,
// fails with kverr.Destroyed.
func (Q *HashMap) Destroy() (err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}

	Q.buckets = nil
	Q.destroyed = true
	Q.nEmpty, Q.nOccupied, Q.nDeleted = 0, 0, 0

	Q.logger.Debug("hash map destroyed", "id", Q.id)

	return
}

// GetStorageParameters - Returns a struct with storage parameters and utilization of the hash map
func (Q *HashMap) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		KeyLength:         Q.keyLength,
		ValueLength:       Q.valueLength,
		Capacity:          Q.capacity,
		TableBytes:        Q.tableBytes,
		WriteConcern:      Q.writeConcern,
		InternalAlgorithm: Q.internalAlgorithm,
		Empty:             Q.nEmpty,
		Occupied:          Q.nOccupied,
		Deleted:           Q.nDeleted,
	}

	return
}

// GetBucket - Returns a copy of the bucket at the given index
//   - bucketNo is the index of a bucket, 0 to capacity - 1
//
// It returns:
//   - bucket is a model.Bucket struct with copies of key and value
//   - err is standard error
func (Q *HashMap) GetBucket(bucketNo int64) (bucket model.Bucket, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}
	if bucketNo < 0 || bucketNo >= Q.capacity {
		err = fmt.Errorf("bucket number %d out of range [0, %d)", bucketNo, Q.capacity)
		return
	}

	b := Q.buckets[bucketNo]
	bucket = model.Bucket{
		State: b.State,
		Key:   append([]byte(nil), b.Key...),
		Value: append([]byte(nil), b.Value...),
	}

	return
}

// Get - Gets the value that corresponds to the given key.
//   - key is the identifier of a record, it has to be of the key length given at creation
//
// It returns:
//   - value is a copy of the matching record value if found, if not found an error of type kverr.NotFound is also returned.
//   - err is either of type kverr.NotFound or a standard error, if something went wrong
func (Q *HashMap) Get(key []byte) (value []byte, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}
	if err = Q.checkKey(key); err != nil {
		return
	}

	slot, err := Q.probingForGet(key)
	if err != nil {
		return
	}

	value = make([]byte, Q.valueLength)
	_ = copy(value, Q.buckets[slot].Value)

	return
}

// Insert - Adds a record given the write concern.
// With model.WriteConcernInsertUnique an existing key results in kverr.DuplicateKey, with
// model.WriteConcernUpsert the existing record is overwritten in place.
//   - key and value have to conform to the lengths given at creation
//
// It returns:
//   - count is the number of records affected, 1 (one) on success
//   - err is kverr.DuplicateKey, kverr.MapFull or a standard error, if something went wrong
func (Q *HashMap) Insert(key, value []byte) (count int64, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}
	if err = Q.checkRecord(key, value); err != nil {
		return
	}

	slot, found, err := Q.probingForSet(key)
	if err != nil {
		if errors.Is(err, kverr.MapFull{}) {
			Q.logger.Warn("hash map full", "id", Q.id, "capacity", Q.capacity)
		}
		return
	}

	if found && Q.writeConcern == model.WriteConcernInsertUnique {
		err = kverr.DuplicateKey{}
		return
	}

	Q.setBucket(slot, key, value)
	count = 1

	return
}

// Update - Overwrites the value of an existing record. If the key is missing the record is inserted when the
// write concern is model.WriteConcernUpsert, otherwise kverr.NotFound is returned.
//   - key and value have to conform to the lengths given at creation
//
// It returns:
//   - count is the number of records affected, 1 (one) on success
//   - err is kverr.NotFound, kverr.MapFull or a standard error, if something went wrong
func (Q *HashMap) Update(key, value []byte) (count int64, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}
	if err = Q.checkRecord(key, value); err != nil {
		return
	}

	slot, err := Q.probingForGet(key)
	if err == nil {
		_ = copy(Q.buckets[slot].Value, value)
		count = 1
		return
	}

	if errors.Is(err, kverr.NotFound{}) && Q.writeConcern == model.WriteConcernUpsert {
		return Q.Insert(key, value)
	}

	return
}

// Delete - Deletes the record with the given key by turning its bucket into a tombstone
//   - key is the identifier of the record to delete
//
// It returns:
//   - count is the number of records affected, 1 (one) on success
//   - err is kverr.NotFound or a standard error, if something went wrong
func (Q *HashMap) Delete(key []byte) (count int64, err error) {
	if err = Q.checkAlive(); err != nil {
		return
	}
	if err = Q.checkKey(key); err != nil {
		return
	}

	slot, err := Q.probingForGet(key)
	if err != nil {
		return
	}

	Q.deleteBucket(slot)
	count = 1

	return
}
