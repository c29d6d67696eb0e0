package openaddressing

import (
	"fmt"
	"github.com/gostonefire/flashkv/internal/model"
	"github.com/gostonefire/flashkv/kverr"
)

// createBuckets - Allocates the bucket array with all buckets empty. Keys and values of all buckets are
// slices of one contiguous backing array.
func (Q *HashMap) createBuckets() {
	recordLength := Q.keyLength + Q.valueLength
	data := make([]byte, Q.capacity*recordLength)

	Q.buckets = make([]model.Bucket, Q.capacity)
	for i := int64(0); i < Q.capacity; i++ {
		offset := i * recordLength
		valueStart := offset + Q.keyLength
		Q.buckets[i] = model.Bucket{
			State: model.RecordEmpty,
			Key:   data[offset:valueStart:valueStart],
			Value: data[valueStart : offset+recordLength : offset+recordLength],
		}
	}
}

// setBucket - Writes key and value into the bucket at slot and marks it occupied
func (Q *HashMap) setBucket(slot int64, key, value []byte) {
	bucket := &Q.buckets[slot]
	fromState := bucket.State

	_ = copy(bucket.Key, key)
	_ = copy(bucket.Value, value)
	bucket.State = model.RecordOccupied

	Q.updateUtilizationInfo(fromState, bucket.State)
}

// deleteBucket - Clears the bucket at slot and marks it as a tombstone
func (Q *HashMap) deleteBucket(slot int64) {
	bucket := &Q.buckets[slot]
	fromState := bucket.State

	clear(bucket.Key)
	clear(bucket.Value)
	bucket.State = model.RecordDeleted

	Q.updateUtilizationInfo(fromState, bucket.State)
}

// updateUtilizationInfo - Keeps track of number of empty, occupied and deleted buckets
func (Q *HashMap) updateUtilizationInfo(fromState, toState uint8) {
	if fromState == toState {
		return
	}

	switch fromState {
	case model.RecordEmpty:
		Q.nEmpty--
	case model.RecordOccupied:
		Q.nOccupied--
	case model.RecordDeleted:
		Q.nDeleted--
	}

	switch toState {
	case model.RecordEmpty:
		Q.nEmpty++
	case model.RecordOccupied:
		Q.nOccupied++
	case model.RecordDeleted:
		Q.nDeleted++
	}
}

// checkAlive - Returns kverr.Destroyed if the hash map has been destroyed
func (Q *HashMap) checkAlive() (err error) {
	if Q.destroyed {
		err = kverr.Destroyed{}
	}
	return
}

// checkKey - Checks validity of the key
func (Q *HashMap) checkKey(key []byte) (err error) {
	if int64(len(key)) != Q.keyLength {
		err = fmt.Errorf("wrong length of key, should be %d", Q.keyLength)
	}
	return
}

// checkRecord - Checks validity of the key and value
func (Q *HashMap) checkRecord(key, value []byte) (err error) {
	if err = Q.checkKey(key); err != nil {
		return
	}
	if int64(len(value)) != Q.valueLength {
		err = fmt.Errorf("wrong length of value, should be %d", Q.valueLength)
	}
	return
}

// probe - Returns the slot of a probe iteration and checks that the hash algorithm stays within the table
func (Q *HashMap) probe(hf1Value, iteration int64) (slot int64, err error) {
	slot = Q.hashAlgorithm.ProbeIteration(hf1Value, iteration)
	if slot < 0 || slot >= Q.capacity {
		err = fmt.Errorf("hash algorithm produced slot %d outside table of capacity %d", slot, Q.capacity)
	}
	return
}

// probingForGet - Is the Linear Probing Collision Resolution Technique algorithm for finding the slot of a key.
// It steps over tombstones and stops at a match, at an empty bucket or after a full wraparound.
func (Q *HashMap) probingForGet(key []byte) (slot int64, err error) {
	var probe int64

	hf1Value := Q.hashAlgorithm.HashFunc1(key)

	for i := int64(0); i < Q.capacity; i++ {
		probe, err = Q.probe(hf1Value, i)
		if err != nil {
			return
		}

		bucket := &Q.buckets[probe]
		switch bucket.State {
		case model.RecordEmpty:
			err = kverr.NotFound{}
			return

		case model.RecordOccupied:
			if Q.compare(key, bucket.Key) == 0 {
				slot = probe
				return
			}
		}
	}

	err = kverr.NotFound{}
	return
}

// probingForSet - Is the Linear Probing Collision Resolution Technique algorithm for finding a slot to write key to.
// It returns the slot holding key if present (found is true), otherwise the first tombstone passed on the way
// or, if none, the empty bucket that ended the probe. A full wraparound without any free bucket gives kverr.MapFull.
func (Q *HashMap) probingForSet(key []byte) (slot int64, found bool, err error) {
	var deletedSlot, probe int64
	var hasCached bool

	hf1Value := Q.hashAlgorithm.HashFunc1(key)

	for i := int64(0); i < Q.capacity; i++ {
		probe, err = Q.probe(hf1Value, i)
		if err != nil {
			return
		}

		bucket := &Q.buckets[probe]
		switch bucket.State {
		case model.RecordEmpty:
			if hasCached {
				slot = deletedSlot
			} else {
				slot = probe
			}
			return

		case model.RecordOccupied:
			if Q.compare(key, bucket.Key) == 0 {
				slot = probe
				found = true
				return
			}

		case model.RecordDeleted:
			if !hasCached {
				deletedSlot = probe
				hasCached = true
			}
		}
	}

	// Wrapped around without seeing an empty bucket, a tombstone is still a free slot
	if hasCached {
		slot = deletedSlot
		return
	}

	err = kverr.MapFull{}
	return
}
