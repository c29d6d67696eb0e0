//go:build unit

package openaddressing

import (
	"encoding/binary"
	"errors"
	"github.com/google/btree"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/internal/model"
	"github.com/gostonefire/flashkv/kverr"
	"github.com/gostonefire/flashkv/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand"
	"testing"
)

// unsupportedPredicate - A predicate kind the hash map doesn't know
type unsupportedPredicate struct{}

func (unsupportedPredicate) Kind() predicate.Kind              { return predicate.Kind(99) }
func (unsupportedPredicate) Matches([]byte, compare.Func) bool { return true }
func (unsupportedPredicate) Clone() predicate.Predicate        { return unsupportedPredicate{} }

func keyValue(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// drain - Pulls all results from a cursor and checks that it stays exhausted afterwards
func drain(t *testing.T, c *Cursor) (keys []int32, values []int32) {
	var record cursor.Record
	for {
		status, err := c.Next(&record)
		require.NoError(t, err, "next without error")
		if status != cursor.Active {
			assert.Equal(t, cursor.EndOfResults, status, "ends with end of results")
			break
		}
		keys = append(keys, keyValue(record.Key))
		values = append(values, keyValue(record.Value))
	}

	for i := 0; i < 3; i++ {
		status, err := c.Next(&record)
		assert.NoError(t, err, "exhausted next without error")
		assert.Equal(t, cursor.EndOfResults, status, "stays at end of results")
	}

	return
}

func TestHashMap_Find_Equality(t *testing.T) {
	t.Run("yields exactly the matching record once", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 16, model.WriteConcernUpsert)
		_, _ = hashMap.Insert(key(5), value(3))
		_, _ = hashMap.Insert(key(5), value(7))
		_, _ = hashMap.Insert(key(-5), value(14))
		_, _ = hashMap.Insert(key(-10), value(23))

		p, err := predicate.Build(predicate.KindEquality, key(5))
		require.NoError(t, err, "builds predicate")

		// Execute
		c, err := hashMap.Find(p)

		// Check
		assert.NoError(t, err, "finds")
		assert.Equal(t, cursor.Initialized, c.Status(), "initialized at match")
		keys, values := drain(t, c)
		assert.Equal(t, []int32{5}, keys, "one key")
		assert.Equal(t, []int32{7}, values, "current value")
	})

	t.Run("missing key gives an empty cursor", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 16, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(1), value(1))

		// Execute
		c, err := hashMap.Find(predicate.Equality{Key: key(2)})

		// Check
		assert.NoError(t, err, "empty result is not an error")
		assert.Equal(t, cursor.EndOfResults, c.Status(), "end of results right away")
		keys, _ := drain(t, c)
		assert.Empty(t, keys, "no results")
	})

	t.Run("cursor keeps its own copy of the key", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 16, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(1), value(1))
		k := key(1)
		p := predicate.Equality{Key: k}

		// Execute
		c, err := hashMap.Find(p)
		k[0] = 0x55

		// Check
		require.NoError(t, err, "finds")
		assert.Equal(t, key(1), c.predicate.(predicate.Equality).Key, "copy unaffected by caller")
	})
}

func TestHashMap_Find_Range(t *testing.T) {
	t.Run("yields exactly the live keys within bounds", func(t *testing.T) {
		// Prepare
		rnd := rand.New(rand.NewSource(7))
		hashMap := newTestMap(t, 128, model.WriteConcernUpsert)
		oracle := btree.NewOrderedG[int32](8)
		for n := 0; n < 300; n++ {
			k := int32(rnd.Intn(200) - 100)
			if rnd.Intn(4) == 0 {
				if _, err := hashMap.Delete(key(k)); err == nil {
					oracle.Delete(k)
				}
				continue
			}
			if _, err := hashMap.Insert(key(k), value(k*2)); err == nil {
				oracle.ReplaceOrInsert(k)
			}
		}

		var expected []int32
		oracle.AscendRange(-20, 41, func(k int32) bool {
			expected = append(expected, k)
			return true
		})

		lower, upper := key(-20), key(40)
		p, err := predicate.Build(predicate.KindRange, lower, upper)
		require.NoError(t, err, "builds predicate")

		// Execute
		c, err := hashMap.Find(p)
		lower[0], upper[0] = 0, 0

		// Check
		require.NoError(t, err, "finds")
		keys, values := drain(t, c)
		assert.ElementsMatch(t, expected, keys, "exactly keys in range")
		for i, k := range keys {
			assert.Equalf(t, k*2, values[i], "value belongs to key %d", k)
		}
	})

	t.Run("includes records in the last slot", func(t *testing.T) {
		// Prepare
		hashMap, err := NewHashMap(model.DictionaryConf{
			KeyLength: 4, ValueLength: 4, Capacity: 4, HashAlgorithm: &constantHashAlgorithm{home: 3},
		})
		require.NoError(t, err, "create hash map")
		_, _ = hashMap.Insert(key(1), value(1))
		_, _ = hashMap.Insert(key(2), value(2))

		// Execute
		c, err := hashMap.Find(predicate.Range{Lower: key(0), Upper: key(10)})

		// Check
		require.NoError(t, err, "finds")
		keys, _ := drain(t, c)
		assert.ElementsMatch(t, []int32{1, 2}, keys, "both keys, one in the last slot")
	})

	t.Run("no key in range gives an empty cursor", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 16, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(1), value(1))
		_, _ = hashMap.Insert(key(100), value(1))

		// Execute
		c, err := hashMap.Find(predicate.Range{Lower: key(5), Upper: key(50)})

		// Check
		assert.NoError(t, err, "empty result is not an error")
		assert.Equal(t, cursor.EndOfResults, c.Status(), "end of results")
	})

	t.Run("rejects bounds of wrong length", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 16, model.WriteConcernInsertUnique)

		// Execute
		_, err := hashMap.Find(predicate.Range{Lower: key(5), Upper: []byte{1}})

		// Check
		assert.True(t, errors.Is(err, kverr.InvalidPredicate{}), "invalid predicate")
	})
}

func TestHashMap_Find_AllRecords(t *testing.T) {
	t.Run("yields every live key exactly once", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 64, model.WriteConcernInsertUnique)
		for i := int32(0); i < 40; i++ {
			_, _ = hashMap.Insert(key(i), value(i))
		}
		for i := int32(0); i < 40; i += 3 {
			_, _ = hashMap.Delete(key(i))
		}

		// Execute
		c, err := hashMap.Find(predicate.AllRecords{})

		// Check
		require.NoError(t, err, "finds")
		keys, _ := drain(t, c)
		assert.Len(t, keys, int(hashMap.GetStorageParameters().Occupied), "count of live keys")
		seen := make(map[int32]int)
		for _, k := range keys {
			seen[k]++
			assert.NotZerof(t, k%3, "deleted key %d not returned", k)
		}
		for k, n := range seen {
			assert.Equalf(t, 1, n, "key %d exactly once", k)
		}
	})

	t.Run("full table yields every record", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 5, model.WriteConcernInsertUnique)
		for i := int32(0); i < 5; i++ {
			_, _ = hashMap.Insert(key(i), value(i))
		}

		// Execute
		c, err := hashMap.Find(predicate.AllRecords{})

		// Check
		require.NoError(t, err, "finds")
		keys, _ := drain(t, c)
		assert.ElementsMatch(t, []int32{0, 1, 2, 3, 4}, keys, "all keys")
	})

	t.Run("empty table gives an empty cursor", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 5, model.WriteConcernInsertUnique)

		// Execute
		c, err := hashMap.Find(predicate.AllRecords{})

		// Check
		assert.NoError(t, err, "finds")
		assert.Equal(t, cursor.EndOfResults, c.Status(), "end of results")
	})
}

func TestHashMap_Find_Invalid(t *testing.T) {
	t.Run("rejects nil and unsupported predicates", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 5, model.WriteConcernInsertUnique)

		// Execute
		c1, err1 := hashMap.Find(nil)
		c2, err2 := hashMap.Find(unsupportedPredicate{})

		// Check
		assert.Nil(t, c1, "no cursor for nil")
		assert.Nil(t, c2, "no cursor for unsupported")
		assert.True(t, errors.Is(err1, kverr.InvalidPredicate{}), "nil predicate invalid")
		assert.True(t, errors.Is(err2, kverr.InvalidPredicate{}), "unsupported predicate invalid")
	})
}

func TestCursor_Destroy(t *testing.T) {
	t.Run("destroyed cursor is invalid", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 8, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(1), value(1))
		c, err := hashMap.Find(predicate.AllRecords{})
		require.NoError(t, err, "finds")

		// Execute
		c.Destroy()

		// Check
		var record cursor.Record
		status, err := c.Next(&record)
		assert.Equal(t, cursor.Invalid, status, "invalid")
		assert.True(t, errors.Is(err, kverr.CursorDestroyed{}), "cursor destroyed")
		assert.Nil(t, c.predicate, "predicate released")
		assert.Nil(t, c.hashMap, "map reference released")
	})

	t.Run("cursor over destroyed map becomes invalid", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 8, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(1), value(1))
		c, err := hashMap.Find(predicate.AllRecords{})
		require.NoError(t, err, "finds")

		// Execute
		_ = hashMap.Destroy()

		// Check
		var record cursor.Record
		status, err := c.Next(&record)
		assert.Equal(t, cursor.Invalid, status, "invalid")
		assert.True(t, errors.Is(err, kverr.Destroyed{}), "map destroyed")
	})
}

func TestCursor_Next(t *testing.T) {
	t.Run("reuses record buffers of the right length", func(t *testing.T) {
		// Prepare
		hashMap := newTestMap(t, 8, model.WriteConcernInsertUnique)
		_, _ = hashMap.Insert(key(3), value(4))
		c, err := hashMap.Find(predicate.Equality{Key: key(3)})
		require.NoError(t, err, "finds")
		record := cursor.Record{Key: make([]byte, 4), Value: make([]byte, 4)}
		keyBuf := record.Key

		// Execute
		status, err := c.Next(&record)

		// Check
		assert.NoError(t, err, "next")
		assert.Equal(t, cursor.Active, status, "active")
		assert.Equal(t, key(3), keyBuf, "written into caller buffer")
		record.Value[0] = 0
		v, _ := hashMap.Get(key(3))
		assert.Equal(t, value(4), v, "record is a copy")
	})
}
