//go:build unit

package flashkv

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/config"
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/internal/logging"
	"github.com/gostonefire/flashkv/kverr"
	"github.com/gostonefire/flashkv/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func key(k int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(k))
	return b
}

func newDictionary(t *testing.T, capacity int64, opts ...Option) *Dictionary {
	dictionary, err := CreateDictionary(NewOpenAddressHandler(), 1, compare.NumericSigned, 4, 4, capacity, nil, opts...)
	require.NoError(t, err, "create dictionary")
	return dictionary
}

func TestCreateDictionary(t *testing.T) {
	t.Run("creates dictionary on open addressing backend", func(t *testing.T) {
		// Execute
		dictionary, err := CreateDictionary(NewOpenAddressHandler(), 7, compare.CharArray, 16, 10, 100, nil,
			WithWriteConcern(WriteConcernUpsert))

		// Check
		require.NoError(t, err, "creates dictionary")
		assert.Equal(t, int64(7), dictionary.ID(), "id")
		assert.Equal(t, compare.CharArray, dictionary.KeyType(), "key type")
		sp := dictionary.GetStorageParameters()
		assert.Equal(t, int64(16), sp.KeyLength, "key length")
		assert.Equal(t, int64(10), sp.ValueLength, "value length")
		assert.Equal(t, int64(100), sp.Capacity, "capacity")
		assert.Equal(t, int64(100), sp.Empty, "all empty")
		assert.Equal(t, WriteConcernUpsert, sp.WriteConcern, "write concern")
		assert.True(t, sp.InternalAlgorithm, "internal hash algorithm")
	})

	t.Run("memory limit gives out of memory", func(t *testing.T) {
		// Execute
		_, err := CreateDictionary(NewOpenAddressHandler(), 1, compare.NumericSigned, 4, 4, 1000, nil,
			WithMemoryLimit(100))

		// Check
		assert.True(t, errors.Is(err, kverr.OutOfMemory{}), "out of memory")
	})

	t.Run("rejects nil handler and bad sizes", func(t *testing.T) {
		// Execute
		_, err1 := CreateDictionary(nil, 1, compare.NumericSigned, 4, 4, 10, nil)
		_, err2 := CreateDictionary(NewOpenAddressHandler(), 1, compare.NumericSigned, 0, 4, 10, nil)
		_, err3 := CreateDictionary(NewOpenAddressHandler(), 1, compare.NumericSigned, 4, 4, 0, nil)

		// Check
		assert.Error(t, err1, "nil handler")
		assert.Error(t, err2, "zero key length")
		assert.Error(t, err3, "zero capacity")
	})

	t.Run("nil comparator selects key type comparator", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 32)
		for k := int32(-5); k <= 5; k++ {
			_, err := dictionary.Insert(key(k), key(k))
			require.NoError(t, err, "insert")
		}

		// Execute
		c, err := dictionary.Find(predicate.Range{Lower: key(-2), Upper: key(1)})

		// Check
		require.NoError(t, err, "finds")
		var n int
		var record cursor.Record
		for status, _ := c.Next(&record); status == cursor.Active; status, _ = c.Next(&record) {
			n++
		}
		assert.Equal(t, 4, n, "signed range -2..1")
	})
}

func TestOpenDictionary(t *testing.T) {
	t.Run("open and close are not implemented for hash maps", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 8)

		// Execute
		_, err1 := OpenDictionary(NewOpenAddressHandler(), DictionaryConf{ID: 1})
		err2 := dictionary.Close()

		// Check
		assert.True(t, errors.Is(err1, kverr.NotImplemented{}), "open not implemented")
		assert.True(t, errors.Is(err2, kverr.NotImplemented{}), "close not implemented")
	})
}

func TestDictionary_Operations(t *testing.T) {
	t.Run("insert get update delete with counts", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 16)

		// Execute and check
		count, err := dictionary.Insert(key(1), key(10))
		assert.NoError(t, err, "insert")
		assert.Equal(t, int64(1), count, "one inserted")

		_, err = dictionary.Insert(key(1), key(11))
		assert.True(t, errors.Is(err, kverr.DuplicateKey{}), "duplicate key")

		count, err = dictionary.Update(key(1), key(12))
		assert.NoError(t, err, "update")
		assert.Equal(t, int64(1), count, "one updated")

		value, err := dictionary.Get(key(1))
		assert.NoError(t, err, "get")
		assert.Equal(t, key(12), value, "updated value")

		_, err = dictionary.Update(key(2), key(20))
		assert.True(t, errors.Is(err, kverr.NotFound{}), "update of missing key")

		count, err = dictionary.Delete(key(1))
		assert.NoError(t, err, "delete")
		assert.Equal(t, int64(1), count, "one deleted")

		_, err = dictionary.Get(key(1))
		assert.True(t, errors.Is(err, kverr.NotFound{}), "deleted")
	})

	t.Run("upsert write concern", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 16, WithWriteConcern(WriteConcernUpsert))

		// Execute
		_, err1 := dictionary.Insert(key(1), key(10))
		_, err2 := dictionary.Insert(key(1), key(11))
		_, err3 := dictionary.Update(key(2), key(20))

		// Check
		assert.NoError(t, err1, "insert")
		assert.NoError(t, err2, "insert overwrites")
		assert.NoError(t, err3, "update inserts")
		v1, _ := dictionary.Get(key(1))
		v2, _ := dictionary.Get(key(2))
		assert.Equal(t, key(11), v1, "overwritten")
		assert.Equal(t, key(20), v2, "inserted by update")
	})

	t.Run("rejects wrong lengths", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 16)

		// Execute
		_, err1 := dictionary.Insert([]byte{1}, key(1))
		_, err2 := dictionary.Insert(key(1), []byte{1})
		_, err3 := dictionary.Get([]byte{1, 2, 3, 4, 5})
		_, err4 := dictionary.Delete(nil)

		// Check
		assert.Error(t, err1, "short key")
		assert.Error(t, err2, "short value")
		assert.Error(t, err3, "long key")
		assert.Error(t, err4, "nil key")
	})

	t.Run("invalid predicate gives no cursor", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 16)

		// Execute
		c, err := dictionary.Find(nil)

		// Check
		assert.Nil(t, c, "untyped nil cursor")
		assert.True(t, errors.Is(err, kverr.InvalidPredicate{}), "invalid predicate")
	})
}

func TestDictionary_DeleteDictionary(t *testing.T) {
	t.Run("deleted dictionary can't be used", func(t *testing.T) {
		// Prepare
		dictionary := newDictionary(t, 16)
		_, _ = dictionary.Insert(key(1), key(1))
		c, err := dictionary.Find(predicate.AllRecords{})
		require.NoError(t, err, "finds")

		// Execute
		err = dictionary.DeleteDictionary()

		// Check
		assert.NoError(t, err, "deletes")
		_, err = dictionary.Get(key(1))
		assert.True(t, errors.Is(err, kverr.Destroyed{}), "get on deleted")
		err = dictionary.DeleteDictionary()
		assert.True(t, errors.Is(err, kverr.Destroyed{}), "delete twice")
		status, err := c.Next(&cursor.Record{})
		assert.Equal(t, cursor.Invalid, status, "cursor invalid")
		assert.True(t, errors.Is(err, kverr.Destroyed{}), "cursor sees destroyed map")
	})
}

func TestCreateFromConfig(t *testing.T) {
	t.Run("creates dictionary from configuration", func(t *testing.T) {
		// Prepare
		var logOutput bytes.Buffer
		cfg := config.DictionaryConfig{
			KeyType:       "null_terminated_string",
			KeySize:       8,
			ValueSize:     2,
			Capacity:      64,
			WriteConcern:  "upsert",
			HashAlgorithm: "xxhash",
		}

		// Execute
		dictionary, err := CreateFromConfig(3, &config.Config{Dictionary: cfg}, logging.NewWithWriter(&logOutput, "info", "json"))

		// Check
		require.NoError(t, err, "creates")
		sp := dictionary.GetStorageParameters()
		assert.Equal(t, WriteConcernUpsert, sp.WriteConcern, "upsert")
		assert.False(t, sp.InternalAlgorithm, "custom hash algorithm")
		assert.Equal(t, compare.NullTerminatedString, dictionary.KeyType(), "key type")
		assert.Contains(t, logOutput.String(), "dictionary created", "logs creation")

		_, err = dictionary.Insert([]byte("abc\x00\x00\x00\x00\x00"), []byte{1, 1})
		assert.NoError(t, err, "insert")
		v, err := dictionary.Get([]byte("abc\x00\x00\x00\x00\x00"))
		assert.NoError(t, err, "get")
		assert.Equal(t, []byte{1, 1}, v, "value")
	})

	t.Run("nil logger is built from the log section", func(t *testing.T) {
		// Prepare
		cfg := config.Default()
		cfg.Log = config.LogConfig{Level: "debug", Format: "json"}

		// Execute
		dictionary, err := CreateFromConfig(4, cfg, nil)

		// Check
		require.NoError(t, err, "creates")
		assert.True(t, dictionary.logger.Enabled(context.Background(), slog.LevelDebug), "debug level from config")
		assert.IsType(t, &slog.JSONHandler{}, dictionary.logger.Handler(), "json format from config")
	})

	t.Run("nil configuration gives defaults", func(t *testing.T) {
		// Execute
		dictionary, err := CreateFromConfig(5, nil, nil)

		// Check
		require.NoError(t, err, "creates")
		assert.Equal(t, int64(256), dictionary.GetStorageParameters().Capacity, "default capacity")
		assert.False(t, dictionary.logger.Enabled(context.Background(), slog.LevelDebug), "default info level")
	})

	t.Run("rejects unknown settings", func(t *testing.T) {
		// Execute
		_, err1 := CreateFromConfig(1, &config.Config{Dictionary: config.DictionaryConfig{KeyType: "float", KeySize: 4, ValueSize: 4, Capacity: 4}}, nil)
		_, err2 := CreateFromConfig(1, &config.Config{Dictionary: config.DictionaryConfig{KeyType: "char_array", KeySize: 4, ValueSize: 4, Capacity: 4, WriteConcern: "x"}}, nil)
		_, err3 := CreateFromConfig(1, &config.Config{Dictionary: config.DictionaryConfig{KeyType: "char_array", KeySize: 4, ValueSize: 4, Capacity: 4, HashAlgorithm: "md5"}}, nil)

		// Check
		assert.Error(t, err1, "key type")
		assert.Error(t, err2, "write concern")
		assert.Error(t, err3, "hash algorithm")
	})
}
