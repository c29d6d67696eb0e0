package flashkv

import (
	"fmt"
	"github.com/gostonefire/flashkv/compare"
	"github.com/gostonefire/flashkv/config"
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/hashfunc"
	"github.com/gostonefire/flashkv/internal/hash"
	"github.com/gostonefire/flashkv/internal/logging"
	"github.com/gostonefire/flashkv/kverr"
	"github.com/gostonefire/flashkv/predicate"
	"log/slog"
	"strings"
)

// Dictionary - A key value dictionary with fixed key and value lengths, stored by the backend of a Handler
type Dictionary struct {
	id          int64
	keyType     compare.KeyType
	keyLength   int64
	valueLength int64
	handler     Handler
	backend     Backend
	logger      *slog.Logger
}

// Option - Configures optional settings of CreateDictionary
type Option func(*DictionaryConf)

// WithWriteConcern - Sets the write concern, WriteConcernInsertUnique by default
func WithWriteConcern(writeConcern WriteConcern) Option {
	return func(c *DictionaryConf) {
		c.WriteConcern = writeConcern
	}
}

// WithHashAlgorithm - Sets a custom hash algorithm, the internal crc32 based one is used by default
func WithHashAlgorithm(hashAlgorithm hashfunc.HashAlgorithm) Option {
	return func(c *DictionaryConf) {
		c.HashAlgorithm = hashAlgorithm
	}
}

// WithMemoryLimit - Sets the max number of bytes the dictionary may allocate, no limit by default
func WithMemoryLimit(bytes int64) Option {
	return func(c *DictionaryConf) {
		c.MemoryLimit = bytes
	}
}

// WithLogger - Sets the logger, log output is discarded by default
func WithLogger(logger *slog.Logger) Option {
	return func(c *DictionaryConf) {
		c.Logger = logger
	}
}

// CreateDictionary - Creates a new empty dictionary using the backend of handler.
//   - handler is the storage backend, e.g. NewOpenAddressHandler()
//   - id identifies the dictionary in log output
//   - keyType selects the built-in comparator if compareFn is nil
//   - keyLength and valueLength are the fixed lengths of keys and values
//   - capacity is the number of records the dictionary is sized for
//   - compareFn is an optional custom key comparator
//
// It returns:
//   - dictionary is a pointer to the created Dictionary
//   - err is kverr.OutOfMemory if the dictionary doesn't fit, or a standard error for invalid parameters
func CreateDictionary(
	handler Handler,
	id int64,
	keyType compare.KeyType,
	keyLength int64,
	valueLength int64,
	capacity int64,
	compareFn compare.Func,
	opts ...Option,
) (
	dictionary *Dictionary,
	err error,
) {
	if handler == nil {
		err = fmt.Errorf("handler can not be nil")
		return
	}

	conf := DictionaryConf{
		ID:          id,
		KeyType:     keyType,
		KeyLength:   keyLength,
		ValueLength: valueLength,
		Capacity:    capacity,
		Compare:     compareFn,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	if conf.Compare == nil {
		conf.Compare = compare.ForKeyType(keyType, int(keyLength))
	}

	backend, err := handler.CreateDictionary(conf)
	if err != nil {
		return
	}

	dictionary = &Dictionary{
		id:          id,
		keyType:     keyType,
		keyLength:   keyLength,
		valueLength: valueLength,
		handler:     handler,
		backend:     backend,
		logger:      logging.OrNoop(conf.Logger),
	}

	dictionary.logger.Info("dictionary created", "id", id, "keyType", keyType.String(), "capacity", capacity)

	return
}

// OpenDictionary - Opens an existing dictionary through the handler
func OpenDictionary(handler Handler, conf DictionaryConf) (dictionary *Dictionary, err error) {
	if handler == nil {
		err = fmt.Errorf("handler can not be nil")
		return
	}

	backend, err := handler.OpenDictionary(conf)
	if err != nil {
		return
	}

	dictionary = &Dictionary{
		id:          conf.ID,
		keyType:     conf.KeyType,
		keyLength:   conf.KeyLength,
		valueLength: conf.ValueLength,
		handler:     handler,
		backend:     backend,
		logger:      logging.OrNoop(conf.Logger),
	}

	return
}

// CreateFromConfig - Creates a dictionary on the open addressing backend from the dictionary section of cfg.
// If logger is nil a logger is built from the log section.
func CreateFromConfig(id int64, cfg *config.Config, logger *slog.Logger) (dictionary *Dictionary, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	dc := cfg.Dictionary

	keyType, err := ParseKeyType(dc.KeyType)
	if err != nil {
		return
	}

	opts := []Option{WithMemoryLimit(dc.MemoryLimit), WithLogger(logging.OrFromConfig(logger, cfg.Log))}

	switch strings.ToLower(dc.WriteConcern) {
	case "", "insert_unique":
		opts = append(opts, WithWriteConcern(WriteConcernInsertUnique))
	case "upsert":
		opts = append(opts, WithWriteConcern(WriteConcernUpsert))
	default:
		err = fmt.Errorf("unknown write concern %q", dc.WriteConcern)
		return
	}

	switch strings.ToLower(dc.HashAlgorithm) {
	case "", "crc32":
	case "xxhash":
		opts = append(opts, WithHashAlgorithm(hash.NewXXHashLinearProbingAlgorithm(dc.Capacity)))
	default:
		err = fmt.Errorf("unknown hash algorithm %q", dc.HashAlgorithm)
		return
	}

	return CreateDictionary(NewOpenAddressHandler(), id, keyType, dc.KeySize, dc.ValueSize, dc.Capacity, nil, opts...)
}

// ParseKeyType - Returns the key type named by s
func ParseKeyType(s string) (keyType compare.KeyType, err error) {
	for _, k := range []compare.KeyType{compare.NumericSigned, compare.NumericUnsigned, compare.CharArray, compare.NullTerminatedString} {
		if strings.EqualFold(s, k.String()) {
			keyType = k
			return
		}
	}

	err = fmt.Errorf("unknown key type %q", s)
	return
}

// ID - Returns the dictionary identifier
func (D *Dictionary) ID() int64 {
	return D.id
}

// KeyType - Returns the key type given at creation
func (D *Dictionary) KeyType() compare.KeyType {
	return D.keyType
}

// Get - Gets the value of the record with the given key.
//   - key is the identifier of a record, it has to be of the key length given at creation
//
// It returns:
//   - value is a copy of the record value
//   - err is kverr.NotFound if no record has the key, or another error if something went wrong
func (D *Dictionary) Get(key []byte) (value []byte, err error) {
	if err = D.checkOpen(); err != nil {
		return
	}
	if err = D.checkKey(key); err != nil {
		return
	}

	return D.backend.Get(key)
}

// Insert - Adds a record, an existing key is handled according to the write concern
//
// It returns:
//   - count is the number of records affected
//   - err is kverr.DuplicateKey, kverr.MapFull or another error if something went wrong
func (D *Dictionary) Insert(key, value []byte) (count int64, err error) {
	if err = D.checkOpen(); err != nil {
		return
	}
	if err = D.checkRecord(key, value); err != nil {
		return
	}

	return D.backend.Insert(key, value)
}

// Update - Overwrites the value of an existing record, a missing key is handled according to the write concern
//
// It returns:
//   - count is the number of records affected
//   - err is kverr.NotFound, kverr.MapFull or another error if something went wrong
func (D *Dictionary) Update(key, value []byte) (count int64, err error) {
	if err = D.checkOpen(); err != nil {
		return
	}
	if err = D.checkRecord(key, value); err != nil {
		return
	}

	return D.backend.Update(key, value)
}

// Delete - Removes the record with the given key
//
// It returns:
//   - count is the number of records affected
//   - err is kverr.NotFound or another error if something went wrong
func (D *Dictionary) Delete(key []byte) (count int64, err error) {
	if err = D.checkOpen(); err != nil {
		return
	}
	if err = D.checkKey(key); err != nil {
		return
	}

	return D.backend.Delete(key)
}

// Find - Returns a cursor over all records whose key satisfies the predicate. The predicate may be discarded as
// soon as Find returns. The cursor must not outlive the dictionary and should be destroyed when done with.
//
// It returns:
//   - c is the cursor, an empty result is a cursor in status cursor.EndOfResults and not an error
//   - err is kverr.InvalidPredicate or another error if something went wrong
func (D *Dictionary) Find(p predicate.Predicate) (c cursor.Cursor, err error) {
	if err = D.checkOpen(); err != nil {
		return
	}

	return D.backend.Find(p)
}

// GetStorageParameters - Returns parameters and utilization of the dictionary
func (D *Dictionary) GetStorageParameters() (params StorageParameters) {
	if D.backend == nil {
		return
	}
	return D.backend.GetStorageParameters()
}

// DeleteDictionary - Destroys the dictionary and everything in it. The dictionary can't be used afterwards.
func (D *Dictionary) DeleteDictionary() (err error) {
	if err = D.checkOpen(); err != nil {
		return
	}

	if err = D.backend.Destroy(); err != nil {
		return
	}
	D.backend = nil

	D.logger.Info("dictionary deleted", "id", D.id)

	return
}

// Close - Closes the dictionary through its handler
func (D *Dictionary) Close() (err error) {
	if err = D.checkOpen(); err != nil {
		return
	}

	return D.handler.CloseDictionary(D.backend)
}

// checkOpen - Returns kverr.Destroyed if the dictionary has been deleted
func (D *Dictionary) checkOpen() (err error) {
	if D.backend == nil {
		err = kverr.Destroyed{}
	}
	return
}

// checkKey - Checks validity of the key
func (D *Dictionary) checkKey(key []byte) (err error) {
	if int64(len(key)) != D.keyLength {
		err = fmt.Errorf("wrong length of key, should be %d", D.keyLength)
	}
	return
}

// checkRecord - Checks validity of the key and value
func (D *Dictionary) checkRecord(key, value []byte) (err error) {
	if err = D.checkKey(key); err != nil {
		return
	}
	if int64(len(value)) != D.valueLength {
		err = fmt.Errorf("wrong length of value, should be %d", D.valueLength)
	}
	return
}
