package flashkv

import (
	"github.com/gostonefire/flashkv/cursor"
	"github.com/gostonefire/flashkv/internal/model"
	"github.com/gostonefire/flashkv/internal/storage/openaddressing"
	"github.com/gostonefire/flashkv/kverr"
	"github.com/gostonefire/flashkv/predicate"
)

// DictionaryConf - Layout and policy of a dictionary, see model.DictionaryConf for the fields
type DictionaryConf = model.DictionaryConf

// StorageParameters - Parameters and utilization of a dictionary
type StorageParameters = model.StorageParameters

// WriteConcern - Policy governing whether a write may overwrite an existing key
type WriteConcern = model.WriteConcern

const (
	// WriteConcernInsertUnique - Inserting an existing key gives kverr.DuplicateKey, updating a missing key gives kverr.NotFound
	WriteConcernInsertUnique = model.WriteConcernInsertUnique

	// WriteConcernUpsert - Inserting an existing key overwrites it, updating a missing key inserts it
	WriteConcernUpsert = model.WriteConcernUpsert
)

// Handler - Interface for a storage backend able to create and open dictionaries
type Handler interface {
	CreateDictionary(conf DictionaryConf) (backend Backend, err error)
	OpenDictionary(conf DictionaryConf) (backend Backend, err error)
	CloseDictionary(backend Backend) (err error)
}

// Backend - Interface for one dictionary instance of a storage backend
type Backend interface {
	Insert(key, value []byte) (count int64, err error)
	Get(key []byte) (value []byte, err error)
	Update(key, value []byte) (count int64, err error)
	Delete(key []byte) (count int64, err error)
	Find(p predicate.Predicate) (c cursor.Cursor, err error)
	GetStorageParameters() (params StorageParameters)
	Destroy() (err error)
}

// openAddressHandler - Handler for the in memory, fixed capacity open addressing hash map
type openAddressHandler struct{}

// NewOpenAddressHandler - Returns the handler for fixed capacity open addressing hash map dictionaries.
// The dictionaries live in memory only, so opening and closing them is not supported.
func NewOpenAddressHandler() Handler {
	return openAddressHandler{}
}

// CreateDictionary - Creates an empty hash map according to conf
func (openAddressHandler) CreateDictionary(conf DictionaryConf) (backend Backend, err error) {
	hashMap, err := openaddressing.NewHashMap(conf)
	if err != nil {
		return
	}

	backend = openAddressBackend{HashMap: hashMap}
	return
}

// OpenDictionary - Returns kverr.NotImplemented, a hash map has no persistent state to open
func (openAddressHandler) OpenDictionary(DictionaryConf) (backend Backend, err error) {
	err = kverr.NotImplemented{}
	return
}

// CloseDictionary - Returns kverr.NotImplemented, a hash map has no persistent state to close
func (openAddressHandler) CloseDictionary(Backend) (err error) {
	err = kverr.NotImplemented{}
	return
}

// openAddressBackend - Adapts the hash map to the Backend interface
type openAddressBackend struct {
	*openaddressing.HashMap
}

// Find - Returns the hash map cursor as a cursor.Cursor, nil on error
func (O openAddressBackend) Find(p predicate.Predicate) (c cursor.Cursor, err error) {
	cur, err := O.HashMap.Find(p)
	if err != nil {
		return
	}

	c = cur
	return
}
