package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
)

/*
	The store package persists the key material of the fleet: a durable Address -> SecretKey map.
	It is not authoritative for balances and has no concurrency contract of its own beyond the
	safety of each single call, the fleet serializes its access.

	Entries are JSON records under a common key prefix, the secret key is either plain hex or an
	argon2id + AES-GCM sealed keystore record when a password is configured.
*/

// Storage is the Address -> SecretKey capability consumed by the fleet
type Storage interface {
	// Get() returns the secret key of an address or nil if it is unknown
	Get(address crypto.AddressI) (crypto.PrivateKeyI, lib.ErrorI)
	Set(address crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI
	Remove(address crypto.AddressI) lib.ErrorI
	// Clear() removes every entry
	Clear() lib.ErrorI
	ContainsKey(address crypto.AddressI) (bool, lib.ErrorI)
	Len() (int, lib.ErrorI)
	IsEmpty() (bool, lib.ErrorI)
	// Iterate() calls fn for each entry in ascending address order until fn returns an error
	Iterate(fn func(address crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI) lib.ErrorI
	Keys() ([]crypto.AddressI, lib.ErrorI)
	Values() ([]crypto.PrivateKeyI, lib.ErrorI)
	Close() lib.ErrorI
}

const (
	Memory  = "memory"
	LevelDB = "leveldb"
	BoltDB  = "bolt"
	Badger  = "badger"
)

// keyPrefix namespaces the key records inside the database
var keyPrefix = []byte("k/")

var _ Storage = &KeyStore{}

// KeyStore implements Storage over any KVStoreI
type KeyStore struct {
	db       KVStoreI
	password []byte // nil means keys are stored in plain hex
	mu       sync.Mutex
	log      lib.LoggerI
}

// keyRecord is the persisted form of one entry
type keyRecord struct {
	Address   string                      `json:"address"`
	Format    crypto.Format               `json:"format"`
	Key       string                      `json:"key,omitempty"`
	Encrypted *crypto.EncryptedPrivateKey `json:"encrypted,omitempty"`
}

// New() creates the Storage named by the store config
// The password is only used when config.Encrypt is set
func New(config lib.StoreConfig, password []byte, log lib.LoggerI) (*KeyStore, lib.ErrorI) {
	var (
		db  KVStoreI
		err lib.ErrorI
	)
	path := filepath.Join(config.DataDirPath, config.DBName)
	if strings.ToLower(config.Backend) != Memory {
		if e := os.MkdirAll(config.DataDirPath, os.ModePerm); e != nil {
			return nil, ErrOpenDB(e)
		}
	}
	switch strings.ToLower(config.Backend) {
	case Memory:
		db = NewMemoryDB()
	case LevelDB, "":
		db, err = NewLevelDB(path)
	case BoltDB:
		db, err = NewBoltDB(path + ".db")
	case Badger:
		db, err = NewBadgerDB(path)
	default:
		return nil, ErrUnknownDB(config.Backend)
	}
	if err != nil {
		return nil, err
	}
	if !config.Encrypt {
		password = nil
	} else if len(password) == 0 {
		_ = db.Close()
		return nil, ErrStoreEncode(lib.ErrInvalidArgument("encryption is enabled but the keystore password is empty"))
	}
	log.Infof("Opened %s key store at %s", strings.ToLower(config.Backend), path)
	return NewKeyStore(db, password, log), nil
}

// NewKeyStore() wraps a KVStoreI, a non-empty password seals every secret key written
func NewKeyStore(db KVStoreI, password []byte, log lib.LoggerI) *KeyStore {
	return &KeyStore{db: db, password: password, log: log}
}

// Get() returns the secret key of an address or nil if it is unknown
func (s *KeyStore) Get(address crypto.AddressI) (crypto.PrivateKeyI, lib.ErrorI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bz, err := s.db.Get(recordKey(address))
	if err != nil || bz == nil {
		return nil, err
	}
	_, pk, err := s.decode(bz)
	return pk, err
}

// Set() persists the secret key of an address, overwriting any previous entry
func (s *KeyStore) Set(address crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	bz, err := s.encode(address, key)
	if err != nil {
		return err
	}
	return s.db.Set(recordKey(address), bz)
}

// Remove() deletes the entry of an address, removing an unknown address is not an error
func (s *KeyStore) Remove(address crypto.AddressI) lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(recordKey(address))
}

// Clear() removes every entry
func (s *KeyStore) Clear() lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.rawKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err = s.db.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// ContainsKey() returns true if the address has an entry
func (s *KeyStore) ContainsKey(address crypto.AddressI) (bool, lib.ErrorI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bz, err := s.db.Get(recordKey(address))
	return bz != nil, err
}

// Len() returns the number of entries
func (s *KeyStore) Len() (int, lib.ErrorI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.rawKeys()
	return len(keys), err
}

// IsEmpty() returns true if there are no entries
func (s *KeyStore) IsEmpty() (bool, lib.ErrorI) {
	n, err := s.Len()
	return n == 0, err
}

// Iterate() calls fn for each entry in ascending address order until fn returns an error
// The entries are read before fn is first called, so fn may modify the store
func (s *KeyStore) Iterate(fn func(address crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI) lib.ErrorI {
	s.mu.Lock()
	it, err := s.db.Iterator(keyPrefix)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var values [][]byte
	for ; it.Valid(); it.Next() {
		values = append(values, it.Value())
	}
	it.Close()
	s.mu.Unlock()
	for _, bz := range values {
		address, pk, e := s.decode(bz)
		if e != nil {
			return e
		}
		if e = fn(address, pk); e != nil {
			return e
		}
	}
	return nil
}

// Keys() returns every address with an entry
func (s *KeyStore) Keys() (addresses []crypto.AddressI, err lib.ErrorI) {
	err = s.Iterate(func(address crypto.AddressI, _ crypto.PrivateKeyI) lib.ErrorI {
		addresses = append(addresses, address)
		return nil
	})
	return
}

// Values() returns every stored secret key
func (s *KeyStore) Values() (keys []crypto.PrivateKeyI, err lib.ErrorI) {
	err = s.Iterate(func(_ crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI {
		keys = append(keys, key)
		return nil
	})
	return
}

// Close() closes the underlying database
func (s *KeyStore) Close() lib.ErrorI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// encode() converts an entry into its persisted record
func (s *KeyStore) encode(address crypto.AddressI, key crypto.PrivateKeyI) ([]byte, lib.ErrorI) {
	if address == nil || key == nil {
		return nil, ErrNilValue()
	}
	record := keyRecord{Address: address.String(), Format: address.Format()}
	if s.password != nil {
		encrypted, err := crypto.EncryptPrivateKey(key, s.password)
		if err != nil {
			return nil, ErrStoreEncode(err)
		}
		record.Encrypted = encrypted
	} else {
		record.Key = key.String()
	}
	bz, err := lib.MarshalJSON(record)
	if err != nil {
		return nil, ErrStoreEncode(err)
	}
	return bz, nil
}

// decode() converts a persisted record back into an entry
func (s *KeyStore) decode(bz []byte) (address crypto.AddressI, pk crypto.PrivateKeyI, err lib.ErrorI) {
	record := new(keyRecord)
	if err = lib.UnmarshalJSON(bz, record); err != nil {
		return nil, nil, ErrStoreDecode(err)
	}
	if address, err = crypto.ParseAddress(record.Address, ""); err != nil {
		return nil, nil, ErrStoreDecode(err)
	}
	switch {
	case record.Encrypted != nil:
		if s.password == nil {
			return nil, nil, ErrStoreDecode(lib.ErrInvalidArgument("record is encrypted but no keystore password is set"))
		}
		pk, err = crypto.DecryptPrivateKey(record.Encrypted, s.password)
	default:
		pk, err = crypto.NewPrivateKeyFromString(record.Key)
	}
	if err != nil {
		return nil, nil, ErrStoreDecode(err)
	}
	return
}

// rawKeys() lists the database keys of every record
func (s *KeyStore) rawKeys() (keys [][]byte, err lib.ErrorI) {
	it, err := s.db.Iterator(keyPrefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		keys = append(keys, it.Key())
	}
	return
}

// recordKey() is the database key of an address
func recordKey(address crypto.AddressI) []byte {
	return append(append([]byte{}, keyPrefix...), address.String()...)
}
