package store

import (
	"bytes"
	"time"

	"github.com/oblivisheee/aum-engine/lib"
	bolt "go.etcd.io/bbolt"
)

/* This file wraps BoltDB for the KVStoreI interface */

var _ KVStoreI = &BoltDBWrapper{}

// every key lives in a single bucket
var boltBucket = []byte("keys")

type BoltDBWrapper struct {
	db *bolt.DB
}

// NewBoltDB() opens (or creates) a bolt database file at path
func NewBoltDB(path string) (*BoltDBWrapper, lib.ErrorI) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(boltBucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, ErrOpenDB(err)
	}
	return &BoltDBWrapper{db: db}, nil
}

func (b *BoltDBWrapper) Get(key []byte) (value []byte, err lib.ErrorI) {
	if key == nil {
		return nil, ErrNilKey()
	}
	if e := b.db.View(func(tx *bolt.Tx) error {
		// bolt values are only valid for the life of the transaction
		if v := tx.Bucket(boltBucket).Get(key); v != nil {
			value = cp(v)
		}
		return nil
	}); e != nil {
		return nil, ErrStoreGet(e)
	}
	return
}

func (b *BoltDBWrapper) Set(key, value []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if value == nil {
		return ErrNilValue()
	}
	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	}); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

func (b *BoltDBWrapper) Delete(key []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	}); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

// Iterator() materializes the prefix range inside a read transaction
func (b *BoltDBWrapper) Iterator(prefix []byte) (IteratorI, lib.ErrorI) {
	var pairs []kv
	if err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			pairs = append(pairs, kv{key: cp(k), value: cp(v)})
		}
		return nil
	}); err != nil {
		return nil, ErrStoreIter(err)
	}
	return newSliceIterator(pairs), nil
}

func (b *BoltDBWrapper) Close() lib.ErrorI {
	if err := b.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}
