package store

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/oblivisheee/aum-engine/lib"
)

/* This file wraps BadgerDB for the KVStoreI interface */

var _ KVStoreI = &BadgerDBWrapper{}

type BadgerDBWrapper struct {
	db *badger.DB
}

// NewBadgerDB() opens (or creates) a badger database in the directory at path, an empty path is in memory
func NewBadgerDB(path string) (*BadgerDBWrapper, lib.ErrorI) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR).WithSyncWrites(true)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return &BadgerDBWrapper{db: db}, nil
}

func (b *BadgerDBWrapper) Get(key []byte) (value []byte, err lib.ErrorI) {
	if key == nil {
		return nil, ErrNilKey()
	}
	if e := b.db.View(func(txn *badger.Txn) error {
		item, e := txn.Get(key)
		if e != nil {
			return e
		}
		value, e = item.ValueCopy(nil)
		return e
	}); e != nil {
		if errors.Is(e, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, ErrStoreGet(e)
	}
	return
}

func (b *BadgerDBWrapper) Set(key, value []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if value == nil {
		return ErrNilValue()
	}
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.Set(key, value) }); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

func (b *BadgerDBWrapper) Delete(key []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) }); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

// Iterator() materializes the prefix range inside a read transaction
func (b *BadgerDBWrapper) Iterator(prefix []byte) (IteratorI, lib.ErrorI) {
	var pairs []kv
	if err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, e := item.ValueCopy(nil)
			if e != nil {
				return e
			}
			pairs = append(pairs, kv{key: item.KeyCopy(nil), value: v})
		}
		return nil
	}); err != nil {
		return nil, ErrStoreIter(err)
	}
	return newSliceIterator(pairs), nil
}

func (b *BadgerDBWrapper) Close() lib.ErrorI {
	if err := b.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}
