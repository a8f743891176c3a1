package store

import (
	"errors"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

/* This file wraps LevelDB for the KVStoreI interface */

var _ KVStoreI = &LevelDBWrapper{}

type LevelDBWrapper struct {
	db *leveldb.DB
}

// NewLevelDB() opens (or creates) a LevelDB database at path
func NewLevelDB(path string) (*LevelDBWrapper, lib.ErrorI) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return &LevelDBWrapper{db: db}, nil
}

func (l *LevelDBWrapper) Get(key []byte) ([]byte, lib.ErrorI) {
	if key == nil {
		return nil, ErrNilKey()
	}
	bz, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrStoreGet(err)
	}
	return bz, nil
}

func (l *LevelDBWrapper) Set(key, value []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if value == nil {
		return ErrNilValue()
	}
	// keys are few and precious, so every write is synced to disk
	if err := l.db.Put(key, value, &opt.WriteOptions{Sync: true}); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

func (l *LevelDBWrapper) Delete(key []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if err := l.db.Delete(key, &opt.WriteOptions{Sync: true}); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

func (l *LevelDBWrapper) Close() lib.ErrorI {
	if err := l.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

func (l *LevelDBWrapper) Iterator(prefix []byte) (IteratorI, lib.ErrorI) {
	itr := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	if err := itr.Error(); err != nil {
		itr.Release()
		return nil, ErrStoreIter(err)
	}
	itr.First()
	return &levelDBIt{source: itr}, nil
}

type levelDBIt struct {
	source  iterator.Iterator
	invalid bool
}

var _ IteratorI = (*levelDBIt)(nil)

func (itr *levelDBIt) Valid() bool {
	if itr.invalid {
		return false
	}
	if itr.source.Error() != nil || !itr.source.Valid() {
		itr.invalid = true
		return false
	}
	return true
}

func (itr *levelDBIt) Key() []byte {
	itr.assertIsValid()
	return cp(itr.source.Key())
}

func (itr *levelDBIt) Value() []byte {
	itr.assertIsValid()
	return cp(itr.source.Value())
}

func (itr *levelDBIt) Next() {
	itr.assertIsValid()
	itr.source.Next()
}

func (itr *levelDBIt) Close() { itr.source.Release() }

func (itr *levelDBIt) assertIsValid() {
	if !itr.Valid() {
		panic("iterator is invalid")
	}
}
