package store

import (
	"bytes"
	"sort"

	"github.com/oblivisheee/aum-engine/lib"
)

/*
	KVStoreI is the byte level interface every database backend is wrapped in. The KeyStore builds the
	Address -> SecretKey mapping on top of it, so adding a backend never touches key handling
*/

// KVStoreI is a minimal ordered key value database
type KVStoreI interface {
	// Get() returns the value for a key or nil if it doesn't exist
	Get(key []byte) ([]byte, lib.ErrorI)
	Set(key, value []byte) lib.ErrorI
	Delete(key []byte) lib.ErrorI
	// Iterator() iterates every key with the prefix in ascending lexicographical order
	Iterator(prefix []byte) (IteratorI, lib.ErrorI)
	Close() lib.ErrorI
}

// IteratorI walks a range of the KVStoreI
type IteratorI interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// kv is a materialized key value pair
type kv struct {
	key, value []byte
}

// sliceIterator is an IteratorI over a snapshot of pairs, used by backends that can't
// keep a cursor open outside a transaction
type sliceIterator struct {
	pairs []kv
	index int
}

var _ IteratorI = &sliceIterator{}

// newSliceIterator() sorts the pairs by key and wraps them in an iterator
func newSliceIterator(pairs []kv) *sliceIterator {
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	return &sliceIterator{pairs: pairs}
}

func (s *sliceIterator) Valid() bool   { return s.index < len(s.pairs) }
func (s *sliceIterator) Next()         { s.index++ }
func (s *sliceIterator) Key() []byte   { return cp(s.pairs[s.index].key) }
func (s *sliceIterator) Value() []byte { return cp(s.pairs[s.index].value) }
func (s *sliceIterator) Close()        { s.pairs = nil }

// cp() copies a byte slice
func cp(bz []byte) (ret []byte) {
	ret = make([]byte, len(bz))
	copy(ret, bz)
	return ret
}
