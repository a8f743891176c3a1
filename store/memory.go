package store

import (
	"bytes"
	"sync"

	"github.com/oblivisheee/aum-engine/lib"
)

var _ KVStoreI = &MemoryDB{}

// MemoryDB is a map backed KVStoreI used for tests and ephemeral fleets
type MemoryDB struct {
	m      map[string][]byte
	closed bool
	l      sync.RWMutex
}

// NewMemoryDB() creates an empty in-memory database
func NewMemoryDB() *MemoryDB { return &MemoryDB{m: make(map[string][]byte)} }

func (m *MemoryDB) Get(key []byte) ([]byte, lib.ErrorI) {
	if key == nil {
		return nil, ErrNilKey()
	}
	m.l.RLock()
	defer m.l.RUnlock()
	if m.closed {
		return nil, ErrClosed()
	}
	value, ok := m.m[string(key)]
	if !ok {
		return nil, nil
	}
	return cp(value), nil
}

func (m *MemoryDB) Set(key, value []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	if value == nil {
		return ErrNilValue()
	}
	m.l.Lock()
	defer m.l.Unlock()
	if m.closed {
		return ErrClosed()
	}
	m.m[string(key)] = cp(value)
	return nil
}

func (m *MemoryDB) Delete(key []byte) lib.ErrorI {
	if key == nil {
		return ErrNilKey()
	}
	m.l.Lock()
	defer m.l.Unlock()
	if m.closed {
		return ErrClosed()
	}
	delete(m.m, string(key))
	return nil
}

// Iterator() snapshots the matching pairs so writes during iteration are safe
func (m *MemoryDB) Iterator(prefix []byte) (IteratorI, lib.ErrorI) {
	m.l.RLock()
	defer m.l.RUnlock()
	if m.closed {
		return nil, ErrClosed()
	}
	var pairs []kv
	for k, v := range m.m {
		if bytes.HasPrefix([]byte(k), prefix) {
			pairs = append(pairs, kv{key: []byte(k), value: cp(v)})
		}
	}
	return newSliceIterator(pairs), nil
}

func (m *MemoryDB) Close() lib.ErrorI {
	m.l.Lock()
	defer m.l.Unlock()
	m.closed = true
	return nil
}
