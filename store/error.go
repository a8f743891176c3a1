package store

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

func ErrOpenDB(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeOpenDB, lib.StorageModule, "openDB() failed with err: %s", err)
}

func ErrCloseDB(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeCloseDB, lib.StorageModule, "closeDB() failed with err: %s", err)
}

func ErrStoreGet(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreGet, lib.StorageModule, "store.get() failed with err: %s", err)
}

func ErrStoreSet(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreSet, lib.StorageModule, "store.set() failed with err: %s", err)
}

func ErrStoreDelete(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreDelete, lib.StorageModule, "store.delete() failed with err: %s", err)
}

func ErrStoreIter(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreIter, lib.StorageModule, "store.iterator() failed with err: %s", err)
}

func ErrStoreEncode(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreEncode, lib.StorageModule, "encoding a key record failed with err: %s", err)
}

func ErrStoreDecode(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeStoreDecode, lib.StorageModule, "decoding a key record failed with err: %s", err)
}

func ErrUnknownDB(backend string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownDB, lib.StorageModule, fmt.Sprintf("unknown database backend %q", backend))
}

func ErrNilKey() lib.ErrorI {
	return lib.NewError(lib.CodeStoreSet, lib.StorageModule, "key is nil")
}

func ErrNilValue() lib.ErrorI {
	return lib.NewError(lib.CodeStoreSet, lib.StorageModule, "value is nil")
}

func ErrClosed() lib.ErrorI {
	return lib.NewError(lib.CodeStoreGet, lib.StorageModule, "database is closed")
}
