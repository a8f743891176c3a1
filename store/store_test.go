package store

import (
	"testing"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/stretchr/testify/require"
)

func TestKeyStoreBackends(t *testing.T) {
	for _, backend := range []string{Memory, LevelDB, BoltDB, Badger} {
		for _, encrypt := range []bool{false, true} {
			name := backend
			if encrypt {
				name += "/encrypted"
			}
			t.Run(name, func(t *testing.T) {
				config := lib.StoreConfig{DataDirPath: t.TempDir(), DBName: "fleet", Backend: backend, Encrypt: encrypt}
				s, err := New(config, []byte("password"), lib.NewNullLogger())
				require.NoError(t, err)
				defer func() { require.NoError(t, s.Close()) }()
				testStorage(t, s)
			})
		}
	}
}

// testStorage() exercises every Storage operation against a fresh store
func testStorage(t *testing.T, s Storage) {
	empty, err := s.IsEmpty()
	require.NoError(t, err)
	require.True(t, empty)
	// pre-create a few entries with mixed schemes and formats
	entries := map[string]crypto.PrivateKeyI{}
	var addresses []crypto.AddressI
	for i, scheme := range []crypto.Scheme{crypto.SchemeEd25519, crypto.SchemeSecp256k1, crypto.SchemeEd25519} {
		pk, e := crypto.NewPrivateKey(scheme)
		require.NoError(t, e)
		format := []crypto.Format{crypto.FormatHex, crypto.FormatBase58, crypto.FormatBech32}[i]
		address, e := crypto.NewAddressFromPrivateKey(pk, format, crypto.DefaultHRP)
		require.NoError(t, e)
		// execute the function call
		require.NoError(t, s.Set(address, pk))
		entries[address.String()] = pk
		addresses = append(addresses, address)
	}
	// validate get
	for _, address := range addresses {
		got, e := s.Get(address)
		require.NoError(t, e)
		require.True(t, entries[address.String()].Equals(got))
		contains, e := s.ContainsKey(address)
		require.NoError(t, e)
		require.True(t, contains)
	}
	// validate len and keys
	n, err := s.Len()
	require.NoError(t, err)
	require.Equal(t, len(addresses), n)
	keys, err := s.Keys()
	require.NoError(t, err)
	require.Len(t, keys, len(addresses))
	for _, k := range keys {
		_, found := entries[k.String()]
		require.True(t, found)
	}
	values, err := s.Values()
	require.NoError(t, err)
	require.Len(t, values, len(addresses))
	// validate keys come back in ascending order
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1].String(), keys[i].String())
	}
	// remove one
	require.NoError(t, s.Remove(addresses[0]))
	got, err := s.Get(addresses[0])
	require.NoError(t, err)
	require.Nil(t, got)
	contains, err := s.ContainsKey(addresses[0])
	require.NoError(t, err)
	require.False(t, contains)
	// removing an unknown address is fine
	require.NoError(t, s.Remove(addresses[0]))
	// clear the rest
	require.NoError(t, s.Clear())
	empty, err = s.IsEmpty()
	require.NoError(t, err)
	require.True(t, empty)
}

func TestKeyStorePersistence(t *testing.T) {
	config := lib.StoreConfig{DataDirPath: t.TempDir(), DBName: "fleet", Backend: LevelDB, Encrypt: true}
	password := []byte("password")
	// pre-create an entry
	s, err := New(config, password, lib.NewNullLogger())
	require.NoError(t, err)
	pk, err := crypto.NewPrivateKey(crypto.SchemeSecp256k1)
	require.NoError(t, err)
	address, err := crypto.NewAddressFromPrivateKey(pk, crypto.FormatBech32, crypto.DefaultHRP)
	require.NoError(t, err)
	require.NoError(t, s.Set(address, pk))
	require.NoError(t, s.Close())
	// reopen with the same password
	s, err = New(config, password, lib.NewNullLogger())
	require.NoError(t, err)
	got, err := s.Get(address)
	require.NoError(t, err)
	require.True(t, pk.Equals(got))
	require.NoError(t, s.Close())
	// reopen with the wrong password
	s, err = New(config, []byte("wrong"), lib.NewNullLogger())
	require.NoError(t, err)
	_, err = s.Get(address)
	require.ErrorIs(t, err, ErrStoreDecode(nil))
	require.NoError(t, s.Close())
}

func TestKeyStoreIterateStops(t *testing.T) {
	s := NewKeyStore(NewMemoryDB(), nil, lib.NewNullLogger())
	for i := 0; i < 3; i++ {
		pk, err := crypto.NewPrivateKey(crypto.SchemeEd25519)
		require.NoError(t, err)
		address, err := crypto.NewAddressFromPrivateKey(pk, crypto.FormatHex, "")
		require.NoError(t, err)
		require.NoError(t, s.Set(address, pk))
	}
	calls, stop := 0, lib.ErrInvalidArgument("stop")
	// execute the function call
	err := s.Iterate(func(crypto.AddressI, crypto.PrivateKeyI) lib.ErrorI {
		calls++
		return stop
	})
	// validate the iteration stopped at the first error
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(lib.StoreConfig{DataDirPath: t.TempDir(), DBName: "x", Backend: "rocksdb"}, nil, lib.NewNullLogger())
	require.ErrorIs(t, err, ErrUnknownDB(""))
	_, err = New(lib.StoreConfig{Backend: Memory, Encrypt: true}, nil, lib.NewNullLogger())
	require.ErrorIs(t, err, ErrStoreEncode(nil))
}
