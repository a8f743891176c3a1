package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptPrivateKey(t *testing.T) {
	password := []byte("password")
	for _, scheme := range schemes {
		t.Run(string(scheme), func(t *testing.T) {
			// pre-create a new private key
			private, err := NewPrivateKey(scheme)
			require.NoError(t, err)
			// execute the function call
			encrypted, err := EncryptPrivateKey(private, password)
			require.NoError(t, err)
			require.Equal(t, private.PublicKey().String(), encrypted.PublicKey)
			// decrypt with the right password
			got, err := DecryptPrivateKey(encrypted, password)
			require.NoError(t, err)
			// validate got vs expected
			require.True(t, private.Equals(got))
			// decrypt with the wrong password
			_, err = DecryptPrivateKey(encrypted, []byte("wrong"))
			require.ErrorIs(t, err, ErrKeyPair(""))
		})
	}
}

func TestEncryptPrivateKeyUniqueSalt(t *testing.T) {
	private, err := NewEd25519PrivateKey()
	require.NoError(t, err)
	// execute the function call twice
	a, err := EncryptPrivateKey(private, []byte("pw"))
	require.NoError(t, err)
	b, err := EncryptPrivateKey(private, []byte("pw"))
	require.NoError(t, err)
	// validate the ciphertexts differ
	require.NotEqual(t, a.Salt, b.Salt)
	require.NotEqual(t, a.Encrypted, b.Encrypted)
}
