package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAlgorithms(t *testing.T) {
	msg := []byte("aum")
	seen := map[Hash]HashAlgorithm{}
	for _, algorithm := range []HashAlgorithm{SHA256, BLAKE3, Keccak256} {
		// execute the function call
		h, err := algorithm.Sum(msg)
		require.NoError(t, err)
		// validate determinism
		again, err := algorithm.Sum(msg)
		require.NoError(t, err)
		require.True(t, h.Equals(again))
		require.False(t, h.IsZero())
		// validate the algorithms disagree
		_, dup := seen[h]
		require.False(t, dup, "%s collides", algorithm)
		seen[h] = algorithm
	}
	// the default digest is sha256
	h, err := SHA256.Sum(msg)
	require.NoError(t, err)
	require.Equal(t, Sum256(msg), h)
}

func TestHashRoundTrip(t *testing.T) {
	h := Sum256([]byte("round trip"))
	// execute the function calls
	fromHex, err := HashFromString(h.String())
	require.NoError(t, err)
	fromBytes, err := HashFromBytes(h.Bytes())
	require.NoError(t, err)
	// validate got vs expected
	require.Equal(t, h, fromHex)
	require.Equal(t, h, fromBytes)
}

func TestHashErrors(t *testing.T) {
	_, err := HashFromBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrHashInvalidBytes(0))
	_, err = HashFromString("xyz")
	require.ErrorIs(t, err, ErrHashInvalidHex(nil))
	_, err = HashAlgorithm("md4").Sum(nil)
	require.ErrorIs(t, err, ErrHashing(""))
	_, err = ParseHashAlgorithm("md4")
	require.ErrorIs(t, err, ErrHashing(""))
}
