package crypto

import (
	"testing"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/stretchr/testify/require"
)

var schemes = []Scheme{SchemeEd25519, SchemeSecp256k1}

func TestKeyRoundTrip(t *testing.T) {
	for _, scheme := range schemes {
		t.Run(string(scheme), func(t *testing.T) {
			for i := 0; i < 100; i++ {
				// pre-create a new private key
				private, err := NewPrivateKey(scheme)
				require.NoError(t, err)
				require.Equal(t, scheme, private.Scheme())
				// execute the function calls
				fromBytes, err := NewPrivateKeyFromBytes(private.Bytes())
				require.NoError(t, err)
				fromHex, err := NewPrivateKeyFromString(private.String())
				require.NoError(t, err)
				// validate got vs expected
				require.True(t, private.Equals(fromBytes))
				require.True(t, private.Equals(fromHex))
				// the public key derivation is deterministic
				require.True(t, private.PublicKey().Equals(fromBytes.PublicKey()))
				// public key round trips
				public, err := NewPublicKeyFromString(private.PublicKey().String())
				require.NoError(t, err)
				require.True(t, private.PublicKey().Equals(public))
				require.Equal(t, scheme, public.Scheme())
			}
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	for _, scheme := range schemes {
		t.Run(string(scheme), func(t *testing.T) {
			private, err := NewPrivateKey(scheme)
			require.NoError(t, err)
			msg, other := []byte("transfer 10 to bob"), []byte("transfer 11 to bob")
			// execute the function call
			sig := private.Sign(msg)
			// validate the signature only covers the signed message
			require.True(t, private.PublicKey().VerifyBytes(msg, sig))
			require.False(t, private.PublicKey().VerifyBytes(other, sig))
			// validate another key doesn't verify it
			stranger, err := NewPrivateKey(scheme)
			require.NoError(t, err)
			require.False(t, stranger.PublicKey().VerifyBytes(msg, sig))
			// validate the self test passes
			require.NoError(t, SelfTest(scheme))
		})
	}
}

func TestKeyErrors(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		call   func() lib.ErrorI
		error  lib.ErrorI
	}{
		{
			name:   "bad private key length",
			detail: "a private key with an unknown length is rejected",
			call: func() lib.ErrorI {
				_, err := NewPrivateKeyFromBytes(make([]byte, 7))
				return err
			},
			error: ErrKeyInvalidBytes(0),
		},
		{
			name:   "bad private key hex",
			detail: "a private key string that isn't hex is rejected",
			call: func() lib.ErrorI {
				_, err := NewPrivateKeyFromString("zz")
				return err
			},
			error: ErrKeyInvalidHex(nil),
		},
		{
			name:   "inconsistent ed25519 key",
			detail: "an ed25519 key whose public half doesn't match the seed is rejected",
			call: func() lib.ErrorI {
				_, err := NewPrivateKeyFromBytes(make([]byte, Ed25519PrivKeySize))
				return err
			},
			error: ErrInvalidSecretKey(nil),
		},
		{
			name:   "bad public key",
			detail: "a public key with an unknown length is rejected",
			call: func() lib.ErrorI {
				_, err := NewPublicKeyFromBytes(make([]byte, 5))
				return err
			},
			error: ErrInvalidPublicKey(nil),
		},
		{
			name:   "unknown scheme",
			detail: "generation with an unknown scheme fails",
			call: func() lib.ErrorI {
				_, err := NewPrivateKey("rsa")
				return err
			},
			error: ErrGenerateKeyPair(nil),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call and validate the error class
			require.ErrorIs(t, test.call(), test.error, test.detail)
		})
	}
}
