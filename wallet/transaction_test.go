package wallet

import (
	"testing"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/stretchr/testify/require"
)

func TestTransactionBytes(t *testing.T) {
	for _, format := range []crypto.Format{crypto.FormatHex, crypto.FormatBase58, crypto.FormatBech32} {
		t.Run(string(format), func(t *testing.T) {
			alice := newTestWallet(t, crypto.SchemeSecp256k1, format, 5)
			bob := newTestWallet(t, crypto.SchemeEd25519, format, 0)
			tx, err := NewTransaction(alice.Address(), bob.Address(), 5, 7, "memo")
			require.NoError(t, err)
			// execute the function calls
			got, err := NewTransactionFromBytes(tx.Bytes())
			require.NoError(t, err)
			// validate got vs expected
			require.True(t, tx.Equals(got))
			require.True(t, got.From.Equals(alice.Address()))
			require.Equal(t, tx.ID(), got.ID())
			// validate the id round trips through its string form
			id, err := ParseTransactionID(tx.ID().String())
			require.NoError(t, err)
			require.Equal(t, tx.ID(), id)
		})
	}
}

func TestSignedTransactionBytes(t *testing.T) {
	alice := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, 5)
	bob := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, 0)
	tx, err := alice.TransferFunds(bob.Address(), 5)
	require.NoError(t, err)
	stx, err := alice.SignTransaction(tx)
	require.NoError(t, err)
	// execute the function calls
	got, err := NewSignedTransactionFromBytes(stx.Bytes())
	require.NoError(t, err)
	// validate got vs expected
	require.True(t, stx.Equals(got))
	require.Zero(t, stx.Compare(got))
	require.NoError(t, got.Verify())
	// validate the json form decodes to the same transaction
	bz, err := lib.MarshalJSON(stx)
	require.NoError(t, err)
	fromJSON := new(SignedTransaction)
	require.NoError(t, lib.UnmarshalJSON(bz, fromJSON))
	require.True(t, stx.Equals(fromJSON))
}

func TestSignedTransactionCompare(t *testing.T) {
	alice := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, 10)
	bob := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, 0)
	var signed []*SignedTransaction
	for i := uint64(1); i <= 2; i++ {
		tx, err := NewTransaction(alice.Address(), bob.Address(), i, i, "")
		require.NoError(t, err)
		stx, err := alice.SignTransaction(tx)
		require.NoError(t, err)
		signed = append(signed, stx)
	}
	// validate the ordering is antisymmetric
	require.NotZero(t, signed[0].Compare(signed[1]))
	require.Equal(t, -signed[0].Compare(signed[1]), signed[1].Compare(signed[0]))
}

func TestTransactionErrors(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		call   func() lib.ErrorI
		error  lib.ErrorI
	}{
		{
			name:   "bad transaction bytes",
			detail: "bytes that are not rlp fail to decode",
			call: func() lib.ErrorI {
				_, err := NewTransactionFromBytes([]byte{0xff, 0x01})
				return err
			},
			error: ErrInvalidTransactionBytes(nil),
		},
		{
			name:   "bad signed transaction bytes",
			detail: "bytes that are not rlp fail to decode",
			call: func() lib.ErrorI {
				_, err := NewSignedTransactionFromBytes([]byte("garbage"))
				return err
			},
			error: ErrInvalidTransactionBytes(nil),
		},
		{
			name:   "bad transaction id",
			detail: "an id that is not 32 bytes of hex fails to parse",
			call: func() lib.ErrorI {
				_, err := ParseTransactionID("abc")
				return err
			},
			error: ErrInvalidTransactionID(nil),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call and validate the error class
			require.ErrorIs(t, test.call(), test.error, test.detail)
		})
	}
}
