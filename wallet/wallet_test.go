package wallet

import (
	"testing"

	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/stretchr/testify/require"
)

// newTestWallet() creates a wallet with a balance
func newTestWallet(t *testing.T, scheme crypto.Scheme, format crypto.Format, balance uint64) *Wallet {
	pk, err := crypto.NewPrivateKey(scheme)
	require.NoError(t, err)
	w, err := New(pk, format, crypto.DefaultHRP)
	require.NoError(t, err)
	w.SetBalance(balance)
	return w
}

func TestWalletSignAndVerify(t *testing.T) {
	for _, scheme := range []crypto.Scheme{crypto.SchemeEd25519, crypto.SchemeSecp256k1} {
		for _, format := range []crypto.Format{crypto.FormatHex, crypto.FormatBase58, crypto.FormatBech32} {
			t.Run(string(scheme)+"/"+string(format), func(t *testing.T) {
				alice := newTestWallet(t, scheme, format, 100)
				bob := newTestWallet(t, scheme, format, 0)
				// execute the function calls
				tx, err := alice.TransferFunds(bob.Address(), 40)
				require.NoError(t, err)
				stx, err := alice.SignTransaction(tx)
				require.NoError(t, err)
				// validate the signature
				require.NoError(t, stx.Verify())
				require.True(t, alice.VerifyTransactionSignature(stx))
				require.False(t, bob.VerifyTransactionSignature(stx))
				// validate transfer funds doesn't move the balance
				require.EqualValues(t, 100, alice.Balance())
				// validate the signature doesn't cover other bytes
				tampered := *stx.Transaction
				tampered.Amount = 41
				require.Error(t, (&SignedTransaction{Transaction: &tampered, Signature: stx.Signature, PublicKey: stx.PublicKey}).Verify())
				// validate bob can't sign alice's transaction
				_, err = bob.SignTransaction(tx)
				require.ErrorIs(t, err, ErrInvalidAddress(""))
				// validate a foreign key can't claim the sender
				forged := &SignedTransaction{Transaction: tx, Signature: bob.PrivateKey().Sign(tx.Bytes()), PublicKey: bob.PublicKey()}
				require.ErrorIs(t, forged.Verify(), ErrInvalidAddress(""))
			})
		}
	}
}

func TestWalletTransferFunds(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		balance uint64
		amount  uint64
		error   bool
	}{
		{
			name:    "sufficient",
			detail:  "the balance covers the amount",
			balance: 50,
			amount:  20,
		},
		{
			name:    "exact",
			detail:  "the balance exactly covers the amount",
			balance: 50,
			amount:  50,
		},
		{
			name:    "insufficient",
			detail:  "the amount exceeds the balance",
			balance: 10,
			amount:  50,
			error:   true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, test.balance)
			to := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatHex, 0)
			// execute the function call
			tx, err := w.TransferFunds(to.Address(), test.amount)
			// validate the result
			require.Equal(t, test.balance >= test.amount, w.HasSufficientBalance(test.amount), test.detail)
			if test.error {
				require.ErrorIs(t, err, ErrInsufficientBalance(0, 0), test.detail)
				require.Nil(t, tx)
			} else {
				require.NoError(t, err, test.detail)
				require.Equal(t, test.amount, tx.Amount)
			}
			// validate the balance is untouched
			require.Equal(t, test.balance, w.Balance())
		})
	}
}

func TestWalletBookkeeping(t *testing.T) {
	alice := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatBech32, 10)
	bob := newTestWallet(t, crypto.SchemeEd25519, crypto.FormatBech32, 0)
	tx, err := alice.TransferFunds(bob.Address(), 10)
	require.NoError(t, err)
	// execute the function calls
	require.NoError(t, alice.Debit(10))
	require.NoError(t, bob.Credit(10))
	alice.Record(tx)
	bob.Record(tx)
	// validate the balances and histories
	require.Zero(t, alice.Balance())
	require.EqualValues(t, 10, bob.Balance())
	require.EqualValues(t, 1, alice.Nonce())
	require.Zero(t, bob.Nonce())
	require.Len(t, alice.TransactionHistory(), 1)
	require.True(t, bob.TransactionHistory()[0].Equals(tx))
	// validate over debit fails without mutation
	require.ErrorIs(t, alice.Debit(1), ErrInsufficientBalance(0, 0))
	require.Zero(t, alice.Balance())
	// validate the history is a copy
	history := alice.TransactionHistory()
	history[0] = nil
	require.NotNil(t, alice.TransactionHistory()[0])
	// validate the snapshot
	info := bob.Snapshot()
	require.True(t, info.Address.Equals(bob.Address()))
	require.EqualValues(t, 10, info.Balance)
	require.Equal(t, 1, info.TxCount)
}
