package wallet

import (
	"math"
	"slices"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
)

/*
	A Wallet is one member of the fleet: an address, the key material behind it, a balance and an
	append only history. It signs and verifies but never moves funds on its own, the fleet debits and
	credits it so the debit and the transaction creation are one step from the caller's perspective.

	A Wallet is not safe for concurrent use, the fleet lock guards it.
*/

// Wallet is a single fleet member
type Wallet struct {
	key     crypto.PrivateKeyI
	address crypto.AddressI
	balance uint64
	nonce   uint64
	history []*Transaction
}

// WalletInfo is an owned snapshot of a Wallet handed to callers outside the fleet
type WalletInfo struct {
	Address   crypto.AddressI   `json:"address"`
	PublicKey crypto.PublicKeyI `json:"publicKey"`
	Balance   uint64            `json:"balance"`
	Nonce     uint64            `json:"nonce"`
	TxCount   int               `json:"txCount"`
}

// New() creates a zero balance wallet, deriving the address once from the key
func New(key crypto.PrivateKeyI, format crypto.Format, hrp string) (*Wallet, lib.ErrorI) {
	address, err := crypto.NewAddressFromPrivateKey(key, format, hrp)
	if err != nil {
		return nil, err
	}
	return &Wallet{key: key, address: address}, nil
}

// Address() returns the immutable address of the wallet
func (w *Wallet) Address() crypto.AddressI { return w.address }

// PrivateKey() returns the secret key of the wallet
func (w *Wallet) PrivateKey() crypto.PrivateKeyI { return w.key }

// PublicKey() returns the public pair of the secret key
func (w *Wallet) PublicKey() crypto.PublicKeyI { return w.key.PublicKey() }

// Balance() returns the tracked balance
func (w *Wallet) Balance() uint64 { return w.balance }

// Nonce() returns the count of transactions this wallet has sent
func (w *Wallet) Nonce() uint64 { return w.nonce }

// HasSufficientBalance() returns true if balance >= amount
func (w *Wallet) HasSufficientBalance(amount uint64) bool { return w.balance >= amount }

// SignTransaction() signs a transaction sent from this wallet
func (w *Wallet) SignTransaction(tx *Transaction) (*SignedTransaction, lib.ErrorI) {
	if tx == nil || tx.From == nil || !tx.From.Equals(w.address) {
		return nil, ErrInvalidAddress("transaction is not sent from " + w.address.String())
	}
	return &SignedTransaction{Transaction: tx, Signature: w.key.Sign(tx.Bytes()), PublicKey: w.PublicKey()}, nil
}

// VerifyTransactionSignature() returns true if the signed transaction was signed by this wallet
func (w *Wallet) VerifyTransactionSignature(stx *SignedTransaction) bool {
	if stx == nil || stx.PublicKey == nil || !stx.PublicKey.Equals(w.PublicKey()) {
		return false
	}
	return stx.Verify() == nil
}

// TransferFunds() builds an unsigned transaction moving amount to an address
// The balance is not changed, the fleet debits it once the transaction is signed
func (w *Wallet) TransferFunds(to crypto.AddressI, amount uint64) (*Transaction, lib.ErrorI) {
	if !w.HasSufficientBalance(amount) {
		return nil, ErrInsufficientBalance(w.balance, amount)
	}
	return NewTransaction(w.address, to, amount, w.nonce, "")
}

// TransactionHistory() returns the ordered history of the wallet
func (w *Wallet) TransactionHistory() []*Transaction { return slices.Clone(w.history) }

// Snapshot() returns an owned copy of the observable state
func (w *Wallet) Snapshot() WalletInfo {
	return WalletInfo{Address: w.address, PublicKey: w.PublicKey(), Balance: w.balance, Nonce: w.nonce, TxCount: len(w.history)}
}

// The methods below are the fleet's bookkeeping hooks, callers outside the fleet must not use them

// Debit() subtracts amount from the balance
func (w *Wallet) Debit(amount uint64) lib.ErrorI {
	if !w.HasSufficientBalance(amount) {
		return ErrInsufficientBalance(w.balance, amount)
	}
	w.balance -= amount
	return nil
}

// Credit() adds amount to the balance
func (w *Wallet) Credit(amount uint64) lib.ErrorI {
	if w.balance > math.MaxUint64-amount {
		return ErrWalletTransaction(ErrTransaction("balance overflow"))
	}
	w.balance += amount
	return nil
}

// SetBalance() overwrites the balance with the ledger's view
func (w *Wallet) SetBalance(balance uint64) { w.balance = balance }

// SetNonce() overwrites the nonce with the next one the ledger expects
func (w *Wallet) SetNonce(nonce uint64) { w.nonce = nonce }

// Record() appends a transaction to the history, advancing the nonce if this wallet sent it
func (w *Wallet) Record(tx *Transaction) {
	w.history = append(w.history, tx)
	if tx.From.Equals(w.address) {
		w.nonce++
	}
}
