package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
)

/*
	A Transaction is the value object of a single transfer between two addresses. Its bytes are the
	deterministic RLP encoding of its fields, its identity is the sha256 of those bytes and a
	SignedTransaction binds a signature over exactly those bytes to the sender's public key
*/

// TransactionID is the hash of the transaction bytes
type TransactionID crypto.Hash

// ParseTransactionID() decodes the hex form of a transaction id
func ParseTransactionID(s string) (TransactionID, lib.ErrorI) {
	h, err := crypto.HashFromString(s)
	if err != nil {
		return TransactionID{}, ErrInvalidTransactionID(err)
	}
	return TransactionID(h), nil
}

// String() returns the hex form of the id
func (id TransactionID) String() string { return crypto.Hash(id).String() }

// MarshalJSON() is the json.Marshaller implementation for TransactionID
func (id TransactionID) MarshalJSON() ([]byte, error) { return crypto.Hash(id).MarshalJSON() }

// UnmarshalJSON() is the json.Unmarshaler implementation for TransactionID
func (id *TransactionID) UnmarshalJSON(b []byte) error {
	var s string
	if err := lib.UnmarshalJSON(b, &s); err != nil {
		return err
	}
	got, err := ParseTransactionID(s)
	if err != nil {
		return err
	}
	*id = got
	return nil
}

// Transaction is a transfer of Amount from one address to another
type Transaction struct {
	From   crypto.AddressI // the sending wallet
	To     crypto.AddressI // the receiving address, not necessarily a fleet member
	Amount uint64          // the amount moved
	Nonce  uint64          // the count of transactions the sender signed before this one
	Memo   string          // an optional note
	Time   uint64          // unix microseconds of creation
}

// rlpTransaction is the wire layout of a Transaction
type rlpTransaction struct {
	From   string
	To     string
	Amount uint64
	Nonce  uint64
	Memo   string
	Time   uint64
}

// NewTransaction() creates a transaction stamped with the current time
func NewTransaction(from, to crypto.AddressI, amount, nonce uint64, memo string) (*Transaction, lib.ErrorI) {
	if from == nil || to == nil {
		return nil, ErrTransaction("transaction addresses must not be empty")
	}
	return &Transaction{From: from, To: to, Amount: amount, Nonce: nonce, Memo: memo, Time: uint64(time.Now().UnixMicro())}, nil
}

// NewTransactionFromBytes() decodes the RLP encoding of a transaction
func NewTransactionFromBytes(bz []byte) (*Transaction, lib.ErrorI) {
	ptr := new(rlpTransaction)
	if err := rlp.DecodeBytes(bz, ptr); err != nil {
		return nil, ErrInvalidTransactionBytes(err)
	}
	from, err := crypto.ParseAddress(ptr.From, "")
	if err != nil {
		return nil, ErrInvalidTransactionBytes(err)
	}
	to, err := crypto.ParseAddress(ptr.To, "")
	if err != nil {
		return nil, ErrInvalidTransactionBytes(err)
	}
	return &Transaction{From: from, To: to, Amount: ptr.Amount, Nonce: ptr.Nonce, Memo: ptr.Memo, Time: ptr.Time}, nil
}

// Bytes() returns the deterministic encoding the signature covers
func (t *Transaction) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(&rlpTransaction{
		From:   t.From.String(),
		To:     t.To.String(),
		Amount: t.Amount,
		Nonce:  t.Nonce,
		Memo:   t.Memo,
		Time:   t.Time,
	})
	if err != nil {
		// strings and unsigned integers always encode
		panic(err)
	}
	return bz
}

// Hash() returns the sha256 digest of the transaction bytes
func (t *Transaction) Hash() crypto.Hash { return crypto.Sum256(t.Bytes()) }

// ID() returns the identity of the transaction
func (t *Transaction) ID() TransactionID { return TransactionID(t.Hash()) }

// Equals() compares two transactions by their bytes
func (t *Transaction) Equals(o *Transaction) bool {
	if o == nil {
		return false
	}
	return bytes.Equal(t.Bytes(), o.Bytes())
}

// jsonTransaction is the json layout of a Transaction
type jsonTransaction struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Nonce  uint64 `json:"nonce"`
	Memo   string `json:"memo,omitempty"`
	Time   uint64 `json:"time"`
}

// MarshalJSON() is the json.Marshaller implementation for Transaction
func (t Transaction) MarshalJSON() ([]byte, error) {
	return lib.MarshalJSON(jsonTransaction{From: t.From.String(), To: t.To.String(), Amount: t.Amount, Nonce: t.Nonce, Memo: t.Memo, Time: t.Time})
}

// UnmarshalJSON() is the json.Unmarshaler implementation for Transaction
func (t *Transaction) UnmarshalJSON(b []byte) error {
	j := new(jsonTransaction)
	if err := lib.UnmarshalJSON(b, j); err != nil {
		return err
	}
	from, err := crypto.ParseAddress(j.From, "")
	if err != nil {
		return err
	}
	to, err := crypto.ParseAddress(j.To, "")
	if err != nil {
		return err
	}
	*t = Transaction{From: from, To: to, Amount: j.Amount, Nonce: j.Nonce, Memo: j.Memo, Time: j.Time}
	return nil
}

// SIGNED TRANSACTION BELOW

// SignedTransaction is a transaction with the sender's signature over its bytes
type SignedTransaction struct {
	Transaction *Transaction      `json:"transaction"`
	Signature   lib.HexBytes      `json:"signature"`
	PublicKey   crypto.PublicKeyI `json:"publicKey"`
}

// rlpSignedTransaction is the wire layout of a SignedTransaction
type rlpSignedTransaction struct {
	Transaction []byte
	Signature   []byte
	PublicKey   []byte
}

// NewSignedTransactionFromBytes() decodes the RLP encoding of a signed transaction
func NewSignedTransactionFromBytes(bz []byte) (*SignedTransaction, lib.ErrorI) {
	ptr := new(rlpSignedTransaction)
	if err := rlp.DecodeBytes(bz, ptr); err != nil {
		return nil, ErrInvalidTransactionBytes(err)
	}
	tx, err := NewTransactionFromBytes(ptr.Transaction)
	if err != nil {
		return nil, err
	}
	pub, err := crypto.NewPublicKeyFromBytes(ptr.PublicKey)
	if err != nil {
		return nil, ErrInvalidTransactionBytes(err)
	}
	return &SignedTransaction{Transaction: tx, Signature: ptr.Signature, PublicKey: pub}, nil
}

// Bytes() returns the deterministic encoding of the signed transaction
func (s *SignedTransaction) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(&rlpSignedTransaction{
		Transaction: s.Transaction.Bytes(),
		Signature:   s.Signature,
		PublicKey:   s.PublicKey.Bytes(),
	})
	if err != nil {
		panic(err)
	}
	return bz
}

// ID() returns the id of the inner transaction
func (s *SignedTransaction) ID() TransactionID { return s.Transaction.ID() }

// Verify() checks the public key belongs to the sender and the signature covers the transaction bytes
func (s *SignedTransaction) Verify() lib.ErrorI {
	if s.Transaction == nil || s.PublicKey == nil {
		return ErrTransaction("signed transaction is incomplete")
	}
	from := s.Transaction.From
	derived, err := crypto.NewAddressFromPublicKey(s.PublicKey, from.Format(), "")
	if err != nil {
		return ErrWalletTransaction(err)
	}
	if !bytes.Equal(derived.Bytes(), from.Bytes()) {
		return ErrInvalidAddress("public key does not belong to " + from.String())
	}
	if !s.PublicKey.VerifyBytes(s.Transaction.Bytes(), s.Signature) {
		return ErrWalletTransaction(errors.New("invalid signature"))
	}
	return nil
}

// Equals() compares two signed transactions by their bytes
func (s *SignedTransaction) Equals(o *SignedTransaction) bool {
	if o == nil {
		return false
	}
	return bytes.Equal(s.Bytes(), o.Bytes())
}

// Compare() orders signed transactions by id then signature
func (s *SignedTransaction) Compare(o *SignedTransaction) int {
	a, b := s.ID(), o.ID()
	if c := bytes.Compare(a[:], b[:]); c != 0 {
		return c
	}
	return bytes.Compare(s.Signature, o.Signature)
}

// String() returns the hex of the signed transaction bytes
func (s *SignedTransaction) String() string { return hex.EncodeToString(s.Bytes()) }

// jsonSignedTransaction mirrors SignedTransaction with a concrete public key for decoding
type jsonSignedTransaction struct {
	Transaction *Transaction `json:"transaction"`
	Signature   lib.HexBytes `json:"signature"`
	PublicKey   lib.HexBytes `json:"publicKey"`
}

// UnmarshalJSON() is the json.Unmarshaler implementation for SignedTransaction
func (s *SignedTransaction) UnmarshalJSON(b []byte) error {
	j := new(jsonSignedTransaction)
	if err := lib.UnmarshalJSON(b, j); err != nil {
		return err
	}
	pub, err := crypto.NewPublicKeyFromBytes(j.PublicKey)
	if err != nil {
		return err
	}
	*s = SignedTransaction{Transaction: j.Transaction, Signature: j.Signature, PublicKey: pub}
	return nil
}
