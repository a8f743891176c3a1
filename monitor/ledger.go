package monitor

import (
	"context"
	"math"
	"sync"

	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/wallet"
)

// LedgerI is the external source of truth the monitor reconciles the fleet against
type LedgerI interface {
	// Balance() returns the confirmed balance of an address
	Balance(ctx context.Context, address crypto.AddressI) (uint64, error)
	// Broadcast() submits a signed transaction, resubmitting an accepted transaction is not an error
	// A transaction the ledger will never accept is reported with ErrTransactionRejected
	Broadcast(ctx context.Context, stx *wallet.SignedTransaction) error
}

// NonceLedgerI is implemented by ledgers that track the next nonce of every address
// The monitor raises the local nonces to it so a restarted fleet never reuses a nonce
type NonceLedgerI interface {
	Nonce(ctx context.Context, address crypto.AddressI) (uint64, error)
}

var (
	_ LedgerI      = &MemoryLedger{}
	_ NonceLedgerI = &MemoryLedger{}
)

// MemoryLedger is an in-process ledger for tests and local development
type MemoryLedger struct {
	balances map[string]uint64
	nonces   map[string]uint64
	accepted map[wallet.TransactionID]*wallet.SignedTransaction
	order    []*wallet.SignedTransaction
	mu       sync.Mutex
}

// NewMemoryLedger() creates an empty ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]uint64),
		nonces:   make(map[string]uint64),
		accepted: make(map[wallet.TransactionID]*wallet.SignedTransaction),
	}
}

// Fund() credits an address out of thin air, the way a faucet or an inbound transfer would
func (l *MemoryLedger) Fund(address crypto.AddressI, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address.String()] += amount
}

// Balance() returns the balance of an address, unknown addresses hold zero
func (l *MemoryLedger) Balance(ctx context.Context, address crypto.AddressI) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address.String()], nil
}

// Nonce() returns the next nonce of an address, one past the highest accepted
func (l *MemoryLedger) Nonce(ctx context.Context, address crypto.AddressI) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonces[address.String()], nil
}

// Broadcast() verifies and applies a transfer
func (l *MemoryLedger) Broadcast(ctx context.Context, stx *wallet.SignedTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := stx.ID()
	if err := stx.Verify(); err != nil {
		return ErrTransactionRejected(id.String(), "invalid signature")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, found := l.accepted[id]; found {
		return nil
	}
	tx := stx.Transaction
	from, to := tx.From.String(), tx.To.String()
	if l.balances[from] < tx.Amount {
		return ErrTransactionRejected(id.String(), "insufficient funds")
	}
	if l.balances[to] > math.MaxUint64-tx.Amount {
		return ErrTransactionRejected(id.String(), "recipient balance overflow")
	}
	l.balances[from] -= tx.Amount
	l.balances[to] += tx.Amount
	l.nonces[from] = max(l.nonces[from], tx.Nonce+1)
	l.accepted[id] = stx
	l.order = append(l.order, stx)
	return nil
}

// Transactions() returns the accepted transactions in order of acceptance
func (l *MemoryLedger) Transactions() []*wallet.SignedTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*wallet.SignedTransaction(nil), l.order...)
}
