package fleet

import (
	"slices"

	"github.com/holiman/uint256"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/wallet"
)

// Reconciler is the write access the monitor gets to the fleet for the duration of one sync pass
// It must not be retained after the Reconcile callback returns
type Reconciler interface {
	// Pending() returns the signed transactions waiting for broadcast, in signing order
	Pending() []*wallet.SignedTransaction
	// MarkBroadcast() removes a transaction from the outbox once the ledger accepted it
	MarkBroadcast(id wallet.TransactionID)
	// MarkRejected() removes a transaction the ledger will never accept from the outbox
	// A deleted sender is brought back into the fleet since the ledger still holds its funds
	MarkRejected(id wallet.TransactionID)
	// Addresses() returns the live addresses in ascending order
	Addresses() []crypto.AddressI
	// SetBalance() adopts the ledger balance of a wallet, adjusted by the transactions still in the outbox
	SetBalance(address crypto.AddressI, ledgerBalance uint64) lib.ErrorI
	// SetNonce() raises the nonce of a wallet to the next one the ledger expects
	SetNonce(address crypto.AddressI, ledgerNonce uint64) lib.ErrorI
}

// Reconcile() runs fn with the fleet write lock held, so a sync pass is serialized with every other writer
func (m *Manager) Reconcile(fn func(r Reconciler) lib.ErrorI) lib.ErrorI {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := fn(reconciler{m: m})
	m.releaseRetired()
	m.updateMetrics()
	return err
}

var _ Reconciler = reconciler{}

type reconciler struct{ m *Manager }

func (r reconciler) Pending() []*wallet.SignedTransaction { return slices.Clone(r.m.outbox) }

func (r reconciler) MarkBroadcast(id wallet.TransactionID) { r.m.dequeue(id) }

func (r reconciler) MarkRejected(id wallet.TransactionID) {
	if stx := r.m.dequeue(id); stx != nil {
		r.m.restore(stx.Transaction)
	}
}

func (r reconciler) Addresses() (addresses []crypto.AddressI) {
	for _, w := range r.m.list() {
		addresses = append(addresses, w.Address())
	}
	return
}

func (r reconciler) SetBalance(address crypto.AddressI, ledgerBalance uint64) lib.ErrorI {
	w, err := r.m.get(address)
	if err != nil {
		return err
	}
	// the ledger hasn't seen the outbox yet, but the local balances already include it
	in, out := new(uint256.Int), new(uint256.Int)
	for _, stx := range r.m.outbox {
		amount := uint256.NewInt(stx.Transaction.Amount)
		if stx.Transaction.From.Equals(address) {
			out.Add(out, amount)
		}
		if stx.Transaction.To.Equals(address) {
			in.Add(in, amount)
		}
	}
	balance := new(uint256.Int).Add(uint256.NewInt(ledgerBalance), in)
	if balance.Lt(out) {
		balance.Clear()
	} else {
		balance.Sub(balance, out)
	}
	if !balance.IsUint64() {
		return ErrBalanceOverflow(address.String())
	}
	if w.Balance() != balance.Uint64() {
		r.m.log.Debugf("Balance of %s changed from %d to %d", address, w.Balance(), balance.Uint64())
	}
	w.SetBalance(balance.Uint64())
	return nil
}

func (r reconciler) SetNonce(address crypto.AddressI, ledgerNonce uint64) lib.ErrorI {
	w, err := r.m.get(address)
	if err != nil {
		return err
	}
	// locally signed transactions the ledger hasn't seen keep the local nonce ahead
	if ledgerNonce > w.Nonce() {
		r.m.log.Debugf("Nonce of %s raised from %d to %d", address, w.Nonce(), ledgerNonce)
		w.SetNonce(ledgerNonce)
	}
	return nil
}
