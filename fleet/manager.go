package fleet

import (
	"cmp"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/holiman/uint256"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/store"
	"github.com/oblivisheee/aum-engine/wallet"
)

/*
	The Manager is the single owner of the wallet fleet and the only code that moves funds between
	its wallets. Writes take the fleet lock exclusively, reads share it, and every value handed out
	is an owned snapshot so no caller ever holds a reference into the fleet.

	Fund conservation: create, scale, delete-and-transfer and delete-and-distribute only move balance
	between wallets, the total before and after each of them is asserted equal. Sends debit the source
	locally and queue the signed transaction in the outbox for the monitor to broadcast.

	Key retention: a deleted wallet's secret key stays in storage until every outbox transaction it
	signed is broadcast, so the key behind funds in flight is never lost. When the ledger rejects one
	of them the wallet is restored from its stored key and adopts its ledger balance on the next sync.
*/

// Balance is an (address, balance) pair
type Balance struct {
	Address crypto.AddressI
	Balance uint64
}

// Manager is the wallet fleet
type Manager struct {
	wallets  map[string]*wallet.Wallet   // live wallets keyed by address string
	outbox   []*wallet.SignedTransaction // signed transactions not yet broadcast, in signing order
	retiring map[string]crypto.AddressI  // deleted wallets whose keys wait on the outbox
	storage  store.Storage               // key material at rest
	scheme   crypto.Scheme               // the signature scheme of new wallets
	format   crypto.Format               // the address format of new wallets
	hrp      string                      // the bech32 human readable part
	mu       sync.RWMutex                // the fleet lock
	metrics  *lib.Metrics                // telemetry
	log      lib.LoggerI                 // stdout log
}

// New() creates an empty fleet, call Load() to restore the wallets in storage
func New(config lib.FleetConfig, network string, storage store.Storage, metrics *lib.Metrics, log lib.LoggerI) (*Manager, lib.ErrorI) {
	scheme, err := crypto.ParseScheme(config.KeyScheme)
	if err != nil {
		return nil, ErrFleetKeyMaterial(err)
	}
	format, err := crypto.ParseFormat(config.AddressFormat)
	if err != nil {
		return nil, ErrFleetKeyMaterial(err)
	}
	if network == "" {
		network = crypto.DefaultHRP
	}
	return &Manager{
		wallets:  make(map[string]*wallet.Wallet),
		retiring: make(map[string]crypto.AddressI),
		storage:  storage,
		scheme:   scheme,
		format:   format,
		hrp:      network,
		metrics:  metrics,
		log:      log,
	}, nil
}

// HRP() returns the bech32 human readable part addresses of this fleet carry
func (m *Manager) HRP() string { return m.hrp }

// Load() restores the fleet from the keys in storage, balances start at zero until the first sync
func (m *Manager) Load() lib.ErrorI {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.storage.Iterate(func(address crypto.AddressI, key crypto.PrivateKeyI) lib.ErrorI {
		w, err := wallet.New(key, address.Format(), m.hrp)
		if err != nil {
			return ErrFleetKeyMaterial(err)
		}
		if !w.Address().Equals(address) {
			return ErrFleetKeyMaterial(lib.ErrInvalidArgument(fmt.Sprintf("stored key does not derive %s", address)))
		}
		m.wallets[address.String()] = w
		return nil
	})
	if err != nil {
		if err.Module() == lib.WalletManagerModule {
			return err
		}
		return ErrFleetStorage(err)
	}
	m.updateMetrics()
	m.log.Infof("Loaded %d wallets from storage", len(m.wallets))
	return nil
}

// WRITES BELOW

// CreateWallet() generates fresh key material and adds a zero balance wallet to the fleet
func (m *Manager) CreateWallet() (info wallet.WalletInfo, err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("create_wallet", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	w, err := m.createWallet()
	if err != nil {
		return
	}
	return w.Snapshot(), nil
}

// ScaleTo() grows or shrinks the fleet to exactly count wallets
// Shrinking removes the lowest balance wallets first (ties by ascending address) and distributes each
// one across the survivors. Every removal is atomic but the sequence is not: on failure the fleet may
// be partially scaled and callers should re-query Len()
func (m *Manager) ScaleTo(count int) (err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("scale_to", err) }()
	if count < 0 {
		return ErrInvalidAmount(fmt.Sprintf("wallet count %d is negative", count))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current := len(m.wallets)
	switch {
	case count > current:
		for i := current; i < count; i++ {
			if _, err = m.createWallet(); err != nil {
				return
			}
		}
	case count < current:
		if total := m.total(); count == 0 && !total.IsZero() {
			return ErrNoSurvivors(total.ToBig().String())
		}
		ordered := m.byBalance()
		removed, survivors := ordered[:current-count], ordered[current-count:]
		sortByAddress(survivors)
		for _, w := range removed {
			if _, err = m.deleteAndDistribute(w, survivors); err != nil {
				return
			}
		}
	}
	m.log.Infof("Scaled the fleet from %d to %d wallets", current, count)
	return nil
}

// DeleteAndTransfer() moves the whole balance of source to target and removes source from the fleet
func (m *Manager) DeleteAndTransfer(source, target crypto.AddressI) (info wallet.WalletInfo, err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("delete_and_transfer", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	from, err := m.get(source)
	if err != nil {
		return
	}
	targets, err := m.resolveTargets(source, []crypto.AddressI{target})
	if err != nil {
		return
	}
	if _, err = m.deleteAndDistribute(from, targets); err != nil {
		return
	}
	return targets[0].Snapshot(), nil
}

// DeleteAndDistribute() splits the balance of source evenly across the targets (the integer remainder
// goes to the first target) and removes source from the fleet
func (m *Manager) DeleteAndDistribute(source crypto.AddressI, targets []crypto.AddressI) (infos []wallet.WalletInfo, err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("delete_and_distribute", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	from, err := m.get(source)
	if err != nil {
		return
	}
	resolved, err := m.resolveTargets(source, targets)
	if err != nil {
		return
	}
	if _, err = m.deleteAndDistribute(from, resolved); err != nil {
		return
	}
	for _, w := range resolved {
		infos = append(infos, w.Snapshot())
	}
	return
}

// SendTransaction() sends amount from the highest balance wallet (ties by ascending address) that isn't the recipient
func (m *Manager) SendTransaction(to crypto.AddressI, amount uint64) (id wallet.TransactionID, err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("send_transaction", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	var source *wallet.Wallet
	for _, w := range m.list() {
		if w.Address().Equals(to) {
			continue
		}
		if source == nil || w.Balance() > source.Balance() {
			source = w
		}
	}
	if source == nil {
		return id, ErrEmptyFleet()
	}
	return m.send(source, to, amount)
}

// SendTransactionFrom() sends amount from a specific fleet wallet
func (m *Manager) SendTransactionFrom(from, to crypto.AddressI, amount uint64) (id wallet.TransactionID, err lib.ErrorI) {
	defer func() { m.metrics.ObserveOperation("send_transaction_from", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	source, err := m.get(from)
	if err != nil {
		return
	}
	return m.send(source, to, amount)
}

// READS BELOW

// RetrieveAddress() returns the address of the lowest balance wallet, ties by ascending address
func (m *Manager) RetrieveAddress() (crypto.AddressI, lib.ErrorI) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *wallet.Wallet
	for _, w := range m.list() {
		if best == nil || w.Balance() < best.Balance() {
			best = w
		}
	}
	if best == nil {
		return nil, ErrEmptyFleet()
	}
	return best.Address(), nil
}

// ListWallets() returns the live addresses in ascending order
func (m *Manager) ListWallets() (addresses []crypto.AddressI) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.list() {
		addresses = append(addresses, w.Address())
	}
	return
}

// Wallets() returns a snapshot of every wallet in ascending address order
func (m *Manager) Wallets() (infos []wallet.WalletInfo) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.list() {
		infos = append(infos, w.Snapshot())
	}
	return
}

// Wallet() returns a snapshot of one wallet
func (m *Manager) Wallet(address crypto.AddressI) (wallet.WalletInfo, lib.ErrorI) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.get(address)
	if err != nil {
		return wallet.WalletInfo{}, err
	}
	return w.Snapshot(), nil
}

// TransactionHistory() returns the ordered history of one wallet
func (m *Manager) TransactionHistory(address crypto.AddressI) ([]*wallet.Transaction, lib.ErrorI) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.get(address)
	if err != nil {
		return nil, err
	}
	return w.TransactionHistory(), nil
}

// RetrieveBalance() returns the balance of one wallet
func (m *Manager) RetrieveBalance(address crypto.AddressI) (uint64, lib.ErrorI) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.get(address)
	if err != nil {
		return 0, err
	}
	return w.Balance(), nil
}

// RetrieveBalances() returns every (address, balance) pair from one consistent snapshot
func (m *Manager) RetrieveBalances() (balances []Balance) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.list() {
		balances = append(balances, Balance{Address: w.Address(), Balance: w.Balance()})
	}
	return
}

// Len() returns the number of live wallets
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wallets)
}

// TotalBalance() returns the sum of every wallet balance
func (m *Manager) TotalBalance() *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total()
}

// PendingCount() returns the number of signed transactions waiting for broadcast
func (m *Manager) PendingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.outbox)
}

// Pending() returns the ids of the outbox transactions in signing order
func (m *Manager) Pending() (ids []wallet.TransactionID) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, stx := range m.outbox {
		ids = append(ids, stx.ID())
	}
	return
}

// INTERNAL BELOW, callers hold the fleet lock

// createWallet() persists fresh key material then inserts the wallet, on storage failure nothing is inserted
func (m *Manager) createWallet() (*wallet.Wallet, lib.ErrorI) {
	key, err := crypto.NewPrivateKey(m.scheme)
	if err != nil {
		return nil, ErrFleetKeyMaterial(err)
	}
	w, err := wallet.New(key, m.format, m.hrp)
	if err != nil {
		return nil, ErrFleetKeyMaterial(err)
	}
	id := w.Address().String()
	if _, found := m.wallets[id]; found {
		return nil, ErrDuplicateAddress(id)
	}
	if err = m.storage.Set(w.Address(), key); err != nil {
		return nil, ErrFleetStorage(err)
	}
	m.wallets[id] = w
	m.updateMetrics()
	m.log.Debugf("Created wallet %s", id)
	return w, nil
}

// deleteAndDistribute() moves the balance of source across the validated targets and removes source
// Every transfer is built and signed before any balance changes, so an error leaves the fleet untouched
func (m *Manager) deleteAndDistribute(source *wallet.Wallet, targets []*wallet.Wallet) ([]*wallet.Wallet, lib.ErrorI) {
	before := m.total()
	amount := source.Balance()
	var transfers []*wallet.SignedTransaction
	if amount > 0 {
		if len(targets) == 0 {
			return nil, ErrInvalidTargets("no wallet left to receive the balance of " + source.Address().String())
		}
		n := uint64(len(targets))
		share, remainder := amount/n, amount%n
		nonce := source.Nonce()
		for i, target := range targets {
			credit := share
			if i == 0 {
				credit += remainder
			}
			if credit == 0 {
				transfers = append(transfers, nil)
				continue
			}
			if target.Balance() > math.MaxUint64-credit {
				return nil, ErrBalanceOverflow(target.Address().String())
			}
			tx, err := wallet.NewTransaction(source.Address(), target.Address(), credit, nonce, "")
			if err != nil {
				return nil, ErrWalletError(err)
			}
			stx, err := source.SignTransaction(tx)
			if err != nil {
				return nil, ErrWalletError(err)
			}
			transfers = append(transfers, stx)
			nonce++
		}
	}
	for i, stx := range transfers {
		if stx == nil {
			continue
		}
		if err := m.apply(source, targets[i], stx); err != nil {
			return nil, err
		}
	}
	m.retire(source)
	if after := m.total(); !before.Eq(after) {
		return nil, ErrConservation(before.ToBig().String(), after.ToBig().String())
	}
	m.updateMetrics()
	m.log.Infof("Removed wallet %s and moved %d across %d wallets", source.Address(), amount, len(targets))
	return targets, nil
}

// send() builds, signs and applies a transfer out of a fleet wallet
func (m *Manager) send(source *wallet.Wallet, to crypto.AddressI, amount uint64) (id wallet.TransactionID, err lib.ErrorI) {
	if to == nil {
		return id, ErrWalletError(wallet.ErrInvalidAddress("empty recipient"))
	}
	if amount == 0 {
		return id, ErrInvalidAmount("amount must be greater than zero")
	}
	target := m.wallets[to.String()]
	if target != nil && target != source && target.Balance() > math.MaxUint64-amount {
		return id, ErrBalanceOverflow(to.String())
	}
	tx, err := source.TransferFunds(to, amount)
	if err != nil {
		return id, ErrWalletError(err)
	}
	stx, err := source.SignTransaction(tx)
	if err != nil {
		return id, ErrWalletError(err)
	}
	if err = m.apply(source, target, stx); err != nil {
		return
	}
	m.updateMetrics()
	m.log.Infof("Queued transaction %s: %d from %s to %s", tx.ID(), amount, source.Address(), to)
	return tx.ID(), nil
}

// apply() debits the source, credits a fleet target (nil for external recipients), records the
// transaction on both histories and queues it for broadcast
func (m *Manager) apply(source, target *wallet.Wallet, stx *wallet.SignedTransaction) lib.ErrorI {
	amount := stx.Transaction.Amount
	if err := source.Debit(amount); err != nil {
		return ErrWalletError(err)
	}
	if target != nil {
		if err := target.Credit(amount); err != nil {
			_ = source.Credit(amount)
			return ErrWalletError(err)
		}
		if target != source {
			target.Record(stx.Transaction)
		}
	}
	source.Record(stx.Transaction)
	m.outbox = append(m.outbox, stx)
	return nil
}

// retire() drops a wallet from the fleet and removes its key once nothing it signed is pending
func (m *Manager) retire(w *wallet.Wallet) {
	id := w.Address().String()
	delete(m.wallets, id)
	m.retiring[id] = w.Address()
	m.releaseRetired()
}

// releaseRetired() removes the keys of retired wallets with no pending outbox transactions
func (m *Manager) releaseRetired() {
	for id, address := range m.retiring {
		if m.hasPendingFrom(address) {
			continue
		}
		if err := m.storage.Remove(address); err != nil {
			m.log.Warnf("Failed to remove the key of retired wallet %s, will retry: %s", id, lib.Message(err))
			continue
		}
		delete(m.retiring, id)
		m.log.Debugf("Removed the key of retired wallet %s", id)
	}
}

// dequeue() removes a transaction from the outbox and returns it, nil if it isn't queued
func (m *Manager) dequeue(id wallet.TransactionID) *wallet.SignedTransaction {
	for i, stx := range m.outbox {
		if stx.ID() == id {
			m.outbox = slices.Delete(m.outbox, i, i+1)
			return stx
		}
	}
	return nil
}

// restore() brings a retired sender of a rejected transaction back into the fleet
// Its balance is zero until the next SetBalance() adopts the ledger view
func (m *Manager) restore(tx *wallet.Transaction) {
	id := tx.From.String()
	address, found := m.retiring[id]
	if !found {
		return
	}
	// from here on the key must never be released by releaseRetired()
	delete(m.retiring, id)
	key, err := m.storage.Get(address)
	if err != nil {
		m.log.Errorf("Failed to restore retired wallet %s, its key stays in storage: %s", id, lib.Message(err))
		return
	}
	w, err := wallet.New(key, address.Format(), m.hrp)
	if err != nil || !w.Address().Equals(address) {
		m.log.Errorf("Failed to restore retired wallet %s, its key stays in storage", id)
		return
	}
	// the rejected nonce was never consumed, later queued transfers keep theirs
	nonce := tx.Nonce
	for _, stx := range m.outbox {
		if stx.Transaction.From.Equals(address) {
			nonce = max(nonce, stx.Transaction.Nonce+1)
		}
	}
	w.SetNonce(nonce)
	m.wallets[id] = w
	m.log.Warnf("Restored retired wallet %s, the ledger rejected its transfer %s", id, tx.ID())
}

// hasPendingFrom() returns true if the outbox holds a transaction sent by address
func (m *Manager) hasPendingFrom(address crypto.AddressI) bool {
	for _, stx := range m.outbox {
		if stx.Transaction.From.Equals(address) {
			return true
		}
	}
	return false
}

// get() returns a live wallet
func (m *Manager) get(address crypto.AddressI) (*wallet.Wallet, lib.ErrorI) {
	if address == nil {
		return nil, ErrWalletNotFound("<nil>")
	}
	w, found := m.wallets[address.String()]
	if !found {
		return nil, ErrWalletNotFound(address.String())
	}
	return w, nil
}

// resolveTargets() validates distribution targets: non-empty, distinct, live and not the source
func (m *Manager) resolveTargets(source crypto.AddressI, targets []crypto.AddressI) ([]*wallet.Wallet, lib.ErrorI) {
	if len(targets) == 0 {
		return nil, ErrInvalidTargets("no targets")
	}
	dedup := lib.NewDeDuplicator[string]()
	resolved := make([]*wallet.Wallet, 0, len(targets))
	for _, target := range targets {
		if target == nil {
			return nil, ErrInvalidTargets("empty target")
		}
		id := target.String()
		if id == source.String() {
			return nil, ErrInvalidTargets("the source wallet can't be a target")
		}
		if dedup.Found(id) {
			return nil, ErrInvalidTargets("duplicate target " + id)
		}
		w, err := m.get(target)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, w)
	}
	return resolved, nil
}

// list() returns the live wallets in ascending address order
func (m *Manager) list() []*wallet.Wallet {
	ws := make([]*wallet.Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		ws = append(ws, w)
	}
	sortByAddress(ws)
	return ws
}

// byBalance() returns the live wallets by ascending balance, ties by ascending address
func (m *Manager) byBalance() []*wallet.Wallet {
	ws := m.list()
	slices.SortStableFunc(ws, func(a, b *wallet.Wallet) int { return cmp.Compare(a.Balance(), b.Balance()) })
	return ws
}

// total() sums the live balances without overflow
func (m *Manager) total() *uint256.Int {
	sum := new(uint256.Int)
	for _, w := range m.wallets {
		sum.Add(sum, uint256.NewInt(w.Balance()))
	}
	return sum
}

// updateMetrics() refreshes the fleet gauges
func (m *Manager) updateMetrics() {
	total, _ := new(big.Float).SetInt(m.total().ToBig()).Float64()
	m.metrics.UpdateFleet(len(m.wallets), len(m.outbox), total)
}

// sortByAddress() orders wallets by ascending address string
func sortByAddress(ws []*wallet.Wallet) {
	slices.SortFunc(ws, func(a, b *wallet.Wallet) int {
		return strings.Compare(a.Address().String(), b.Address().String())
	})
}
