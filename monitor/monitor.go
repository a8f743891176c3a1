package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oblivisheee/aum-engine/fleet"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"golang.org/x/sync/errgroup"
)

const broadcastInitialBackoff = 100 * time.Millisecond

/*
	The monitor keeps the fleet in step with the ledger: on every tick it broadcasts the signed
	transactions waiting in the fleet outbox and adopts the ledger balances of the live wallets
*/

// Monitor is the background synchronization loop of a fleet
type Monitor struct {
	config  lib.MonitorConfig
	ledger  LedgerI
	fleet   *fleet.Manager // the fleet bound by the last Start()
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex // guards the lifecycle fields
	syncMu  sync.Mutex // one sync pass at a time
	metrics *lib.Metrics
	log     lib.LoggerI
}

// New() creates a stopped monitor against a ledger
func New(config lib.MonitorConfig, ledger LedgerI, metrics *lib.Metrics, log lib.LoggerI) *Monitor {
	return &Monitor{config: config, ledger: ledger, metrics: metrics, log: log}
}

// NewLedger() builds the ledger client the configuration names
func NewLedger(config lib.MonitorConfig, log lib.LoggerI) (LedgerI, lib.ErrorI) {
	switch config.LedgerType {
	case "", "memory":
		return NewMemoryLedger(), nil
	case "rpc":
		if config.LedgerURL == "" {
			return nil, ErrMonitor("rpc ledger requires a ledger url")
		}
		return NewRPCLedger(config.LedgerURL, time.Duration(config.LedgerTimeoutS)*time.Second, log), nil
	}
	return nil, ErrMonitor("unknown ledger type " + config.LedgerType)
}

// Start() binds the fleet and launches the sync loop
func (m *Monitor) Start(f *fleet.Manager) lib.ErrorI {
	if f == nil {
		return ErrMonitor("no wallet manager to monitor")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.fleet, m.cancel, m.done, m.running = f, cancel, make(chan struct{}), true
	go m.loop(ctx, f, m.done)
	m.metrics.SetMonitorRunning(true)
	m.log.Infof("Monitor started, syncing every %s", m.interval())
	return nil
}

// Stop() cancels the loop and waits for it to exit, stopping a stopped monitor is a no-op
func (m *Monitor) Stop() lib.ErrorI {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	cancel, done := m.cancel, m.done
	m.running, m.cancel, m.done = false, nil, nil
	m.mu.Unlock()
	// the in-flight pass observes the cancellation through its context
	cancel()
	<-done
	m.metrics.SetMonitorRunning(false)
	m.log.Info("Monitor stopped")
	return nil
}

// Restart() stops the loop and starts it again on the last bound fleet
func (m *Monitor) Restart() lib.ErrorI {
	if err := m.Stop(); err != nil {
		return err
	}
	m.mu.Lock()
	f := m.fleet
	m.mu.Unlock()
	if f == nil {
		return ErrNotRunning()
	}
	return m.Start(f)
}

// IsRunning() returns true between Start() and Stop()
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Sync() executes one sync pass on demand
func (m *Monitor) Sync(ctx context.Context) lib.ErrorI {
	m.mu.Lock()
	running, f := m.running, m.fleet
	m.mu.Unlock()
	if !running {
		return ErrNotRunning()
	}
	return m.sync(ctx, f)
}

// loop() ticks until the context is cancelled
func (m *Monitor) loop(ctx context.Context, f *fleet.Manager, done chan struct{}) {
	defer close(done)
	defer lib.CatchPanic(m.log)
	ticker := time.NewTicker(m.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.sync(ctx, f); err != nil && ctx.Err() == nil {
				m.log.Errorf("Sync pass failed: %s", lib.Message(err))
			}
		}
	}
}

// sync() broadcasts the outbox and adopts ledger balances while holding the fleet write lock
func (m *Monitor) sync(ctx context.Context, f *fleet.Manager) (err lib.ErrorI) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	start, broadcasts := time.Now(), 0
	defer func() { m.metrics.ObserveSync(time.Since(start), broadcasts, err) }()
	defer lib.TimeTrack(m.log, "Sync pass", start)
	if m.config.SyncTimeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.config.SyncTimeoutS)*time.Second)
		defer cancel()
	}
	return f.Reconcile(func(r fleet.Reconciler) lib.ErrorI {
		var broadcastErr lib.ErrorI
		broadcasts, broadcastErr = m.broadcast(ctx, r)
		// balances are refreshed even when the outbox is stuck
		addresses := r.Addresses()
		accounts, fetchErr := m.fetchAccounts(ctx, addresses)
		if fetchErr == nil {
			for i, address := range addresses {
				if e := r.SetBalance(address, accounts[i].balance); e != nil {
					return ErrWalletManager(e)
				}
				if !accounts[i].hasNonce {
					continue
				}
				if e := r.SetNonce(address, accounts[i].nonce); e != nil {
					return ErrWalletManager(e)
				}
			}
		}
		if broadcastErr != nil {
			return broadcastErr
		}
		return fetchErr
	})
}

// broadcast() submits the outbox in signing order and stops at the first transaction that keeps failing
func (m *Monitor) broadcast(ctx context.Context, r fleet.Reconciler) (count int, err lib.ErrorI) {
	rejected := ErrTransactionRejected("", "")
	for _, stx := range r.Pending() {
		id := stx.ID()
		e := backoff.Retry(func() error {
			if er := m.ledger.Broadcast(ctx, stx); er != nil {
				if errors.Is(er, rejected) {
					return backoff.Permanent(er)
				}
				m.log.Debugf("Broadcast of %s failed: %s", id, lib.Message(er))
				return er
			}
			return nil
		}, backoff.WithContext(lib.NewBackoff(broadcastInitialBackoff, m.config.BroadcastRetries), ctx))
		switch {
		case e == nil:
			r.MarkBroadcast(id)
			count++
		case errors.Is(e, rejected):
			// the balance refresh of this pass restores the ledger view of both parties
			m.log.Warnf("Dropping transaction %s: %s", id, lib.Message(e))
			r.MarkRejected(id)
		default:
			return count, ErrLedger(e)
		}
	}
	return count, nil
}

// account is the ledger view of one address
type account struct {
	balance  uint64
	nonce    uint64
	hasNonce bool
}

// fetchAccounts() queries the ledger for every address with bounded concurrency
func (m *Monitor) fetchAccounts(ctx context.Context, addresses []crypto.AddressI) ([]account, lib.ErrorI) {
	accounts := make([]account, len(addresses))
	nonces, hasNonce := m.ledger.(NonceLedgerI)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.config.MaxParallelFetch))
	for i, address := range addresses {
		g.Go(func() error {
			balance, err := m.ledger.Balance(gctx, address)
			if err != nil {
				return err
			}
			accounts[i].balance = balance
			if !hasNonce {
				return nil
			}
			if accounts[i].nonce, err = nonces.Nonce(gctx, address); err != nil {
				return err
			}
			accounts[i].hasNonce = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ErrLedger(err)
	}
	return accounts, nil
}

func (m *Monitor) interval() time.Duration {
	if m.config.SyncIntervalS <= 0 {
		return time.Second
	}
	return time.Duration(m.config.SyncIntervalS) * time.Second
}
