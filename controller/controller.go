package controller

import (
	"context"
	"sync"

	"github.com/oblivisheee/aum-engine/fleet"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/monitor"
	"github.com/oblivisheee/aum-engine/store"
)

// Controller acts as the 'manager' of the modules of the engine
type Controller struct {
	Config   lib.Config
	Store    store.Storage
	Fleet    *fleet.Manager
	Ledger   monitor.LedgerI
	Monitor  *monitor.Monitor
	Executor *Executor
	Metrics  *lib.Metrics
	log      lib.LoggerI
	sync.Mutex
}

// New() wires the storage, fleet, ledger and monitor of an engine instance
func New(c lib.Config, storage store.Storage, metrics *lib.Metrics, l lib.LoggerI) (*Controller, lib.ErrorI) {
	f, err := fleet.New(c.FleetConfig, c.Network, storage, metrics, l.WithPrefix("fleet"))
	if err != nil {
		return nil, err
	}
	ledger, err := monitor.NewLedger(c.MonitorConfig, l.WithPrefix("ledger"))
	if err != nil {
		return nil, err
	}
	m := monitor.New(c.MonitorConfig, ledger, metrics, l.WithPrefix("monitor"))
	return &Controller{
		Config:   c,
		Store:    storage,
		Fleet:    f,
		Ledger:   ledger,
		Monitor:  m,
		Executor: NewExecutor(f, m, c.Admin, metrics, l.WithPrefix("executor")),
		Metrics:  metrics,
		log:      l,
	}, nil
}

// Start() restores the fleet, tops it up to the configured size and starts the monitor
func (c *Controller) Start() lib.ErrorI {
	c.Lock()
	defer c.Unlock()
	if err := c.Fleet.Load(); err != nil {
		return ErrStartup(err)
	}
	if n := c.Fleet.Len(); n < c.Config.InitialWallets {
		c.log.Infof("Scaling fleet from %d to %d wallets", n, c.Config.InitialWallets)
		if err := c.Fleet.ScaleTo(c.Config.InitialWallets); err != nil {
			return ErrStartup(err)
		}
	}
	c.log.Infof("Fleet ready with %d wallets", c.Fleet.Len())
	if err := c.Monitor.Start(c.Fleet); err != nil {
		return ErrStartup(err)
	}
	// adopt the ledger balances and nonces before the first request signs anything
	if err := c.Monitor.Sync(context.Background()); err != nil {
		c.log.Warnf("Initial sync failed, the monitor will retry: %s", lib.Message(err))
	}
	return nil
}

// Stop() flushes the outbox, stops the monitor and closes the storage
// Transactions the final sync couldn't broadcast are logged, the outbox doesn't survive a restart
func (c *Controller) Stop() {
	c.Lock()
	defer c.Unlock()
	if c.Fleet.PendingCount() > 0 && c.Monitor.IsRunning() {
		c.log.Infof("Broadcasting %d pending transactions before shutdown", c.Fleet.PendingCount())
		if err := c.Monitor.Sync(context.Background()); err != nil {
			c.log.Warnf("Final sync failed: %s", lib.Message(err))
		}
	}
	for _, id := range c.Fleet.Pending() {
		c.log.Warnf("Transaction %s was never broadcast", id)
	}
	if err := c.Monitor.Stop(); err != nil {
		c.log.Error(err.Error())
	}
	if err := c.Store.Close(); err != nil {
		c.log.Error(err.Error())
	}
}
