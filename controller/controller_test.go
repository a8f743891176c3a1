package controller

import (
	"context"
	"testing"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/monitor"
	"github.com/oblivisheee/aum-engine/store"
	"github.com/oblivisheee/aum-engine/wallet"
	"github.com/stretchr/testify/require"
)

func TestControllerStartStop(t *testing.T) {
	config := lib.DefaultConfig()
	config.InitialWallets = 3
	config.SyncIntervalS = 3600
	config.Backend = string(store.LevelDB)
	config.DataDirPath = t.TempDir()
	storage, err := store.New(config.StoreConfig, nil, lib.NewNullLogger())
	require.NoError(t, err)
	c, err := New(config, storage, nil, lib.NewNullLogger())
	require.NoError(t, err)
	// execute the function call
	require.NoError(t, c.Start())
	// validate the fleet was topped up and the monitor runs
	require.Equal(t, 3, c.Fleet.Len())
	require.True(t, c.Monitor.IsRunning())
	resp, e := c.Executor.Execute(context.Background(), &lib.Request{Type: lib.RequestSync})
	require.NoError(t, e)
	require.True(t, resp.Success)
	addresses := c.Fleet.ListWallets()
	c.Stop()
	require.False(t, c.Monitor.IsRunning())
	// validate a restart restores the same fleet without creating wallets
	config.InitialWallets = 2
	storage, err = store.New(config.StoreConfig, nil, lib.NewNullLogger())
	require.NoError(t, err)
	c, err = New(config, storage, nil, lib.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer c.Stop()
	require.Equal(t, addresses, c.Fleet.ListWallets())
}

func TestControllerStopFlushesOutbox(t *testing.T) {
	config := lib.DefaultConfig()
	config.SyncIntervalS = 3600
	c, err := New(config, store.NewKeyStore(store.NewMemoryDB(), nil, lib.NewNullLogger()), nil, lib.NewNullLogger())
	require.NoError(t, err)
	ledger, ok := c.Ledger.(*monitor.MemoryLedger)
	require.True(t, ok)
	require.NoError(t, c.Start())
	// fund the only wallet and adopt the balance
	ledger.Fund(c.Fleet.ListWallets()[0], 10)
	require.NoError(t, c.Monitor.Sync(context.Background()))
	id, e := c.Fleet.SendTransaction(newExternalAddress(t), 4)
	require.NoError(t, e)
	require.Equal(t, []wallet.TransactionID{id}, c.Fleet.Pending())
	// execute the function call
	c.Stop()
	// validate the queued transfer reached the ledger before shutdown
	require.False(t, c.Monitor.IsRunning())
	txs := ledger.Transactions()
	require.Len(t, txs, 1)
	require.Equal(t, id, txs[0].ID())
}

func TestControllerBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		modify func(c *lib.Config)
	}{
		{
			name:   "key scheme",
			detail: "an unknown key scheme",
			modify: func(c *lib.Config) { c.KeyScheme = "rsa" },
		},
		{
			name:   "address format",
			detail: "an unknown address format",
			modify: func(c *lib.Config) { c.AddressFormat = "morse" },
		},
		{
			name:   "ledger",
			detail: "an unknown ledger type",
			modify: func(c *lib.Config) { c.LedgerType = "paper" },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := lib.DefaultConfig()
			test.modify(&config)
			// execute the function call
			_, err := New(config, store.NewKeyStore(store.NewMemoryDB(), nil, lib.NewNullLogger()), nil, lib.NewNullLogger())
			// validate the error
			require.Error(t, err, test.detail)
		})
	}
}
