package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/oblivisheee/aum-engine/fleet"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/monitor"
	"github.com/oblivisheee/aum-engine/store"
	"github.com/stretchr/testify/require"
)

func TestExecuteReads(t *testing.T) {
	e, f, ledger := newTestExecutor(t, false)
	addresses := scale(t, f, 2)
	ledger.Fund(addresses[1], 10)
	ctx := context.Background()
	resp, err := e.Execute(ctx, &lib.Request{Type: lib.RequestSync})
	require.NoError(t, err)
	require.True(t, resp.Success)
	tests := []struct {
		name     string
		detail   string
		request  *lib.Request
		expected *lib.Response
	}{
		{
			name:     "retrieve address",
			detail:   "the lowest balance wallet receives",
			request:  &lib.Request{Type: lib.RequestRetrieveAddress},
			expected: &lib.Response{Type: "RetrieveAddress", Address: addresses[0].String()},
		},
		{
			name:     "retrieve balance",
			detail:   "the balance of a fleet wallet",
			request:  &lib.Request{Type: lib.RequestRetrieveBalance, Address: addresses[1].String()},
			expected: &lib.Response{Type: "RetrieveBalance", Address: addresses[1].String(), Balance: 10},
		},
		{
			name:    "retrieve balances",
			detail:  "every balance in address order",
			request: &lib.Request{Type: lib.RequestRetrieveBalances},
			expected: &lib.Response{Type: "RetrieveBalances", Balances: []lib.Balance{
				{Address: addresses[0].String(), Balance: 0},
				{Address: addresses[1].String(), Balance: 10},
			}},
		},
		{
			name:     "list wallets",
			detail:   "every address in order",
			request:  &lib.Request{Type: lib.RequestListWallets},
			expected: &lib.Response{Type: "ListWallets", Wallets: []string{addresses[0].String(), addresses[1].String()}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := e.Execute(ctx, test.request)
			// validate the response
			require.NoError(t, err, test.detail)
			require.Equal(t, test.expected, got, test.detail)
		})
	}
}

func TestExecuteSend(t *testing.T) {
	e, f, ledger := newTestExecutor(t, false)
	addresses := scale(t, f, 2)
	ledger.Fund(addresses[0], 100)
	ctx := context.Background()
	_, err := e.Execute(ctx, &lib.Request{Type: lib.RequestSync})
	require.NoError(t, err)
	external := newExternalAddress(t)
	// execute the function call
	resp, err := e.Execute(ctx, &lib.Request{Type: lib.RequestSendTransaction, To: external.String(), Amount: 40})
	// validate the transaction id and the local debit
	require.NoError(t, err)
	require.Len(t, resp.TxID, 64)
	balance, err := f.RetrieveBalance(addresses[0])
	require.NoError(t, err)
	require.EqualValues(t, 60, balance)
	// execute the explicit source variant
	resp, err = e.Execute(ctx, &lib.Request{Type: lib.RequestSendTransactionFrom, From: addresses[0].String(), To: addresses[1].String(), Amount: 10})
	require.NoError(t, err)
	require.Equal(t, addresses[0].String(), resp.From)
	require.NotEmpty(t, resp.TxID)
	// validate the sync pushes both to the ledger
	_, err = e.Execute(ctx, &lib.Request{Type: lib.RequestSync})
	require.NoError(t, err)
	require.Zero(t, f.PendingCount())
	onLedger, e2 := ledger.Balance(ctx, external)
	require.NoError(t, e2)
	require.EqualValues(t, 40, onLedger)
}

func TestExecuteErrors(t *testing.T) {
	e, f, _ := newTestExecutor(t, false)
	addresses := scale(t, f, 1)
	tests := []struct {
		name     string
		detail   string
		request  *lib.Request
		expected error
	}{
		{
			name:     "nil",
			detail:   "a missing request is malformed",
			expected: lib.ErrWrongRequest(""),
		},
		{
			name:     "unknown type",
			detail:   "an unknown type is malformed",
			request:  &lib.Request{Type: "Teleport"},
			expected: lib.ErrWrongRequest(""),
		},
		{
			name:     "missing field",
			detail:   "a send without recipient is malformed",
			request:  &lib.Request{Type: lib.RequestSendTransaction, Amount: 1},
			expected: lib.ErrWrongRequest(""),
		},
		{
			name:     "bad address",
			detail:   "an address that parses in no format",
			request:  &lib.Request{Type: lib.RequestRetrieveBalance, Address: "not-an-address"},
			expected: crypto.ErrParseAddress(""),
		},
		{
			name:     "foreign network",
			detail:   "a bech32 address of another network",
			request:  &lib.Request{Type: lib.RequestRetrieveBalance, Address: foreignBech32(t)},
			expected: crypto.ErrUnsupportedAddressFormat(""),
		},
		{
			name:     "unknown wallet",
			detail:   "an address outside the fleet",
			request:  &lib.Request{Type: lib.RequestRetrieveBalance, Address: newExternalAddress(t).String()},
			expected: fleet.ErrWalletNotFound(""),
		},
		{
			name:     "insufficient",
			detail:   "a send beyond the fleet balance",
			request:  &lib.Request{Type: lib.RequestSendTransactionFrom, From: addresses[0].String(), To: newExternalAddress(t).String(), Amount: 1},
			expected: fleet.ErrWalletError(errors.New("")),
		},
		{
			name:     "admin disabled",
			detail:   "fleet shape requests need the admin flag",
			request:  &lib.Request{Type: lib.RequestScaleTo, Count: 3},
			expected: lib.ErrAdminDisabled(lib.RequestScaleTo),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			resp, err := e.Execute(context.Background(), test.request)
			// validate the error
			require.Nil(t, resp, test.detail)
			require.ErrorIs(t, err, test.expected, test.detail)
		})
	}
	// validate nothing changed the fleet
	require.Equal(t, 1, f.Len())
}

func TestExecuteAdmin(t *testing.T) {
	e, f, _ := newTestExecutor(t, true)
	ctx := context.Background()
	// execute scale and create
	resp, err := e.Execute(ctx, &lib.Request{Type: lib.RequestScaleTo, Count: 3})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Count)
	resp, err = e.Execute(ctx, &lib.Request{Type: lib.RequestCreateWallet})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Address)
	require.Equal(t, 4, f.Len())
	addresses := f.ListWallets()
	// validate delete and transfer answers with the receiving wallet
	resp, err = e.Execute(ctx, &lib.Request{Type: lib.RequestDeleteAndTransfer, From: addresses[0].String(), To: addresses[1].String()})
	require.NoError(t, err)
	require.Equal(t, addresses[1].String(), resp.Address)
	// validate delete and distribute answers with every target
	resp, err = e.Execute(ctx, &lib.Request{Type: lib.RequestDeleteAndDistribute, From: addresses[1].String(), Targets: []string{addresses[2].String(), addresses[3].String()}})
	require.NoError(t, err)
	require.Len(t, resp.Balances, 2)
	require.Equal(t, addresses[2].String(), resp.Balances[0].Address)
	require.Equal(t, 2, f.Len())
}

func TestExecuteSyncNotRunning(t *testing.T) {
	e, _, _ := newTestExecutor(t, false)
	require.NoError(t, e.monitor.Stop())
	// execute the function call
	_, err := e.Execute(context.Background(), &lib.Request{Type: lib.RequestSync})
	// validate the monitor state surfaces
	require.ErrorIs(t, err, monitor.ErrNotRunning())
}

func TestExecuteSyncDetachedFromCaller(t *testing.T) {
	e, _, _ := newTestExecutor(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// execute the function call with a caller that already went away
	resp, err := e.Execute(ctx, &lib.Request{Type: lib.RequestSync})
	// validate the pass still ran
	require.NoError(t, err)
	require.True(t, resp.Success)
}

// newTestExecutor() wires an in-memory fleet to a running monitor over a memory ledger
func newTestExecutor(t *testing.T, admin bool) (*Executor, *fleet.Manager, *monitor.MemoryLedger) {
	log := lib.NewNullLogger()
	f, err := fleet.New(lib.DefaultFleetConfig(), "", store.NewKeyStore(store.NewMemoryDB(), nil, log), nil, log)
	require.NoError(t, err)
	ledger := monitor.NewMemoryLedger()
	m := monitor.New(lib.MonitorConfig{SyncIntervalS: 3600, SyncTimeoutS: 10, BroadcastRetries: 1, MaxParallelFetch: 4}, ledger, nil, log)
	require.NoError(t, m.Start(f))
	t.Cleanup(func() { _ = m.Stop() })
	return NewExecutor(f, m, admin, nil, log), f, ledger
}

// scale() grows the fleet and returns the addresses in order
func scale(t *testing.T, f *fleet.Manager, n int) []crypto.AddressI {
	require.NoError(t, f.ScaleTo(n))
	return f.ListWallets()
}

func newExternalAddress(t *testing.T) crypto.AddressI {
	pk, err := crypto.NewPrivateKey(crypto.SchemeEd25519)
	require.NoError(t, err)
	address, err := crypto.NewAddressFromPrivateKey(pk, crypto.FormatHex, "")
	require.NoError(t, err)
	return address
}

func foreignBech32(t *testing.T) string {
	pk, err := crypto.NewPrivateKey(crypto.SchemeEd25519)
	require.NoError(t, err)
	address, err := crypto.NewAddressFromPrivateKey(pk, crypto.FormatBech32, "other")
	require.NoError(t, err)
	return address.String()
}
