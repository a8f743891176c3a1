package controller

import (
	"context"

	"github.com/oblivisheee/aum-engine/fleet"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/monitor"
	"github.com/oblivisheee/aum-engine/wallet"
)

// Executor maps a decoded request onto exactly one fleet or monitor operation
type Executor struct {
	fleet   *fleet.Manager
	monitor *monitor.Monitor
	admin   bool // allow the requests that change the fleet shape
	metrics *lib.Metrics
	log     lib.LoggerI
}

// NewExecutor() creates an executor over a fleet and its monitor
func NewExecutor(f *fleet.Manager, m *monitor.Monitor, admin bool, metrics *lib.Metrics, log lib.LoggerI) *Executor {
	return &Executor{fleet: f, monitor: m, admin: admin, metrics: metrics, log: log}
}

// Execute() runs the request and returns the response variant that answers it
func (e *Executor) Execute(ctx context.Context, r *lib.Request) (resp *lib.Response, err lib.ErrorI) {
	if r == nil {
		return nil, lib.ErrWrongRequest("")
	}
	defer func() { e.metrics.ObserveRequest(string(r.Type), err) }()
	if err = r.Check(); err != nil {
		return nil, err
	}
	if r.Type.IsAdmin() && !e.admin {
		return nil, lib.ErrAdminDisabled(r.Type)
	}
	resp = &lib.Response{Type: lib.ResponseType(r.Type)}
	switch r.Type {
	case lib.RequestRetrieveAddress:
		address, er := e.fleet.RetrieveAddress()
		if er != nil {
			return nil, er
		}
		resp.Address = address.String()
	case lib.RequestSendTransaction:
		to, er := e.parse(r.To)
		if er != nil {
			return nil, er
		}
		id, er := e.fleet.SendTransaction(to, r.Amount)
		if er != nil {
			return nil, er
		}
		resp.TxID = id.String()
	case lib.RequestSendTransactionFrom:
		from, to, er := e.parsePair(r.From, r.To)
		if er != nil {
			return nil, er
		}
		id, er := e.fleet.SendTransactionFrom(from, to, r.Amount)
		if er != nil {
			return nil, er
		}
		resp.From, resp.TxID = from.String(), id.String()
	case lib.RequestRetrieveBalance:
		address, er := e.parse(r.Address)
		if er != nil {
			return nil, er
		}
		balance, er := e.fleet.RetrieveBalance(address)
		if er != nil {
			return nil, er
		}
		resp.Address, resp.Balance = address.String(), balance
	case lib.RequestRetrieveBalances:
		resp.Balances = []lib.Balance{}
		for _, b := range e.fleet.RetrieveBalances() {
			resp.Balances = append(resp.Balances, lib.Balance{Address: b.Address.String(), Balance: b.Balance})
		}
	case lib.RequestListWallets:
		resp.Wallets = []string{}
		for _, address := range e.fleet.ListWallets() {
			resp.Wallets = append(resp.Wallets, address.String())
		}
	case lib.RequestSync:
		// a hang up must not abort a pass that already broadcast
		if er := e.monitor.Sync(context.WithoutCancel(ctx)); er != nil {
			return nil, er
		}
		resp.Success = true
	case lib.RequestCreateWallet:
		info, er := e.fleet.CreateWallet()
		if er != nil {
			return nil, er
		}
		resp.Address = info.Address.String()
	case lib.RequestScaleTo:
		if er := e.fleet.ScaleTo(r.Count); er != nil {
			return nil, er
		}
		resp.Count = e.fleet.Len()
	case lib.RequestDeleteAndTransfer:
		from, to, er := e.parsePair(r.From, r.To)
		if er != nil {
			return nil, er
		}
		info, er := e.fleet.DeleteAndTransfer(from, to)
		if er != nil {
			return nil, er
		}
		resp.Address, resp.Balance = info.Address.String(), info.Balance
	case lib.RequestDeleteAndDistribute:
		from, er := e.parse(r.From)
		if er != nil {
			return nil, er
		}
		targets := make([]crypto.AddressI, 0, len(r.Targets))
		for _, s := range r.Targets {
			target, pe := e.parse(s)
			if pe != nil {
				return nil, pe
			}
			targets = append(targets, target)
		}
		infos, er := e.fleet.DeleteAndDistribute(from, targets)
		if er != nil {
			return nil, er
		}
		resp.Balances = toBalances(infos)
	}
	return resp, nil
}

// parse() reads an address in any format, bech32 addresses must belong to the fleet network
func (e *Executor) parse(s string) (crypto.AddressI, lib.ErrorI) {
	return crypto.ParseAddress(s, e.fleet.HRP())
}

func (e *Executor) parsePair(a, b string) (crypto.AddressI, crypto.AddressI, lib.ErrorI) {
	first, err := e.parse(a)
	if err != nil {
		return nil, nil, err
	}
	second, err := e.parse(b)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func toBalances(infos []wallet.WalletInfo) []lib.Balance {
	balances := make([]lib.Balance, 0, len(infos))
	for _, info := range infos {
		balances = append(balances, lib.Balance{Address: info.Address.String(), Balance: info.Balance})
	}
	return balances
}
