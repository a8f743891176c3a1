package monitor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/oblivisheee/aum-engine/wallet"
)

const (
	BalanceRoutePath   = "/v1/balance/"
	BroadcastRoutePath = "/v1/broadcast"
	ApplicationJSON    = "application/json; charset=utf-8"
)

var (
	_ LedgerI      = &RPCLedger{}
	_ NonceLedgerI = &RPCLedger{}
)

// RPCLedger reaches a ledger node over its http json api
type RPCLedger struct {
	url    string
	client http.Client
	log    lib.LoggerI
}

// BalanceResponse is the body of a balance query
type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"` // the next nonce the ledger accepts from the address
}

// BroadcastRequest is the body of a broadcast, carrying both the readable and the raw transaction
type BroadcastRequest struct {
	Transaction *wallet.SignedTransaction `json:"transaction"`
	Raw         lib.HexBytes              `json:"raw"`
}

// NewRPCLedger() creates a ledger client for the node at baseURL
func NewRPCLedger(baseURL string, timeout time.Duration, log lib.LoggerI) *RPCLedger {
	return &RPCLedger{url: strings.TrimRight(baseURL, "/"), client: http.Client{Timeout: timeout}, log: log}
}

// Balance() queries GET /v1/balance/{address}
func (r *RPCLedger) Balance(ctx context.Context, address crypto.AddressI) (uint64, error) {
	resp, err := r.account(ctx, address)
	if err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Nonce() reads the next nonce from the same GET /v1/balance/{address} answer
func (r *RPCLedger) Nonce(ctx context.Context, address crypto.AddressI) (uint64, error) {
	resp, err := r.account(ctx, address)
	if err != nil {
		return 0, err
	}
	return resp.Nonce, nil
}

func (r *RPCLedger) account(ctx context.Context, address crypto.AddressI) (*BalanceResponse, lib.ErrorI) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+BalanceRoutePath+url.PathEscape(address.String()), nil)
	if err != nil {
		return nil, ErrLedger(err)
	}
	resp := new(BalanceResponse)
	if e := r.do(req, resp); e != nil {
		return nil, e
	}
	return resp, nil
}

// Broadcast() submits POST /v1/broadcast, a 4xx answer is a permanent rejection
func (r *RPCLedger) Broadcast(ctx context.Context, stx *wallet.SignedTransaction) error {
	bz, e := lib.MarshalJSON(BroadcastRequest{Transaction: stx, Raw: stx.Bytes()})
	if e != nil {
		return e
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+BroadcastRoutePath, bytes.NewBuffer(bz))
	if err != nil {
		return ErrLedger(err)
	}
	req.Header.Set("Content-Type", ApplicationJSON)
	if e = r.do(req, nil); e != nil && e.Code() == lib.CodeLedgerRejected {
		return ErrTransactionRejected(stx.ID().String(), lib.Message(e))
	}
	return e
}

// do() executes the request and decodes a 200 body into ptr
func (r *RPCLedger) do(req *http.Request, ptr any) lib.ErrorI {
	resp, err := r.client.Do(req)
	if err != nil {
		return ErrLedger(err)
	}
	defer resp.Body.Close()
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrLedger(err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return lib.NewError(lib.CodeLedgerRejected, lib.MonitorModule, strings.TrimSpace(string(bz)))
	default:
		return ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	if ptr == nil || len(bz) == 0 {
		return nil
	}
	return lib.UnmarshalJSON(bz, ptr)
}
