package rpc

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oblivisheee/aum-engine/lib"
)

// Client is a websocket client of the engine api, requests on one client are serialized
type Client struct {
	url     string
	conn    *websocket.Conn
	timeout time.Duration
	mu      sync.Mutex
}

// NewClient() dials the websocket api at url (ws://host:port/v1/ws)
func NewClient(ctx context.Context, url string, timeout time.Duration) (*Client, lib.ErrorI) {
	if !strings.Contains(url, "://") {
		url = "ws://" + url
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, ErrWS(err)
	}
	return &Client{url: url, conn: conn, timeout: timeout}, nil
}

// Close() closes the connection gracefully
func (c *Client) Close() lib.ErrorI {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err := c.conn.Close(); err != nil {
		return ErrWS(err)
	}
	return nil
}

// Do() sends a request frame and waits for its response frame, error frames are returned as ErrServer
func (c *Client) Do(r *lib.Request) (*lib.Response, lib.ErrorI) {
	bz, err := lib.MarshalJSON(r)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timeout > 0 {
		deadline := time.Now().Add(c.timeout)
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}
	if e := c.conn.WriteMessage(websocket.TextMessage, bz); e != nil {
		return nil, ErrWS(e)
	}
	msgType, bz, e := c.conn.ReadMessage()
	if e != nil {
		return nil, ErrWS(e)
	}
	if msgType != websocket.TextMessage {
		return nil, ErrUnexpectedResponse(r.Type, "binary frame")
	}
	resp, err := lib.DecodeResponse(bz)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if resp.Error == nil {
			return nil, ErrUnexpectedResponse(r.Type, resp.Type)
		}
		return nil, ErrServer(resp.Error)
	}
	if resp.Type != lib.ResponseType(r.Type) {
		return nil, ErrUnexpectedResponse(r.Type, resp.Type)
	}
	return resp, nil
}

// RetrieveAddress() returns the fleet address that should receive funds next
func (c *Client) RetrieveAddress() (string, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestRetrieveAddress})
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

// SendTransaction() pays amount to an address out of the fleet and returns the transaction id
func (c *Client) SendTransaction(to string, amount uint64) (string, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestSendTransaction, To: to, Amount: amount})
	if err != nil {
		return "", err
	}
	return resp.TxID, nil
}

// SendTransactionFrom() pays amount out of a specific fleet wallet
func (c *Client) SendTransactionFrom(from, to string, amount uint64) (string, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestSendTransactionFrom, From: from, To: to, Amount: amount})
	if err != nil {
		return "", err
	}
	return resp.TxID, nil
}

// RetrieveBalance() returns the balance of a fleet wallet
func (c *Client) RetrieveBalance(address string) (uint64, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestRetrieveBalance, Address: address})
	if err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// RetrieveBalances() returns every fleet balance
func (c *Client) RetrieveBalances() ([]lib.Balance, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestRetrieveBalances})
	if err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

// ListWallets() returns every fleet address
func (c *Client) ListWallets() ([]string, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestListWallets})
	if err != nil {
		return nil, err
	}
	return resp.Wallets, nil
}

// Sync() runs a sync pass on the server
func (c *Client) Sync() (bool, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestSync})
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

// CreateWallet() adds a wallet to the fleet
func (c *Client) CreateWallet() (string, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestCreateWallet})
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

// ScaleTo() resizes the fleet and returns the new size
func (c *Client) ScaleTo(count int) (int, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestScaleTo, Count: count})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// DeleteAndTransfer() removes a wallet and moves its balance to another
func (c *Client) DeleteAndTransfer(from, to string) (lib.Balance, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestDeleteAndTransfer, From: from, To: to})
	if err != nil {
		return lib.Balance{}, err
	}
	return lib.Balance{Address: resp.Address, Balance: resp.Balance}, nil
}

// DeleteAndDistribute() removes a wallet and splits its balance across targets
func (c *Client) DeleteAndDistribute(from string, targets []string) ([]lib.Balance, lib.ErrorI) {
	resp, err := c.Do(&lib.Request{Type: lib.RequestDeleteAndDistribute, From: from, Targets: targets})
	if err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

// Health() queries GET /v1/health on the http side of the api
func Health(baseURL string, timeout time.Duration) (*HealthResponse, lib.ErrorI) {
	ptr := new(HealthResponse)
	return ptr, get(baseURL+HealthRoutePath, timeout, ptr, http.StatusServiceUnavailable)
}

// Status() queries GET /v1/status on the http side of the api
func Status(baseURL string, timeout time.Duration) (*StatusResponse, lib.ErrorI) {
	ptr := new(StatusResponse)
	return ptr, get(baseURL+StatusRoutePath, timeout, ptr)
}

// get() fetches url and decodes the body into ptr, accepting 200 and any of the extra status codes
func get(url string, timeout time.Duration, ptr any, accept ...int) lib.ErrorI {
	client := http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return ErrIO(err)
	}
	defer resp.Body.Close()
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrIO(err)
	}
	ok := resp.StatusCode == http.StatusOK
	for _, code := range accept {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		return ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	return lib.UnmarshalJSON(bz, ptr)
}
