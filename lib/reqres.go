package lib

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

/*
	This file defines the payload contract of the websocket api.
	Every frame is a json object with a "type" discriminant; the externally tagged form
	(`"ListWallets"` or `{"SendTransaction":{"to":"...","amount":1}}`) is accepted on decode as well.
*/

// RequestType is the discriminant of a Request
type RequestType string

const (
	RequestRetrieveAddress     RequestType = "RetrieveAddress"
	RequestSendTransaction     RequestType = "SendTransaction"
	RequestSendTransactionFrom RequestType = "SendTransactionFrom"
	RequestRetrieveBalance     RequestType = "RetrieveBalance"
	RequestRetrieveBalances    RequestType = "RetrieveBalances"
	RequestListWallets         RequestType = "ListWallets"
	RequestSync                RequestType = "Sync"

	// admin requests mutate the fleet shape and are disabled by default
	RequestCreateWallet        RequestType = "CreateWallet"
	RequestScaleTo             RequestType = "ScaleTo"
	RequestDeleteAndTransfer   RequestType = "DeleteAndTransfer"
	RequestDeleteAndDistribute RequestType = "DeleteAndDistribute"
)

// IsAdmin() returns true for the request types gated behind the admin flag
func (t RequestType) IsAdmin() bool {
	switch t {
	case RequestCreateWallet, RequestScaleTo, RequestDeleteAndTransfer, RequestDeleteAndDistribute:
		return true
	}
	return false
}

// Request is a single inbound frame
type Request struct {
	Type    RequestType `json:"type"`
	From    string      `json:"from,omitempty"`
	To      string      `json:"to,omitempty"`
	Address string      `json:"address,omitempty"`
	Amount  uint64      `json:"amount,omitempty"`
	Count   int         `json:"count,omitempty"`
	Targets []string    `json:"targets,omitempty"`
}

// requestFields avoids recursion into Request.UnmarshalJSON
type requestFields Request

// UnmarshalJSON() is the json.Unmarshaler implementation for Request
func (r *Request) UnmarshalJSON(bz []byte) error {
	bz = bytes.TrimSpace(bz)
	// unit variant in the externally tagged form
	if len(bz) != 0 && bz[0] == '"' {
		var name string
		if err := cdc.Unmarshal(bz, &name); err != nil {
			return err
		}
		*r = Request{Type: RequestType(name)}
		return nil
	}
	var fields map[string]jsoniter.RawMessage
	if err := cdc.Unmarshal(bz, &fields); err != nil {
		return err
	}
	if _, ok := fields["type"]; ok {
		return cdc.Unmarshal(bz, (*requestFields)(r))
	}
	// struct variant in the externally tagged form
	if len(fields) != 1 {
		return fmt.Errorf("expected a single variant key, got %d keys", len(fields))
	}
	for name, body := range fields {
		inner := requestFields{}
		if len(body) != 0 && string(body) != "null" {
			if err := cdc.Unmarshal(body, &inner); err != nil {
				return err
			}
		}
		inner.Type = RequestType(name)
		*r = Request(inner)
	}
	return nil
}

// Check() validates the presence of every field the request type requires
func (r *Request) Check() ErrorI {
	switch r.Type {
	case RequestRetrieveAddress, RequestRetrieveBalances, RequestListWallets, RequestSync, RequestCreateWallet:
		return nil
	case RequestSendTransaction:
		return requireFields(r.Type, "to", r.To)
	case RequestSendTransactionFrom, RequestDeleteAndTransfer:
		return requireFields(r.Type, "from", r.From, "to", r.To)
	case RequestRetrieveBalance:
		return requireFields(r.Type, "address", r.Address)
	case RequestScaleTo:
		if r.Count < 0 {
			return ErrWrongRequest("count must not be negative")
		}
		return nil
	case RequestDeleteAndDistribute:
		if len(r.Targets) == 0 {
			return ErrWrongRequest("targets must not be empty")
		}
		return requireFields(r.Type, "from", r.From)
	default:
		return ErrWrongRequest(fmt.Sprintf("unknown request type %q", r.Type))
	}
}

// requireFields() takes name/value pairs and fails on the first empty value
func requireFields(t RequestType, pairs ...string) ErrorI {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return ErrWrongRequest(fmt.Sprintf("%s requires field %q", t, pairs[i]))
		}
	}
	return nil
}

// DecodeRequest() parses and validates a text frame
func DecodeRequest(bz []byte) (*Request, ErrorI) {
	r := new(Request)
	if err := cdc.Unmarshal(bz, r); err != nil {
		return nil, ErrWrongRequest(err.Error())
	}
	if err := r.Check(); err != nil {
		return nil, err
	}
	return r, nil
}

// ResponseType is the discriminant of a Response
type ResponseType string

const (
	ResponseError ResponseType = "Error"
)

// Balance is an (address, balance) pair
type Balance struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// Response is a single outbound frame; Type mirrors the RequestType it answers or is "Error"
type Response struct {
	Type     ResponseType `json:"type"`
	Address  string       `json:"address,omitempty"`
	Balance  uint64       `json:"balance"`
	Balances []Balance    `json:"balances,omitempty"`
	Wallets  []string     `json:"wallets,omitempty"`
	Success  bool         `json:"success"`
	TxID     string       `json:"txid,omitempty"`
	From     string       `json:"from,omitempty"`
	Count    int          `json:"count"`
	Error    *Error       `json:"error,omitempty"`
}

// responseFields avoids recursion into Response.MarshalJSON
type responseFields Response

// MarshalJSON() writes only the fields of the variant
func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": r.Type}
	switch RequestType(r.Type) {
	case RequestRetrieveAddress, RequestCreateWallet:
		out["address"] = r.Address
	case RequestRetrieveBalance, RequestDeleteAndTransfer:
		out["address"], out["balance"] = r.Address, r.Balance
	case RequestRetrieveBalances, RequestDeleteAndDistribute:
		out["balances"] = nonNil(r.Balances)
	case RequestListWallets:
		out["wallets"] = nonNil(r.Wallets)
	case RequestSync:
		out["success"] = r.Success
	case RequestSendTransaction:
		out["txid"] = r.TxID
	case RequestSendTransactionFrom:
		out["from"], out["txid"] = r.From, r.TxID
	case RequestScaleTo:
		out["count"] = r.Count
	case RequestType(ResponseError):
		out["error"] = r.Error
	default:
		return cdc.Marshal(responseFields(r))
	}
	return cdc.Marshal(out)
}

// IsError() returns true if the response carries an error payload
func (r *Response) IsError() bool { return r.Type == ResponseError }

// NewErrorResponse() converts any error into an error frame
func NewErrorResponse(err error) *Response {
	e := AsErrorI(err)
	return &Response{Type: ResponseError, Error: NewError(e.Code(), e.Module(), Message(e))}
}

// EncodeResponse() serializes a response frame
func EncodeResponse(r *Response) ([]byte, ErrorI) { return MarshalJSON(r) }

// DecodeResponse() parses a response frame
func DecodeResponse(bz []byte) (*Response, ErrorI) {
	r := new(Response)
	if err := cdc.Unmarshal(bz, (*responseFields)(r)); err != nil {
		return nil, ErrJSONUnmarshal(err)
	}
	return r, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func ErrWrongRequest(reason string) ErrorI {
	if reason == "" {
		return NewError(CodeWrongRequest, RPCModule, "Wrong request.")
	}
	return NewError(CodeWrongRequest, RPCModule, fmt.Sprintf("Wrong request: %s", reason))
}

func ErrAdminDisabled(t RequestType) ErrorI {
	return NewError(CodeAdminDisabled, RPCModule, fmt.Sprintf("%s requires the rpc admin flag", t))
}
