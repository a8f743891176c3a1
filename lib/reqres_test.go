package lib

import (
	"testing"

	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		frame    string
		expected *Request
		error    ErrorI
	}{
		{
			name:     "tagged unit variant",
			detail:   "a discriminant only object decodes into the unit variant",
			frame:    `{"type":"ListWallets"}`,
			expected: &Request{Type: RequestListWallets},
		},
		{
			name:     "tagged struct variant",
			detail:   "fields next to the discriminant are decoded",
			frame:    `{"type":"SendTransactionFrom","from":"aa","to":"bb","amount":7}`,
			expected: &Request{Type: RequestSendTransactionFrom, From: "aa", To: "bb", Amount: 7},
		},
		{
			name:     "externally tagged unit variant",
			detail:   "a bare string names a unit variant",
			frame:    `"RetrieveBalances"`,
			expected: &Request{Type: RequestRetrieveBalances},
		},
		{
			name:     "externally tagged struct variant",
			detail:   "a single key object names a struct variant",
			frame:    `{"SendTransaction":{"to":"bb","amount":3}}`,
			expected: &Request{Type: RequestSendTransaction, To: "bb", Amount: 3},
		},
		{
			name:   "malformed json",
			detail: "a frame that isn't json is a wrong request",
			frame:  `{not json`,
			error:  ErrWrongRequest(""),
		},
		{
			name:   "unknown type",
			detail: "an unknown discriminant is a wrong request",
			frame:  `{"type":"Mint"}`,
			error:  ErrWrongRequest(""),
		},
		{
			name:   "missing field",
			detail: "retrieve balance without an address is a wrong request",
			frame:  `{"type":"RetrieveBalance"}`,
			error:  ErrWrongRequest(""),
		},
		{
			name:   "empty targets",
			detail: "distribute without targets is a wrong request",
			frame:  `{"type":"DeleteAndDistribute","from":"aa"}`,
			error:  ErrWrongRequest(""),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := DecodeRequest([]byte(test.frame))
			// validate the expected error
			if test.error != nil {
				require.ErrorIs(t, err, test.error, test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			// validate got vs expected
			require.Equal(t, test.expected, got, test.detail)
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		response *Response
		expected string
	}{
		{
			name:     "retrieve balance",
			detail:   "a zero balance is still written",
			response: &Response{Type: ResponseType(RequestRetrieveBalance), Address: "aa", Balance: 0},
			expected: `{"type":"RetrieveBalance","address":"aa","balance":0}`,
		},
		{
			name:     "retrieve balances",
			detail:   "balances are written as address/balance objects",
			response: &Response{Type: ResponseType(RequestRetrieveBalances), Balances: []Balance{{"aa", 10}, {"bb", 20}}},
			expected: `{"type":"RetrieveBalances","balances":[{"address":"aa","balance":10},{"address":"bb","balance":20}]}`,
		},
		{
			name:     "empty wallet list",
			detail:   "an empty fleet lists an empty array, not null",
			response: &Response{Type: ResponseType(RequestListWallets)},
			expected: `{"type":"ListWallets","wallets":[]}`,
		},
		{
			name:     "sync",
			detail:   "a failed sync is written as success false",
			response: &Response{Type: ResponseType(RequestSync), Success: false},
			expected: `{"type":"Sync","success":false}`,
		},
		{
			name:     "send transaction from",
			detail:   "the source and the id are written",
			response: &Response{Type: ResponseType(RequestSendTransactionFrom), From: "aa", TxID: "ff"},
			expected: `{"type":"SendTransactionFrom","from":"aa","txid":"ff"}`,
		},
		{
			name:     "error",
			detail:   "errors carry module, code and message",
			response: NewErrorResponse(ErrWrongRequest("")),
			expected: `{"type":"Error","error":{"code":1,"module":"rpc","msg":"Wrong request."}}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := EncodeResponse(test.response)
			require.NoError(t, err)
			// validate got vs expected
			opts := jsondiff.DefaultConsoleOptions()
			diff, explanation := jsondiff.Compare(got, []byte(test.expected), &opts)
			require.Equal(t, jsondiff.FullMatch, diff, "%s: %s", test.detail, explanation)
		})
	}
}

func TestDecodeErrorResponse(t *testing.T) {
	// encode an error frame
	bz, err := EncodeResponse(NewErrorResponse(NewError(CodeInsufficientBalance, WalletModule, "Insufficient balance")))
	require.NoError(t, err)
	// execute the function call
	got, err := DecodeResponse(bz)
	require.NoError(t, err)
	// validate the error survives the round trip
	require.True(t, got.IsError())
	require.ErrorIs(t, got.Error, NewError(CodeInsufficientBalance, WalletModule, ""))
	require.Equal(t, "Insufficient balance", got.Error.Msg)
}

func TestRequestIsAdmin(t *testing.T) {
	require.True(t, RequestScaleTo.IsAdmin())
	require.True(t, RequestCreateWallet.IsAdmin())
	require.False(t, RequestSync.IsAdmin())
	require.False(t, RequestSendTransaction.IsAdmin())
}
