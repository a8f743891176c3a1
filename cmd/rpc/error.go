package rpc

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

func ErrIO(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeIO, lib.RPCModule, "io failed with err: %s", err)
}

func ErrWS(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeWS, lib.RPCModule, "websocket failed with err: %s", err)
}

func ErrRateLimited() lib.ErrorI {
	return lib.NewError(lib.CodeRateLimited, lib.RPCModule, "rate limit exceeded, slow down")
}

func ErrUnexpectedResponse(expected lib.RequestType, got lib.ResponseType) lib.ErrorI {
	return lib.NewError(lib.CodeUnexpectedResponse, lib.RPCModule, fmt.Sprintf("expected a %s response, got %s", expected, got))
}

func ErrServer(e *lib.Error) lib.ErrorI {
	return lib.WrapError(lib.CodeServerError, lib.RPCModule, "server answered with err: %s", e)
}

func ErrHttpStatus(status string, statusCode int, body []byte) lib.ErrorI {
	return lib.NewError(lib.CodeIO, lib.RPCModule, fmt.Sprintf("http response bad status %s with code %d and body %s", status, statusCode, body))
}
