package lib

import (
	"errors"
	"fmt"
	"math"
)

// ErrorI is the error type every module of the engine returns
type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

// Error is the concrete ErrorI; an optional cause links it to the error of the layer below
type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
	cause   error
}

// NewError() constructs a new Error instance
func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// WrapError() constructs a new Error that keeps `cause` reachable through errors.Unwrap
func WrapError(code ErrorCode, module ErrorModule, format string, cause error) *Error {
	return &Error{ECode: code, EModule: module, Msg: fmt.Sprintf(format, Message(cause)), cause: cause}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// Unwrap() exposes the wrapped cause (if any)
func (p *Error) Unwrap() error { return p.cause }

// Is() matches on module and code so errors.Is works against the constructor funcs
func (p *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.ECode == p.ECode && t.EModule == p.EModule
}

// Message() returns the human readable part of an error without the module/code framing
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

// AsErrorI() converts any error into an ErrorI, wrapping foreign errors under the main module
func AsErrorI(err error) ErrorI {
	if err == nil {
		return nil
	}
	var e ErrorI
	if errors.As(err, &e) {
		return e
	}
	return WrapError(CodeUnknown, MainModule, "%s", err)
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeUnknown             ErrorCode = 1
	CodeJSONMarshal         ErrorCode = 2
	CodeJSONUnmarshal       ErrorCode = 3
	CodeReadFile            ErrorCode = 4
	CodeWriteFile           ErrorCode = 5
	CodeUnknownConfigFormat ErrorCode = 6
	CodeInvalidArgument     ErrorCode = 7

	// Address Module
	AddressModule ErrorModule = "address"

	// Address Module Error Codes
	CodeAddressInvalidFormat     ErrorCode = 1
	CodeAddressParse             ErrorCode = 2
	CodeAddressUnsupportedFormat ErrorCode = 3
	CodeAddressInvalidPublicKey  ErrorCode = 4
	CodeAddressInvalidSecretKey  ErrorCode = 5

	// KeyPair Module
	KeyPairModule ErrorModule = "keypair"

	// KeyPair Module Error Codes
	CodeKeyPairGenerate         ErrorCode = 1
	CodeKeyPairInvalidBytes     ErrorCode = 2
	CodeKeyPairInvalidHex       ErrorCode = 3
	CodeKeyPairInvalidPublicKey ErrorCode = 4
	CodeKeyPairInvalidSecretKey ErrorCode = 5
	CodeKeyPairCustom           ErrorCode = 6

	// Hash Module
	HashModule ErrorModule = "hash"

	// Hash Module Error Codes
	CodeHashInvalidBytes ErrorCode = 1
	CodeHashInvalidHex   ErrorCode = 2
	CodeHashing          ErrorCode = 3

	// Transaction Module
	TransactionModule ErrorModule = "transaction"

	// Transaction Module Error Codes
	CodeInvalidTransactionID    ErrorCode = 1
	CodeInvalidTransactionBytes ErrorCode = 2
	CodeTransactionCustom       ErrorCode = 3

	// Wallet Module
	WalletModule ErrorModule = "wallet"

	// Wallet Module Error Codes
	CodeInsufficientBalance  ErrorCode = 1
	CodeWalletInvalidAddress ErrorCode = 2
	CodeWalletTransaction    ErrorCode = 3

	// Wallet Manager Module
	WalletManagerModule ErrorModule = "wallet_manager"

	// Wallet Manager Module Error Codes
	CodeWalletError      ErrorCode = 1
	CodeEmptyFleet       ErrorCode = 2
	CodeWalletNotFound   ErrorCode = 3
	CodeDuplicateAddress ErrorCode = 4
	CodeInvalidAmount    ErrorCode = 5
	CodeFleetStorage     ErrorCode = 6
	CodeConservation     ErrorCode = 7
	CodeInvalidTargets   ErrorCode = 8
	CodeNoSurvivors      ErrorCode = 9
	CodeBalanceOverflow  ErrorCode = 10
	CodeFleetKeyMaterial ErrorCode = 11

	// Monitor Module
	MonitorModule ErrorModule = "monitor"

	// Monitor Module Error Codes
	CodeMonitorWalletManager ErrorCode = 1
	CodeMonitorNotRunning    ErrorCode = 2
	CodeHealthCheckFailed    ErrorCode = 3
	CodeMonitorCustom        ErrorCode = 4
	CodeMonitorRunning       ErrorCode = 5
	CodeLedger               ErrorCode = 6
	CodeLedgerRejected       ErrorCode = 7

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB      ErrorCode = 1
	CodeCloseDB     ErrorCode = 2
	CodeStoreGet    ErrorCode = 3
	CodeStoreSet    ErrorCode = 4
	CodeStoreDelete ErrorCode = 5
	CodeStoreIter   ErrorCode = 6
	CodeStoreEncode ErrorCode = 7
	CodeStoreDecode ErrorCode = 8
	CodeUnknownDB   ErrorCode = 9

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeWrongRequest       ErrorCode = 1
	CodeIO                 ErrorCode = 2
	CodeWS                 ErrorCode = 3
	CodeRateLimited        ErrorCode = 4
	CodeAdminDisabled      ErrorCode = 5
	CodeUnexpectedResponse ErrorCode = 6
	CodeServerError        ErrorCode = 7
)

func ErrJSONMarshal(err error) ErrorI {
	return WrapError(CodeJSONMarshal, MainModule, "json.marshal() failed with err: %s", err)
}

func ErrJSONUnmarshal(err error) ErrorI {
	return WrapError(CodeJSONUnmarshal, MainModule, "json.unmarshal() failed with err: %s", err)
}

func ErrReadFile(err error) ErrorI {
	return WrapError(CodeReadFile, MainModule, "os.ReadFile() failed with err: %s", err)
}

func ErrWriteFile(err error) ErrorI {
	return WrapError(CodeWriteFile, MainModule, "os.WriteFile() failed with err: %s", err)
}

func ErrUnknownConfigFormat(ext string) ErrorI {
	return NewError(CodeUnknownConfigFormat, MainModule, fmt.Sprintf("unknown config file format: %q", ext))
}

func ErrInvalidArgument(msg string) ErrorI {
	return NewError(CodeInvalidArgument, MainModule, msg)
}
