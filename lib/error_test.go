package lib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	// define the layers
	leaf := NewError(CodeInsufficientBalance, WalletModule, "Insufficient balance")
	middle := WrapError(CodeWalletError, WalletManagerModule, "Wallet error while scale: %s", leaf)
	top := WrapError(CodeMonitorWalletManager, MonitorModule, "Wallet manager error: %s", middle)
	// validate every layer stays reachable
	require.ErrorIs(t, top, leaf)
	require.ErrorIs(t, top, middle)
	require.ErrorIs(t, top, NewError(CodeInsufficientBalance, WalletModule, "any message"))
	require.NotErrorIs(t, top, NewError(CodeInsufficientBalance, MonitorModule, ""))
	// validate the messages compose
	require.Equal(t, "Wallet manager error: Wallet error while scale: Insufficient balance", Message(top))
	// validate errors.As finds the leaf
	var e *Error
	require.True(t, errors.As(errors.Unwrap(errors.Unwrap(top)), &e))
	require.Equal(t, CodeInsufficientBalance, e.Code())
}

func TestAsErrorI(t *testing.T) {
	// nil stays nil
	require.Nil(t, AsErrorI(nil))
	// an ErrorI is returned as is
	e := ErrInvalidArgument("bad")
	require.Equal(t, e, AsErrorI(e))
	// a foreign error is wrapped in the main module
	got := AsErrorI(errors.New("boom"))
	require.Equal(t, MainModule, got.Module())
	require.Equal(t, CodeUnknown, got.Code())
	require.Equal(t, "boom", Message(got))
}
