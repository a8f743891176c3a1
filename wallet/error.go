package wallet

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

// TRANSACTION ERRORS

func ErrInvalidTransactionID(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeInvalidTransactionID, lib.TransactionModule, "Invalid transaction ID: %s", err)
}

func ErrInvalidTransactionBytes(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeInvalidTransactionBytes, lib.TransactionModule, "Invalid transaction bytes: %s", err)
}

func ErrTransaction(msg string) lib.ErrorI {
	return lib.NewError(lib.CodeTransactionCustom, lib.TransactionModule, msg)
}

// WALLET ERRORS

func ErrInsufficientBalance(balance, amount uint64) lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientBalance, lib.WalletModule, fmt.Sprintf("Insufficient balance: have %d, need %d", balance, amount))
}

func ErrInvalidAddress(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeWalletInvalidAddress, lib.WalletModule, fmt.Sprintf("Invalid address: %s", reason))
}

func ErrWalletTransaction(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeWalletTransaction, lib.WalletModule, "Transaction error: %s", err)
}
