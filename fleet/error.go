package fleet

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

func ErrWalletError(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeWalletError, lib.WalletManagerModule, "Wallet error: %s", err)
}

func ErrEmptyFleet() lib.ErrorI {
	return lib.NewError(lib.CodeEmptyFleet, lib.WalletManagerModule, "The fleet has no wallets")
}

func ErrWalletNotFound(address string) lib.ErrorI {
	return lib.NewError(lib.CodeWalletNotFound, lib.WalletManagerModule, fmt.Sprintf("Wallet %s is not a member of the fleet", address))
}

func ErrDuplicateAddress(address string) lib.ErrorI {
	return lib.NewError(lib.CodeDuplicateAddress, lib.WalletManagerModule, fmt.Sprintf("Wallet %s already exists", address))
}

func ErrInvalidAmount(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAmount, lib.WalletManagerModule, fmt.Sprintf("Invalid amount: %s", reason))
}

func ErrFleetStorage(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeFleetStorage, lib.WalletManagerModule, "Storage error: %s", err)
}

func ErrConservation(before, after string) lib.ErrorI {
	return lib.NewError(lib.CodeConservation, lib.WalletManagerModule, fmt.Sprintf("Fund conservation violated: total %s became %s", before, after))
}

func ErrInvalidTargets(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidTargets, lib.WalletManagerModule, fmt.Sprintf("Invalid targets: %s", reason))
}

func ErrNoSurvivors(total string) lib.ErrorI {
	return lib.NewError(lib.CodeNoSurvivors, lib.WalletManagerModule, fmt.Sprintf("Cannot remove every wallet while the fleet holds %s", total))
}

func ErrBalanceOverflow(address string) lib.ErrorI {
	return lib.NewError(lib.CodeBalanceOverflow, lib.WalletManagerModule, fmt.Sprintf("Crediting %s would overflow its balance", address))
}

func ErrFleetKeyMaterial(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeFleetKeyMaterial, lib.WalletManagerModule, "Key material error: %s", err)
}
