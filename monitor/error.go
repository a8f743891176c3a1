package monitor

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

func ErrWalletManager(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeMonitorWalletManager, lib.MonitorModule, "Wallet manager error: %s", err)
}

func ErrNotRunning() lib.ErrorI {
	return lib.NewError(lib.CodeMonitorNotRunning, lib.MonitorModule, "Monitor is not running")
}

func ErrAlreadyRunning() lib.ErrorI {
	return lib.NewError(lib.CodeMonitorRunning, lib.MonitorModule, "Monitor is already running")
}

func ErrHealthCheckFailed(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeHealthCheckFailed, lib.MonitorModule, "Health check failed: %s", err)
}

func ErrMonitor(msg string) lib.ErrorI {
	return lib.NewError(lib.CodeMonitorCustom, lib.MonitorModule, msg)
}

func ErrLedger(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeLedger, lib.MonitorModule, "Ledger error: %s", err)
}

func ErrTransactionRejected(id, reason string) lib.ErrorI {
	return lib.NewError(lib.CodeLedgerRejected, lib.MonitorModule, fmt.Sprintf("Ledger rejected transaction %s: %s", id, reason))
}

func ErrHttpStatus(status string, statusCode int, body []byte) lib.ErrorI {
	return lib.NewError(lib.CodeLedger, lib.MonitorModule, fmt.Sprintf("http response bad status %s with code %d and body %s", status, statusCode, body))
}
