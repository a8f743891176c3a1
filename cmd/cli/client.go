package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/oblivisheee/aum-engine/cmd/rpc"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "call the websocket api of a running engine",
}

var rpcURL = ""

func init() {
	clientCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "websocket url of the engine, defaults to the configured rpc url")
	clientCmd.AddCommand(addressCmd)
	clientCmd.AddCommand(sendCmd)
	clientCmd.AddCommand(sendFromCmd)
	clientCmd.AddCommand(balanceCmd)
	clientCmd.AddCommand(balancesCmd)
	clientCmd.AddCommand(listCmd)
	clientCmd.AddCommand(syncCmd)
	clientCmd.AddCommand(createCmd)
	clientCmd.AddCommand(scaleCmd)
	clientCmd.AddCommand(deleteCmd)
	clientCmd.AddCommand(distributeCmd)
}

var (
	addressCmd = &cobra.Command{
		Use:   "address",
		Short: "the fleet address that should receive funds next",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().RetrieveAddress())
		},
	}

	sendCmd = &cobra.Command{
		Use:   "send <to> <amount>",
		Short: "pay an address out of the fleet",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().SendTransaction(args[0], argToAmount(args[1])))
		},
	}

	sendFromCmd = &cobra.Command{
		Use:   "send-from <from> <to> <amount>",
		Short: "pay an address out of a specific fleet wallet",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().SendTransactionFrom(args[0], args[1], argToAmount(args[2])))
		},
	}

	balanceCmd = &cobra.Command{
		Use:   "balance <address>",
		Short: "the balance of a fleet wallet",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().RetrieveBalance(args[0]))
		},
	}

	balancesCmd = &cobra.Command{
		Use:   "balances",
		Short: "every fleet balance",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().RetrieveBalances())
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "every fleet address",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().ListWallets())
		},
	}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "run a sync pass against the ledger now",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().Sync())
		},
	}

	createCmd = &cobra.Command{
		Use:   "create",
		Short: "add a wallet to the fleet (admin)",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().CreateWallet())
		},
	}

	scaleCmd = &cobra.Command{
		Use:   "scale <count>",
		Short: "resize the fleet (admin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				l.Fatal(err.Error())
			}
			writeToConsole(connect().ScaleTo(count))
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <from> <to>",
		Short: "remove a wallet and move its balance to another (admin)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().DeleteAndTransfer(args[0], args[1]))
		},
	}

	distributeCmd = &cobra.Command{
		Use:   "distribute <from> <target>...",
		Short: "remove a wallet and split its balance across targets (admin)",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(connect().DeleteAndDistribute(args[0], args[1:]))
		},
	}
)

// connect() dials the engine, exiting on failure
func connect() *rpc.Client {
	url := rpcURL
	if url == "" {
		url = config.RPCUrl
	}
	timeout := time.Duration(config.TimeoutS) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := rpc.NewClient(ctx, url, timeout)
	if err != nil {
		l.Fatal(err.Error())
	}
	return client
}

func argToAmount(s string) uint64 {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		l.Fatal(lib.ErrWrongRequest("amount must be a positive integer").Error())
	}
	return amount
}
