package main

import (
	"github.com/spf13/cobra"

	z402 "github.com/Blessedbiello/Z402"
)

var (
	flagTxLimit    int
	flagTxOffset   int
	flagTxStatus   string
	flagTxDateFrom string
	flagTxDateTo   string
	flagTxResource string
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		resp, err := client.Transactions.List(cmd.Context(), z402.ListTransactionsParams{
			Limit:    flagTxLimit,
			Offset:   flagTxOffset,
			Status:   z402.TransactionStatus(flagTxStatus),
			DateFrom: flagTxDateFrom,
			DateTo:   flagTxDateTo,
			Resource: flagTxResource,
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var getTransactionCmd = &cobra.Command{
	Use:   "get-transaction <transaction-id>",
	Short: "Get transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		tx, err := client.Transactions.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(tx)
	},
}

func init() {
	transactionsCmd.Flags().IntVar(&flagTxLimit, "limit", 100, "maximum transactions to return")
	transactionsCmd.Flags().IntVar(&flagTxOffset, "offset", 0, "pagination offset")
	transactionsCmd.Flags().StringVar(&flagTxStatus, "status", "", "filter by status (pending/settled/failed/refunded)")
	transactionsCmd.Flags().StringVar(&flagTxDateFrom, "from", "", "filter from date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&flagTxDateTo, "to", "", "filter to date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&flagTxResource, "resource", "", "filter by resource URL")

	rootCmd.AddCommand(transactionsCmd, getTransactionCmd)
}
