package main

import (
	"github.com/spf13/cobra"

	z402 "github.com/Blessedbiello/Z402"
)

var budgetStatsCmd = &cobra.Command{
	Use:   "budget-stats",
	Short: "Show budget usage statistics",
	Long:  `Shows spend against the configured daily/hourly/per-transaction limits. Requires Z402_DAILY_LIMIT to be set; with Z402_BUDGET_BACKEND=redis the ledger is shared across processes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		if client.Budget == nil {
			return z402.ErrNoBudget
		}

		stats, err := client.Budget.Statistics(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var budgetCompactCmd = &cobra.Command{
	Use:   "budget-compact",
	Short: "Drop ledger records older than the 24h window",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		if client.Budget == nil {
			return z402.ErrNoBudget
		}

		removed, err := client.Budget.Compact(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"removed": removed})
	},
}

func init() {
	rootCmd.AddCommand(budgetStatsCmd, budgetCompactCmd)
}
