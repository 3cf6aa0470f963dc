package main

import (
	"github.com/spf13/cobra"

	z402 "github.com/Blessedbiello/Z402"
)

var (
	flagAmount    string
	flagResource  string
	flagExpiresIn int
)

var createPaymentCmd = &cobra.Command{
	Use:   "create-payment",
	Short: "Create a new payment intent",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		intent, err := client.Payments.Create(cmd.Context(), z402.CreatePaymentIntentParams{
			Amount:    flagAmount,
			Resource:  flagResource,
			ExpiresIn: flagExpiresIn,
		})
		if err != nil {
			return err
		}
		return printJSON(intent)
	},
}

var getPaymentCmd = &cobra.Command{
	Use:   "get-payment <payment-id>",
	Short: "Get payment intent details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		intent, err := client.Payments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(intent)
	},
}

var verifyPaymentCmd = &cobra.Command{
	Use:   "verify-payment <payment-id>",
	Short: "Verify a payment's settlement status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		intent, err := client.Payments.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(intent)
	},
}

func init() {
	createPaymentCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "amount in ZEC")
	createPaymentCmd.Flags().StringVarP(&flagResource, "resource", "r", "", "resource URL")
	createPaymentCmd.Flags().IntVar(&flagExpiresIn, "expires-in", 0, "intent expiry in seconds (default 3600)")
	_ = createPaymentCmd.MarkFlagRequired("amount")
	_ = createPaymentCmd.MarkFlagRequired("resource")

	rootCmd.AddCommand(createPaymentCmd, getPaymentCmd, verifyPaymentCmd)
}
