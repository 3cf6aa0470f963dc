package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Blessedbiello/Z402/pkg/webhook"
)

var (
	flagWebhookSecret    string
	flagWebhookPayload   string
	flagWebhookSignature string
	flagWebhookTolerance time.Duration
)

var webhookSignCmd = &cobra.Command{
	Use:   "webhook-sign",
	Short: "Construct a webhook signature header for a payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		header, err := webhook.ConstructSignature(flagWebhookPayload, flagWebhookSecret)
		if err != nil {
			return err
		}
		fmt.Println(header)
		return nil
	},
}

var webhookVerifyCmd = &cobra.Command{
	Use:   "webhook-verify",
	Short: "Verify a payload against a webhook signature header",
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := webhook.Verify(flagWebhookPayload, flagWebhookSignature, flagWebhookSecret,
			webhook.WithTolerance(flagWebhookTolerance))
		if err != nil {
			return err
		}
		return printJSON(event)
	},
}

func init() {
	for _, c := range []*cobra.Command{webhookSignCmd, webhookVerifyCmd} {
		c.Flags().StringVar(&flagWebhookSecret, "secret", "", "webhook secret")
		c.Flags().StringVar(&flagWebhookPayload, "payload", "", "raw payload to sign or verify")
		_ = c.MarkFlagRequired("secret")
		_ = c.MarkFlagRequired("payload")
	}
	webhookVerifyCmd.Flags().StringVar(&flagWebhookSignature, "signature", "", "z402-signature header value")
	webhookVerifyCmd.Flags().DurationVar(&flagWebhookTolerance, "tolerance", webhook.DefaultTolerance, "maximum signature age")
	_ = webhookVerifyCmd.MarkFlagRequired("signature")

	rootCmd.AddCommand(webhookSignCmd, webhookVerifyCmd)
}
