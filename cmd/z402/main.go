package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	z402 "github.com/Blessedbiello/Z402"
	"github.com/Blessedbiello/Z402/pkg/logger"
	"github.com/Blessedbiello/Z402/pkg/transport"
)

var (
	flagAPIKey  string
	flagNetwork string
	flagBaseURL string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:          "z402",
	Short:        "Z402 CLI - test and manage micropayments",
	Long:         `Command-line client for the Z402 payment-required protocol: payment intents, transactions, budget statistics, and webhook signature fixtures.`,
	Version:      transport.Version,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("z402 %s\n", transport.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Z402 API key (defaults to Z402_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&flagNetwork, "network", "n", "", "network: testnet or mainnet (defaults to Z402_NETWORK)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "explicit API base URL override")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newClient builds a client from the environment with flag overrides
// applied on top.
func newClient(ctx context.Context) (*z402.Client, error) {
	cfg, err := z402.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagNetwork != "" {
		cfg.Network = z402.Network(flagNetwork)
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	var extra []z402.Option
	if flagDebug {
		extra = append(extra, z402.WithLogger(newLogger()))
	}
	return z402.NewFromConfig(ctx, cfg, extra...)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return logger.New(logger.WithLevel(level), logger.WithFormat(logger.FormatText))
}

// printJSON renders any value as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
