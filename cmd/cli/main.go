package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "rentledger-cli",
		Short:         "RentLedger CLI tool",
		Long:          `A command line interface for operating the RentLedger wallet service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the RentLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("RENTLEDGER_TOKEN"), "Bearer token (defaults to $RENTLEDGER_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newLedgerCmd(opts),
		newAdminCmd(opts),
		newMigrateCmd(),
		newTokenCmd(),
	)

	return rootCmd
}
