package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "valuator",
		Short: "On-chain portfolio valuation engine",
		Long: `valuator values a wallet on an EVM chain: native balance, fungible tokens,
liquidity-pool shares decomposed through on-chain reserves, and yielding positions.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (defaults to $CONFIG_PATH or config/config.yml)")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newSnapshotCommand(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "valuator: %v\n", err)
		os.Exit(1)
	}
}
