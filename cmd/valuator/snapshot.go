package main

import (
	"errors"
	"fmt"

	"portfolio_valuator/internal/app/provider"
	"portfolio_valuator/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newSnapshotCommand(configPath *string) *cobra.Command {
	var (
		wallet      string
		walletsFile string
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Value one wallet (or every wallet of a file) and print the snapshots as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (wallet == "") == (walletsFile == "") {
				return errors.New("exactly one of --wallet or --wallets-file is required")
			}

			app, err := newApplication(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer app.close()

			wallets := []entity.Wallet{{Address: wallet}}
			if walletsFile != "" {
				wallets, err = provider.NewWalletProvider(walletsFile, app.appLogger).GetWallets()
				if err != nil {
					return err
				}
			}

			snapshots := make([]*entity.PortfolioSnapshot, 0, len(wallets))
			for _, w := range wallets {
				snapshot, err := app.portfolioService.GetPortfolio(cmd.Context(), w.Address)
				if err != nil {
					if walletsFile == "" {
						return err
					}
					app.zapLogger.Warn("Skipping wallet", zap.String("wallet", w.Address), zap.Error(err))
					continue
				}
				snapshots = append(snapshots, snapshot)
			}

			var payload any = snapshots
			if walletsFile == "" && len(snapshots) == 1 {
				payload = snapshots[0]
			}

			var out []byte
			if pretty {
				out, err = json.MarshalIndent(payload, "", "  ")
			} else {
				out, err = json.Marshal(payload)
			}
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "wallet address to value")
	cmd.Flags().StringVar(&walletsFile, "wallets-file", "", "file with one wallet address per line")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
