package service

import (
	"context"
	"math/big"
	"strings"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/pkg/utils"
)

// BalanceCollector gathers the native balance and the indexed token list of a wallet.
type BalanceCollector struct {
	chain           port.ChainReader
	indexer         port.TokenIndexer
	logger          port.Logger
	nativeDecimals  uint8
	defaultDecimals uint8
}

// NewBalanceCollector creates a BalanceCollector.
// nativeDecimals scales the chain's native balance; defaultDecimals fills tokens the indexer
// reports without decimals.
func NewBalanceCollector(
	chain port.ChainReader,
	indexer port.TokenIndexer,
	nativeDecimals, defaultDecimals uint8,
	logger port.Logger,
) *BalanceCollector {
	return &BalanceCollector{
		chain:           chain,
		indexer:         indexer,
		logger:          logger,
		nativeDecimals:  nativeDecimals,
		defaultDecimals: defaultDecimals,
	}
}

// NativeBalance returns the wallet's native balance in whole units. Failures yield zero.
func (c *BalanceCollector) NativeBalance(ctx context.Context, walletAddress string) float64 {
	return utils.ToHuman(c.chain.NativeBalance(ctx, walletAddress), c.nativeDecimals)
}

// TokenHoldings lists the wallet's fungible balances as unpriced holdings.
// Entries with an unparsable or zero raw value are skipped; an indexer failure yields no holdings.
func (c *BalanceCollector) TokenHoldings(ctx context.Context, walletAddress string) []entity.TokenHolding {
	balances, err := c.indexer.GetAddressTokens(ctx, walletAddress)
	if err != nil {
		c.logger.Warn("Token list unavailable, continuing without token holdings", "wallet", walletAddress, "error", err)
		return []entity.TokenHolding{}
	}

	holdings := make([]entity.TokenHolding, 0, len(balances))
	for _, b := range balances {
		address := strings.ToLower(strings.TrimSpace(b.Token.Address))
		if address == "" {
			continue
		}
		raw, ok := new(big.Int).SetString(strings.TrimSpace(b.Value), 10)
		if !ok || raw.Sign() <= 0 {
			c.logger.Debug("Skipping token with empty or unparsable balance", "token", address, "value", b.Value)
			continue
		}

		decimals := utils.ParseDecimals(b.Token.Decimals, c.defaultDecimals)
		holding := entity.TokenHolding{
			ContractAddress: address,
			Symbol:          strings.TrimSpace(b.Token.Symbol),
			Name:            strings.TrimSpace(b.Token.Name),
			Decimals:        decimals,
			RawBalance:      raw.String(),
			Balance:         utils.ToHuman(raw, decimals),
		}
		if b.Token.IconURL != nil {
			holding.Icon = *b.Token.IconURL
		}
		holdings = append(holdings, holding)
	}

	c.logger.Debug("Token holdings collected", "wallet", walletAddress, "indexed", len(balances), "kept", len(holdings))
	return holdings
}
