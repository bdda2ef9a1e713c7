package port

import (
	"context"

	"portfolio_valuator/internal/domain/entity"
	dex_types "portfolio_valuator/internal/entity"
)

// TokenIndexer reads wallet token lists and token metadata from the indexer.
type TokenIndexer interface {
	GetAddressTokens(ctx context.Context, walletAddress string) ([]dex_types.IndexerTokenBalance, error)
	GetToken(ctx context.Context, tokenAddress string) (*dex_types.IndexerToken, error)
}

// TokenMetadataProvider resolves display metadata (symbol, name, icon) of a token.
type TokenMetadataProvider interface {
	TokenInfo(ctx context.Context, tokenAddress string) (entity.TokenInfo, bool)
}

// MarketQuote is the USD price and icon of one token as seen by the market aggregator.
type MarketQuote struct {
	PriceUSD float64
	Icon     string
}

// MarketDataSource fetches a single token's market quote.
type MarketDataSource interface {
	Quote(ctx context.Context, tokenAddress string) (MarketQuote, bool)
}

// MarginEquitySource looks up a wallet's margin-account equity in USD.
type MarginEquitySource interface {
	WalletEquityUSD(ctx context.Context, walletAddress string) (float64, error)
}
