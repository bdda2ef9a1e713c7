package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/httpclient"
	"portfolio_valuator/internal/pkg/metrics"

	"go.uber.org/zap"
)

// indexerClientImpl talks to a Blockscout-style token indexer.
type indexerClientImpl struct {
	http    *httpclient.Client
	baseURL string
	logger  *zap.Logger
}

// NewIndexerClient creates a port.TokenIndexer for the indexer rooted at baseURL
// (e.g. https://eth.blockscout.com/api/v2).
func NewIndexerClient(baseURL string, timeout time.Duration, logger *zap.Logger) port.TokenIndexer {
	return &indexerClientImpl{
		http:    httpclient.New("portfolio-valuator/indexer", timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("IndexerClient"),
	}
}

// GetAddressTokens lists the ERC-20 balances of walletAddress.
func (c *indexerClientImpl) GetAddressTokens(ctx context.Context, walletAddress string) ([]entity.IndexerTokenBalance, error) {
	requestURL := fmt.Sprintf("%s/addresses/%s/tokens?type=ERC-20", c.baseURL, url.PathEscape(walletAddress))

	rawBody, err := c.http.Get(ctx, requestURL)
	if err != nil {
		metrics.ObserveCall("indexer", "address_tokens", metrics.OutcomeError)
		c.logger.Warn("Indexer token list request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}

	var balances []entity.IndexerTokenBalance
	if err := json.Unmarshal(rawBody, &balances); err != nil {
		// Paginated deployments wrap the list in {"items": [...]}.
		var page entity.IndexerTokenBalancesPage
		if errPage := json.Unmarshal(rawBody, &page); errPage != nil {
			metrics.ObserveCall("indexer", "address_tokens", metrics.OutcomeError)
			return nil, fmt.Errorf("failed to unmarshal token list from %s: %w", requestURL, err)
		}
		balances = page.Items
	}

	metrics.ObserveCall("indexer", "address_tokens", metrics.OutcomeOK)
	c.logger.Debug("Fetched wallet token list", zap.String("wallet", walletAddress), zap.Int("count", len(balances)))
	return balances, nil
}

// GetToken fetches metadata of a single token.
func (c *indexerClientImpl) GetToken(ctx context.Context, tokenAddress string) (*entity.IndexerToken, error) {
	requestURL := fmt.Sprintf("%s/tokens/%s", c.baseURL, url.PathEscape(tokenAddress))

	rawBody, err := c.http.Get(ctx, requestURL)
	if err != nil {
		metrics.ObserveCall("indexer", "token", metrics.OutcomeError)
		c.logger.Debug("Indexer token metadata request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}

	var token entity.IndexerToken
	if err := json.Unmarshal(rawBody, &token); err != nil {
		metrics.ObserveCall("indexer", "token", metrics.OutcomeError)
		return nil, fmt.Errorf("failed to unmarshal token metadata from %s: %w", requestURL, err)
	}
	if token.Address == "" {
		token.Address = tokenAddress
	}
	metrics.ObserveCall("indexer", "token", metrics.OutcomeOK)
	return &token, nil
}
