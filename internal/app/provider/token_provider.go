package provider

import (
	"context"
	"strings"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const metadataCleanupInterval = 10 * time.Minute

type tokenMetadataProviderImpl struct {
	indexer         port.TokenIndexer
	logger          port.Logger
	metadataCache   *cache.Cache // lowercase token address -> entity.TokenInfo
	defaultDecimals uint8
}

// NewTokenMetadataProvider creates a TokenMetadataProvider that memoizes indexer answers for ttl.
func NewTokenMetadataProvider(indexer port.TokenIndexer, ttl time.Duration, defaultDecimals uint8, logger port.Logger) port.TokenMetadataProvider {
	return &tokenMetadataProviderImpl{
		indexer:         indexer,
		logger:          logger,
		metadataCache:   cache.New(ttl, metadataCleanupInterval),
		defaultDecimals: defaultDecimals,
	}
}

// TokenInfo returns symbol, name, decimals and icon of tokenAddress.
// Only successful lookups are cached, so a failing indexer is retried on the next request.
func (p *tokenMetadataProviderImpl) TokenInfo(ctx context.Context, tokenAddress string) (entity.TokenInfo, bool) {
	key := strings.ToLower(tokenAddress)
	if cached, found := p.metadataCache.Get(key); found {
		return cached.(entity.TokenInfo), true
	}

	token, err := p.indexer.GetToken(ctx, key)
	if err != nil {
		p.logger.Debug("Token metadata unavailable", "tokenAddress", key, "error", err)
		return entity.TokenInfo{}, false
	}

	info := entity.TokenInfo{
		Address:  key,
		Name:     strings.TrimSpace(token.Name),
		Symbol:   strings.TrimSpace(token.Symbol),
		Decimals: utils.ParseDecimals(token.Decimals, p.defaultDecimals),
	}
	if token.IconURL != nil {
		info.Icon = *token.IconURL
	}
	p.metadataCache.SetDefault(key, info)
	return info, true
}
