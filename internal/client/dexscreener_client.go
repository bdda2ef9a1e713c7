package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/httpclient"
	"portfolio_valuator/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	http    *httpclient.Client
	baseURL string
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger) DEXScreenerClient {
	return &dexScreenerClientImpl{
		http:    httpclient.New("portfolio-valuator/dexscreener", timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("DEXScreenerClient"),
	}
}

// GetTokenPairs returns the trading pairs DEX Screener lists for tokenAddress, in the
// order the API returns them.
func (c *dexScreenerClientImpl) GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("tokenAddress cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/tokens/%s", c.baseURL, url.PathEscape(tokenAddress))
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	rawBody, err := c.http.Get(ctx, requestURL)
	if err != nil {
		metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeError)
		c.logger.Warn("DEX Screener request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}

	// The API answers either {"pairs":[...]} or a bare array depending on the endpoint version.
	var dextpWrapper entity.DEXTokenPair
	if err := json.Unmarshal(rawBody, &dextpWrapper); err == nil {
		if len(dextpWrapper.Pairs) == 0 {
			metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeEmpty)
			c.logger.Debug("DEX Screener returned no pairs", zap.String("tokenAddress", tokenAddress))
			return nil, nil
		}
		metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeOK)
		return dextpWrapper.Pairs, nil
	}

	var directPairs []entity.PairData
	if err := json.Unmarshal(rawBody, &directPairs); err != nil {
		metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeError)
		c.logger.Warn("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	if len(directPairs) == 0 {
		metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeEmpty)
	} else {
		metrics.ObserveCall("dexscreener", "tokens", metrics.OutcomeOK)
	}
	return directPairs, nil
}
