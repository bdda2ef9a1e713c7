package service

import (
	"context"
	"strconv"
	"strings"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/client"
	"portfolio_valuator/internal/domain/entity"
	dex_types "portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// dexScreenerQuoteSource implements port.MarketDataSource on top of DEX Screener.
type dexScreenerQuoteSource struct {
	dexscreenerClient client.DEXScreenerClient
	logger            port.Logger
}

// NewDEXScreenerQuoteSource creates a MarketDataSource backed by dsc.
func NewDEXScreenerQuoteSource(dsc client.DEXScreenerClient, l port.Logger) port.MarketDataSource {
	return &dexScreenerQuoteSource{dexscreenerClient: dsc, logger: l}
}

// Quote implements port.MarketDataSource.
func (s *dexScreenerQuoteSource) Quote(ctx context.Context, tokenAddress string) (port.MarketQuote, bool) {
	pairs, err := s.dexscreenerClient.GetTokenPairs(ctx, tokenAddress)
	if err != nil {
		s.logger.Warn("Failed to get token pairs from DEXScreener", "tokenAddress", tokenAddress, "error", err)
		return port.MarketQuote{}, false
	}
	q, ok := QuoteFromPairs(pairs, tokenAddress)
	if !ok {
		s.logger.Debug("No pairs returned from DEXScreener for token address", "tokenAddress", tokenAddress)
	}
	return q, ok
}

// QuoteFromPairs takes the price of the first listed pair whose base token is
// tokenAddress (the first pair when none is) and the icon of the first pair carrying one.
func QuoteFromPairs(pairs []dex_types.PairData, tokenAddress string) (port.MarketQuote, bool) {
	if len(pairs) == 0 {
		return port.MarketQuote{}, false
	}

	pricePair := &pairs[0]
	for i := range pairs {
		if strings.EqualFold(pairs[i].BaseToken.Address, tokenAddress) {
			pricePair = &pairs[i]
			break
		}
	}

	var q port.MarketQuote
	if price, err := strconv.ParseFloat(strings.TrimSpace(pricePair.PriceUsd), 64); err == nil && price > 0 {
		q.PriceUSD = price
	}
	for i := range pairs {
		if pairs[i].Info != nil && pairs[i].Info.ImageURL != "" {
			q.Icon = pairs[i].Info.ImageURL
			break
		}
	}
	return q, true
}

// PriceTarget is an address to price, with the symbol used for the stablecoin fallback.
type PriceTarget struct {
	Address string
	Symbol  string
}

// MarketDataService resolves USD prices and icons into a PriceBook.
type MarketDataService struct {
	source        port.MarketDataSource
	wrappedNative string
	cfg           configloader.ValuationConfig
	stablecoins   map[string]struct{}
	logger        port.Logger
}

// NewMarketDataService creates a MarketDataService. wrappedNative is priced ahead of every
// other address since the native balance is valued through it.
func NewMarketDataService(
	source port.MarketDataSource,
	wrappedNative string,
	cfg configloader.ValuationConfig,
	l port.Logger,
) *MarketDataService {
	stables := make(map[string]struct{}, len(cfg.StablecoinSymbols))
	for _, sym := range cfg.StablecoinSymbols {
		stables[strings.ToUpper(strings.TrimSpace(sym))] = struct{}{}
	}
	return &MarketDataService{
		source:        source,
		wrappedNative: strings.ToLower(wrappedNative),
		cfg:           cfg,
		stablecoins:   stables,
		logger:        l,
	}
}

// IsStablecoin reports whether symbol is one of the configured fiat-pegged tokens.
func (s *MarketDataService) IsStablecoin(symbol string) bool {
	_, ok := s.stablecoins[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}

// WrappedNative returns the lowercase wrapped-native token address.
func (s *MarketDataService) WrappedNative() string {
	return s.wrappedNative
}

func (s *MarketDataService) withStableFallback(symbol string, q port.MarketQuote) port.MarketQuote {
	if q.PriceUSD <= 0 && s.IsStablecoin(symbol) {
		q.PriceUSD = s.cfg.StablecoinFallbackPrice
	}
	return q
}

// PriceFor returns the quote of address from book, fetching and recording it when absent.
func (s *MarketDataService) PriceFor(ctx context.Context, book *PriceBook, address, symbol string) port.MarketQuote {
	q := book.Lookup(address, func() port.MarketQuote {
		fetched, _ := s.source.Quote(ctx, strings.ToLower(address))
		return s.withStableFallback(symbol, fetched)
	})
	return s.withStableFallback(symbol, q)
}

// PriceTargets turns holdings into distinct, capped price targets led by the wrapped-native token.
func (s *MarketDataService) PriceTargets(holdings []entity.TokenHolding) []PriceTarget {
	limit := s.cfg.MaxPricedTokens
	targets := make([]PriceTarget, 0, limit)
	seen := make(map[string]struct{})

	add := func(address, symbol string) {
		key := strings.ToLower(strings.TrimSpace(address))
		if key == "" || key == entity.NativeTokenAddress || !common.IsHexAddress(key) {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		if limit > 0 && len(targets) >= limit {
			return
		}
		seen[key] = struct{}{}
		targets = append(targets, PriceTarget{Address: key, Symbol: symbol})
	}

	add(s.wrappedNative, "")
	for _, h := range holdings {
		add(h.ContractAddress, h.Symbol)
	}
	return targets
}

// Resolve prices targets concurrently into book.
func (s *MarketDataService) Resolve(ctx context.Context, book *PriceBook, targets []PriceTarget) {
	var g errgroup.Group
	if s.cfg.MaxConcurrentCalls > 0 {
		g.SetLimit(s.cfg.MaxConcurrentCalls)
	}
	for _, t := range targets {
		g.Go(func() error {
			s.PriceFor(ctx, book, t.Address, t.Symbol)
			return nil
		})
	}
	_ = g.Wait()
	s.logger.Debug("Market data resolved", "requested", len(targets), "priced", book.Len())
}
