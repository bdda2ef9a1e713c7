package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/infrastructure/configloader"
	"portfolio_valuator/internal/infrastructure/walletloader"
	"portfolio_valuator/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	balances  *BalanceCollector
	market    *MarketDataService
	lp        *LPDecomposer
	creators  *CreatorResolver
	margin    port.MarginEquitySource
	marginCfg configloader.MarginConfig
	logger    port.Logger
	now       func() time.Time
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
// margin may be nil when no margin protocol is configured.
func NewPortfolioService(
	bc *BalanceCollector,
	mds *MarketDataService,
	lpd *LPDecomposer,
	cr *CreatorResolver,
	margin port.MarginEquitySource,
	marginCfg configloader.MarginConfig,
	l port.Logger,
) *PortfolioServiceImpl {
	return &PortfolioServiceImpl{
		balances:  bc,
		market:    mds,
		lp:        lpd,
		creators:  cr,
		margin:    margin,
		marginCfg: marginCfg,
		logger:    l,
		now:       time.Now,
	}
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)

// GetPortfolio implements port.PortfolioService.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioSnapshot, error) {
	wallet := strings.ToLower(strings.TrimSpace(walletAddress))
	if !walletloader.IsWalletAddress(wallet) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidWallet, walletAddress)
	}

	timer := prometheus.NewTimer(metrics.SnapshotDuration)
	defer timer.ObserveDuration()
	s.logger.Debug("Building portfolio snapshot", "wallet", wallet)

	var (
		nativeBalance float64
		holdings      []entity.TokenHolding
		marginUSD     float64
		g, fetchCtx   = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		nativeBalance = s.balances.NativeBalance(fetchCtx, wallet)
		return nil
	})
	g.Go(func() error {
		holdings = s.balances.TokenHoldings(fetchCtx, wallet)
		return nil
	})
	if s.margin != nil && s.marginCfg.Enabled {
		g.Go(func() error {
			equity, err := s.margin.WalletEquityUSD(fetchCtx, wallet)
			if err != nil {
				s.logger.Debug("Margin equity unavailable", "wallet", wallet, "error", err)
				return nil
			}
			marginUSD = equity
			return nil
		})
	}
	_ = g.Wait()

	book := NewPriceBook()
	s.market.Resolve(ctx, book, s.market.PriceTargets(holdings))
	holdings = s.priceHoldings(holdings, book)

	holdings, outcomes := s.lp.DecomposeAll(ctx, holdings, book)
	spot, vaults := SplitHoldings(holdings, outcomes)
	if pos, ok := MarginPosition(marginUSD, s.marginCfg); ok {
		vaults = append(vaults, pos)
	}
	vaults = s.creators.ResolveAll(ctx, vaults)

	nativePrice, _ := book.Price(s.market.WrappedNative())

	snapshot := BuildSnapshot(wallet, nativeBalance, nativePrice, spot, vaults, s.market.IsStablecoin)
	snapshot.GeneratedAt = s.now().UTC()

	s.logger.Info("Portfolio snapshot built",
		"wallet", wallet,
		"totalValueUsd", snapshot.TotalValueUSD,
		"spotTokens", len(spot),
		"vaults", len(vaults))
	return snapshot, nil
}

// priceHoldings applies book prices to holdings, with the stablecoin fallback.
func (s *PortfolioServiceImpl) priceHoldings(holdings []entity.TokenHolding, book *PriceBook) []entity.TokenHolding {
	priced := make([]entity.TokenHolding, len(holdings))
	for i, h := range holdings {
		price, _ := book.Price(h.ContractAddress)
		q := s.market.withStableFallback(h.Symbol, port.MarketQuote{PriceUSD: price})
		h.PriceUSD = q.PriceUSD
		h.ValueUSD = h.Balance * h.PriceUSD
		if h.Icon == "" {
			h.Icon = book.Icon(h.ContractAddress)
		}
		priced[i] = h
	}
	return priced
}

// BuildSnapshot computes the totals of a snapshot from already valued parts.
func BuildSnapshot(
	wallet string,
	nativeBalance, nativePriceUSD float64,
	spot []entity.TokenHolding,
	vaults []entity.VaultPosition,
	isStablecoin func(symbol string) bool,
) *entity.PortfolioSnapshot {
	snapshot := &entity.PortfolioSnapshot{
		WalletAddress: wallet,
		Tokens:        spot,
		Vaults:        vaults,
	}
	if snapshot.Tokens == nil {
		snapshot.Tokens = []entity.TokenHolding{}
	}
	if snapshot.Vaults == nil {
		snapshot.Vaults = []entity.VaultPosition{}
	}

	snapshot.Balances.NativeBalance = nativeBalance
	snapshot.Balances.NativeUSD = nativeBalance * nativePriceUSD

	var spotUSD float64
	for _, h := range spot {
		spotUSD += h.ValueUSD
		if isStablecoin != nil && isStablecoin(h.Symbol) {
			snapshot.Balances.StablecoinsUSD += h.ValueUSD
		}
	}
	for _, v := range vaults {
		snapshot.TotalVaultDepositsUSD += v.DepositedUSD
		if v.Kind == entity.PositionLiquidityPool {
			snapshot.Balances.LegacyLpUSD += v.DepositedUSD
		}
	}

	snapshot.TotalValueUSD = snapshot.Balances.NativeUSD + spotUSD + snapshot.TotalVaultDepositsUSD
	return snapshot
}
