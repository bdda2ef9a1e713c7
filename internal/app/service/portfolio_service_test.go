package service

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	dex_types "portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/configloader"
	"portfolio_valuator/internal/pkg/callcodec"
	"portfolio_valuator/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMarginCreator = "0x00000000000000000000000000000000000000cc"

func newTestPortfolioService(chain *fakeChain, idx *fakeIndexer, quotes port.MarketDataSource, margin port.MarginEquitySource) *PortfolioServiceImpl {
	cfg := testValuationConfig()
	l := logger.NewNop()
	reader := NewContractReader(chain)
	market := NewMarketDataService(quotes, testWETH, cfg, l)
	marginCfg := configloader.MarginConfig{
		Enabled:        margin != nil,
		ProtocolName:   "Margin account",
		CreatorAddress: testMarginCreator,
	}
	s := NewPortfolioService(
		NewBalanceCollector(chain, idx, 18, cfg.DefaultDecimals, l),
		market,
		NewLPDecomposer(reader, market, underlyingMetadata(), cfg, l),
		NewCreatorResolver(reader, cfg.MaxConcurrentCalls, l),
		margin,
		marginCfg,
		l,
	)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestGetPortfolioNativeAndStablecoin(t *testing.T) {
	chain := newFakeChain()
	chain.balances[testWallet] = new(big.Int).Div(units(25, 18), big.NewInt(10)) // 2.5 ETH
	idx := &fakeIndexer{balances: []dex_types.IndexerTokenBalance{
		{Token: dex_types.IndexerToken{Address: testUSDC, Symbol: "USDC", Name: "USD Coin", Decimals: strPtr("6")}, Value: "100000000"},
	}}
	quotes := newFakeQuotes(map[string]port.MarketQuote{
		testWETH: {PriceUSD: 3000},
		testUSDC: {PriceUSD: 0},
	})
	s := newTestPortfolioService(chain, idx, quotes, nil)

	snap, err := s.GetPortfolio(context.Background(), "0x00000000000000000000000000000000000000BB")

	require.NoError(t, err)
	assert.Equal(t, testWallet, snap.WalletAddress)
	assert.InDelta(t, 2.5, snap.Balances.NativeBalance, 1e-12)
	assert.InDelta(t, 7500, snap.Balances.NativeUSD, 1e-9)
	require.Len(t, snap.Tokens, 1)
	assert.Equal(t, 1.0, snap.Tokens[0].PriceUSD)
	assert.InDelta(t, 100, snap.Tokens[0].ValueUSD, 1e-9)
	assert.InDelta(t, 100, snap.Balances.StablecoinsUSD, 1e-9)
	assert.InDelta(t, 7600, snap.TotalValueUSD, 1e-9)
	assert.Empty(t, snap.Vaults)
	assert.NotNil(t, snap.Vaults)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), snap.GeneratedAt)
}

func TestGetPortfolioWithPositions(t *testing.T) {
	const stETH = "0xae7ab96520de3a18e5e111b5eaab095312d7fe84"
	chain := poolChain(1000)
	chain.balances[testWallet] = units(1, 18)
	chain.setAddress(testPool, callcodec.Factory, testFactory)
	chain.setAddress(testFactory, callcodec.Owner, testOwner)
	idx := &fakeIndexer{balances: []dex_types.IndexerTokenBalance{
		{Token: dex_types.IndexerToken{Address: testUSDC, Symbol: "USDC", Name: "USD Coin", Decimals: strPtr("6")}, Value: "100000000"},
		{Token: dex_types.IndexerToken{Address: testPool, Symbol: "UNI-V2", Name: "Uniswap V2", Decimals: strPtr("18")}, Value: "50"},
		{Token: dex_types.IndexerToken{Address: stETH, Symbol: "stETH", Name: "Liquid staked Ether 2.0", Decimals: strPtr("18")}, Value: "2000000000000000000"},
	}}
	quotes := newFakeQuotes(map[string]port.MarketQuote{
		testWETH:   {PriceUSD: 3000},
		testUSDC:   {PriceUSD: 1},
		stETH:      {PriceUSD: 2990},
		testToken0: {PriceUSD: 2},
		testToken1: {PriceUSD: 1},
	})
	s := newTestPortfolioService(chain, idx, quotes, fakeMargin{equity: 500})

	snap, err := s.GetPortfolio(context.Background(), testWallet)

	require.NoError(t, err)
	require.Len(t, snap.Tokens, 1)
	assert.Equal(t, "USDC", snap.Tokens[0].Symbol)

	require.Len(t, snap.Vaults, 3)
	byProtocol := make(map[string]entity.VaultPosition)
	for _, v := range snap.Vaults {
		byProtocol[v.Protocol] = v
	}

	lp := byProtocol["Uniswap V2"]
	assert.Equal(t, entity.PositionLiquidityPool, lp.Kind)
	assert.Equal(t, "AAA/USDC", lp.PoolName)
	assert.InDelta(t, 40, lp.DepositedUSD, 1e-9)
	require.NotNil(t, lp.LpBreakdown)
	require.NotNil(t, lp.Creator)
	assert.Equal(t, testOwner, *lp.Creator)

	lido := byProtocol["Lido"]
	assert.Equal(t, entity.PositionVault, lido.Kind)
	assert.InDelta(t, 5980, lido.DepositedUSD, 1e-9)
	assert.Nil(t, lido.Creator)

	margin := byProtocol["Margin account"]
	assert.Equal(t, 500.0, margin.DepositedUSD)
	require.NotNil(t, margin.Creator)
	assert.Equal(t, testMarginCreator, *margin.Creator)

	assert.InDelta(t, 40+5980+500, snap.TotalVaultDepositsUSD, 1e-9)
	assert.InDelta(t, 40, snap.Balances.LegacyLpUSD, 1e-9)
	assert.InDelta(t, 3000+100+40+5980+500, snap.TotalValueUSD, 1e-9)
}

func TestGetPortfolioMarginFailureIsIgnored(t *testing.T) {
	chain := newFakeChain()
	s := newTestPortfolioService(chain, &fakeIndexer{}, newFakeQuotes(nil), fakeMargin{err: errors.New("engine down")})

	snap, err := s.GetPortfolio(context.Background(), testWallet)

	require.NoError(t, err)
	assert.Empty(t, snap.Vaults)
	assert.Zero(t, snap.TotalValueUSD)
}

func TestGetPortfolioInvalidWallet(t *testing.T) {
	s := newTestPortfolioService(newFakeChain(), &fakeIndexer{}, newFakeQuotes(nil), nil)
	for _, w := range []string{"", "0x123", "00000000000000000000000000000000000000bb", "0xzz000000000000000000000000000000000000bb"} {
		_, err := s.GetPortfolio(context.Background(), w)
		assert.ErrorIs(t, err, entity.ErrInvalidWallet, w)
	}
}

func TestBuildSnapshotTotalsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	stable := func(symbol string) bool { return symbol == "USDC" }
	kinds := []entity.PositionKind{entity.PositionLiquidityPool, entity.PositionVault, entity.PositionStaked, entity.PositionOther}

	for iter := 0; iter < 200; iter++ {
		spot := make([]entity.TokenHolding, rng.Intn(12))
		for i := range spot {
			balance := rng.Float64() * 1e6
			price := rng.Float64() * 5e3
			symbol := "TKN"
			if rng.Intn(3) == 0 {
				symbol = "USDC"
			}
			spot[i] = entity.TokenHolding{Symbol: symbol, Balance: balance, PriceUSD: price, ValueUSD: balance * price}
		}
		vaults := make([]entity.VaultPosition, rng.Intn(6))
		for i := range vaults {
			vaults[i] = entity.VaultPosition{Kind: kinds[rng.Intn(len(kinds))], DepositedUSD: rng.Float64() * 1e5}
		}
		nativeBalance := rng.Float64() * 100
		nativePrice := rng.Float64() * 4e3

		snap := BuildSnapshot(testWallet, nativeBalance, nativePrice, spot, vaults, stable)

		var spotSum, vaultSum, stableSum, lpSum float64
		for _, h := range spot {
			spotSum += h.ValueUSD
			if h.Symbol == "USDC" {
				stableSum += h.ValueUSD
			}
		}
		for _, v := range vaults {
			vaultSum += v.DepositedUSD
			if v.Kind == entity.PositionLiquidityPool {
				lpSum += v.DepositedUSD
			}
		}
		nativeUSD := nativeBalance * nativePrice

		assert.Equal(t, nativeUSD+spotSum+vaultSum, snap.TotalValueUSD)
		assert.Equal(t, vaultSum, snap.TotalVaultDepositsUSD)
		assert.Equal(t, stableSum, snap.Balances.StablecoinsUSD)
		assert.Equal(t, lpSum, snap.Balances.LegacyLpUSD)
		assert.Zero(t, snap.UnclaimedYieldUSD)
	}
}
