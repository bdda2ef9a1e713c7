package service

import (
	"context"
	"math/big"
	"testing"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/pkg/callcodec"
	"portfolio_valuator/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLPLike(t *testing.T) {
	tests := []struct {
		symbol, name string
		want         bool
	}{
		{"UNI-V2", "Uniswap V2", true},
		{"vAMMV2-USDC/WETH", "VolatileV2 AMM", true},
		{"sAMMV2-USDC/DAI", "StableV2 AMM", true},
		{"BPT", "Balancer Weighted Pool", true},
		{"CRV", "Curve DAO Token", false},
		{"G-UNI", "Gelato Uniswap Liquidity", true},
		{"CAKE-LP", "Pancake LPs", true},
		{"USDC", "USD Coin", false},
		{"WETH", "Wrapped Ether", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLPLike(entity.TokenHolding{Symbol: tt.symbol, Name: tt.name}))
		})
	}
}

func TestDecomposeCanonicalPool(t *testing.T) {
	quotes := newFakeQuotes(map[string]port.MarketQuote{
		testToken0: {PriceUSD: 2, Icon: "https://dex/aaa.png"},
		testToken1: {PriceUSD: 1, Icon: "https://dex/usdc.png"},
	})
	d := newTestDecomposer(poolChain(1000), quotes, underlyingMetadata())
	in := lpHolding(50)

	out, outcome := d.Decompose(context.Background(), in, NewPriceBook())

	require.Equal(t, OutcomeDecomposed, outcome)
	require.NotNil(t, out.LpBreakdown)
	b := out.LpBreakdown
	assert.InDelta(t, 0.05, b.Share, 1e-12)
	assert.InDelta(t, 10, b.Amount0, 1e-9)
	assert.InDelta(t, 20, b.Amount1, 1e-9)
	assert.InDelta(t, 40, out.ValueUSD, 1e-9)
	assert.InDelta(t, b.Amount0*b.Token0PriceUSD+b.Amount1*b.Token1PriceUSD, out.ValueUSD, 1e-12)
	assert.Equal(t, "AAA/USDC", out.Name)
	assert.Equal(t, "AAA", b.Token0Symbol)
	assert.Equal(t, "https://icons/aaa.png", b.Token0Icon, "indexer icon wins")
	assert.Equal(t, "https://dex/usdc.png", b.Token1Icon, "falls back to market icon")
	assert.InDelta(t, out.ValueUSD/out.Balance, out.PriceUSD, 1e-3)

	// amount_i == reserve_i / 10^decimals_i * userBalance / totalSupply
	share, ok := utils.Ratio(big.NewInt(50), big.NewInt(1000))
	require.True(t, ok)
	assert.InDelta(t, utils.ToHuman(units(200, 18), 18)*share, b.Amount0, 1e-12)
	assert.InDelta(t, utils.ToHuman(units(400, 6), 6)*share, b.Amount1, 1e-12)

	assert.Nil(t, in.LpBreakdown, "input holding must not be mutated")
	assert.Equal(t, "Uniswap V2", in.Name)
}

func TestDecomposeStablecoinFallbackForUnderlying(t *testing.T) {
	quotes := newFakeQuotes(map[string]port.MarketQuote{
		testToken0: {PriceUSD: 2},
	})
	d := newTestDecomposer(poolChain(1000), quotes, underlyingMetadata())

	out, outcome := d.Decompose(context.Background(), lpHolding(50), NewPriceBook())

	require.Equal(t, OutcomeDecomposed, outcome)
	assert.Equal(t, 1.0, out.LpBreakdown.Token1PriceUSD)
	assert.InDelta(t, 40, out.ValueUSD, 1e-9)
}

func TestDecomposeKeepsHoldingOnRejection(t *testing.T) {
	tests := []struct {
		name    string
		chain   func() *fakeChain
		raw     int64
		outcome DecompositionOutcome
	}{
		{
			name: "token0 unavailable",
			chain: func() *fakeChain {
				c := poolChain(1000)
				delete(c.calls, c.key(testPool, callcodec.Token0.CallData()))
				return c
			},
			raw:     50,
			outcome: OutcomeNotPair,
		},
		{
			name:    "zero total supply",
			chain:   func() *fakeChain { return poolChain(0) },
			raw:     50,
			outcome: OutcomeNoSupply,
		},
		{
			name: "reserves unavailable",
			chain: func() *fakeChain {
				c := poolChain(1000)
				c.set(testPool, callcodec.GetReserves, "0x1234")
				return c
			},
			raw:     50,
			outcome: OutcomeNoReserves,
		},
		{
			name:    "share above one",
			chain:   func() *fakeChain { return poolChain(1000) },
			raw:     2000,
			outcome: OutcomeShareInvalid,
		},
		{
			name:    "zero balance",
			chain:   func() *fakeChain { return poolChain(1000) },
			raw:     0,
			outcome: OutcomeNoBalance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := newFakeQuotes(map[string]port.MarketQuote{testToken0: {PriceUSD: 2}, testToken1: {PriceUSD: 1}})
			d := newTestDecomposer(tt.chain(), quotes, underlyingMetadata())
			in := lpHolding(tt.raw)
			in.PriceUSD = 3
			in.ValueUSD = in.Balance * in.PriceUSD

			out, outcome := d.Decompose(context.Background(), in, NewPriceBook())

			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, in, out)
			assert.Nil(t, out.LpBreakdown)
		})
	}
}

func TestDecomposeToken0FailureStaysSpot(t *testing.T) {
	chain := poolChain(1000)
	delete(chain.calls, chain.key(testPool, callcodec.Token0.CallData()))
	d := newTestDecomposer(chain, newFakeQuotes(nil), underlyingMetadata())
	in := lpHolding(50)
	in.PriceUSD = 4
	in.ValueUSD = in.Balance * in.PriceUSD

	holdings, outcomes := d.DecomposeAll(context.Background(), []entity.TokenHolding{in}, NewPriceBook())
	spot, vaults := SplitHoldings(holdings, outcomes)

	require.Len(t, spot, 1)
	assert.Empty(t, vaults)
	assert.Nil(t, spot[0].LpBreakdown)
	assert.Equal(t, in.Balance*in.PriceUSD, spot[0].ValueUSD)
}

func TestDecomposeOutOfRangeDecimalsDefault(t *testing.T) {
	chain := poolChain(1000)
	chain.setUint(testToken1, callcodec.Decimals, big.NewInt(77))
	quotes := newFakeQuotes(map[string]port.MarketQuote{testToken0: {PriceUSD: 2}, testToken1: {PriceUSD: 1}})
	d := newTestDecomposer(chain, quotes, underlyingMetadata())

	out, outcome := d.Decompose(context.Background(), lpHolding(50), NewPriceBook())

	require.Equal(t, OutcomeDecomposed, outcome)
	// 400e6 read with the default 18 decimals.
	assert.InDelta(t, 400e6/1e18*0.05, out.LpBreakdown.Amount1, 1e-20)
}

func TestDecomposeAllSharesUnderlyingPrices(t *testing.T) {
	const secondPool = "0x0000000000000000000000000000000000000a02"
	chain := poolChain(1000)
	chain.setAddress(secondPool, callcodec.Token0, testToken0)
	chain.setAddress(secondPool, callcodec.Token1, testToken1)
	chain.setUint(secondPool, callcodec.TotalSupply, big.NewInt(500))
	chain.setReserves(secondPool, units(50, 18), units(100, 6))

	quotes := newFakeQuotes(map[string]port.MarketQuote{testToken0: {PriceUSD: 2}, testToken1: {PriceUSD: 1}})
	d := newTestDecomposer(chain, quotes, underlyingMetadata())
	second := lpHolding(100)
	second.ContractAddress = secondPool
	plain := entity.TokenHolding{ContractAddress: testWETH, Symbol: "WETH", Name: "Wrapped Ether", RawBalance: "1", Decimals: 18}

	book := NewPriceBook()
	out, outcomes := d.DecomposeAll(context.Background(), []entity.TokenHolding{lpHolding(50), plain, second}, book)

	require.Len(t, out, 3)
	assert.Equal(t, []DecompositionOutcome{OutcomeDecomposed, OutcomeNotLPLike, OutcomeDecomposed}, outcomes)
	assert.InDelta(t, 40, out[0].ValueUSD, 1e-9)
	assert.Equal(t, plain, out[1])
	// share 0.2 of 50 AAA and 100 USDC
	assert.InDelta(t, 0.2*50*2+0.2*100*1, out[2].ValueUSD, 1e-9)

	assert.Equal(t, 1, quotes.callCount(testToken0))
	assert.Equal(t, 1, quotes.callCount(testToken1))
	p, ok := book.Price(testToken0)
	require.True(t, ok)
	assert.Equal(t, 2.0, p)
}

func TestPoolLabel(t *testing.T) {
	tests := []struct {
		symbol, name, sym0, sym1 string
		want                     string
	}{
		{"vAMMV2-USDC/WETH", "VolatileV2 AMM - USDC/WETH", "USDC", "WETH", "vAMMV2-USDC/WETH"},
		{"UNI-V2", "Uniswap V2 WETH/DAI", "WETH", "DAI", "Uniswap V2 WETH/DAI"},
		{"UNI-V2", "Uniswap V2", "WETH", "DAI", "WETH/DAI"},
		{"UNI-V2", "Uniswap V2", "WETH", "", "UNI-V2"},
		{"", "Some Pool", "", "", "Some Pool"},
		{"", "", "", "", DefaultPoolLabel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PoolLabel(tt.symbol, tt.name, tt.sym0, tt.sym1))
	}
}
