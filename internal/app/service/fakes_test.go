package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	dex_types "portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/configloader"
	"portfolio_valuator/internal/pkg/callcodec"
	"portfolio_valuator/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

const (
	testWallet  = "0x00000000000000000000000000000000000000bb"
	testWETH    = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	testUSDC    = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	testPool    = "0x0000000000000000000000000000000000000a01"
	testToken0  = "0x0000000000000000000000000000000000000b01"
	testToken1  = "0x0000000000000000000000000000000000000b02"
	testFactory = "0x0000000000000000000000000000000000000f01"
	testOwner   = "0x0000000000000000000000000000000000000e01"
)

// fakeChain answers eth_call from a fixed table keyed by contract and payload.
type fakeChain struct {
	calls    map[string]string
	balances map[string]*big.Int
}

func newFakeChain() *fakeChain {
	return &fakeChain{calls: make(map[string]string), balances: make(map[string]*big.Int)}
}

func (c *fakeChain) key(to, data string) string {
	return strings.ToLower(to) + "|" + data
}

func (c *fakeChain) set(to string, m callcodec.Method, result string) {
	c.calls[c.key(to, m.CallData())] = result
}

func (c *fakeChain) setUint(to string, m callcodec.Method, v *big.Int) {
	c.set(to, m, callcodec.EncodeUint(v))
}

func (c *fakeChain) setAddress(to string, m callcodec.Method, addr string) {
	c.set(to, m, callcodec.EncodeAddress(common.HexToAddress(addr)))
}

func (c *fakeChain) setReserves(pair string, r0, r1 *big.Int) {
	c.set(pair, callcodec.GetReserves, callcodec.EncodeUint(r0)+strings.TrimPrefix(callcodec.EncodeUint(r1), "0x"))
}

func (c *fakeChain) Call(_ context.Context, to string, data string) string {
	return c.calls[c.key(to, data)]
}

func (c *fakeChain) NativeBalance(_ context.Context, address string) *big.Int {
	if b, ok := c.balances[strings.ToLower(address)]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// fakeIndexer serves a fixed token list and token metadata.
type fakeIndexer struct {
	balances []dex_types.IndexerTokenBalance
	tokens   map[string]dex_types.IndexerToken
	err      error
}

func (i *fakeIndexer) GetAddressTokens(context.Context, string) ([]dex_types.IndexerTokenBalance, error) {
	if i.err != nil {
		return nil, i.err
	}
	return i.balances, nil
}

func (i *fakeIndexer) GetToken(_ context.Context, addr string) (*dex_types.IndexerToken, error) {
	t, ok := i.tokens[strings.ToLower(addr)]
	if !ok {
		return nil, errors.New("token not indexed")
	}
	return &t, nil
}

// fakeMetadata serves TokenInfo from a map.
type fakeMetadata map[string]entity.TokenInfo

func (m fakeMetadata) TokenInfo(_ context.Context, addr string) (entity.TokenInfo, bool) {
	info, ok := m[strings.ToLower(addr)]
	return info, ok
}

// fakeQuotes is a MarketDataSource counting fetches per address.
type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]port.MarketQuote
	calls  map[string]int
}

func newFakeQuotes(quotes map[string]port.MarketQuote) *fakeQuotes {
	return &fakeQuotes{quotes: quotes, calls: make(map[string]int)}
}

func (q *fakeQuotes) Quote(_ context.Context, addr string) (port.MarketQuote, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls[addr]++
	quote, ok := q.quotes[addr]
	return quote, ok
}

func (q *fakeQuotes) callCount(addr string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[addr]
}

// fakeMargin returns a fixed equity.
type fakeMargin struct {
	equity float64
	err    error
}

func (m fakeMargin) WalletEquityUSD(context.Context, string) (float64, error) {
	return m.equity, m.err
}

func testValuationConfig() configloader.ValuationConfig {
	return configloader.ValuationConfig{
		MaxPricedTokens:         20,
		MaxConcurrentCalls:      4,
		StablecoinSymbols:       []string{"USDC", "USDT", "DAI", "GHO", "FRAX", "SUSD"},
		StablecoinFallbackPrice: 1,
		DefaultDecimals:         18,
		MinDecimals:             0,
		MaxDecimals:             36,
	}
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func units(v, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), pow10(decimals))
}

func strPtr(s string) *string { return &s }

// poolChain wires a 200e18/400e6 pool with the given total supply.
func poolChain(totalSupply int64) *fakeChain {
	chain := newFakeChain()
	chain.setAddress(testPool, callcodec.Token0, testToken0)
	chain.setAddress(testPool, callcodec.Token1, testToken1)
	chain.setUint(testToken0, callcodec.Decimals, big.NewInt(18))
	chain.setUint(testToken1, callcodec.Decimals, big.NewInt(6))
	chain.setUint(testPool, callcodec.TotalSupply, big.NewInt(totalSupply))
	chain.setReserves(testPool, units(200, 18), units(400, 6))
	return chain
}

func underlyingMetadata() fakeMetadata {
	return fakeMetadata{
		testToken0: {Address: testToken0, Symbol: "AAA", Name: "Token A", Decimals: 18, Icon: "https://icons/aaa.png"},
		testToken1: {Address: testToken1, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	}
}

func newTestDecomposer(chain port.ChainReader, quotes port.MarketDataSource, meta port.TokenMetadataProvider) *LPDecomposer {
	cfg := testValuationConfig()
	market := NewMarketDataService(quotes, testWETH, cfg, logger.NewNop())
	return NewLPDecomposer(NewContractReader(chain), market, meta, cfg, logger.NewNop())
}

func lpHolding(raw int64) entity.TokenHolding {
	return entity.TokenHolding{
		ContractAddress: testPool,
		Symbol:          "UNI-V2",
		Name:            "Uniswap V2",
		Decimals:        18,
		RawBalance:      big.NewInt(raw).String(),
		Balance:         float64(raw) / 1e18,
	}
}
