package service

import (
	"context"
	"math/big"
	"strings"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/infrastructure/configloader"
	"portfolio_valuator/internal/pkg/callcodec"
	"portfolio_valuator/internal/pkg/metrics"
	"portfolio_valuator/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// lpMarkers are matched case-insensitively against "symbol name".
var lpMarkers = []string{"AMMV2", "SAMMV2", "VAMMV2", "UNI-V2", " LP", "-LP", " LIQUIDITY", " POOL"}

// DefaultPoolLabel names a decomposed pool when nothing better is known.
const DefaultPoolLabel = "LP position"

// DecompositionOutcome tells why a holding was or was not decomposed.
type DecompositionOutcome string

const (
	OutcomeDecomposed   DecompositionOutcome = "decomposed"
	OutcomeNotLPLike    DecompositionOutcome = "not_lp_like"
	OutcomeNoBalance    DecompositionOutcome = "no_balance"
	OutcomeNotPair      DecompositionOutcome = "not_pair"
	OutcomeNoSupply     DecompositionOutcome = "no_supply"
	OutcomeNoReserves   DecompositionOutcome = "no_reserves"
	OutcomeShareInvalid DecompositionOutcome = "share_invalid"
)

// IsLPLike reports whether the holding's naming looks like a pool token.
func IsLPLike(h entity.TokenHolding) bool {
	haystack := strings.ToUpper(h.Symbol + " " + h.Name)
	for _, marker := range lpMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}

// LPDecomposer values pool-token holdings through the pool's reserves.
type LPDecomposer struct {
	reader   *ContractReader
	market   *MarketDataService
	metadata port.TokenMetadataProvider
	cfg      configloader.ValuationConfig
	logger   port.Logger
}

// NewLPDecomposer creates an LPDecomposer.
func NewLPDecomposer(
	reader *ContractReader,
	market *MarketDataService,
	metadata port.TokenMetadataProvider,
	cfg configloader.ValuationConfig,
	l port.Logger,
) *LPDecomposer {
	return &LPDecomposer{reader: reader, market: market, metadata: metadata, cfg: cfg, logger: l}
}

// Decompose returns h with its LpBreakdown, USD value, unit price and label replaced when h is
// a readable constant-product pool token. Otherwise h is returned unchanged.
func (d *LPDecomposer) Decompose(ctx context.Context, h entity.TokenHolding, book *PriceBook) (entity.TokenHolding, DecompositionOutcome) {
	if !IsLPLike(h) {
		return h, OutcomeNotLPLike
	}
	userBalance := h.RawAmount()
	if userBalance.Sign() <= 0 {
		return h, d.reject(h, OutcomeNoBalance)
	}

	pool := h.ContractAddress
	token0, ok0 := d.reader.Address(ctx, pool, callcodec.Token0).Get()
	token1, ok1 := d.reader.Address(ctx, pool, callcodec.Token1).Get()
	if !ok0 || !ok1 {
		return h, d.reject(h, OutcomeNotPair)
	}
	addr0 := strings.ToLower(token0.Hex())
	addr1 := strings.ToLower(token1.Hex())

	dec0 := d.reader.Decimals(ctx, addr0, d.cfg.DefaultDecimals, d.cfg.MinDecimals, d.cfg.MaxDecimals)
	dec1 := d.reader.Decimals(ctx, addr1, d.cfg.DefaultDecimals, d.cfg.MinDecimals, d.cfg.MaxDecimals)

	totalSupply := d.reader.Uint(ctx, pool, callcodec.TotalSupply).Or(new(big.Int))
	if totalSupply.Sign() == 0 {
		return h, d.reject(h, OutcomeNoSupply)
	}
	reserves, ok := d.reader.Reserves(ctx, pool).Get()
	if !ok {
		return h, d.reject(h, OutcomeNoReserves)
	}

	share, ok := utils.Ratio(userBalance, totalSupply)
	if !ok || share <= 0 || share > 1 {
		d.logger.Debug("Pool share out of range", "pool", pool, "share", share)
		return h, d.reject(h, OutcomeShareInvalid)
	}

	amount0 := utils.ToHuman(reserves.Reserve0, dec0) * share
	amount1 := utils.ToHuman(reserves.Reserve1, dec1) * share

	meta0, _ := d.metadata.TokenInfo(ctx, addr0)
	meta1, _ := d.metadata.TokenInfo(ctx, addr1)
	quote0 := d.market.PriceFor(ctx, book, addr0, meta0.Symbol)
	quote1 := d.market.PriceFor(ctx, book, addr1, meta1.Symbol)

	breakdown := &entity.LpBreakdown{
		Token0Address:  addr0,
		Token1Address:  addr1,
		Token0Symbol:   meta0.Symbol,
		Token1Symbol:   meta1.Symbol,
		Token0Icon:     firstNonEmpty(meta0.Icon, quote0.Icon),
		Token1Icon:     firstNonEmpty(meta1.Icon, quote1.Icon),
		Token0PriceUSD: quote0.PriceUSD,
		Token1PriceUSD: quote1.PriceUSD,
		Amount0:        amount0,
		Amount1:        amount1,
		Share:          share,
	}

	out := h
	out.LpBreakdown = breakdown
	out.ValueUSD = breakdown.ValueUSD()
	out.PriceUSD = 0
	if out.Balance > 0 {
		out.PriceUSD = out.ValueUSD / out.Balance
	}
	out.Name = PoolLabel(h.Symbol, h.Name, meta0.Symbol, meta1.Symbol)

	metrics.LPDecompositions.WithLabelValues(string(OutcomeDecomposed)).Inc()
	d.logger.Debug("LP holding decomposed",
		"pool", pool,
		"share", share,
		"amount0", amount0,
		"amount1", amount1,
		"valueUsd", out.ValueUSD)
	return out, OutcomeDecomposed
}

func (d *LPDecomposer) reject(h entity.TokenHolding, outcome DecompositionOutcome) DecompositionOutcome {
	metrics.LPDecompositions.WithLabelValues(string(outcome)).Inc()
	d.logger.Debug("LP decomposition skipped, keeping naive valuation",
		"pool", h.ContractAddress, "symbol", h.Symbol, "reason", string(outcome))
	return outcome
}

// DecomposeAll runs Decompose over holdings concurrently. The result slices are index-aligned
// with holdings.
func (d *LPDecomposer) DecomposeAll(ctx context.Context, holdings []entity.TokenHolding, book *PriceBook) ([]entity.TokenHolding, []DecompositionOutcome) {
	out := make([]entity.TokenHolding, len(holdings))
	outcomes := make([]DecompositionOutcome, len(holdings))

	var g errgroup.Group
	if d.cfg.MaxConcurrentCalls > 0 {
		g.SetLimit(d.cfg.MaxConcurrentCalls)
	}
	for i, h := range holdings {
		if !IsLPLike(h) {
			out[i], outcomes[i] = h, OutcomeNotLPLike
			continue
		}
		g.Go(func() error {
			out[i], outcomes[i] = d.Decompose(ctx, h, book)
			return nil
		})
	}
	_ = g.Wait()
	return out, outcomes
}

// PoolLabel picks the display name of a decomposed pool.
func PoolLabel(symbol, name, symbol0, symbol1 string) string {
	switch {
	case strings.Contains(symbol, "/"):
		return symbol
	case strings.Contains(name, "/"):
		return name
	case symbol0 != "" && symbol1 != "":
		return symbol0 + "/" + symbol1
	case symbol != "":
		return symbol
	case name != "":
		return name
	default:
		return DefaultPoolLabel
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
