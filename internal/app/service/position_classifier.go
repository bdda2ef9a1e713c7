package service

import (
	"slices"
	"strings"
	"unicode"

	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/infrastructure/configloader"
)

// positionRule is one entry of the classifier's first-match-wins table.
// namingOnly rules are skipped for holdings whose pool interface was probed on-chain and is absent.
type positionRule struct {
	name       string
	namingOnly bool
	match      func(h entity.TokenHolding, symbol, name string) bool
	classify   func(h entity.TokenHolding, symbol, name string) entity.Classification
}

var liquidStakingSymbols = map[string]string{
	"STETH":  "Lido",
	"WSTETH": "Lido",
	"RETH":   "Rocket Pool",
	"CBETH":  "Coinbase",
	"WEETH":  "ether.fi",
	"EZETH":  "Renzo",
	"RSETH":  "Kelp DAO",
	"METH":   "Mantle",
	"OSETH":  "StakeWise",
	"SWETH":  "Swell",
}

// liquidStakingBrands only count when the name also reads as staked ether,
// so governance tokens such as LDO or RPL stay spot.
var liquidStakingBrands = []struct{ keyword, protocol string }{
	{"LIDO", "Lido"},
	{"ROCKET POOL", "Rocket Pool"},
	{"ETHER.FI", "ether.fi"},
}

var ammNamingProtocols = []struct{ marker, protocol string }{
	{"SAMMV2", "Velodrome V2"},
	{"VAMMV2", "Velodrome V2"},
	{"AMMV2", "Velodrome V2"},
	{"UNI-V2", "Uniswap V2"},
	{"CAKE-LP", "PancakeSwap"},
}

var genericLPMarkers = []string{" LP", "-LP", "LP-", " POOL", " LIQUIDITY"}

var stakingWrapperPrefixes = []string{"stk", "st", "x"}

var vaultWrapperPrefixes = []struct{ prefix, protocol string }{
	{"moo", "Beefy"},
	{"yv", "Yearn"},
}

// positionRules is evaluated top to bottom; order is part of the contract.
var positionRules = []positionRule{
	{
		name:  "lp-breakdown",
		match: func(h entity.TokenHolding, _, _ string) bool { return h.LpBreakdown != nil },
		classify: func(h entity.TokenHolding, symbol, name string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionLiquidityPool,
				Protocol: ammProtocol(symbol, name),
				PoolName: h.Name,
			}
		},
	},
	{
		name: "liquid-staking",
		match: func(_ entity.TokenHolding, symbol, name string) bool {
			return liquidStakingProtocol(symbol, name) != ""
		},
		classify: func(h entity.TokenHolding, symbol, name string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionVault,
				Protocol: liquidStakingProtocol(symbol, name),
				PoolName: h.Symbol,
			}
		},
	},
	{
		name:       "amm-naming",
		namingOnly: true,
		match: func(_ entity.TokenHolding, symbol, name string) bool {
			return ammProtocol(symbol, name) != ""
		},
		classify: func(h entity.TokenHolding, symbol, name string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionLiquidityPool,
				Protocol: ammProtocol(symbol, name),
				PoolName: h.Symbol,
			}
		},
	},
	{
		name:       "generic-lp",
		namingOnly: true,
		match: func(_ entity.TokenHolding, symbol, name string) bool {
			haystack := symbol + " " + name
			for _, marker := range genericLPMarkers {
				if strings.Contains(haystack, marker) {
					return true
				}
			}
			return false
		},
		classify: func(entity.TokenHolding, string, string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionLiquidityPool,
				Protocol: "DEX",
				PoolName: DefaultPoolLabel,
			}
		},
	},
	{
		name: "protocol-vault",
		match: func(h entity.TokenHolding, _, name string) bool {
			return vaultProtocol(h.Symbol, name) != ""
		},
		classify: func(h entity.TokenHolding, _, name string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionVault,
				Protocol: vaultProtocol(h.Symbol, name),
				PoolName: h.Symbol,
			}
		},
	},
	{
		name:  "staking-wrapper",
		match: func(h entity.TokenHolding, _, _ string) bool { return isStakingWrapper(h.Symbol) },
		classify: func(h entity.TokenHolding, _, _ string) entity.Classification {
			return entity.Classification{
				Kind:     entity.PositionStaked,
				Protocol: "Staking",
				PoolName: h.Symbol,
			}
		},
	},
}

func liquidStakingProtocol(symbol, name string) string {
	if protocol, ok := liquidStakingSymbols[symbol]; ok {
		return protocol
	}
	if !strings.Contains(name, "STAKED") && !slices.Contains(strings.Fields(name), "ETH") {
		return ""
	}
	for _, b := range liquidStakingBrands {
		if strings.Contains(name, b.keyword) {
			return b.protocol
		}
	}
	if strings.Contains(name, "STAKED ETH") {
		return "Liquid staking"
	}
	return ""
}

func ammProtocol(symbol, name string) string {
	for _, p := range ammNamingProtocols {
		if strings.Contains(symbol, p.marker) || strings.Contains(name, p.marker) {
			return p.protocol
		}
	}
	// SLP is also Smooth Love Potion; only the SushiSwap receipt carries an LP name.
	if symbol == "SLP" && (strings.Contains(name, "SUSHI") || slices.Contains(strings.Fields(name), "LP")) {
		return "SushiSwap"
	}
	return ""
}

// vaultProtocol takes the symbol in its original case: mooCurveETH and yvUSDC are vault
// receipts, MOON and YVE are not.
func vaultProtocol(symbol, name string) string {
	for _, w := range vaultWrapperPrefixes {
		if hasCasedPrefix(symbol, w.prefix) {
			return w.protocol
		}
	}
	if strings.HasPrefix(name, "MOO ") {
		return "Beefy"
	}
	if strings.Contains(name, "YVAULT") {
		return "Yearn"
	}
	return ""
}

// isStakingWrapper matches stMATIC, stkAAVE, xSUSHI.
func isStakingWrapper(symbol string) bool {
	for _, prefix := range stakingWrapperPrefixes {
		if hasCasedPrefix(symbol, prefix) {
			return true
		}
	}
	return false
}

// hasCasedPrefix reports whether symbol starts with the lowercase prefix followed by an uppercase letter.
func hasCasedPrefix(symbol, prefix string) bool {
	rest, ok := strings.CutPrefix(symbol, prefix)
	if !ok || rest == "" {
		return false
	}
	return unicode.IsUpper([]rune(rest)[0])
}

// ClassifyHolding runs the rule table over h. notAPair marks holdings whose token0()/token1()
// reads failed, which rules out the naming-only pool rules.
func ClassifyHolding(h entity.TokenHolding, notAPair bool) entity.Classification {
	symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
	name := strings.ToUpper(strings.TrimSpace(h.Name))
	for _, rule := range positionRules {
		if rule.namingOnly && notAPair {
			continue
		}
		if rule.match(h, symbol, name) {
			c := rule.classify(h, symbol, name)
			c.Rule = rule.name
			return c
		}
	}
	return entity.Classification{Spot: true, Rule: "spot"}
}

// ToVaultPosition builds the position of a classified, non-spot holding.
func ToVaultPosition(h entity.TokenHolding, c entity.Classification) entity.VaultPosition {
	return entity.VaultPosition{
		Address:      h.ContractAddress,
		Symbol:       h.Symbol,
		Kind:         c.Kind,
		Protocol:     c.Protocol,
		PoolName:     c.PoolName,
		Amount:       h.Balance,
		DepositedUSD: h.ValueUSD,
		LpBreakdown:  h.LpBreakdown,
		Icon:         h.Icon,
	}
}

// SplitHoldings classifies holdings into spot tokens and yielding positions.
// outcomes may be nil; when present it is index-aligned with holdings.
func SplitHoldings(holdings []entity.TokenHolding, outcomes []DecompositionOutcome) ([]entity.TokenHolding, []entity.VaultPosition) {
	spot := make([]entity.TokenHolding, 0, len(holdings))
	vaults := make([]entity.VaultPosition, 0)
	for i, h := range holdings {
		notAPair := i < len(outcomes) && outcomes[i] == OutcomeNotPair
		c := ClassifyHolding(h, notAPair)
		if c.Spot {
			spot = append(spot, h)
			continue
		}
		vaults = append(vaults, ToVaultPosition(h, c))
	}
	return spot, vaults
}

// MarginPosition synthesizes the margin-account position for a positive equity figure.
func MarginPosition(equityUSD float64, cfg configloader.MarginConfig) (entity.VaultPosition, bool) {
	if equityUSD <= 0 {
		return entity.VaultPosition{}, false
	}
	pos := entity.VaultPosition{
		Address:      strings.ToLower(cfg.CreatorAddress),
		Symbol:       "USD",
		Kind:         entity.PositionVault,
		Protocol:     cfg.ProtocolName,
		PoolName:     cfg.ProtocolName,
		Amount:       equityUSD,
		DepositedUSD: equityUSD,
	}
	if cfg.CreatorAddress != "" {
		creator := strings.ToLower(cfg.CreatorAddress)
		pos.Creator = &creator
	}
	return pos, true
}
