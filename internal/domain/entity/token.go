package entity

import (
	"math/big"
	"strings"
)

// NativeTokenAddress is the sentinel contract address used for the chain's native asset.
const NativeTokenAddress = "native"

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TokenInfo holds the static metadata of a fungible token as reported by the indexer.
type TokenInfo struct {
	Address  string
	Name     string
	Symbol   string
	Decimals uint8
	Icon     string
}

// TokenHolding is one fungible balance of the wallet.
type TokenHolding struct {
	ContractAddress string       `json:"contractAddress"`
	Symbol          string       `json:"symbol"`
	Name            string       `json:"name"`
	Decimals        uint8        `json:"decimals"`
	RawBalance      string       `json:"rawBalance"`
	Balance         float64      `json:"balance"`
	PriceUSD        float64      `json:"priceUsd"`
	ValueUSD        float64      `json:"valueUsd"`
	Icon            string       `json:"icon,omitempty"`
	LpBreakdown     *LpBreakdown `json:"lpBreakdown,omitempty"`
}

// RawAmount parses RawBalance. Unparsable or negative values yield zero.
func (h TokenHolding) RawAmount() *big.Int {
	raw, ok := new(big.Int).SetString(strings.TrimSpace(h.RawBalance), 10)
	if !ok || raw.Sign() < 0 {
		return new(big.Int)
	}
	return raw
}

// LpBreakdown describes the underlying assets behind a decomposed pool-token holding.
// Amount0 and Amount1 are already scaled by Share.
type LpBreakdown struct {
	Token0Address  string  `json:"token0Address"`
	Token1Address  string  `json:"token1Address"`
	Token0Symbol   string  `json:"token0Symbol"`
	Token1Symbol   string  `json:"token1Symbol"`
	Token0Icon     string  `json:"token0Icon,omitempty"`
	Token1Icon     string  `json:"token1Icon,omitempty"`
	Token0PriceUSD float64 `json:"token0PriceUsd"`
	Token1PriceUSD float64 `json:"token1PriceUsd"`
	Amount0        float64 `json:"amount0"`
	Amount1        float64 `json:"amount1"`
	Share          float64 `json:"share"`
}

// ValueUSD returns the USD value of both sides of the breakdown.
func (b LpBreakdown) ValueUSD() float64 {
	return b.Amount0*b.Token0PriceUSD + b.Amount1*b.Token1PriceUSD
}

// Wallet is an address whose portfolio can be valued.
type Wallet struct {
	Address string
}
