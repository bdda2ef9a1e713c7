package entity

import (
	"errors"
	"time"
)

// ErrInvalidWallet is returned when the requested wallet is missing or not a hex address.
var ErrInvalidWallet = errors.New("invalid wallet address")

// BalancesBreakdown splits the headline balances of a snapshot.
type BalancesBreakdown struct {
	NativeBalance  float64 `json:"nativeBalance"`
	NativeUSD      float64 `json:"nativeUsd"`
	StablecoinsUSD float64 `json:"stablecoinsUsd"`
	LegacyLpUSD    float64 `json:"legacyLpUsd"`
}

// PortfolioSnapshot is the valuation of one wallet at one point in time.
type PortfolioSnapshot struct {
	WalletAddress         string            `json:"walletAddress"`
	TotalValueUSD         float64           `json:"totalValueUsd"`
	Balances              BalancesBreakdown `json:"balances"`
	Vaults                []VaultPosition   `json:"vaults"`
	TotalVaultDepositsUSD float64           `json:"totalVaultDepositsUsd"`
	UnclaimedYieldUSD     float64           `json:"unclaimedYieldUsd"`
	Tokens                []TokenHolding    `json:"tokens"`
	GeneratedAt           time.Time         `json:"generatedAt"`
}
