package entity

// PositionKind labels a yielding position.
type PositionKind string

const (
	PositionLiquidityPool PositionKind = "liquidity_pool"
	PositionVault         PositionKind = "vault"
	PositionStaked        PositionKind = "staked"
	PositionOther         PositionKind = "other"
)

// Classification is the outcome of running the position classifier over one holding.
// Spot holdings carry no Kind.
type Classification struct {
	Spot     bool
	Kind     PositionKind
	Protocol string
	PoolName string
	Rule     string
}

// VaultPosition is a yielding holding.
type VaultPosition struct {
	Address      string       `json:"address"`
	Symbol       string       `json:"symbol"`
	Kind         PositionKind `json:"kind"`
	Protocol     string       `json:"protocol"`
	PoolName     string       `json:"poolName"`
	Amount       float64      `json:"amount"`
	DepositedUSD float64      `json:"depositedUsd"`
	RewardsUSD   float64      `json:"rewardsUsd"`
	LpBreakdown  *LpBreakdown `json:"lpBreakdown,omitempty"`
	Creator      *string      `json:"creator"`
	Icon         string       `json:"icon,omitempty"`
}
