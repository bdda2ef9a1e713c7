package port

import (
	"context"

	"portfolio_valuator/internal/domain/entity"
)

// PortfolioService builds wallet valuations.
type PortfolioService interface {
	// GetPortfolio values one wallet. It fails only when walletAddress is malformed;
	// upstream trouble degrades individual fields instead.
	GetPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioSnapshot, error)
}
