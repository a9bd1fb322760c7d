package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// PortfolioService drives the refresh cycles for the connected wallets.
type PortfolioService interface {
	// SetAddress reacts to a wallet connection event. An empty address disconnects the chain.
	SetAddress(ctx context.Context, chain entity.Chain, address string)

	// Refresh triggers a refresh cycle for every chain with a connected address.
	Refresh(ctx context.Context)

	// Reset disconnects every chain and clears all portfolio state.
	Reset()

	// Start begins periodic refreshing; Stop ends it and waits for running cycles.
	Start(ctx context.Context)
	Stop()
}
