package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// ChainDataClient fetches normalized balance and transaction data for one address on one chain.
// Implementations hold no state beyond transport configuration.
type ChainDataClient interface {
	// FetchBalances returns the full snapshot for address. Failures are *entity.FetchError.
	FetchBalances(ctx context.Context, chain entity.Chain, address string) (*entity.ChainSnapshot, error)

	// FetchTransactions returns up to limit recent transactions for address.
	FetchTransactions(ctx context.Context, chain entity.Chain, address string, limit int) ([]entity.Transaction, error)
}
