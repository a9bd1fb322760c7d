package port

import "portfolio_dashboard/internal/domain/entity"

// WalletProvider supplies the wallet address to track per chain.
// A chain missing from the map has no wallet connected.
type WalletProvider interface {
	GetWallets() (map[entity.Chain]string, error)
}
