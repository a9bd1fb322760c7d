package portfolio

import (
	"cmp"
	"slices"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
)

// TransactionHistory merges the transactions of every chain, newest first.
// Rows with equal timestamps keep chain order.
func TransactionHistory(st store.State) []entity.TransactionView {
	out := make([]entity.TransactionView, 0)
	for _, c := range entity.Chains {
		def := c.Definition()
		for _, tx := range st.Transactions(c) {
			if tx.Chain == "" {
				tx.Chain = c.String()
			}
			out = append(out, entity.TransactionView{
				Transaction: tx,
				ChainName:   def.Name,
				ExplorerURL: def.ExplorerTxURL(tx.Hash),
				Outgoing:    tx.IsOutgoing(),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b entity.TransactionView) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return out
}
