// Package portfolio derives the dashboard views from a store.State copy.
// Every function here is pure; Dashboard adds memoization keyed by state version.
package portfolio

import (
	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
)

// ChainValue is the native value plus the value of every token in snapshot; 0 for nil.
func ChainValue(snapshot *entity.ChainSnapshot) float64 {
	if snapshot == nil {
		return 0
	}
	total := snapshot.NativeValueUSD
	for _, t := range snapshot.Tokens {
		total += t.ValueUSD
	}
	return total
}

// TotalValue sums ChainValue over every tracked chain.
func TotalValue(st store.State) float64 {
	var total float64
	for _, c := range entity.Chains {
		total += ChainValue(st.Snapshot(c))
	}
	return total
}

// ChainAllocation is the share of the total held on chain, in percent; 0 when the total is 0.
func ChainAllocation(st store.State, chain entity.Chain) float64 {
	return percentOf(ChainValue(st.Snapshot(chain)), TotalValue(st))
}

func percentOf(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}
