package portfolio

import (
	"strconv"
	"time"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// View bundles every derived output for one state version.
type View struct {
	Version       uint64                   `json:"version"`
	TotalValueUSD float64                  `json:"totalValueUsd"`
	Loading       bool                     `json:"loading"`
	Error         string                   `json:"error,omitempty"`
	Chains        []entity.ChainSummary    `json:"chains"`
	Stats         entity.PortfolioStats    `json:"stats"`
	Tokens        []entity.PortfolioToken  `json:"tokens"`
	Chart         entity.ChartSeries       `json:"chart"`
	Transactions  []entity.TransactionView `json:"transactions"`
}

// Build computes a View from st without memoization.
func Build(st store.State) *View {
	return &View{
		Version:       st.Version,
		TotalValueUSD: TotalValue(st),
		Loading:       st.Loading,
		Error:         st.Error,
		Chains:        Summaries(st),
		Stats:         Stats(st),
		Tokens:        UnifiedTokens(st),
		Chart:         Chart(st),
		Transactions:  TransactionHistory(st),
	}
}

// Dashboard memoizes Views by state version. A Dashboard must only be fed states of one store,
// since the version is the cache key. Returned Views are shared and must not be modified.
type Dashboard struct {
	cache *cache.Cache
}

// NewDashboard creates a Dashboard whose entries expire after expiration.
func NewDashboard(expiration, cleanupInterval time.Duration) *Dashboard {
	return &Dashboard{cache: cache.New(expiration, cleanupInterval)}
}

// Compute returns the View for st, computing it at most once per version.
func (d *Dashboard) Compute(st store.State) *View {
	key := strconv.FormatUint(st.Version, 10)
	if v, found := d.cache.Get(key); found {
		return v.(*View)
	}
	view := Build(st)
	d.cache.SetDefault(key, view)
	return view
}

// Len reports the number of memoized views.
func (d *Dashboard) Len() int {
	return d.cache.ItemCount()
}
