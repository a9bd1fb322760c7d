package portfolio

import (
	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
)

// Performers returns the tokens with the highest and lowest 24h change.
// Native holdings never report a change and are not considered. On ties the
// first token in chain order wins. Both are nil when no token reports a change.
func Performers(st store.State) (best, worst *entity.Performer) {
	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil {
			continue
		}
		name := c.Definition().Name
		for _, t := range snap.Tokens {
			if t.PriceChange24h == nil {
				continue
			}
			p := &entity.Performer{Symbol: t.Symbol, Chain: name, PriceChange24h: *t.PriceChange24h}
			if best == nil || p.PriceChange24h > best.PriceChange24h {
				best = p
			}
			if worst == nil || p.PriceChange24h < worst.PriceChange24h {
				worst = p
			}
		}
	}
	return best, worst
}

// AverageTokenPrice is the mean price of the tokens with a positive price; 0 when none.
func AverageTokenPrice(st store.State) float64 {
	var sum float64
	var n int
	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil {
			continue
		}
		for _, t := range snap.Tokens {
			if t.PriceUSD > 0 {
				sum += t.PriceUSD
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Stats computes the statistics panel.
func Stats(st store.State) entity.PortfolioStats {
	stats := entity.PortfolioStats{
		SolanaAllocation:   ChainAllocation(st, entity.ChainSolana),
		EthereumAllocation: ChainAllocation(st, entity.ChainEthereum),
		AveragePriceUSD:    AverageTokenPrice(st),
	}
	stats.BestPerformer, stats.WorstPerformer = Performers(st)

	if snap := st.Snapshot(entity.ChainSolana); snap != nil {
		stats.SolanaTokens = len(snap.Tokens)
	}
	if snap := st.Snapshot(entity.ChainEthereum); snap != nil {
		stats.EthereumTokens = len(snap.Tokens)
	}
	stats.TotalTokens = stats.SolanaTokens + stats.EthereumTokens

	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil {
			continue
		}
		if snap.NativeBalance > 0 {
			stats.TotalTokens++
		}
		if snap.NativeBalance > 0 || len(snap.Tokens) > 0 {
			stats.ChainsConnected++
		}
	}
	return stats
}

// Summaries builds one summary card per chain in display order.
func Summaries(st store.State) []entity.ChainSummary {
	total := TotalValue(st)
	out := make([]entity.ChainSummary, 0, len(entity.Chains))
	for _, c := range entity.Chains {
		def := c.Definition()
		cs := st.Chain(c)
		summary := entity.ChainSummary{
			Chain:        def.Name,
			NativeSymbol: def.NativeSymbol,
			Address:      cs.Address,
			Connected:    cs.Address != "",
			Loading:      cs.Status.Loading && cs.Address != "",
			Error:        cs.Status.Error,
		}
		if snap := cs.Snapshot; snap != nil {
			value := ChainValue(snap)
			summary.HasData = true
			summary.NativeBalance = snap.NativeBalance
			summary.NativeValueUSD = snap.NativeValueUSD
			summary.TokenCount = len(snap.Tokens)
			summary.TotalValueUSD = value
			summary.Allocation = percentOf(value, total)
			summary.LastUpdated = snap.LastUpdated
		}
		out = append(out, summary)
	}
	return out
}

// Chart builds the distribution series: per chain the native slice (value > 0) followed by
// one slice per token with a positive value. Total is the sum of the included slices.
func Chart(st store.State) entity.ChartSeries {
	series := entity.ChartSeries{Slices: make([]entity.ChartSlice, 0)}
	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil {
			continue
		}
		def := c.Definition()
		if snap.NativeValueUSD > 0 {
			series.Slices = append(series.Slices, entity.ChartSlice{
				Label: def.NativeSymbol, Chain: def.Name, ValueUSD: snap.NativeValueUSD, Color: def.NativeColor,
			})
		}
		for _, t := range snap.Tokens {
			if t.ValueUSD > 0 {
				series.Slices = append(series.Slices, entity.ChartSlice{
					Label: t.Symbol, Chain: def.Name, ValueUSD: t.ValueUSD, Color: def.TokenColor,
				})
			}
		}
	}

	for _, s := range series.Slices {
		series.Total += s.ValueUSD
	}
	for i := range series.Slices {
		series.Slices[i].Percentage = percentOf(series.Slices[i].ValueUSD, series.Total)
	}
	return series
}
