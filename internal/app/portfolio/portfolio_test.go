package portfolio

import (
	"testing"
	"time"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWith(sol, eth *entity.ChainSnapshot) store.State {
	s := store.New()
	if sol != nil {
		s.SetAddress(entity.ChainSolana, "sol1")
		s.SetSnapshot(entity.ChainSolana, sol)
	}
	if eth != nil {
		s.SetAddress(entity.ChainEthereum, "0xeth")
		s.SetSnapshot(entity.ChainEthereum, eth)
	}
	return s.State()
}

func sampleState() store.State {
	return stateWith(
		&entity.ChainSnapshot{
			NativeBalance: 2, NativePriceUSD: 100, NativeValueUSD: 200,
			Tokens: []entity.TokenHolding{
				{Symbol: "USDC", MintOrAddress: "EPjF", Amount: 100, PriceUSD: 1, ValueUSD: 100, PriceChange24h: entity.Float64(0.1)},
				{Symbol: "BONK", MintOrAddress: "DezX", Amount: 1e6, PriceUSD: 0.00002, ValueUSD: 20, PriceChange24h: entity.Float64(5.2)},
			},
		},
		&entity.ChainSnapshot{
			NativeBalance: 0.1, NativePriceUSD: 3000, NativeValueUSD: 300,
			Tokens: []entity.TokenHolding{
				{Symbol: "UNI", MintOrAddress: "0x1f98", Amount: 50, PriceUSD: 7.6, ValueUSD: 380, PriceChange24h: entity.Float64(-3.1)},
				{Symbol: "DUST", MintOrAddress: "0xdead", Amount: 1, PriceUSD: 0, ValueUSD: 0},
			},
		},
	)
}

func TestEmptyState(t *testing.T) {
	st := store.New().State()

	assert.Equal(t, 0.0, TotalValue(st))
	assert.Empty(t, UnifiedTokens(st))
	best, worst := Performers(st)
	assert.Nil(t, best)
	assert.Nil(t, worst)
	assert.Equal(t, 0.0, AverageTokenPrice(st))
	assert.Equal(t, 0.0, ChainAllocation(st, entity.ChainSolana))
	assert.Empty(t, Chart(st).Slices)
	assert.Empty(t, TransactionHistory(st))

	stats := Stats(st)
	assert.Zero(t, stats.TotalTokens)
	assert.Zero(t, stats.ChainsConnected)
}

func TestSolanaOnlyScenario(t *testing.T) {
	st := stateWith(&entity.ChainSnapshot{NativeBalance: 2, NativePriceUSD: 100, NativeValueUSD: 200, Tokens: []entity.TokenHolding{}}, nil)

	assert.Equal(t, 200.0, TotalValue(st))
	assert.Equal(t, 100.0, ChainAllocation(st, entity.ChainSolana))
	assert.Equal(t, 0.0, ChainAllocation(st, entity.ChainEthereum))
}

func TestTotalValue(t *testing.T) {
	st := sampleState()
	assert.InDelta(t, 200+100+20+300+380, TotalValue(st), 1e-9)
	assert.InDelta(t, 320, ChainValue(st.Snapshot(entity.ChainSolana)), 1e-9)
	assert.Equal(t, 0.0, ChainValue(nil))
}

func TestUnifiedTokens_OrderAndAllocation(t *testing.T) {
	st := sampleState()
	tokens := UnifiedTokens(st)

	symbols := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		symbols = append(symbols, tok.Symbol)
	}
	assert.Equal(t, []string{"SOL", "ETH", "USDC", "BONK", "UNI", "DUST"}, symbols)

	sol := tokens[0]
	assert.True(t, sol.IsNative)
	assert.Equal(t, "Solana", sol.Chain)
	assert.Equal(t, entity.WrappedSOLMint, sol.MintOrAddress)
	assert.Equal(t, 9, sol.Decimals)
	assert.Nil(t, sol.PriceChange24h)

	eth := tokens[1]
	assert.Equal(t, entity.ZeroAddress, eth.MintOrAddress)
	assert.Equal(t, 18, eth.Decimals)
	assert.Equal(t, "Ethereum", eth.Chain)

	var sum float64
	for _, tok := range tokens {
		sum += tok.Allocation
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.InDelta(t, 200.0/1000*100, sol.Allocation, 1e-9)
}

func TestUnifiedTokens_ZeroNativeBalanceSkipped(t *testing.T) {
	st := stateWith(&entity.ChainSnapshot{Tokens: []entity.TokenHolding{{Symbol: "USDC", ValueUSD: 0}}}, nil)
	tokens := UnifiedTokens(st)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, 0.0, tokens[0].Allocation, "allocations are 0 when total is 0")
}

func TestFilterTokens(t *testing.T) {
	tokens := UnifiedTokens(sampleState())

	assert.Len(t, FilterTokens(tokens, FilterAll), 6)
	assert.Len(t, FilterTokens(tokens, ""), 6)

	sol := FilterTokens(tokens, "Solana")
	require.Len(t, sol, 3)
	for _, tok := range sol {
		assert.Equal(t, "Solana", tok.Chain)
	}
	assert.Len(t, FilterTokens(tokens, "ethereum"), 3)
	assert.Empty(t, FilterTokens(tokens, "bitcoin"))
}

func TestSortTokens(t *testing.T) {
	tokens := UnifiedTokens(sampleState())

	byValue := SortTokens(tokens, SortByValue, Descending)
	assert.Equal(t, "UNI", byValue[0].Symbol)
	assert.Equal(t, "DUST", byValue[len(byValue)-1].Symbol)

	byPrice := SortTokens(tokens, SortByPrice, Ascending)
	assert.Equal(t, "DUST", byPrice[0].Symbol)
	assert.Equal(t, "ETH", byPrice[len(byPrice)-1].Symbol)

	byChange := SortTokens(tokens, SortByChange, Descending)
	assert.Equal(t, "BONK", byChange[0].Symbol)
	assert.Equal(t, "UNI", byChange[len(byChange)-1].Symbol)

	byChain := SortTokens(tokens, SortByChain, Ascending)
	assert.Equal(t, "Ethereum", byChain[0].Chain)
	assert.Equal(t, "ETH", byChain[0].Symbol, "stable within equal chain names")
	assert.Equal(t, "Solana", byChain[len(byChain)-1].Chain)

	// Input is left untouched.
	assert.Equal(t, "SOL", tokens[0].Symbol)
}

func TestSortTokens_TotalOrderAndIdempotent(t *testing.T) {
	tokens := UnifiedTokens(sampleState())
	fields := []SortField{SortByValue, SortByPrice, SortByChange, SortByAllocation}

	for _, f := range fields {
		for _, d := range []SortDirection{Ascending, Descending} {
			once := SortTokens(tokens, f, d)
			twice := SortTokens(once, f, d)
			assert.Equal(t, once, twice, "%s %s", f, d)

			for i := 1; i < len(once); i++ {
				a, b := key(once[i-1], f), key(once[i], f)
				if d == Ascending {
					assert.LessOrEqual(t, a, b)
				} else {
					assert.GreaterOrEqual(t, a, b)
				}
			}
		}
	}
}

func key(tok entity.PortfolioToken, f SortField) float64 {
	switch f {
	case SortByPrice:
		return tok.PriceUSD
	case SortByChange:
		return change(tok)
	case SortByAllocation:
		return tok.Allocation
	default:
		return tok.ValueUSD
	}
}

func TestParseSort(t *testing.T) {
	f, ok := ParseSortField("")
	assert.True(t, ok)
	assert.Equal(t, SortByValue, f)
	f, ok = ParseSortField("Change")
	assert.True(t, ok)
	assert.Equal(t, SortByChange, f)
	_, ok = ParseSortField("volume")
	assert.False(t, ok)

	d, ok := ParseSortDirection("")
	assert.True(t, ok)
	assert.Equal(t, Descending, d)
	_, ok = ParseSortDirection("sideways")
	assert.False(t, ok)
}

func TestPerformers(t *testing.T) {
	best, worst := Performers(sampleState())
	require.NotNil(t, best)
	require.NotNil(t, worst)
	assert.Equal(t, "BONK", best.Symbol)
	assert.Equal(t, 5.2, best.PriceChange24h)
	assert.Equal(t, "UNI", worst.Symbol)
	assert.Equal(t, -3.1, worst.PriceChange24h)
	assert.Equal(t, "Ethereum", worst.Chain)
	assert.GreaterOrEqual(t, best.PriceChange24h, worst.PriceChange24h)
}

func TestPerformers_TieKeepsFirst(t *testing.T) {
	st := stateWith(
		&entity.ChainSnapshot{Tokens: []entity.TokenHolding{{Symbol: "A", PriceChange24h: entity.Float64(1)}}},
		&entity.ChainSnapshot{Tokens: []entity.TokenHolding{{Symbol: "B", PriceChange24h: entity.Float64(1)}}},
	)
	best, worst := Performers(st)
	assert.Equal(t, "A", best.Symbol)
	assert.Equal(t, "A", worst.Symbol)
}

func TestPerformers_NoneReportChange(t *testing.T) {
	st := stateWith(&entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 10, Tokens: []entity.TokenHolding{{Symbol: "X"}}}, nil)
	best, worst := Performers(st)
	assert.Nil(t, best)
	assert.Nil(t, worst)
}

func TestAverageTokenPrice(t *testing.T) {
	assert.InDelta(t, (1+0.00002+7.6)/3, AverageTokenPrice(sampleState()), 1e-9)
}

func TestStats(t *testing.T) {
	stats := Stats(sampleState())
	assert.Equal(t, 6, stats.TotalTokens)
	assert.Equal(t, 2, stats.SolanaTokens)
	assert.Equal(t, 2, stats.EthereumTokens)
	assert.Equal(t, 2, stats.ChainsConnected)
	assert.InDelta(t, 32, stats.SolanaAllocation, 1e-9)
	assert.InDelta(t, 68, stats.EthereumAllocation, 1e-9)
	assert.Equal(t, "BONK", stats.BestPerformer.Symbol)

	empty := Stats(stateWith(&entity.ChainSnapshot{}, nil))
	assert.Zero(t, empty.ChainsConnected, "a snapshot with nothing in it does not count")
}

func TestSummaries(t *testing.T) {
	s := store.New()
	s.SetAddress(entity.ChainSolana, "sol1")
	s.SetSnapshot(entity.ChainSolana, &entity.ChainSnapshot{NativeBalance: 2, NativeValueUSD: 200, Tokens: []entity.TokenHolding{{ValueUSD: 50}}, LastUpdated: "2024-05-01T10:00:00Z"})
	s.SetAddress(entity.ChainEthereum, "0xeth")
	s.BeginCycle(entity.ChainEthereum, "0xeth")

	summaries := Summaries(s.State())
	require.Len(t, summaries, 2)

	sol := summaries[0]
	assert.Equal(t, "Solana", sol.Chain)
	assert.Equal(t, "SOL", sol.NativeSymbol)
	assert.True(t, sol.Connected)
	assert.True(t, sol.HasData)
	assert.Equal(t, 250.0, sol.TotalValueUSD)
	assert.Equal(t, 100.0, sol.Allocation)
	assert.Equal(t, 1, sol.TokenCount)
	assert.False(t, sol.Loading)

	eth := summaries[1]
	assert.True(t, eth.Loading)
	assert.False(t, eth.HasData)
}

func TestChart(t *testing.T) {
	series := Chart(sampleState())

	labels := make([]string, 0, len(series.Slices))
	var sum, pct float64
	for _, s := range series.Slices {
		labels = append(labels, s.Label)
		sum += s.ValueUSD
		pct += s.Percentage
	}
	assert.Equal(t, []string{"SOL", "USDC", "BONK", "ETH", "UNI"}, labels, "zero-value tokens are excluded")
	assert.InDelta(t, series.Total, sum, 1e-9)
	assert.InDelta(t, 100, pct, 1e-9)

	assert.Equal(t, "#14F195", series.Slices[0].Color)
	assert.Equal(t, "#9945FF", series.Slices[1].Color)
	assert.Equal(t, "#627EEA", series.Slices[3].Color)
	assert.Equal(t, "#F7931A", series.Slices[4].Color)
}

func TestTransactionHistory(t *testing.T) {
	s := store.New()
	s.SetAddress(entity.ChainSolana, "sol1")
	s.SetAddress(entity.ChainEthereum, "0xeth")
	s.SetTransactions(entity.ChainSolana, []entity.Transaction{
		{Hash: "s1", Timestamp: 100, Type: entity.TxTypeSend},
		{Hash: "s2", Timestamp: 300, Type: entity.TxTypeReceive},
	})
	s.SetTransactions(entity.ChainEthereum, []entity.Transaction{
		{Hash: "e1", Timestamp: 200, Type: entity.TxTypeTransfer},
		{Hash: "e2", Timestamp: 300, Type: entity.TxTypeReceive},
	})

	history := TransactionHistory(s.State())
	hashes := make([]string, 0, len(history))
	for _, h := range history {
		hashes = append(hashes, h.Hash)
	}
	assert.Equal(t, []string{"s2", "e2", "e1", "s1"}, hashes)

	assert.Equal(t, "https://solscan.io/tx/s2", history[0].ExplorerURL)
	assert.Equal(t, "Solana", history[0].ChainName)
	assert.Equal(t, "solana", history[0].Chain)
	assert.False(t, history[0].Outgoing)
	assert.Equal(t, "https://etherscan.io/tx/e1", history[2].ExplorerURL)
	assert.True(t, history[2].Outgoing)
}

func TestDashboard_MemoizesByVersion(t *testing.T) {
	s := store.New()
	s.SetAddress(entity.ChainSolana, "sol1")
	s.SetSnapshot(entity.ChainSolana, &entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 10})

	d := NewDashboard(time.Minute, time.Minute)
	first := d.Compute(s.State())
	second := d.Compute(s.State())
	assert.Same(t, first, second)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 10.0, first.TotalValueUSD)

	s.SetSnapshot(entity.ChainSolana, &entity.ChainSnapshot{NativeBalance: 2, NativeValueUSD: 20})
	third := d.Compute(s.State())
	assert.NotSame(t, first, third)
	assert.Equal(t, 20.0, third.TotalValueUSD)
	assert.Equal(t, 2, d.Len())
}
