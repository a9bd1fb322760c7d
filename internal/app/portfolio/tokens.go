package portfolio

import (
	"cmp"
	"slices"
	"strings"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
)

// SortField selects the column a token list is ordered by.
type SortField string

const (
	SortByValue      SortField = "value"
	SortByPrice      SortField = "price"
	SortByChange     SortField = "change"
	SortByAllocation SortField = "allocation"
	SortByChain      SortField = "chain"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// FilterAll keeps tokens of every chain.
const FilterAll = "all"

// ParseSortField resolves a field name; "" selects SortByValue.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortByValue, true
	case SortByValue, SortByPrice, SortByChange, SortByAllocation, SortByChain:
		return f, true
	default:
		return "", false
	}
}

// ParseSortDirection resolves a direction; "" selects Descending.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Descending, true
	case Ascending, Descending:
		return d, true
	default:
		return "", false
	}
}

// UnifiedTokens builds the token table: native SOL and native ETH first (when the balance
// is positive), then Solana tokens, then Ethereum tokens. Each entry carries its chain's
// display name and its share of the total portfolio value.
func UnifiedTokens(st store.State) []entity.PortfolioToken {
	total := TotalValue(st)
	tokens := make([]entity.PortfolioToken, 0)

	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil || snap.NativeBalance <= 0 {
			continue
		}
		def := c.Definition()
		tokens = append(tokens, entity.PortfolioToken{
			TokenHolding: entity.TokenHolding{
				Symbol:        def.NativeSymbol,
				MintOrAddress: def.NativeAddress,
				Amount:        snap.NativeBalance,
				Decimals:      def.Decimals,
				PriceUSD:      snap.NativePriceUSD,
				ValueUSD:      snap.NativeValueUSD,
				Name:          def.NativeName,
			},
			Chain:      def.Name,
			Allocation: percentOf(snap.NativeValueUSD, total),
			IsNative:   true,
		})
	}

	for _, c := range entity.Chains {
		snap := st.Snapshot(c)
		if snap == nil {
			continue
		}
		name := c.Definition().Name
		for _, t := range snap.Tokens {
			tokens = append(tokens, entity.PortfolioToken{
				TokenHolding: t,
				Chain:        name,
				Allocation:   percentOf(t.ValueUSD, total),
			})
		}
	}
	return tokens
}

// FilterTokens keeps the tokens of one chain. filter is FilterAll, a chain identifier
// or a display name; an unknown chain yields an empty list.
func FilterTokens(tokens []entity.PortfolioToken, filter string) []entity.PortfolioToken {
	if filter == "" || strings.EqualFold(filter, FilterAll) {
		return slices.Clone(tokens)
	}
	out := make([]entity.PortfolioToken, 0, len(tokens))
	chain, ok := entity.ParseChain(filter)
	if !ok {
		return out
	}
	name := chain.Definition().Name
	for _, t := range tokens {
		if t.Chain == name {
			out = append(out, t)
		}
	}
	return out
}

// SortTokens returns a stably sorted copy of tokens. A missing 24h change sorts as 0.
func SortTokens(tokens []entity.PortfolioToken, field SortField, dir SortDirection) []entity.PortfolioToken {
	out := slices.Clone(tokens)

	var compare func(a, b entity.PortfolioToken) int
	switch field {
	case SortByValue:
		compare = func(a, b entity.PortfolioToken) int { return cmp.Compare(a.ValueUSD, b.ValueUSD) }
	case SortByPrice:
		compare = func(a, b entity.PortfolioToken) int { return cmp.Compare(a.PriceUSD, b.PriceUSD) }
	case SortByChange:
		compare = func(a, b entity.PortfolioToken) int { return cmp.Compare(change(a), change(b)) }
	case SortByAllocation:
		compare = func(a, b entity.PortfolioToken) int { return cmp.Compare(a.Allocation, b.Allocation) }
	case SortByChain:
		compare = func(a, b entity.PortfolioToken) int { return strings.Compare(a.Chain, b.Chain) }
	default:
		return out
	}

	if dir == Descending {
		asc := compare
		compare = func(a, b entity.PortfolioToken) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func change(t entity.PortfolioToken) float64 {
	if t.PriceChange24h == nil {
		return 0
	}
	return *t.PriceChange24h
}
