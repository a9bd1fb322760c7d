package entity

import "time"

// TokenHolding is a fungible token position reported by the balance service.
// ValueUSD is authoritative for ranking and aggregation even if it differs from Amount*PriceUSD.
type TokenHolding struct {
	Symbol         string   `json:"symbol"`
	MintOrAddress  string   `json:"mintOrAddress"`
	Amount         float64  `json:"amount"`
	Decimals       int      `json:"decimals"`
	PriceUSD       float64  `json:"priceUsd"`
	ValueUSD       float64  `json:"valueUsd"`
	Name           string   `json:"name,omitempty"`
	LogoURI        string   `json:"logoUri,omitempty"`
	PriceChange24h *float64 `json:"priceChange24h,omitempty"`
}

// ChainSnapshot is a complete balance/price record for one address on one chain.
// Snapshots are replaced wholesale, never merged, so NativeValueUSD always matches
// NativeBalance*NativePriceUSD as computed by the producer.
type ChainSnapshot struct {
	Chain            string         `json:"chain,omitempty"`
	Address          string         `json:"address,omitempty"`
	NativeBalance    float64        `json:"nativeBalance"`
	NativePriceUSD   float64        `json:"nativePriceUsd"`
	NativeValueUSD   float64        `json:"nativeValueUsd"`
	Tokens           []TokenHolding `json:"tokens"`
	TotalTokensCount *int           `json:"totalTokensCount,omitempty"`
	LastUpdated      string         `json:"lastUpdated,omitempty"`
}

// UpdatedAt parses LastUpdated as RFC 3339.
func (s *ChainSnapshot) UpdatedAt() (time.Time, bool) {
	if s == nil || s.LastUpdated == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.LastUpdated)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Float64 returns a pointer to v, for optional fields such as PriceChange24h.
func Float64(v float64) *float64 {
	return &v
}
