package entity

// PortfolioToken is a holding in the unified token list, tagged with its chain and allocation.
type PortfolioToken struct {
	TokenHolding
	Chain      string  `json:"chain"`
	Allocation float64 `json:"allocation"`
	IsNative   bool    `json:"isNative"`
}

// ChainStatus is the per-chain fetch status.
type ChainStatus struct {
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	Generation uint64 `json:"generation"`
}

// ChainSummary backs one chain summary card.
type ChainSummary struct {
	Chain          string  `json:"chain"`
	NativeSymbol   string  `json:"nativeSymbol"`
	Address        string  `json:"address,omitempty"`
	Connected      bool    `json:"connected"`
	HasData        bool    `json:"hasData"`
	Loading        bool    `json:"loading"`
	Error          string  `json:"error,omitempty"`
	NativeBalance  float64 `json:"nativeBalance"`
	NativeValueUSD float64 `json:"nativeValueUsd"`
	TokenCount     int     `json:"tokenCount"`
	TotalValueUSD  float64 `json:"totalValueUsd"`
	Allocation     float64 `json:"allocation"`
	LastUpdated    string  `json:"lastUpdated,omitempty"`
}

// Performer is a token selected by its 24h price change.
type Performer struct {
	Symbol         string  `json:"symbol"`
	Chain          string  `json:"chain"`
	PriceChange24h float64 `json:"priceChange24h"`
}

// PortfolioStats backs the statistics panel.
type PortfolioStats struct {
	TotalTokens        int        `json:"totalTokens"`
	SolanaTokens       int        `json:"solanaTokens"`
	EthereumTokens     int        `json:"ethereumTokens"`
	ChainsConnected    int        `json:"chainsConnected"`
	SolanaAllocation   float64    `json:"solanaAllocation"`
	EthereumAllocation float64    `json:"ethereumAllocation"`
	BestPerformer      *Performer `json:"bestPerformer,omitempty"`
	WorstPerformer     *Performer `json:"worstPerformer,omitempty"`
	AveragePriceUSD    float64    `json:"averagePriceUsd"`
}

// ChartSlice is one segment of the distribution chart.
type ChartSlice struct {
	Label      string  `json:"label"`
	Chain      string  `json:"chain"`
	ValueUSD   float64 `json:"valueUsd"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// ChartSeries is the distribution chart; Total equals the sum of the slice values.
type ChartSeries struct {
	Slices []ChartSlice `json:"slices"`
	Total  float64      `json:"total"`
}

// TransactionView is a history row tagged with its chain.
type TransactionView struct {
	Transaction
	ChainName   string `json:"chainName"`
	ExplorerURL string `json:"explorerUrl"`
	Outgoing    bool   `json:"outgoing"`
}
