package entity

import "strings"

// Chain identifies one of the tracked blockchain networks.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainEthereum Chain = "ethereum"
)

// ZeroAddress is used as the identifier of native ETH in the unified token list.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// WrappedSOLMint is used as the identifier of native SOL in the unified token list.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// NetworkDefinition holds the static description of a tracked chain.
type NetworkDefinition struct {
	Chain            Chain  `json:"chain" yaml:"chain"`
	Name             string `json:"name" yaml:"name"`
	NativeSymbol     string `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName       string `json:"nativeName" yaml:"nativeName"`
	NativeAddress    string `json:"nativeAddress" yaml:"nativeAddress"`
	Decimals         int    `json:"decimals" yaml:"decimals"`
	BlockExplorerURL string `json:"blockExplorerUrl" yaml:"blockExplorerUrl"`
	NativeColor      string `json:"nativeColor" yaml:"nativeColor"`
	TokenColor       string `json:"tokenColor" yaml:"tokenColor"`
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Solana = NetworkDefinition{
		Chain:            ChainSolana,
		Name:             "Solana",
		NativeSymbol:     "SOL",
		NativeName:       "Solana",
		NativeAddress:    WrappedSOLMint,
		Decimals:         9,
		BlockExplorerURL: "https://solscan.io/tx/",
		NativeColor:      "#14F195",
		TokenColor:       "#9945FF",
	}
	Ethereum = NetworkDefinition{
		Chain:            ChainEthereum,
		Name:             "Ethereum",
		NativeSymbol:     "ETH",
		NativeName:       "Ethereum",
		NativeAddress:    ZeroAddress,
		Decimals:         18,
		BlockExplorerURL: "https://etherscan.io/tx/",
		NativeColor:      "#627EEA",
		TokenColor:       "#F7931A",
	}
)

// Chains lists the tracked chains in display order.
var Chains = []Chain{ChainSolana, ChainEthereum} //nolint:gochecknoglobals

// Definition returns the static description of the chain.
func (c Chain) Definition() NetworkDefinition {
	if c == ChainEthereum {
		return Ethereum
	}
	return Solana
}

// Valid reports whether c is one of the tracked chains.
func (c Chain) Valid() bool {
	return c == ChainSolana || c == ChainEthereum
}

func (c Chain) String() string { return string(c) }

// ParseChain resolves a chain by identifier ("solana") or display name ("Solana"), ignoring case.
func ParseChain(s string) (Chain, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Chains {
		def := c.Definition()
		if key == string(c) || key == strings.ToLower(def.Name) || key == strings.ToLower(def.NativeSymbol) {
			return c, true
		}
	}
	return "", false
}

// BalancesFallbackMessage is reported when the balance service gives no usable error message.
func (d NetworkDefinition) BalancesFallbackMessage() string {
	return "Failed to fetch " + d.Name + " data"
}

// TransactionsFallbackMessage is the transactions counterpart of BalancesFallbackMessage.
func (d NetworkDefinition) TransactionsFallbackMessage() string {
	return "Failed to fetch " + d.Name + " transactions"
}

// ExplorerTxURL returns the block explorer link for a transaction hash.
func (d NetworkDefinition) ExplorerTxURL(hash string) string {
	return d.BlockExplorerURL + hash
}
