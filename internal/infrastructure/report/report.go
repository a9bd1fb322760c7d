package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"portfolio_dashboard/internal/app/portfolio"
	"portfolio_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Options controls how much of the dashboard is printed.
type Options struct {
	MaxTokens       int
	MaxTransactions int
	GeneratedAt     time.Time
}

const separator = "----------------------------------------------------------------"

// USD formats v as dollars with two decimals.
func USD(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// Amount formats a token quantity with four decimals.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// Percent formats a percentage with two decimals.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// SignedPercent formats a 24h change with an explicit sign for gains.
func SignedPercent(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Render writes the console dashboard for v.
func Render(w io.Writer, v *portfolio.View, opts Options) error {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 10
	}
	if opts.MaxTransactions <= 0 {
		opts.MaxTransactions = 10
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	var sb strings.Builder

	sb.WriteString("\nMultichain Portfolio\n")
	sb.WriteString("Generated: " + opts.GeneratedAt.Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(separator + "\n")
	if v.Loading {
		sb.WriteString("Total Value: Loading...\n")
	} else {
		sb.WriteString("Total Value: " + USD(v.TotalValueUSD) + "\n")
	}
	if v.Error != "" {
		sb.WriteString("Error: " + v.Error + "\n")
	}
	sb.WriteString("\n")

	writeChains(&sb, v.Chains)
	writeStats(&sb, v.Stats)
	writeTokens(&sb, v.Tokens, opts.MaxTokens)
	writeTransactions(&sb, v.Transactions, opts.MaxTransactions)

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeChains(sb *strings.Builder, chains []entity.ChainSummary) {
	for _, c := range chains {
		switch {
		case !c.Connected:
			fmt.Fprintf(sb, "%-9s not connected\n", c.Chain)
		case c.Loading:
			fmt.Fprintf(sb, "%-9s loading...\n", c.Chain)
		case !c.HasData:
			msg := "no data"
			if c.Error != "" {
				msg = "error: " + c.Error
			}
			fmt.Fprintf(sb, "%-9s %s\n", c.Chain, msg)
		default:
			fmt.Fprintf(sb, "%-9s %s %s (%s)  tokens: %d  total: %s  allocation: %s\n",
				c.Chain, Amount(c.NativeBalance), c.NativeSymbol, USD(c.NativeValueUSD),
				c.TokenCount, USD(c.TotalValueUSD), Percent(c.Allocation))
		}
	}
	sb.WriteString("\n")
}

func writeStats(sb *strings.Builder, s entity.PortfolioStats) {
	fmt.Fprintf(sb, "Tokens: %d (Solana %d, Ethereum %d)  Chains: %d\n",
		s.TotalTokens, s.SolanaTokens, s.EthereumTokens, s.ChainsConnected)
	fmt.Fprintf(sb, "Allocation: Solana %s, Ethereum %s\n", Percent(s.SolanaAllocation), Percent(s.EthereumAllocation))
	if s.BestPerformer != nil {
		fmt.Fprintf(sb, "Best 24h:  %s (%s) %s\n", s.BestPerformer.Symbol, s.BestPerformer.Chain, SignedPercent(s.BestPerformer.PriceChange24h))
	}
	if s.WorstPerformer != nil {
		fmt.Fprintf(sb, "Worst 24h: %s (%s) %s\n", s.WorstPerformer.Symbol, s.WorstPerformer.Chain, SignedPercent(s.WorstPerformer.PriceChange24h))
	}
	if s.AveragePriceUSD > 0 {
		fmt.Fprintf(sb, "Avg token price: %s\n", USD(s.AveragePriceUSD))
	}
	sb.WriteString("\n")
}

func writeTokens(sb *strings.Builder, tokens []entity.PortfolioToken, limit int) {
	if len(tokens) == 0 {
		sb.WriteString("No tokens found\n\n")
		return
	}
	sorted := portfolio.SortTokens(tokens, portfolio.SortByValue, portfolio.Descending)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	tw := tabwriter.NewWriter(sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Token\tChain\tAmount\tPrice\t24h\tValue\tAlloc\t")
	for _, t := range sorted {
		change := "-"
		if t.PriceChange24h != nil {
			change = SignedPercent(*t.PriceChange24h)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.Symbol, t.Chain, Amount(t.Amount), USD(t.PriceUSD), change, USD(t.ValueUSD), Percent(t.Allocation))
	}
	_ = tw.Flush()
	sb.WriteString("\n")
}

func writeTransactions(sb *strings.Builder, txs []entity.TransactionView, limit int) {
	if len(txs) == 0 {
		sb.WriteString("No transactions found\n")
		return
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	sb.WriteString("Recent transactions\n")
	for _, tx := range txs {
		direction := "IN "
		if tx.Outgoing {
			direction = "OUT"
		}
		status := "ok"
		if !tx.Succeeded() {
			status = tx.Status
		}
		fmt.Fprintf(sb, "%s %s %s %s %-8s %s %s\n",
			time.Unix(tx.Timestamp, 0).UTC().Format("2006-01-02 15:04"),
			direction, Amount(tx.Amount), tx.TokenSymbol, tx.ChainName, status, tx.ExplorerURL)
	}
}
