package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/report"
	"portfolio_dashboard/internal/infrastructure/walletloader"
	"portfolio_dashboard/internal/pkg/logger"

	"github.com/spf13/cobra"
)

type watchFlags struct {
	sol     string
	eth     string
	wallets string
	tokens  int
	txs     int
}

func newWatchCommand() *cobra.Command {
	var f watchFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the portfolio report after every refresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.sol, "sol", "", "Solana wallet address")
	cmd.Flags().StringVar(&f.eth, "eth", "", "Ethereum wallet address")
	cmd.Flags().StringVar(&f.wallets, "wallets", "", "wallets file used when no address flag is given (default "+walletloader.DefaultWalletFilePath+")")
	cmd.Flags().IntVar(&f.tokens, "tokens", 10, "maximum token rows per report")
	cmd.Flags().IntVar(&f.txs, "txs", 10, "maximum transactions per report")
	return cmd
}

// resolveWallets returns the addresses given on the command line, or those from the wallets file.
func resolveWallets(f watchFlags) (map[entity.Chain]string, error) {
	if f.sol == "" && f.eth == "" {
		return walletloader.NewWalletFileLoader(f.wallets, logger.NewSlogAdapter("component", "wallets")).GetWallets()
	}

	wallets := make(map[entity.Chain]string, len(entity.Chains))
	for _, in := range []struct {
		flag  string
		chain entity.Chain
		raw   string
	}{
		{"sol", entity.ChainSolana, f.sol},
		{"eth", entity.ChainEthereum, f.eth},
	} {
		address, err := walletloader.NormalizeAddress(in.chain, in.raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", in.flag, err)
		}
		if address != "" {
			wallets[in.chain] = address
		}
	}
	return wallets, nil
}

func runWatch(ctx context.Context, f watchFlags) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = app.zapLogger.Sync() }()

	wallets, err := resolveWallets(f)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		return errors.New("no wallet to watch: pass --sol/--eth or list addresses in a wallets file")
	}

	app.store.Subscribe(func(st store.State) {
		if st.Loading {
			return
		}
		if err := report.Render(os.Stdout, app.dashboard.Compute(st), report.Options{
			MaxTokens:       f.tokens,
			MaxTransactions: f.txs,
		}); err != nil {
			logger.Error("Failed to render report", "error", err)
		}
	})

	for _, chain := range entity.Chains {
		if address, ok := wallets[chain]; ok {
			app.service.SetAddress(ctx, chain, address)
		}
	}
	app.service.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	logger.Info("Stopping watch")
	app.service.Stop()
	return nil
}
