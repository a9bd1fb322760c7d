package main

import (
	"fmt"

	"portfolio_dashboard/internal/app/portfolio"
	"portfolio_dashboard/internal/app/service"
	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/chainapi"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/logger"
	"portfolio_dashboard/internal/pkg/metrics"

	"go.uber.org/zap"
)

// application holds the wiring shared by every subcommand.
type application struct {
	cfg       *configloader.Config
	zapLogger *zap.Logger
	store     *store.Store
	service   *service.PortfolioServiceImpl
	dashboard *portfolio.Dashboard
}

func bootstrap() (*application, error) {
	configloader.LoadDotEnv()

	path := configloader.ResolvePath(configPath)
	cfg, err := configloader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	zapLogger, err := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Info("Configuration loaded", "path", path, "chain_api", cfg.ChainAPI.BaseURL)

	metrics.MustRegisterMetrics()

	client := chainapi.NewChainAPIClient(
		cfg.ChainAPI.BaseURL,
		cfg.RequestTimeout(),
		cfg.ChainAPI.RateLimit,
		cfg.ChainAPI.BurstLimit,
		zapLogger,
	)

	st := store.New()
	st.Subscribe(publishMetrics)

	svc := service.NewPortfolioService(client, st, logger.NewSlogAdapter("component", "orchestrator"), service.Options{
		RefreshInterval:  cfg.RefreshInterval(),
		TransactionLimit: cfg.ChainAPI.TransactionLimit,
	})

	return &application{
		cfg:       cfg,
		zapLogger: zapLogger,
		store:     st,
		service:   svc,
		dashboard: portfolio.NewDashboard(cfg.CacheExpiration(), cfg.CacheCleanupInterval()),
	}, nil
}

func publishMetrics(st store.State) {
	metrics.TotalValueUSD.Set(portfolio.TotalValue(st))
	for _, chain := range entity.Chains {
		metrics.ChainValueUSD.WithLabelValues(chain.String()).Set(portfolio.ChainValue(st.Snapshot(chain)))
	}
}
