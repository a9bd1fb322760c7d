package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_dashboard/internal/infrastructure/restapi"
	"portfolio_dashboard/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = app.zapLogger.Sync() }()

	if app.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := restapi.NewPortfolioHandler(app.service, app.store, app.dashboard, logger.NewSlogAdapter("component", "api"))
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		Logger:          app.zapLogger,
		AllowOrigins:    app.cfg.CORS.AllowOrigins,
		Metrics:         true,
		SwaggerEnabled:  app.cfg.Swagger.Enabled,
		SwaggerPath:     app.cfg.Swagger.Path,
		SwaggerSpecFile: app.cfg.Swagger.SpecFile,
	})

	app.service.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(app.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(app.cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err, ok := <-serverErr:
		if ok {
			app.service.Stop()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}

	app.service.Stop()
	logger.Info("Portfolio dashboard stopped")
	return nil
}
