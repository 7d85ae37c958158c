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

	"github.com/Shrey257/CashAI/internal/config"
	"github.com/Shrey257/CashAI/internal/handler"
	"github.com/Shrey257/CashAI/internal/infra/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagAutoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagAutoMigrate, "migrate", true, "Create tables and seed categories before serving (sqlite and postgres)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Server.LogLevel),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("text_service", cfg.Text.Service),
		zap.Duration("http_timeout", cfg.Resilience.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.Text.CacheTTL),
		zap.Int("max_retries", cfg.Resilience.MaxRetries),
		zap.Duration("initial_backoff", cfg.Resilience.InitialBackoff),
		zap.Int("forecast_horizon_days", cfg.Forecast.HorizonDays),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Services ---
	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagAutoMigrate && cfg.Store.Driver != config.DriverSupabase {
		if err := a.backend.migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("record store migrated", zap.String("driver", cfg.Store.Driver))
	}

	// --- Router ---
	router := handler.NewRouter(a.services, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-quit:
	}

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
