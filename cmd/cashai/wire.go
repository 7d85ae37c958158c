package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Shrey257/CashAI/internal/config"
	"github.com/Shrey257/CashAI/internal/handler"
	"github.com/Shrey257/CashAI/internal/infra/cache"
	"github.com/Shrey257/CashAI/internal/infra/client"
	"github.com/Shrey257/CashAI/internal/infra/gemini"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/infra/pgstore"
	"github.com/Shrey257/CashAI/internal/infra/resilience"
	"github.com/Shrey257/CashAI/internal/infra/sqlstore"
	"github.com/Shrey257/CashAI/internal/infra/supabase"
	"github.com/Shrey257/CashAI/internal/port"
	"github.com/Shrey257/CashAI/internal/service"

	"go.uber.org/zap"
)

// loadConfig reads .env, then the TOML file, then the environment.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return config.Load(flagConfig)
}

// backend is an opened record store plus its lifecycle hooks.
type backend struct {
	store   port.RecordStore
	migrate func(ctx context.Context) error
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := sqlstore.Open(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, migrate: s.Migrate, close: func() { _ = s.Close() }}, nil

	case config.DriverPostgres:
		s, err := pgstore.Connect(ctx, cfg.Store.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, migrate: s.Migrate, close: s.Close}, nil

	case config.DriverSupabase:
		s := supabase.NewClient(
			httpClient,
			cfg.Store.SupabaseURL,
			cfg.Store.SupabaseAnonKey,
			cfg.Store.SupabaseServiceKey,
			resilience.NewGuard("supabase", resilienceConfig(cfg)),
			logger,
		)
		return &backend{
			store: s,
			migrate: func(context.Context) error {
				return fmt.Errorf("the supabase schema is managed in the Supabase project, not by cashai")
			},
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openTextService(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (port.TextService, error) {
	guard := resilience.NewGuard("text-service", resilienceConfig(cfg))

	switch cfg.Text.Service {
	case config.TextAgent:
		logger.Info("text service: http agent", zap.String("url", cfg.Text.URL))
		return client.NewTextServiceClient(httpClient, cfg.Text.URL, cfg.Text.APIKey, guard), nil
	case config.TextGemini:
		logger.Info("text service: gemini", zap.String("model", cfg.Text.GeminiModel))
		return gemini.New(ctx, cfg.Text.GeminiAPIKey, cfg.Text.GeminiModel, guard)
	default:
		logger.Warn("text service disabled, serving fallback texts")
		return client.Disabled{}, nil
	}
}

func resilienceConfig(cfg *config.Config) resilience.Config {
	return resilience.Config{
		MaxRetries:     cfg.Resilience.MaxRetries,
		InitialBackoff: cfg.Resilience.InitialBackoff,
		MaxConcurrency: cfg.Resilience.MaxConcurrency,
	}
}

// app is the fully wired service graph.
type app struct {
	services handler.Services
	backend  *backend
	tipCache *cache.InMemory[string]
}

func (a *app) Close() {
	a.tipCache.Close()
	a.backend.close()
}

func buildApp(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*app, error) {
	httpClient := &http.Client{Timeout: cfg.Resilience.HTTPTimeout}

	b, err := openStore(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	text, err := openTextService(ctx, cfg, httpClient, logger)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("open text service: %w", err)
	}

	tipCache := cache.New[string](cfg.Text.CacheTTL)

	expenses := service.NewExpenseService(b.store,
		service.NewCategorizer(text, metrics, logger),
		service.NewBudgetEvaluator(metrics, logger),
		metrics, logger)
	budgets := service.NewBudgetService(b.store, logger)
	forecasts := service.NewForecastService(b.store, service.NewForecaster(nil).WithMaxHorizon(cfg.Forecast.MaxHorizonDays), metrics, logger)
	insights := service.NewInsightService(b.store, text, tipCache, metrics, logger, cfg.Text.ContextMaxChars)
	goals := service.NewGoalService(b.store, logger)
	dashboard := service.NewDashboardService(expenses, budgets, insights, forecasts, cfg.Forecast.HorizonDays, metrics, logger)

	return &app{
		services: handler.Services{
			Expenses:        expenses,
			Budgets:         budgets,
			Forecasts:       forecasts,
			Insights:        insights,
			Goals:           goals,
			Dashboard:       dashboard,
			Tokens:          service.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
			Store:           b.store,
			ForecastHorizon: cfg.Forecast.HorizonDays,
		},
		backend:  b,
		tipCache: tipCache,
	}, nil
}
