package main

import (
	"errors"
	"fmt"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"

	"github.com/spf13/cobra"
)

var (
	flagUser string
	flagDays int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print a spending forecast for one user",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVarP(&flagUser, "user", "u", "", "User id")
	forecastCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Horizon in days (defaults to FORECAST_HORIZON_DAYS)")
	_ = forecastCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger("warn")
	defer logger.Sync()

	a, err := buildApp(cmd.Context(), cfg, observability.NewMetrics(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	days := flagDays
	if days == 0 {
		days = cfg.Forecast.HorizonDays
	}

	result, err := a.services.Forecasts.Forecast(cmd.Context(), flagUser, days)
	var insufficient *domain.ErrInsufficientData
	if errors.As(err, &insufficient) {
		fmt.Printf("\n  %s\n", domain.ForecastFallbackMessage)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %-6s %12s\n", "Day", "Amount")
	for _, d := range result.DailyBreakdown {
		fmt.Printf("  %-6d %12.2f\n", d.Day, d.Amount)
	}
	fmt.Printf("  %-6s %12.2f\n", "Total", result.TotalPredicted)
	return nil
}
