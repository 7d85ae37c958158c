package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var forecastTracer = otel.Tracer("service/forecast")

// ForecastService reads a user's full expense history and runs the Forecaster on it.
type ForecastService struct {
	store      port.RecordStore
	forecaster *Forecaster
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewForecastService creates a new forecast service.
func NewForecastService(store port.RecordStore, forecaster *Forecaster, metrics *observability.Metrics, logger *zap.Logger) *ForecastService {
	return &ForecastService{store: store, forecaster: forecaster, metrics: metrics, logger: logger}
}

// Forecast projects spending for the next horizonDays days.
// Returns *domain.ErrInsufficientData when the history is too short.
func (s *ForecastService) Forecast(ctx context.Context, userID string, horizonDays int) (*domain.ForecastResult, error) {
	ctx, span := forecastTracer.Start(ctx, "ForecastService.Forecast")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("forecast.horizon_days", horizonDays),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("forecast", time.Since(start))
	}()

	history, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	result, err := s.forecaster.Forecast(history, horizonDays)
	if err != nil {
		var insufficient *domain.ErrInsufficientData
		if errors.As(err, &insufficient) {
			s.metrics.IncrForecast("insufficient_data")
			s.logger.Debug("forecast declined",
				zap.String("user_id", userID),
				zap.Int("distinct_days", insufficient.DistinctDays),
			)
		}
		return nil, err
	}

	s.metrics.IncrForecast("computed")
	span.SetAttributes(attribute.Float64("forecast.total", result.TotalPredicted))
	return result, nil
}
