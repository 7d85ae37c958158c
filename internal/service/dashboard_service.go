package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

const recentOnDashboard = 5

// DashboardService assembles the dashboard view from the other services.
type DashboardService struct {
	expenses  *ExpenseService
	budgets   *BudgetService
	insights  *InsightService
	forecasts *ForecastService
	horizon   int
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDashboardService creates a new dashboard service. horizon is the
// forecast length in days.
func NewDashboardService(
	expenses *ExpenseService,
	budgets *BudgetService,
	insights *InsightService,
	forecasts *ForecastService,
	horizon int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		expenses:  expenses,
		budgets:   budgets,
		insights:  insights,
		forecasts: forecasts,
		horizon:   horizon,
		metrics:   metrics,
		logger:    logger,
	}
}

// Get loads every dashboard section concurrently. Store errors fail the
// whole dashboard; a short history only blanks the forecast.
func (s *DashboardService) Get(ctx context.Context, userID string) (*domain.Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	dash := &domain.Dashboard{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recent, err := s.expenses.List(gCtx, userID, domain.ExpenseFilter{Limit: recentOnDashboard})
		if err != nil {
			return fmt.Errorf("recent expenses: %w", err)
		}
		dash.RecentExpenses = recent
		return nil
	})

	g.Go(func() error {
		budgets, err := s.budgets.List(gCtx, userID)
		if err != nil {
			return fmt.Errorf("budgets: %w", err)
		}
		dash.Budgets = budgets
		return nil
	})

	g.Go(func() error {
		insights, err := s.insights.SpendingInsights(gCtx, userID)
		if err != nil {
			return fmt.Errorf("insights: %w", err)
		}
		dash.Insights = insights
		return nil
	})

	g.Go(func() error {
		dash.SavingTip = s.insights.SavingTip(gCtx)
		return nil
	})

	g.Go(func() error {
		forecast, err := s.forecasts.Forecast(gCtx, userID, s.horizon)
		var insufficient *domain.ErrInsufficientData
		switch {
		case errors.As(err, &insufficient):
			dash.ForecastMessage = domain.ForecastFallbackMessage
			return nil
		case err != nil:
			return fmt.Errorf("forecast: %w", err)
		}
		dash.Forecast = forecast
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return dash, nil
}
