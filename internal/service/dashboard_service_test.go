package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/cache"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/service"

	"go.uber.org/zap"
)

func newDashboardService(store *memStore, text *mockText) *service.DashboardService {
	m := observability.NewMetrics()
	logger := zap.NewNop()
	expenses := service.NewExpenseService(store, service.NewCategorizer(text, m, logger), service.NewBudgetEvaluator(m, logger), m, logger)
	budgets := service.NewBudgetService(store, logger)
	insights := service.NewInsightService(store, text, cache.New[string](time.Minute), m, logger, 0).WithClock(clock)
	forecasts := service.NewForecastService(store, service.NewForecaster(clock), m, logger)
	return service.NewDashboardService(expenses, budgets, insights, forecasts, 30, m, logger)
}

func TestDashboard_AllSections(t *testing.T) {
	store := newMemStore()
	store.addBudget("user-1", "food", "100", "90")
	for i := 1; i <= 7; i++ {
		store.addExpense("user-1", "food", "10", fixedNow.Add(-time.Duration(i)*24*time.Hour))
	}
	svc := newDashboardService(store, &mockText{reply: "Nice work."})

	dash, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(dash.RecentExpenses) != 5 {
		t.Errorf("expected 5 recent expenses, got %d", len(dash.RecentExpenses))
	}
	if len(dash.Budgets) != 1 || !dash.Budgets[0].PercentageUsed.Equal(dec("70")) {
		t.Errorf("unexpected budgets %+v", dash.Budgets)
	}
	if dash.Insights.Text != "Nice work." || dash.SavingTip.Text != "Nice work." {
		t.Errorf("unexpected text sections %+v / %+v", dash.Insights, dash.SavingTip)
	}
	if dash.Forecast == nil || len(dash.Forecast.DailyBreakdown) != 30 {
		t.Errorf("expected 30-day forecast, got %+v", dash.Forecast)
	}
}

func TestDashboard_ShortHistoryBlanksForecast(t *testing.T) {
	store := newMemStore()
	store.addExpense("user-1", "food", "10", fixedNow.Add(-time.Hour))
	svc := newDashboardService(store, &mockText{err: errTextDown})

	dash, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dash.Forecast != nil {
		t.Error("expected no forecast")
	}
	if dash.ForecastMessage != domain.ForecastFallbackMessage {
		t.Errorf("unexpected forecast message %q", dash.ForecastMessage)
	}
	if dash.Insights.Outcome != domain.TextServiceUnavailable {
		t.Errorf("expected insights fallback, got %s", dash.Insights.Outcome)
	}
}

func TestDashboard_StoreErrorFails(t *testing.T) {
	store := newMemStore()
	store.listExpensesErr = errors.New("connection reset")
	svc := newDashboardService(store, &mockText{reply: "x"})

	if _, err := svc.Get(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error")
	}
}
