package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/handler"
	"github.com/Shrey257/CashAI/internal/infra/cache"
	"github.com/Shrey257/CashAI/internal/infra/client"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/infra/sqlstore"
	"github.com/Shrey257/CashAI/internal/service"

	"go.uber.org/zap"
)

const testUser = "user-1"

type testAPI struct {
	router http.Handler
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := sqlstore.Open("file:"+name+"?mode=memory&cache=shared", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tipCache := cache.New[string](time.Minute)
	t.Cleanup(tipCache.Close)

	text := client.Disabled{}
	expenses := service.NewExpenseService(store,
		service.NewCategorizer(text, metrics, logger),
		service.NewBudgetEvaluator(metrics, logger),
		metrics, logger)
	budgets := service.NewBudgetService(store, logger)
	forecasts := service.NewForecastService(store, service.NewForecaster(nil), metrics, logger)
	insights := service.NewInsightService(store, text, tipCache, metrics, logger, 0)
	tokens := service.NewTokenVerifier("test-secret", time.Hour)

	router := handler.NewRouter(handler.Services{
		Expenses:        expenses,
		Budgets:         budgets,
		Forecasts:       forecasts,
		Insights:        insights,
		Goals:           service.NewGoalService(store, logger),
		Dashboard:       service.NewDashboardService(expenses, budgets, insights, forecasts, 30, metrics, logger),
		Tokens:          tokens,
		Store:           store,
		ForecastHorizon: 30,
	}, metrics, logger)

	token, err := tokens.IssueAccessToken(testUser)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &testAPI{router: router, token: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_DegradedStore(t *testing.T) {
	router := handler.NewRouter(handler.Services{Store: failingPinger{}}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got %s", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_StoreDown(t *testing.T) {
	router := handler.NewRouter(handler.Services{Store: failingPinger{}}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestV1_RequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var cats []domain.Category
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != len(domain.DefaultCategories()) {
		t.Errorf("expected seeded categories, got %d", len(cats))
	}
}

func TestCreateExpense_WarnsWhenThresholdCrossed(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPut, "/v1/budgets/food", map[string]any{
		"amount": "100", "notify_threshold": "90",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("budget upsert: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = api.do(t, http.MethodPost, "/v1/expenses", map[string]any{
		"amount": "95", "category_id": "food", "description": "groceries",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var result domain.RecordResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Threshold.Crossed {
		t.Error("expected threshold to be crossed")
	}
	if result.Warning != "Warning: you've reached 95% of your Food budget!" {
		t.Errorf("unexpected warning %q", result.Warning)
	}
	if result.CategorySource != domain.CategorySourceExplicit {
		t.Errorf("expected explicit category, got %s", result.CategorySource)
	}
}

func TestCreateExpense_RejectsNonPositiveAmount(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/expenses", map[string]any{"amount": "0", "category_id": "food"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateExpense_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/expenses", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+api.token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/expenses", map[string]any{"amount": "5", "category_id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestForecast_InsufficientHistoryFallsBack(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/forecast?days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp domain.ForecastResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Forecast != nil {
		t.Error("expected null forecast")
	}
	if resp.Message != domain.ForecastFallbackMessage {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestForecast_InvalidDays(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/forecast?days=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestForecast_HorizonAboveCap(t *testing.T) {
	api := newTestAPI(t)

	for _, days := range []string{"367", "100000000", "9223372036854775807"} {
		rec := api.do(t, http.MethodGet, "/v1/forecast?days="+days, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("days=%s: expected 400, got %d", days, rec.Code)
		}
	}
}

func TestSavingTip_FallsBackWhenTextServiceUnavailable(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/insights/tip", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result domain.TextResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Outcome != domain.TextServiceUnavailable || result.Text != service.FallbackSavingTip {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/chat", map[string]string{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGoalStrategies_UnknownGoal(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/goals/missing/strategies", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestInsightMetrics(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodGet, "/v1/insights/tip", nil)
	rec := api.do(t, http.MethodGet, "/v1/metrics/insights", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap domain.InsightMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TextFallbacks != 1 {
		t.Errorf("expected one fallback, got %d", snap.TextFallbacks)
	}
}
