package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/port"
	"github.com/Shrey257/CashAI/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// readinessTimeout bounds the store ping behind /readyz.
const readinessTimeout = 2 * time.Second

// Services bundles what the router dispatches to. A nil Store skips the
// dependency check in the health endpoints.
type Services struct {
	Expenses        *service.ExpenseService
	Budgets         *service.BudgetService
	Forecasts       *service.ForecastService
	Insights        *service.InsightService
	Goals           *service.GoalService
	Dashboard       *service.DashboardService
	Tokens          TokenValidator
	Store           port.Pinger
	ForecastHorizon int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.PropagateTrace)
	r.Use(observability.RequestLogger(logger, metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Store, logger))
	r.Get("/readyz", readyzHandler(svc.Store, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JWTAuthMiddleware(svc.Tokens, logger))

		r.Get("/categories", listCategoriesHandler(svc.Expenses, logger))

		r.Get("/expenses", listExpensesHandler(svc.Expenses, logger))
		r.Post("/expenses", createExpenseHandler(svc.Expenses, logger))

		r.Get("/budgets", listBudgetsHandler(svc.Budgets, logger))
		r.Put("/budgets/{categoryId}", upsertBudgetHandler(svc.Budgets, logger))

		r.Get("/forecast", forecastHandler(svc.Forecasts, svc.ForecastHorizon, logger))
		r.Get("/dashboard", dashboardHandler(svc.Dashboard, logger))

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", spendingInsightsHandler(svc.Insights, logger))
			r.Get("/tip", savingTipHandler(svc.Insights))
			r.Get("/cause", expenseCauseHandler(svc.Insights, logger))
			r.Post("/advice", adviceHandler(svc.Insights, logger))
			r.Post("/scenario", scenarioHandler(svc.Insights, logger))
			r.Post("/purchase", purchaseHandler(svc.Insights, logger))
			r.Post("/allocation", allocationHandler(svc.Insights, logger))
		})
		r.Post("/chat", chatHandler(svc.Insights, logger))

		r.Get("/goals", listGoalsHandler(svc.Goals, logger))
		r.Post("/goals", createGoalHandler(svc.Goals, logger))
		r.Post("/goals/feasibility", goalFeasibilityHandler(svc.Goals, logger))
		r.Get("/goals/{goalId}/strategies", goalStrategiesHandler(svc.Goals, logger))

		r.Get("/metrics/insights", insightMetricsHandler(metrics))
	})

	return r
}

func healthzHandler(store port.Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "cashai-api", Status: "healthy", LastChecked: now},
		}

		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()

			start := time.Now()
			err := store.Ping(ctx)
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: record store ping failed", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "record-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(store port.Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logger.Warn("readyz: record store not ready", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func insightMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetInsightsSnapshot())
	}
}
