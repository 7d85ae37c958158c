package handler

import (
	"net/http"

	"github.com/Shrey257/CashAI/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type upsertBudgetRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	NotifyThreshold decimal.Decimal `json:"notify_threshold"`
}

func listBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
		defer span.End()

		budgets, err := svc.List(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func upsertBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{categoryId}")
		defer span.End()

		var req upsertBudgetRequest
		if !decodeBody(w, r, &req) {
			return
		}

		budget, err := svc.Upsert(ctx, UserIDFromContext(ctx), chi.URLParam(r, "categoryId"), req.Amount, req.NotifyThreshold)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}
