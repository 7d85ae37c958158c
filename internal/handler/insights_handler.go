package handler

import (
	"net/http"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Insights & chat
// ============================================================

type adviceRequest struct {
	Question string `json:"question"`
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

type purchaseRequest struct {
	Item  string          `json:"item"`
	Price decimal.Decimal `json:"price"`
}

type allocationRequest struct {
	Income decimal.Decimal `json:"income"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string             `json:"response"`
	Outcome  domain.TextOutcome `json:"outcome"`
}

func spendingInsightsHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights")
		defer span.End()

		result, err := svc.SpendingInsights(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func savingTipHandler(svc *service.InsightService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/tip")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.SavingTip(ctx))
	}
}

func expenseCauseHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/cause")
		defer span.End()

		result, err := svc.ExpenseCause(ctx, UserIDFromContext(ctx), r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func adviceHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/advice")
		defer span.End()

		var req adviceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.Advice(ctx, UserIDFromContext(ctx), req.Question)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func scenarioHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/scenario")
		defer span.End()

		var req scenarioRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.SimulateScenario(ctx, UserIDFromContext(ctx), req.Scenario)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func purchaseHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/purchase")
		defer span.End()

		var req purchaseRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.PurchaseValue(ctx, UserIDFromContext(ctx), req.Item, req.Price)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func allocationHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/allocation")
		defer span.End()

		var req allocationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.BudgetAllocation(ctx, req.Income)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func chatHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req chatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.Chat(ctx, UserIDFromContext(ctx), req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Response: result.Text, Outcome: result.Outcome})
	}
}
