package handler

import (
	"net/http"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Categories & expenses
// ============================================================

func listCategoriesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categories")
		defer span.End()

		categories, err := svc.Categories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func listExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		from, err := parseDateParam(r, "from")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		to, err := parseDateParam(r, "to")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		limit, err := parseIntParam(r, "limit", 0)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		expenses, err := svc.List(ctx, UserIDFromContext(ctx), domain.ExpenseFilter{
			From:       from,
			To:         to,
			CategoryID: r.URL.Query().Get("category_id"),
			Limit:      limit,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expenses)
	}
}

func createExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var in domain.NewExpense
		if !decodeBody(w, r, &in) {
			return
		}

		result, err := svc.Record(ctx, UserIDFromContext(ctx), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("category.source", string(result.CategorySource)),
			attribute.Bool("threshold.crossed", result.Threshold.Crossed),
		)
		writeJSON(w, http.StatusCreated, result)
	}
}
