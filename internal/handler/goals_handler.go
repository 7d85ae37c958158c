package handler

import (
	"net/http"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func listGoalsHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals")
		defer span.End()

		goals, err := svc.List(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, goals)
	}
}

func createGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		var req domain.GoalRequest
		if !decodeBody(w, r, &req) {
			return
		}
		goal, err := svc.Create(ctx, UserIDFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, goal)
	}
}

func goalFeasibilityHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals/feasibility")
		defer span.End()

		var req domain.GoalRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := svc.Feasibility(ctx, UserIDFromContext(ctx), req.TargetAmount, req.Deadline)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func goalStrategiesHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals/{goalId}/strategies")
		defer span.End()

		result, err := svc.Strategies(ctx, UserIDFromContext(ctx), chi.URLParam(r, "goalId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
