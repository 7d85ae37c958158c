package handler

import (
	"errors"
	"net/http"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/service"

	"go.uber.org/zap"
)

// forecastHandler answers 200 with a null forecast and a message when the
// history is too short.
func forecastHandler(svc *service.ForecastService, defaultDays int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/forecast")
		defer span.End()

		days, err := parseIntParam(r, "days", defaultDays)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.Forecast(ctx, UserIDFromContext(ctx), days)
		var insufficient *domain.ErrInsufficientData
		if errors.As(err, &insufficient) {
			writeJSON(w, http.StatusOK, domain.ForecastResponse{Message: domain.ForecastFallbackMessage})
			return
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		dashboard, err := svc.Get(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}
