package service

import (
	"fmt"
	"math"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
)

// minDistinctDays is the smallest history a line can be fitted through.
const minDistinctDays = 2

// DefaultMaxHorizonDays caps how far ahead a forecast may look.
const DefaultMaxHorizonDays = 366

// Forecaster projects near-term spending by fitting an ordinary least squares
// line of expense amount on day offset. It holds no state besides its clock.
type Forecaster struct {
	now        func() time.Time
	maxHorizon int
}

// NewForecaster creates a forecaster. A nil clock means time.Now.
func NewForecaster(now func() time.Time) *Forecaster {
	if now == nil {
		now = time.Now
	}
	return &Forecaster{now: now, maxHorizon: DefaultMaxHorizonDays}
}

// WithMaxHorizon sets the largest accepted horizon. Values below 1 keep the default.
func (f *Forecaster) WithMaxHorizon(days int) *Forecaster {
	if days >= 1 {
		f.maxHorizon = days
	}
	return f
}

// Forecast fits history and predicts each of the next horizonDays days.
// Every expense is one observation; several on the same day are not summed.
func (f *Forecaster) Forecast(history []domain.Expense, horizonDays int) (*domain.ForecastResult, error) {
	if horizonDays < 1 {
		return nil, &domain.ErrValidation{Field: "days", Message: "forecast horizon must be at least 1 day"}
	}
	if horizonDays > f.maxHorizon {
		return nil, &domain.ErrValidation{Field: "days", Message: fmt.Sprintf("forecast horizon must be at most %d days", f.maxHorizon)}
	}

	now := f.now()
	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	days := make(map[int]struct{}, len(history))

	for i, e := range history {
		offset := DayOffset(e.Date, now)
		days[offset] = struct{}{}
		xs[i] = float64(offset)
		ys[i] = e.Amount.InexactFloat64()
	}

	if len(days) < minDistinctDays {
		return nil, &domain.ErrInsufficientData{DistinctDays: len(days), Required: minDistinctDays}
	}

	slope, intercept := fitLine(xs, ys)

	result := &domain.ForecastResult{
		DailyBreakdown: make([]domain.DailyPrediction, 0, horizonDays),
	}
	for day := 1; day <= horizonDays; day++ {
		amount := intercept + slope*float64(day)
		result.DailyBreakdown = append(result.DailyBreakdown, domain.DailyPrediction{Day: day, Amount: amount})
		result.TotalPredicted += amount
	}
	return result, nil
}

// DayOffset is the signed number of whole days from now to t. It floors rather
// than truncates, so a negative partial day rounds toward the earlier day:
// an expense one hour ago sits on day -1, not day 0.
func DayOffset(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// fitLine returns the OLS slope and intercept of ys on xs using centered sums.
// xs must contain at least two distinct values.
func fitLine(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept
}
