package service_test

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/service"
)

func expenseAt(offsetDays float64, amount string) domain.Expense {
	return domain.Expense{
		Amount: dec(amount),
		Date:   fixedNow.Add(time.Duration(offsetDays * 24 * float64(time.Hour))),
	}
}

func TestForecast_DailyBreakdownLengthAndOrder(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(-3, "12.50"),
		expenseAt(-2, "8"),
		expenseAt(-1, "20"),
	}

	result, err := f.Forecast(history, 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.DailyBreakdown) != 30 {
		t.Fatalf("expected 30 days, got %d", len(result.DailyBreakdown))
	}
	for i, p := range result.DailyBreakdown {
		if p.Day != i+1 {
			t.Errorf("position %d: expected day %d, got %d", i, i+1, p.Day)
		}
	}
}

func TestForecast_TotalIsSumOfDays(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(-10, "5"),
		expenseAt(-7, "14.25"),
		expenseAt(-3, "9.99"),
		expenseAt(-1, "30"),
	}

	result, err := f.Forecast(history, 14)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var sum float64
	for _, p := range result.DailyBreakdown {
		sum += p.Amount
	}
	if math.Abs(sum-result.TotalPredicted) > 1e-9 {
		t.Errorf("expected total %.6f to equal sum %.6f", result.TotalPredicted, sum)
	}
}

func TestForecast_EmptyHistory(t *testing.T) {
	f := service.NewForecaster(clock)

	_, err := f.Forecast(nil, 30)

	var insufficient *domain.ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if insufficient.DistinctDays != 0 {
		t.Errorf("expected 0 distinct days, got %d", insufficient.DistinctDays)
	}
}

func TestForecast_SingleDayIsInsufficient(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(-1, "10"),
		expenseAt(-0.9, "25"),
	}

	_, err := f.Forecast(history, 30)

	var insufficient *domain.ErrInsufficientData
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if insufficient.DistinctDays != 1 {
		t.Errorf("expected 1 distinct day, got %d", insufficient.DistinctDays)
	}
}

func TestForecast_PerfectLine(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(0, "10"),
		expenseAt(1, "20"),
		expenseAt(2, "30"),
	}

	result, err := f.Forecast(history, 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	day5 := result.DailyBreakdown[4]
	if math.Abs(day5.Amount-60) > 1e-9 {
		t.Errorf("expected day 5 = 60, got %f", day5.Amount)
	}
}

func TestForecast_NegativeTrendIsNotClamped(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(-3, "30"),
		expenseAt(-2, "20"),
		expenseAt(-1, "10"),
	}

	result, err := f.Forecast(history, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.DailyBreakdown[2].Amount >= 0 {
		t.Errorf("expected negative projection on day 3, got %f", result.DailyBreakdown[2].Amount)
	}
}

func TestForecast_Idempotent(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{
		expenseAt(-6, "7.30"),
		expenseAt(-4, "11"),
		expenseAt(-4, "3.45"),
		expenseAt(-2, "19.99"),
	}

	first, err := f.Forecast(history, 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := f.Forecast(history, 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical forecasts for identical history")
	}
}

func TestForecast_InvalidHorizon(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{expenseAt(-2, "1"), expenseAt(-1, "2")}

	_, err := f.Forecast(history, 0)

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestForecast_HorizonAboveCapIsRejected(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{expenseAt(-2, "1"), expenseAt(-1, "2")}

	for _, days := range []int{service.DefaultMaxHorizonDays + 1, 100000000, math.MaxInt} {
		_, err := f.Forecast(history, days)

		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Fatalf("horizon %d: expected ErrValidation, got %v", days, err)
		}
		if validation.Field != "days" {
			t.Errorf("horizon %d: expected field days, got %q", days, validation.Field)
		}
	}
}

func TestForecast_HorizonAtCapSucceeds(t *testing.T) {
	f := service.NewForecaster(clock)
	history := []domain.Expense{expenseAt(-2, "1"), expenseAt(-1, "2")}

	result, err := f.Forecast(history, service.DefaultMaxHorizonDays)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.DailyBreakdown) != service.DefaultMaxHorizonDays {
		t.Errorf("expected %d days, got %d", service.DefaultMaxHorizonDays, len(result.DailyBreakdown))
	}
}

func TestForecast_WithMaxHorizon(t *testing.T) {
	f := service.NewForecaster(clock).WithMaxHorizon(7)
	history := []domain.Expense{expenseAt(-2, "1"), expenseAt(-1, "2")}

	if _, err := f.Forecast(history, 7); err != nil {
		t.Fatalf("expected no error at the cap, got %v", err)
	}
	var validation *domain.ErrValidation
	if _, err := f.Forecast(history, 8); !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation above the cap, got %v", err)
	}
}

func TestDayOffset_Floors(t *testing.T) {
	cases := []struct {
		name   string
		offset time.Duration
		want   int
	}{
		{"now", 0, 0},
		{"one hour ago", -time.Hour, -1},
		{"exactly one day ago", -24 * time.Hour, -1},
		{"25 hours ago", -25 * time.Hour, -2},
		{"23 hours ahead", 23 * time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.DayOffset(fixedNow.Add(tc.offset), fixedNow); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
