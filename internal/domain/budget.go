package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultNotifyThreshold is the percentage used when a budget is saved without one.
var DefaultNotifyThreshold = decimal.NewFromInt(90)

// Budget is the monthly cap for one (user, category) pair.
type Budget struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CategoryID      string          `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	NotifyThreshold decimal.Decimal `json:"notify_threshold"`
}

// BudgetUsage is a budget together with what has been spent against it.
type BudgetUsage struct {
	Budget
	CategoryName   string          `json:"category_name"`
	Spent          decimal.Decimal `json:"spent"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
}

// ThresholdEvent is the outcome of evaluating a budget after an insert.
type ThresholdEvent struct {
	Category       string          `json:"category"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	Threshold      decimal.Decimal `json:"threshold"`
	Crossed        bool            `json:"crossed"`
}

// Warning renders the user-facing notification for a crossed threshold.
// It returns an empty string when nothing was crossed.
func (e ThresholdEvent) Warning() string {
	if !e.Crossed {
		return ""
	}
	return fmt.Sprintf("Warning: you've reached %d%% of your %s budget!",
		e.PercentageUsed.Floor().IntPart(), e.Category)
}
