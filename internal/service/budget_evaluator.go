package service

import (
	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// BudgetEvaluator decides whether an insert pushed a category over its
// notification threshold. It keeps no state between calls: the threshold
// state is re-derived from the category total every time.
type BudgetEvaluator struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBudgetEvaluator creates a new evaluator.
func NewBudgetEvaluator(metrics *observability.Metrics, logger *zap.Logger) *BudgetEvaluator {
	return &BudgetEvaluator{metrics: metrics, logger: logger}
}

// Evaluate computes the threshold event for expense given the category's
// all-time total after the insert. A nil budget means no budget is set.
// A non-positive cap is logged and counted but reported as not crossed.
func (e *BudgetEvaluator) Evaluate(expense domain.Expense, categoryName string, budget *domain.Budget, categoryTotal decimal.Decimal) (domain.ThresholdEvent, error) {
	event := domain.ThresholdEvent{Category: categoryName}

	if !expense.Amount.IsPositive() {
		return event, &domain.ErrValidation{Field: "amount", Message: "amount must be greater than zero"}
	}
	if budget == nil {
		return event, nil
	}

	event.Threshold = budget.NotifyThreshold
	if !budget.Amount.IsPositive() {
		invalid := &domain.ErrInvalidBudget{CategoryID: budget.CategoryID, Amount: budget.Amount.String()}
		e.logger.Warn("skipping threshold evaluation",
			zap.String("user_id", budget.UserID),
			zap.Error(invalid),
		)
		e.metrics.IncrInvalidBudget()
		return event, nil
	}

	event.PercentageUsed = PercentageUsed(categoryTotal, budget.Amount)
	event.Crossed = event.PercentageUsed.GreaterThanOrEqual(budget.NotifyThreshold)
	if event.Crossed {
		e.metrics.IncrThresholdCrossed(categoryName)
	}
	return event, nil
}

// PercentageUsed returns spent / limit * 100, or zero when limit is not positive.
func PercentageUsed(spent, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	return spent.Mul(hundred).Div(limit)
}
