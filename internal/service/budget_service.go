package service

import (
	"context"
	"fmt"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var budgetTracer = otel.Tracer("service/budgets")

// BudgetService manages per-category monthly caps.
type BudgetService struct {
	store  port.RecordStore
	logger *zap.Logger
}

// NewBudgetService creates a new budget service.
func NewBudgetService(store port.RecordStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{store: store, logger: logger}
}

// Upsert creates or replaces the user's budget for a category.
// A zero threshold selects domain.DefaultNotifyThreshold.
func (s *BudgetService) Upsert(ctx context.Context, userID, categoryID string, amount, threshold decimal.Decimal) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("category.id", categoryID),
	)

	if !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "budget amount must be greater than zero"}
	}
	if threshold.IsZero() {
		threshold = domain.DefaultNotifyThreshold
	}
	if threshold.IsNegative() || threshold.GreaterThan(hundred) {
		return nil, &domain.ErrValidation{Field: "notify_threshold", Message: "threshold must be in (0, 100]"}
	}

	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertBudget(ctx, &domain.Budget{
		ID:              uuid.NewString(),
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          amount,
		NotifyThreshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	s.logger.Info("budget saved",
		zap.String("user_id", userID),
		zap.String("category_id", categoryID),
		zap.String("amount", saved.Amount.StringFixed(2)),
	)
	return saved, nil
}

// List returns the user's budgets with all-time spend and percentage used.
func (s *BudgetService) List(ctx context.Context, userID string) ([]domain.BudgetUsage, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []domain.BudgetUsage{}, nil
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	names := categoryNames(categories)
	spent := totalsByCategory(expenses)

	out := make([]domain.BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		total := spent[b.CategoryID]
		out = append(out, domain.BudgetUsage{
			Budget:         b,
			CategoryName:   names[b.CategoryID],
			Spent:          total,
			PercentageUsed: PercentageUsed(total, b.Amount),
		})
	}
	return out, nil
}

func categoryNames(categories []domain.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func totalsByCategory(expenses []domain.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.Amount)
	}
	return totals
}
