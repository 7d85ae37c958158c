// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var expenseTracer = otel.Tracer("service/expenses")

// ExpenseService records expenses and evaluates the affected budget.
type ExpenseService struct {
	store       port.RecordStore
	categorizer *Categorizer
	evaluator   *BudgetEvaluator
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpenseService creates a new expense service.
func NewExpenseService(
	store port.RecordStore,
	categorizer *Categorizer,
	evaluator *BudgetEvaluator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		store:       store,
		categorizer: categorizer,
		evaluator:   evaluator,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to date expenses recorded without a date.
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// Categories lists every known category.
func (s *ExpenseService) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Categories")
	defer span.End()

	return s.store.ListCategories(ctx)
}

// List returns the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if filter.Limit < 0 {
		return nil, &domain.ErrValidation{Field: "limit", Message: "limit must not be negative"}
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, &domain.ErrValidation{Field: "from", Message: "from must be before to"}
	}
	return s.store.ListExpenses(ctx, userID, filter)
}

// Record stores a new expense, then recomputes the category's all-time total
// and evaluates its budget. Failures after the insert are logged and leave the
// threshold event uncrossed; the expense stays recorded.
func (s *ExpenseService) Record(ctx context.Context, userID string, in domain.NewExpense) (*domain.RecordResult, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Record")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("record_expense", time.Since(start))
	}()

	if !in.Amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be greater than zero"}
	}

	category, source, err := s.resolveCategory(ctx, in)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  category.ID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	result := &domain.RecordResult{
		Expense:        expense,
		Category:       category,
		CategorySource: source,
		Threshold:      domain.ThresholdEvent{Category: category.Name},
	}

	event, err := s.evaluate(ctx, userID, *expense, category)
	if err != nil {
		s.logger.Error("threshold evaluation failed after insert",
			zap.String("user_id", userID),
			zap.String("expense_id", expense.ID),
			zap.Error(err),
		)
		return result, nil
	}

	result.Threshold = event
	result.Warning = event.Warning()
	if event.Crossed {
		s.logger.Info("budget threshold crossed",
			zap.String("user_id", userID),
			zap.String("category", category.Name),
			zap.String("percentage_used", event.PercentageUsed.StringFixed(2)),
		)
	}
	return result, nil
}

func (s *ExpenseService) resolveCategory(ctx context.Context, in domain.NewExpense) (domain.Category, domain.CategorySource, error) {
	if in.CategoryID != "" {
		cat, err := s.store.GetCategory(ctx, in.CategoryID)
		if err != nil {
			return domain.Category{}, "", err
		}
		return *cat, domain.CategorySourceExplicit, nil
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return domain.Category{}, "", fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return domain.Category{}, "", &domain.ErrNotFound{Resource: "category", ID: domain.CategoryOther.Slug()}
	}

	cat, source := s.categorizer.Categorize(ctx, in.Description, in.Amount, categories)
	return cat, source, nil
}

func (s *ExpenseService) evaluate(ctx context.Context, userID string, expense domain.Expense, category domain.Category) (domain.ThresholdEvent, error) {
	spent, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{CategoryID: category.ID})
	if err != nil {
		return domain.ThresholdEvent{}, fmt.Errorf("recompute category total: %w", err)
	}

	budget, err := s.store.GetBudget(ctx, userID, category.ID)
	if err != nil {
		return domain.ThresholdEvent{}, fmt.Errorf("get budget: %w", err)
	}

	return s.evaluator.Evaluate(expense, category.Name, budget, domain.SumAmounts(spent))
}
