package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/port"
)

var _ port.RecordStore = (*Store)(nil)

// ============================================================
// Categories
// ============================================================

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.ListCategories")
	defer span.End()

	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.GetCategory")
	defer span.End()

	var row categoryRow
	err := s.db.WithContext(ctx).Where("id = ?", categoryID).First(&row).Error
	switch {
	case err == nil:
		c := row.toDomain()
		return &c, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	default:
		return nil, fmt.Errorf("get category: %w", err)
	}
}

// ============================================================
// Expenses
// ============================================================

func (s *Store) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "sqlstore.CreateExpense")
	defer span.End()

	row := expenseRow{
		ID:          expense.ID,
		UserID:      expense.UserID,
		CategoryID:  expense.CategoryID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Date:        expense.Date.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// ListExpenses returns the user's expenses newest first.
func (s *Store) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.ListExpenses")
	defer span.End()

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("date < ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []expenseRow
	if err := q.Order("date DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// ============================================================
// Budgets
// ============================================================

func (s *Store) GetBudget(ctx context.Context, userID, categoryID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.GetBudget")
	defer span.End()

	var row budgetRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&row).Error
	switch {
	case err == nil:
		b := row.toDomain()
		return &b, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("get budget: %w", err)
	}
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.ListBudgets")
	defer span.End()

	var rows []budgetRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("category_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// UpsertBudget inserts the budget or, when the (user, category) pair already
// has one, replaces its amount and threshold keeping the existing id.
func (s *Store) UpsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.UpsertBudget")
	defer span.End()

	row := budgetRow{
		ID:              budget.ID,
		UserID:          budget.UserID,
		CategoryID:      budget.CategoryID,
		Amount:          budget.Amount,
		NotifyThreshold: budget.NotifyThreshold,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "notify_threshold"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	saved, err := s.GetBudget(ctx, budget.UserID, budget.CategoryID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: budget.CategoryID}
	}
	return saved, nil
}

// ============================================================
// Goals
// ============================================================

func (s *Store) CreateGoal(ctx context.Context, goal *domain.FinancialGoal) error {
	ctx, span := tracer.Start(ctx, "sqlstore.CreateGoal")
	defer span.End()

	row := goalRow{
		ID:            goal.ID,
		UserID:        goal.UserID,
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Deadline:      goal.Deadline.UTC(),
		CreatedAt:     goal.CreatedAt.UTC(),
		Status:        string(goal.Status),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.GetGoal")
	defer span.End()

	var row goalRow
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, userID).First(&row).Error
	switch {
	case err == nil:
		g := row.toDomain()
		return &g, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &domain.ErrNotFound{Resource: "goal", ID: goalID}
	default:
		return nil, fmt.Errorf("get goal: %w", err)
	}
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.ListGoals")
	defer span.End()

	var rows []goalRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("deadline ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]domain.FinancialGoal, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
