package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var _ port.RecordStore = (*Client)(nil)

// Row shapes mirror the table columns. PostgREST returns NUMERIC as JSON
// numbers, which decimal.Decimal decodes without going through float64.

type expenseRow struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

type budgetRow struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CategoryID      string          `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	NotifyThreshold decimal.Decimal `json:"notify_threshold"`
}

type goalRow struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      time.Time       `json:"deadline"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        string          `json:"status"`
}

// ============================================================
// Categories
// ============================================================

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	q := url.Values{}
	q.Set("select", "id,name")
	q.Set("order", "name.asc")

	var rows []domain.Category
	if err := c.selectRows(ctx, "categories", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategory")
	defer span.End()

	q := url.Values{}
	q.Set("select", "id,name")
	q.Set("id", eq(categoryID))
	q.Set("limit", "1")

	var rows []domain.Category
	if err := c.selectRows(ctx, "categories", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &rows[0], nil
}

// ============================================================
// Expenses
// ============================================================

func (c *Client) CreateExpense(ctx context.Context, e *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", e.UserID))

	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  "expenses",
		body: expenseRow{
			ID:          e.ID,
			UserID:      e.UserID,
			CategoryID:  e.CategoryID,
			Amount:      e.Amount,
			Description: e.Description,
			Date:        e.Date.UTC(),
		},
		prefer: "return=minimal",
	})
	return err
}

// ListExpenses returns the user's expenses newest first.
func (c *Client) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpenses")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "date.desc,id.asc")
	if filter.CategoryID != "" {
		q.Set("category_id", eq(filter.CategoryID))
	}
	if filter.From != nil {
		q.Add("date", "gte."+filter.From.UTC().Format(time.RFC3339Nano))
	}
	if filter.To != nil {
		q.Add("date", "lt."+filter.To.UTC().Format(time.RFC3339Nano))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var rows []expenseRow
	if err := c.selectRows(ctx, "expenses", q, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Expense{
			ID:          r.ID,
			UserID:      r.UserID,
			CategoryID:  r.CategoryID,
			Amount:      r.Amount,
			Description: r.Description,
			Date:        r.Date,
		})
	}
	return out, nil
}

// ============================================================
// Budgets
// ============================================================

func (c *Client) GetBudget(ctx context.Context, userID, categoryID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudget")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("category_id", eq(categoryID))
	q.Set("limit", "1")

	var rows []budgetRow
	if err := c.selectRows(ctx, "budgets", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	b := toBudget(rows[0])
	return &b, nil
}

func (c *Client) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "category_id.asc")

	var rows []budgetRow
	if err := c.selectRows(ctx, "budgets", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		out = append(out, toBudget(r))
	}
	return out, nil
}

// UpsertBudget updates the existing (user, category) budget in place or
// inserts a new one. A concurrent insert that wins the unique index turns
// into an update.
func (c *Client) UpsertBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertBudget")
	defer span.End()

	existing, err := c.GetBudget(ctx, b.UserID, b.CategoryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return c.updateBudget(ctx, b)
	}

	body, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  "budgets",
		body: budgetRow{
			ID:              b.ID,
			UserID:          b.UserID,
			CategoryID:      b.CategoryID,
			Amount:          b.Amount,
			NotifyThreshold: b.NotifyThreshold,
		},
	})
	if errors.Is(err, errConflict) {
		return c.updateBudget(ctx, b)
	}
	if err != nil {
		return nil, err
	}
	return firstBudget(body, b.CategoryID)
}

func (c *Client) updateBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	q := url.Values{}
	q.Set("user_id", eq(b.UserID))
	q.Set("category_id", eq(b.CategoryID))

	body, err := c.do(ctx, request{
		method: http.MethodPatch,
		table:  "budgets",
		query:  q,
		body: map[string]any{
			"amount":           b.Amount,
			"notify_threshold": b.NotifyThreshold,
		},
	})
	if err != nil {
		return nil, err
	}
	return firstBudget(body, b.CategoryID)
}

func firstBudget(body []byte, categoryID string) (*domain.Budget, error) {
	var rows []budgetRow
	if err := decodeRows(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: categoryID}
	}
	b := toBudget(rows[0])
	return &b, nil
}

func toBudget(r budgetRow) domain.Budget {
	return domain.Budget{
		ID:              r.ID,
		UserID:          r.UserID,
		CategoryID:      r.CategoryID,
		Amount:          r.Amount,
		NotifyThreshold: r.NotifyThreshold,
	}
}

// ============================================================
// Goals
// ============================================================

func (c *Client) CreateGoal(ctx context.Context, g *domain.FinancialGoal) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateGoal")
	defer span.End()

	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  "goals",
		body: goalRow{
			ID:            g.ID,
			UserID:        g.UserID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Deadline:      g.Deadline.UTC(),
			CreatedAt:     g.CreatedAt.UTC(),
			Status:        string(g.Status),
		},
		prefer: "return=minimal",
	})
	return err
}

func (c *Client) GetGoal(ctx context.Context, userID, goalID string) (*domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetGoal")
	defer span.End()

	q := url.Values{}
	q.Set("id", eq(goalID))
	q.Set("user_id", eq(userID))
	q.Set("limit", "1")

	var rows []goalRow
	if err := c.selectRows(ctx, "goals", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: goalID}
	}
	g := toGoal(rows[0])
	return &g, nil
}

func (c *Client) ListGoals(ctx context.Context, userID string) ([]domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListGoals")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("order", "deadline.asc")

	var rows []goalRow
	if err := c.selectRows(ctx, "goals", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.FinancialGoal, 0, len(rows))
	for _, r := range rows {
		out = append(out, toGoal(r))
	}
	return out, nil
}

func toGoal(r goalRow) domain.FinancialGoal {
	return domain.FinancialGoal{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		Deadline:      r.Deadline,
		CreatedAt:     r.CreatedAt,
		Status:        domain.GoalStatus(r.Status),
	}
}
