// Package pgstore implements port.RecordStore on PostgreSQL with pgx.
//
// Money columns are NUMERIC. They are written from decimal strings and read
// back through ::text so no amount ever passes through float64.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/port"
)

var tracer = otel.Tracer("infra/pgstore")

var _ port.RecordStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS expenses (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	category_id TEXT NOT NULL REFERENCES categories(id),
	amount      NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	description TEXT NOT NULL DEFAULT '',
	date        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_expenses_user_category ON expenses (user_id, category_id);

CREATE TABLE IF NOT EXISTS budgets (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	category_id      TEXT NOT NULL REFERENCES categories(id),
	amount           NUMERIC(14,2) NOT NULL,
	notify_threshold NUMERIC(5,2) NOT NULL DEFAULT 90,
	UNIQUE (user_id, category_id)
);

CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	name           TEXT NOT NULL,
	target_amount  NUMERIC(14,2) NOT NULL,
	current_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	deadline       TIMESTAMPTZ NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	status         TEXT NOT NULL DEFAULT 'in_progress'
);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals (user_id);
`

// Store is a PostgreSQL-backed record store.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens a connection pool for databaseURL and verifies it.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("pgstore: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Migrate creates the schema and seeds the default categories.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pgstore.Migrate")
	defer span.End()

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range domain.DefaultCategories() {
		batch.Queue(`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, c.ID, c.Name)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	s.logger.Debug("postgres schema ready")
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// ============================================================
// Categories
// ============================================================

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListCategories")
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetCategory")
	defer span.End()

	var c domain.Category
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, categoryID).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ============================================================
// Expenses
// ============================================================

func (s *Store) CreateExpense(ctx context.Context, e *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "pgstore.CreateExpense")
	defer span.End()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (id, user_id, category_id, amount, description, date)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
		e.ID, e.UserID, e.CategoryID, e.Amount.String(), e.Description, e.Date)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// ListExpenses returns the user's expenses newest first.
func (s *Store) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListExpenses")
	defer span.End()

	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("date < $%d", len(args)))
	}

	query := `SELECT id, user_id, category_id, amount::text, description, date FROM expenses WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses, err := pgx.CollectRows(rows, scanExpense)
	if err != nil {
		return nil, fmt.Errorf("scan expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(row pgx.CollectableRow) (domain.Expense, error) {
	var (
		e      domain.Expense
		amount string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &amount, &e.Description, &e.Date); err != nil {
		return e, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return e, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Amount = d
	return e, nil
}

// ============================================================
// Budgets
// ============================================================

const budgetColumns = `id, user_id, category_id, amount::text, notify_threshold::text`

func (s *Store) GetBudget(ctx context.Context, userID, categoryID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetBudget")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND category_id = $2`,
		userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBudget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListBudgets")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY category_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	budgets, err := pgx.CollectRows(rows, scanBudget)
	if err != nil {
		return nil, fmt.Errorf("scan budgets: %w", err)
	}
	return budgets, nil
}

// UpsertBudget inserts the budget or replaces amount and threshold of the
// existing (user, category) row, returning the stored row.
func (s *Store) UpsertBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "pgstore.UpsertBudget")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, notify_threshold)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric)
		ON CONFLICT (user_id, category_id)
		DO UPDATE SET amount = EXCLUDED.amount, notify_threshold = EXCLUDED.notify_threshold
		RETURNING `+budgetColumns,
		b.ID, b.UserID, b.CategoryID, b.Amount.String(), b.NotifyThreshold.String())
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	saved, err := pgx.CollectExactlyOneRow(rows, scanBudget)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	return &saved, nil
}

func scanBudget(row pgx.CollectableRow) (domain.Budget, error) {
	var (
		b                 domain.Budget
		amount, threshold string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &amount, &threshold); err != nil {
		return b, err
	}
	var err error
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return b, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if b.NotifyThreshold, err = decimal.NewFromString(threshold); err != nil {
		return b, fmt.Errorf("parse threshold %q: %w", threshold, err)
	}
	return b, nil
}

// ============================================================
// Goals
// ============================================================

const goalColumns = `id, user_id, name, target_amount::text, current_amount::text, deadline, created_at, status`

func (s *Store) CreateGoal(ctx context.Context, g *domain.FinancialGoal) error {
	ctx, span := tracer.Start(ctx, "pgstore.CreateGoal")
	defer span.End()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, created_at, status)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline, g.CreatedAt, string(g.Status))
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetGoal")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGoal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ErrNotFound{Resource: "goal", ID: goalID}
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.FinancialGoal, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListGoals")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY deadline`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	goals, err := pgx.CollectRows(rows, scanGoal)
	if err != nil {
		return nil, fmt.Errorf("scan goals: %w", err)
	}
	return goals, nil
}

func scanGoal(row pgx.CollectableRow) (domain.FinancialGoal, error) {
	var (
		g               domain.FinancialGoal
		target, current string
		status          string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &current, &g.Deadline, &g.CreatedAt, &status); err != nil {
		return g, err
	}
	var err error
	if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return g, fmt.Errorf("parse target %q: %w", target, err)
	}
	if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return g, fmt.Errorf("parse current %q: %w", current, err)
	}
	g.Status = domain.GoalStatus(status)
	return g, nil
}
