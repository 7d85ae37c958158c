package sqlstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shrey257/CashAI/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:"+name+"?mode=memory&cache=shared", zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestMigrate_SeedsCategoriesOnce(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != len(domain.DefaultCategories()) {
		t.Errorf("expected %d categories, got %d", len(domain.DefaultCategories()), len(cats))
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCategory(context.Background(), "rent")

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpenses_FilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	for i, e := range []domain.Expense{
		{ID: "e1", UserID: "u1", CategoryID: "food", Amount: decimal.RequireFromString("12.34"), Date: base.Add(-72 * time.Hour)},
		{ID: "e2", UserID: "u1", CategoryID: "food", Amount: decimal.RequireFromString("0.10"), Date: base.Add(-24 * time.Hour)},
		{ID: "e3", UserID: "u1", CategoryID: "utilities", Amount: decimal.RequireFromString("40"), Date: base.Add(-48 * time.Hour)},
		{ID: "e4", UserID: "u2", CategoryID: "food", Amount: decimal.RequireFromString("99"), Date: base},
	} {
		if err := s.CreateExpense(ctx, &e); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := s.ListExpenses(ctx, "u1", domain.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "e2" || all[2].ID != "e1" {
		t.Fatalf("expected newest first for u1, got %+v", all)
	}
	if !all[2].Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("expected exact amount 12.34, got %s", all[2].Amount)
	}

	food, _ := s.ListExpenses(ctx, "u1", domain.ExpenseFilter{CategoryID: "food"})
	if len(food) != 2 {
		t.Errorf("expected 2 food expenses, got %d", len(food))
	}

	from, to := base.Add(-50*time.Hour), base.Add(-24*time.Hour)
	window, _ := s.ListExpenses(ctx, "u1", domain.ExpenseFilter{From: &from, To: &to})
	if len(window) != 1 || window[0].ID != "e3" {
		t.Errorf("expected only e3 in window, got %+v", window)
	}

	limited, _ := s.ListExpenses(ctx, "u1", domain.ExpenseFilter{Limit: 1})
	if len(limited) != 1 || limited[0].ID != "e2" {
		t.Errorf("expected newest only, got %+v", limited)
	}
}

func TestUpsertBudget_ReplacesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertBudget(ctx, &domain.Budget{
		ID: "b1", UserID: "u1", CategoryID: "food",
		Amount: decimal.NewFromInt(300), NotifyThreshold: decimal.NewFromInt(90),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := s.UpsertBudget(ctx, &domain.Budget{
		ID: "b2", UserID: "u1", CategoryID: "food",
		Amount: decimal.NewFromInt(500), NotifyThreshold: decimal.NewFromInt(80),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected id %s kept, got %s", first.ID, second.ID)
	}
	if !second.Amount.Equal(decimal.NewFromInt(500)) || !second.NotifyThreshold.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected 500/80, got %s/%s", second.Amount, second.NotifyThreshold)
	}

	budgets, _ := s.ListBudgets(ctx, "u1")
	if len(budgets) != 1 {
		t.Errorf("expected 1 budget, got %d", len(budgets))
	}
}

func TestGetBudget_AbsentIsNil(t *testing.T) {
	s := newTestStore(t)

	b, err := s.GetBudget(context.Background(), "u1", "food")
	if err != nil || b != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", b, err)
	}
}

func TestGoals_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.CreateGoal(ctx, &domain.FinancialGoal{
		ID: "g1", UserID: "u1", Name: "Laptop",
		TargetAmount: decimal.NewFromInt(1200), CurrentAmount: decimal.Zero,
		Deadline: deadline, CreatedAt: deadline.AddDate(0, -6, 0), Status: domain.GoalInProgress,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	g, err := s.GetGoal(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.Name != "Laptop" || !g.Deadline.Equal(deadline) || g.Status != domain.GoalInProgress {
		t.Errorf("unexpected goal %+v", g)
	}

	if _, err := s.GetGoal(ctx, "u2", "g1"); err == nil {
		t.Error("expected other users not to see the goal")
	}

	goals, _ := s.ListGoals(ctx, "u1")
	if len(goals) != 1 {
		t.Errorf("expected 1 goal, got %d", len(goals))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
