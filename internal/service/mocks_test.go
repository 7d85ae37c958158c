package service_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/shopspring/decimal"
)

// --- Mocks ---

// memStore is an in-memory RecordStore with optional injected failures.
type memStore struct {
	mu         sync.Mutex
	categories []domain.Category
	expenses   []domain.Expense
	budgets    []domain.Budget
	goals      []domain.FinancialGoal

	listExpensesErr error
	getBudgetErr    error
	createErr       error
}

func newMemStore() *memStore {
	return &memStore{categories: domain.DefaultCategories()}
}

func (m *memStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.categories), nil
}

func (m *memStore) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: id}
}

func (m *memStore) CreateExpense(_ context.Context, e *domain.Expense) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, *e)
	return nil
}

func (m *memStore) ListExpenses(_ context.Context, userID string, f domain.ExpenseFilter) ([]domain.Expense, error) {
	if m.listExpensesErr != nil {
		return nil, m.listExpensesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Expense
	for _, e := range m.expenses {
		if e.UserID != userID {
			continue
		}
		if f.CategoryID != "" && e.CategoryID != f.CategoryID {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.Date.Before(*f.To) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b domain.Expense) int { return b.Date.Compare(a.Date) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) GetBudget(_ context.Context, userID, categoryID string) (*domain.Budget, error) {
	if m.getBudgetErr != nil {
		return nil, m.getBudgetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.budgets {
		if b.UserID == userID && b.CategoryID == categoryID {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) UpsertBudget(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.budgets {
		if existing.UserID == b.UserID && existing.CategoryID == b.CategoryID {
			m.budgets[i].Amount = b.Amount
			m.budgets[i].NotifyThreshold = b.NotifyThreshold
			saved := m.budgets[i]
			return &saved, nil
		}
	}
	m.budgets = append(m.budgets, *b)
	saved := *b
	return &saved, nil
}

func (m *memStore) CreateGoal(_ context.Context, g *domain.FinancialGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = append(m.goals, *g)
	return nil
}

func (m *memStore) GetGoal(_ context.Context, userID, goalID string) (*domain.FinancialGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.goals {
		if g.UserID == userID && g.ID == goalID {
			return &g, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "goal", ID: goalID}
}

func (m *memStore) ListGoals(_ context.Context, userID string) ([]domain.FinancialGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FinancialGoal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) Ping(_ context.Context) error { return nil }

func (m *memStore) addExpense(userID, categoryID string, amount string, date time.Time) {
	m.expenses = append(m.expenses, domain.Expense{
		ID:         "seed-" + date.Format(time.RFC3339Nano) + "-" + categoryID,
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	})
}

func (m *memStore) addBudget(userID, categoryID, amount, threshold string) {
	m.budgets = append(m.budgets, domain.Budget{
		ID:              "budget-" + categoryID,
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          decimal.RequireFromString(amount),
		NotifyThreshold: decimal.RequireFromString(threshold),
	})
}

// mockText replies with a fixed answer or error and records every request.
type mockText struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []domain.TextRequest
}

func (m *mockText) Complete(_ context.Context, req *domain.TextRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *req)
	return m.reply, m.err
}

func (m *mockText) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockText) last() domain.TextRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

var errTextDown = errors.New("text service down")

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
