// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/Shrey257/CashAI/internal/domain"
)

// RecordStore is the persistence boundary for categories, expenses, budgets
// and goals. Implementations must offer read-after-write consistency: a read
// issued after a committed write observes that write.
type RecordStore interface {
	// Categories
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.Category, error)

	// Expenses
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error)

	// Budgets. GetBudget returns (nil, nil) when the pair has no budget.
	GetBudget(ctx context.Context, userID, categoryID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	UpsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)

	// Goals
	CreateGoal(ctx context.Context, goal *domain.FinancialGoal) error
	GetGoal(ctx context.Context, userID, goalID string) (*domain.FinancialGoal, error)
	ListGoals(ctx context.Context, userID string) ([]domain.FinancialGoal, error)

	Pinger
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TextService generates free text or short labels from a prompt.
// Callers must treat every error as recoverable and substitute a fallback.
type TextService interface {
	Complete(ctx context.Context, req *domain.TextRequest) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
