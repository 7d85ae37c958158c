package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Expenses
// ============================================================

// Expense is a single spending record. The core never mutates it once stored.
type Expense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
}

// NewExpense is the input for recording an expense.
// An empty CategoryID asks the service to categorize from the description.
type NewExpense struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"category_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ExpenseFilter narrows a record store query. From is inclusive, To exclusive.
// A zero Limit means no limit.
type ExpenseFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID string
	Limit      int
}

// CategorySource tells where the category of a recorded expense came from.
type CategorySource string

const (
	CategorySourceExplicit CategorySource = "explicit"
	CategorySourceModel    CategorySource = "model"
	CategorySourceFuzzy    CategorySource = "fuzzy"
	CategorySourceDefault  CategorySource = "default"
)

// RecordResult is returned after an expense has been stored and evaluated.
type RecordResult struct {
	Expense        *Expense       `json:"expense"`
	Category       Category       `json:"category"`
	CategorySource CategorySource `json:"category_source"`
	Threshold      ThresholdEvent `json:"threshold"`
	Warning        string         `json:"warning,omitempty"`
}

// SumAmounts adds up the amounts of the given expenses.
func SumAmounts(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
