package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shrey257/CashAI/internal/domain"
)

// Amounts are stored as text so SQLite's numeric affinity never rounds them.

type categoryRow struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (categoryRow) TableName() string { return "categories" }

func (r categoryRow) toDomain() domain.Category {
	return domain.Category{ID: r.ID, Name: r.Name}
}

type expenseRow struct {
	ID          string          `gorm:"primaryKey"`
	UserID      string          `gorm:"index:idx_expenses_user_date,priority:1;not null"`
	CategoryID  string          `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:text;not null"`
	Description string
	Date        time.Time `gorm:"index:idx_expenses_user_date,priority:2;not null"`
}

func (expenseRow) TableName() string { return "expenses" }

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ID,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
	}
}

type budgetRow struct {
	ID              string          `gorm:"primaryKey"`
	UserID          string          `gorm:"uniqueIndex:idx_budgets_user_category;not null"`
	CategoryID      string          `gorm:"uniqueIndex:idx_budgets_user_category;not null"`
	Amount          decimal.Decimal `gorm:"type:text;not null"`
	NotifyThreshold decimal.Decimal `gorm:"type:text;not null"`
}

func (budgetRow) TableName() string { return "budgets" }

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:              r.ID,
		UserID:          r.UserID,
		CategoryID:      r.CategoryID,
		Amount:          r.Amount,
		NotifyThreshold: r.NotifyThreshold,
	}
}

type goalRow struct {
	ID            string          `gorm:"primaryKey"`
	UserID        string          `gorm:"index;not null"`
	Name          string          `gorm:"not null"`
	TargetAmount  decimal.Decimal `gorm:"type:text;not null"`
	CurrentAmount decimal.Decimal `gorm:"type:text;not null"`
	Deadline      time.Time       `gorm:"not null"`
	CreatedAt     time.Time
	Status        string `gorm:"not null"`
}

func (goalRow) TableName() string { return "goals" }

func (r goalRow) toDomain() domain.FinancialGoal {
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
