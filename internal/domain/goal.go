package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a financial goal.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalMissed     GoalStatus = "missed"
)

// FinancialGoal is a savings target with a deadline.
type FinancialGoal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      time.Time       `json:"deadline"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        GoalStatus      `json:"status"`
}

// GoalRequest is the body of POST /v1/goals and POST /v1/goals/feasibility.
type GoalRequest struct {
	Name         string          `json:"name,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Deadline     time.Time       `json:"deadline"`
}

// GoalFeasibility compares the monthly saving a goal needs with what the user
// currently manages to save.
type GoalFeasibility struct {
	Feasible              bool            `json:"feasible"`
	RequiredMonthlySaving decimal.Decimal `json:"required_monthly_saving"`
	SavingCapacity        decimal.Decimal `json:"saving_capacity"`
	Message               string          `json:"message"`
}

// GoalStrategies is a list of concrete saving suggestions for one goal.
type GoalStrategies struct {
	GoalID          string          `json:"goal_id"`
	FocusCategory   string          `json:"focus_category"`
	PotentialSaving decimal.Decimal `json:"potential_saving"`
	MonthlyTransfer decimal.Decimal `json:"monthly_transfer"`
	Strategies      []string        `json:"strategies"`
}
