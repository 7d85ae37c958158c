package domain

// Dashboard is the aggregated view returned by GET /v1/dashboard.
type Dashboard struct {
	RecentExpenses  []Expense       `json:"recent_expenses"`
	Budgets         []BudgetUsage   `json:"budgets"`
	Insights        TextResult      `json:"insights"`
	SavingTip       TextResult      `json:"saving_tip"`
	Forecast        *ForecastResult `json:"forecast"`
	ForecastMessage string          `json:"forecast_message,omitempty"`
}
