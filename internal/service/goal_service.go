package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var goalTracer = otel.Tracer("service/goals")

var (
	daysPerMonth     = decimal.NewFromInt(30)
	strategyCutShare = decimal.NewFromFloat(0.2)
)

// GoalService tracks savings goals and judges whether they are reachable
// from the user's income and spending.
type GoalService struct {
	store  port.RecordStore
	logger *zap.Logger
	now    func() time.Time
}

// NewGoalService creates a new goal service.
func NewGoalService(store port.RecordStore, logger *zap.Logger) *GoalService {
	return &GoalService{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for deadlines.
func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

// Create stores a new in-progress goal.
func (s *GoalService) Create(ctx context.Context, userID string, req domain.GoalRequest) (*domain.FinancialGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if !req.TargetAmount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "target_amount", Message: "target amount must be greater than zero"}
	}
	now := s.now()
	if !req.Deadline.After(now) {
		return nil, &domain.ErrValidation{Field: "deadline", Message: "deadline must be in the future"}
	}

	goal := &domain.FinancialGoal{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      req.Deadline,
		CreatedAt:     now,
		Status:        domain.GoalInProgress,
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.logger.Info("goal created",
		zap.String("user_id", userID),
		zap.String("goal_id", goal.ID),
	)
	return goal, nil
}

// List returns the user's goals with their status brought up to date.
func (s *GoalService) List(ctx context.Context, userID string) ([]domain.FinancialGoal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.List")
	defer span.End()

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	now := s.now()
	for i := range goals {
		goals[i].Status = goalStatus(goals[i], now)
	}
	return goals, nil
}

func goalStatus(g domain.FinancialGoal, now time.Time) domain.GoalStatus {
	switch {
	case g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount):
		return domain.GoalCompleted
	case g.Deadline.Before(now):
		return domain.GoalMissed
	default:
		return domain.GoalInProgress
	}
}

// Feasibility compares the monthly saving needed to reach amount by deadline
// with the user's saving capacity (income minus all other spending).
func (s *GoalService) Feasibility(ctx context.Context, userID string, amount decimal.Decimal, deadline time.Time) (*domain.GoalFeasibility, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Feasibility")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "target_amount", Message: "target amount must be greater than zero"}
	}

	months := monthsUntil(deadline, s.now())
	if !months.IsPositive() {
		return nil, &domain.ErrValidation{Field: "deadline", Message: "deadline must be at least one day away"}
	}

	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := categoryNames(categories)

	income, spend := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		if domain.KindOf(names[e.CategoryID]) == domain.CategoryIncome {
			income = income.Add(e.Amount)
		} else {
			spend = spend.Add(e.Amount)
		}
	}
	capacity := income.Sub(spend)
	required := amount.Div(months)

	result := &domain.GoalFeasibility{
		RequiredMonthlySaving: required.Round(2),
		SavingCapacity:        capacity.Round(2),
	}
	if required.GreaterThan(capacity) {
		result.Message = fmt.Sprintf("This goal might be challenging. You need to save $%s monthly, but your current saving capacity is $%s",
			required.StringFixed(2), capacity.StringFixed(2))
		return result, nil
	}

	result.Feasible = true
	result.Message = fmt.Sprintf("Goal looks achievable! Keep saving $%s monthly", required.StringFixed(2))
	return result, nil
}

// Strategies suggests cutting the category of the single largest expense by
// a fifth and transferring a fixed amount each month.
func (s *GoalService) Strategies(ctx context.Context, userID, goalID string) (*domain.GoalStrategies, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Strategies")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("goal.id", goalID))

	goal, err := s.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, &domain.ErrInsufficientData{DistinctDays: 0, Required: 1}
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := categoryNames(categories)

	largest := expenses[0]
	for _, e := range expenses[1:] {
		if e.Amount.GreaterThan(largest.Amount) {
			largest = e
		}
	}
	focus := names[largest.CategoryID]
	saving := totalsByCategory(expenses)[largest.CategoryID].Mul(strategyCutShare)

	transfer := goal.TargetAmount
	if months := monthsUntil(goal.Deadline, s.now()); months.IsPositive() {
		transfer = goal.TargetAmount.Div(months)
	}

	return &domain.GoalStrategies{
		GoalID:          goal.ID,
		FocusCategory:   focus,
		PotentialSaving: saving.Round(2),
		MonthlyTransfer: transfer.Round(2),
		Strategies: []string{
			fmt.Sprintf("Reduce %s expenses by 20%% to save extra $%s monthly", focus, saving.StringFixed(2)),
			fmt.Sprintf("Set up automatic transfers of $%s monthly", transfer.StringFixed(2)),
			"Look for additional income opportunities in your field",
		},
	}, nil
}

// monthsUntil counts whole days to deadline in 30-day months.
func monthsUntil(deadline, now time.Time) decimal.Decimal {
	days := int64(deadline.Sub(now).Hours() / 24)
	return decimal.NewFromInt(days).Div(daysPerMonth)
}
