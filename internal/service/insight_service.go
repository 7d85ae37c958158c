package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var insightTracer = otel.Tracer("service/insights")

// Fixed responses served when the text service cannot answer.
const (
	NoSpendingDataMessage = "Not enough spending data to generate insights. Start tracking your expenses!"

	FallbackInsights   = "Unable to generate personalized insights at the moment. Please try again later."
	FallbackSavingTip  = "Look for student discounts on textbooks and supplies to save money."
	FallbackCause      = "Unable to analyze spending patterns at the moment."
	FallbackScenario   = "Unable to simulate scenario at the moment. Please try again later."
	FallbackPurchase   = "Unable to analyze purchase value at the moment. Please try again later."
	FallbackAdvice     = "I apologize, but I'm having trouble providing financial advice at the moment. Please try again later."
	FallbackAllocation = "Unable to generate budget suggestions at the moment. Please try again later."
)

var errEmptyText = errors.New("text service returned an empty response")

// DefaultContextMaxChars bounds the spending context sent with a prompt.
const DefaultContextMaxChars = 4000

const (
	insightsWindow  = 30 * 24 * time.Hour
	savingTipKey    = "saving_tip"
	recentForAdvice = 3
	recentForSim    = 5
)

const (
	insightsSystem = `You are a financial advisor for college students.
Analyze their spending patterns and provide 3 specific, actionable tips to help them save money.
Keep the advice concise, practical, and relevant to students.
Format the response as a bullet-pointed list.`

	causeSystem = `You are a financial analyst helping a college student understand their spending patterns.
Compare the current and previous month's expenses and explain significant changes.
Focus on actionable insights and specific patterns.`

	scenarioSystem = `You are a financial simulator helping a college student understand potential financial scenarios.
Analyze their current spending and simulate how their finances would change under the given scenario.
Provide specific numbers and realistic projections.
Consider both income and expenses.
Format the response clearly with bullet points and specific recommendations.`

	purchaseSystem = `You are a financial advisor helping a college student decide on a purchase.
Analyze if the purchase is worth it based on their current financial situation.
Consider: budget impact, necessity, alternatives, and long-term value.
Provide a clear recommendation with reasoning.`

	tipSystem = `You are a financial advisor for college students.
Provide one practical money-saving tip specifically for college students.
Keep it concise (max 2 sentences) and actionable.`

	adviceSystem = `You are a financial advisor specialized in helping college students manage their budgets effectively.
You have access to the student's recent spending data and budgets.
Provide specific, actionable advice based on their actual spending patterns and financial goals.
Keep responses concise and focused on practical solutions.
If suggesting budget adjustments, explain the reasoning and potential impact.

Focus areas:
1. Expense categorization and tracking
2. Budget setting and adjustment
3. Money-saving strategies
4. Financial goal planning
5. Smart spending habits

Always maintain a supportive and encouraging tone while being realistic about financial constraints.`

	allocationSystem = "You are a financial advisor specializing in student budget planning."
)

// InsightService turns a user's spending into natural-language insights.
// Text service failures never surface as errors: each operation falls back
// to its fixed message with outcome service_unavailable. Store failures do
// surface.
type InsightService struct {
	store      port.RecordStore
	text       port.TextService
	cache      port.Cache[string]
	metrics    *observability.Metrics
	logger     *zap.Logger
	maxContext int
	now        func() time.Time
}

// NewInsightService creates a new insight service.
func NewInsightService(
	store port.RecordStore,
	text port.TextService,
	cache port.Cache[string],
	metrics *observability.Metrics,
	logger *zap.Logger,
	maxContext int,
) *InsightService {
	if maxContext <= 0 {
		maxContext = DefaultContextMaxChars
	}
	return &InsightService{
		store:      store,
		text:       text,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		maxContext: maxContext,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for time windows.
func (s *InsightService) WithClock(now func() time.Time) *InsightService {
	s.now = now
	return s
}

// SpendingInsights summarizes the last 30 days by category, with budget usage,
// and asks for three saving tips.
func (s *InsightService) SpendingInsights(ctx context.Context, userID string) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.SpendingInsights")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	from := s.now().Add(-insightsWindow)
	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{From: &from})
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return domain.TextResult{Text: NoSpendingDataMessage, Outcome: domain.TextOK}, nil
	}

	names, budgets, err := s.budgetContext(ctx, userID)
	if err != nil {
		return domain.TextResult{}, err
	}

	var b strings.Builder
	b.WriteString("Here's the student's spending data for the last 30 days:\n")
	totals := totalsByCategory(expenses)
	for _, id := range sortedKeys(totals, names) {
		name := names[id]
		fmt.Fprintf(&b, "- %s: Spent $%s", name, totals[id].StringFixed(2))
		if limit, ok := budgets[name]; ok && limit.IsPositive() {
			fmt.Fprintf(&b, " (Budget: $%s, %s%% used)", limit.StringFixed(2), PercentageUsed(totals[id], limit).StringFixed(1))
		}
		b.WriteByte('\n')
	}

	return s.complete(ctx, &domain.TextRequest{
		Operation:   "insights",
		System:      insightsSystem,
		Prompt:      "What should I change to save money?",
		Context:     b.String(),
		MaxTokens:   300,
		Temperature: 0.7,
	}, FallbackInsights), nil
}

// SavingTip returns a general saving tip. Successful answers are cached for
// the cache TTL; fallbacks are not.
func (s *InsightService) SavingTip(ctx context.Context) domain.TextResult {
	ctx, span := insightTracer.Start(ctx, "InsightService.SavingTip")
	defer span.End()

	if tip, ok := s.cache.Get(savingTipKey); ok {
		s.metrics.IncrCacheHit(savingTipKey)
		return domain.TextResult{Text: tip, Outcome: domain.TextOK}
	}
	s.metrics.IncrCacheMiss(savingTipKey)

	result := s.complete(ctx, &domain.TextRequest{
		Operation:   "saving_tip",
		System:      tipSystem,
		Prompt:      "Give me a money-saving tip for college students.",
		MaxTokens:   100,
		Temperature: 0.7,
	}, FallbackSavingTip)

	if result.Available() {
		s.cache.Set(savingTipKey, result.Text)
	}
	return result
}

// ExpenseCause compares a calendar month (YYYY-MM, empty for the current
// month) with the month before it.
func (s *InsightService) ExpenseCause(ctx context.Context, userID, month string) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.ExpenseCause")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

	ref := s.now()
	if month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, ref.Location())
		if err != nil {
			return domain.TextResult{}, &domain.ErrValidation{Field: "month", Message: "month must be formatted as YYYY-MM"}
		}
		ref = parsed
	}

	currentStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	nextStart := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	current, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{From: &currentStart, To: &nextStart})
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list current month: %w", err)
	}
	previous, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{From: &previousStart, To: &currentStart})
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list previous month: %w", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list categories: %w", err)
	}
	names := categoryNames(categories)

	spending := fmt.Sprintf("Current month spending: %s\n\nPrevious month spending: %s",
		summarize(current, names), summarize(previous, names))

	return s.complete(ctx, &domain.TextRequest{
		Operation: "expense_cause",
		System:    causeSystem,
		Prompt:    fmt.Sprintf("Why did my spending change in %s?", currentStart.Format("January 2006")),
		Context:   spending,
		MaxTokens: 250,
	}, FallbackCause), nil
}

// SimulateScenario projects how a described change would affect the user's
// finances, given their budgets and most recent expenses.
func (s *InsightService) SimulateScenario(ctx context.Context, userID, scenario string) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.SimulateScenario")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return domain.TextResult{}, &domain.ErrValidation{Field: "scenario", Message: "scenario is required"}
	}

	names, budgets, err := s.budgetContext(ctx, userID)
	if err != nil {
		return domain.TextResult{}, err
	}
	recent, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{Limit: recentForSim})
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list recent expenses: %w", err)
	}

	parts := make([]string, 0, len(recent))
	for _, e := range recent {
		parts = append(parts, fmt.Sprintf("%s: $%s", names[e.CategoryID], e.Amount.StringFixed(2)))
	}

	var b strings.Builder
	b.WriteString("Current financial situation:\n")
	fmt.Fprintf(&b, "Monthly Budgets: %s\n", formatBudgets(budgets))
	fmt.Fprintf(&b, "Recent Expenses: %s\n", strings.Join(parts, ", "))

	return s.complete(ctx, &domain.TextRequest{
		Operation: "scenario",
		System:    scenarioSystem,
		Prompt:    "Scenario: " + scenario,
		Context:   b.String(),
		MaxTokens: 500,
	}, FallbackScenario), nil
}

// PurchaseValue judges whether buying item at price fits the user's finances.
func (s *InsightService) PurchaseValue(ctx context.Context, userID, item string, price decimal.Decimal) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.PurchaseValue")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	item = strings.TrimSpace(item)
	if item == "" {
		return domain.TextResult{}, &domain.ErrValidation{Field: "item", Message: "item is required"}
	}
	if price.IsNegative() {
		return domain.TextResult{}, &domain.ErrValidation{Field: "price", Message: "price must not be negative"}
	}

	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{})
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list expenses: %w", err)
	}
	_, budgets, err := s.budgetContext(ctx, userID)
	if err != nil {
		return domain.TextResult{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User's monthly expenses: $%s\n", domain.SumAmounts(expenses).StringFixed(2))
	fmt.Fprintf(&b, "Monthly budgets: %s\n", formatBudgets(budgets))

	return s.complete(ctx, &domain.TextRequest{
		Operation: "purchase",
		System:    purchaseSystem,
		Prompt:    fmt.Sprintf("Proposed purchase: %s for $%s", item, price.StringFixed(2)),
		Context:   b.String(),
		MaxTokens: 300,
	}, FallbackPurchase), nil
}

// Advice answers a free-form question using the last 30 days of spending as context.
func (s *InsightService) Advice(ctx context.Context, userID, question string) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.Advice")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.TextResult{}, &domain.ErrValidation{Field: "question", Message: "question is required"}
	}

	spending, err := s.expenseContext(ctx, userID)
	if err != nil {
		return domain.TextResult{}, err
	}

	return s.complete(ctx, &domain.TextRequest{
		Operation: "advice",
		System:    adviceSystem,
		Prompt:    "User Question: " + question,
		Context:   spending,
		MaxTokens: 500,
	}, FallbackAdvice), nil
}

// BudgetAllocation suggests how to split a monthly income across the known categories.
func (s *InsightService) BudgetAllocation(ctx context.Context, income decimal.Decimal) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.BudgetAllocation")
	defer span.End()

	if !income.IsPositive() {
		return domain.TextResult{}, &domain.ErrValidation{Field: "monthly_income", Message: "monthly income must be greater than zero"}
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return domain.TextResult{}, fmt.Errorf("list categories: %w", err)
	}
	labels := make([]string, 0, len(categories))
	for _, c := range categories {
		labels = append(labels, c.Name)
	}

	prompt := fmt.Sprintf(`Given a monthly income of $%s, suggest a realistic budget allocation for a college student across these categories: %s.
Consider typical student expenses and lifestyle.
Format the response as a JSON-like structure with category names and percentages/amounts.`,
		income.StringFixed(2), strings.Join(labels, ", "))

	return s.complete(ctx, &domain.TextRequest{
		Operation: "allocation",
		System:    allocationSystem,
		Prompt:    prompt,
		MaxTokens: 300,
	}, FallbackAllocation), nil
}

// complete calls the text service and substitutes fallback on any failure
// or empty answer.
func (s *InsightService) complete(ctx context.Context, req *domain.TextRequest, fallback string) domain.TextResult {
	req.Context = truncate(req.Context, s.maxContext)

	start := time.Now()
	text, err := s.text.Complete(ctx, req)
	s.metrics.RecordRequestDuration("text_"+req.Operation, time.Since(start))

	text = strings.TrimSpace(text)
	if err == nil && text != "" {
		s.metrics.IncrTextRequest(domain.TextOK)
		return domain.TextResult{Text: text, Outcome: domain.TextOK}
	}

	if err == nil {
		err = errEmptyText
	}
	s.logger.Warn("text service unavailable, serving fallback",
		zap.String("operation", req.Operation),
		zap.Error(err),
	)
	s.metrics.IncrTextRequest(domain.TextServiceUnavailable)
	s.metrics.IncrTextFallback(req.Operation)
	return domain.TextResult{Text: fallback, Outcome: domain.TextServiceUnavailable}
}

// budgetContext returns category names by id and budget caps by category name.
func (s *InsightService) budgetContext(ctx context.Context, userID string) (map[string]string, map[string]decimal.Decimal, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list budgets: %w", err)
	}

	names := categoryNames(categories)
	caps := make(map[string]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		caps[names[b.CategoryID]] = b.Amount
	}
	return names, caps, nil
}

// expenseContext renders the last 30 days per category: total, budget usage
// and the latest transactions.
func (s *InsightService) expenseContext(ctx context.Context, userID string) (string, error) {
	from := s.now().Add(-insightsWindow)
	expenses, err := s.store.ListExpenses(ctx, userID, domain.ExpenseFilter{From: &from})
	if err != nil {
		return "", fmt.Errorf("list expenses: %w", err)
	}
	names, budgets, err := s.budgetContext(ctx, userID)
	if err != nil {
		return "", err
	}

	byCategory := make(map[string][]domain.Expense)
	for _, e := range expenses {
		byCategory[e.CategoryID] = append(byCategory[e.CategoryID], e)
	}

	var b strings.Builder
	b.WriteString("User's last 30 days financial data:\n")
	for _, id := range sortedKeys(byCategory, names) {
		name := names[id]
		list := byCategory[id]
		total := domain.SumAmounts(list)

		fmt.Fprintf(&b, "\n%s:\n", name)
		fmt.Fprintf(&b, "- Total Spent: $%s\n", total.StringFixed(2))
		if limit, ok := budgets[name]; ok && limit.IsPositive() {
			fmt.Fprintf(&b, "- Monthly Budget: $%s (%s%% used)\n", limit.StringFixed(2), PercentageUsed(total, limit).StringFixed(1))
		}
		b.WriteString("- Recent Transactions:\n")

		// list is newest first
		n := min(len(list), recentForAdvice)
		for _, e := range list[:n] {
			fmt.Fprintf(&b, "  * $%s on %s", e.Amount.StringFixed(2), e.Date.Format(time.DateOnly))
			if e.Description != "" {
				fmt.Fprintf(&b, " - %s", e.Description)
			}
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// summarize renders per-category totals as "Food: $12.00, Utilities: $40.00".
func summarize(expenses []domain.Expense, names map[string]string) string {
	if len(expenses) == 0 {
		return "no expenses"
	}
	totals := totalsByCategory(expenses)
	parts := make([]string, 0, len(totals))
	for _, id := range sortedKeys(totals, names) {
		parts = append(parts, fmt.Sprintf("%s: $%s", names[id], totals[id].StringFixed(2)))
	}
	return strings.Join(parts, ", ")
}

func formatBudgets(budgets map[string]decimal.Decimal) string {
	if len(budgets) == 0 {
		return "none"
	}
	names := make([]string, 0, len(budgets))
	for name := range budgets {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: $%s", name, budgets[name].StringFixed(2)))
	}
	return strings.Join(parts, ", ")
}

// sortedKeys orders category ids by display name for stable prompts.
func sortedKeys[V any](m map[string]V, names map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return strings.Compare(names[a]+a, names[b]+b)
	})
	return keys
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
