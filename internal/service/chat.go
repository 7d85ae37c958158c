package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/Shrey257/CashAI/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var pricePattern = regexp.MustCompile(`\$?(\d+(?:\.\d{2})?)`)

// chatRoutes is checked in order; the first route whose keyword appears in
// the message wins.
var chatRoutes = []struct {
	name     string
	keywords []string
}{
	{"scenario", []string{"simulate", "job", "income"}},
	{"purchase", []string{"worth", "buy", "purchase"}},
	{"expense_cause", []string{"overspend", "spent", "spending"}},
}

// Chat answers a free-form message by routing it to one of the insight
// operations by keyword. Messages that match nothing get spending insights.
func (s *InsightService) Chat(ctx context.Context, userID, message string) (domain.TextResult, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.Chat")
	defer span.End()

	message = strings.ToLower(strings.TrimSpace(message))
	if message == "" {
		return domain.TextResult{}, &domain.ErrValidation{Field: "message", Message: "Please provide a message"}
	}

	route := RouteChat(message)
	span.SetAttributes(attribute.String("chat.route", route))

	switch route {
	case "scenario":
		return s.SimulateScenario(ctx, userID, message)
	case "purchase":
		return s.PurchaseValue(ctx, userID, message, ParsePrice(message))
	case "expense_cause":
		return s.ExpenseCause(ctx, userID, "")
	default:
		return s.SpendingInsights(ctx, userID)
	}
}

// RouteChat names the insight operation a lowercased message maps to.
func RouteChat(message string) string {
	for _, r := range chatRoutes {
		for _, kw := range r.keywords {
			if strings.Contains(message, kw) {
				return r.name
			}
		}
	}
	return "insights"
}

// ParsePrice extracts the first amount in message, or zero when there is none.
func ParsePrice(message string) decimal.Decimal {
	m := pricePattern.FindStringSubmatch(message)
	if m == nil {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	return price
}
