package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/observability"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var categorizeTracer = otel.Tracer("service/categorizer")

const categorizeSystemPrompt = `You are a transaction categorization system.
Categorize the transaction into one of these categories:
%s
Respond with ONLY the category name.`

// Categorizer labels a transaction with one of the known categories. The text
// service suggests a label; anything it gets wrong or cannot answer falls
// through to a deterministic match and finally to a default category.
type Categorizer struct {
	text    port.TextService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCategorizer creates a categorizer backed by the given text service.
func NewCategorizer(text port.TextService, metrics *observability.Metrics, logger *zap.Logger) *Categorizer {
	return &Categorizer{text: text, metrics: metrics, logger: logger}
}

// Categorize picks a category for the transaction from categories and reports
// which arm of the chain produced it. categories must not be empty.
func (c *Categorizer) Categorize(ctx context.Context, description string, amount decimal.Decimal, categories []domain.Category) (domain.Category, domain.CategorySource) {
	ctx, span := categorizeTracer.Start(ctx, "Categorizer.Categorize")
	defer span.End()

	label, err := c.text.Complete(ctx, &domain.TextRequest{
		Operation: "categorize",
		System:    fmt.Sprintf(categorizeSystemPrompt, classifiableList()),
		Prompt:    fmt.Sprintf("Transaction: %s - $%s", description, amount.StringFixed(2)),
		MaxTokens: 50,
	})
	if err != nil {
		c.logger.Warn("categorization unavailable, using default category", zap.Error(err))
		c.metrics.IncrTextRequest(domain.TextServiceUnavailable)
		c.metrics.IncrTextFallback("categorize")
		cat := DefaultCategory(categories)
		span.SetAttributes(attribute.String("category.source", string(domain.CategorySourceDefault)))
		return cat, domain.CategorySourceDefault
	}
	c.metrics.IncrTextRequest(domain.TextOK)

	cat, source := MatchCategory(label, categories)
	span.SetAttributes(
		attribute.String("category.label", label),
		attribute.String("category.source", string(source)),
	)
	return cat, source
}

// MatchCategory resolves a free-text label against the offered categories
// (the classifiable kinds plus Other): exact (case-insensitive) name match
// first, then substring containment either way, then DefaultCategory.
// Labels shorter than minFuzzyRunes never match by substring.
func MatchCategory(label string, categories []domain.Category) (domain.Category, domain.CategorySource) {
	label = strings.ToLower(strings.TrimSpace(label))

	if label != "" {
		offered := make([]domain.Category, 0, len(categories))
		for _, cat := range categories {
			if isOffered(cat) {
				offered = append(offered, cat)
			}
		}

		for _, cat := range offered {
			if strings.ToLower(strings.TrimSpace(cat.Name)) == label {
				return cat, domain.CategorySourceModel
			}
		}
		if utf8.RuneCountInString(label) >= minFuzzyRunes {
			for _, cat := range offered {
				name := strings.ToLower(strings.TrimSpace(cat.Name))
				if strings.Contains(label, name) || strings.Contains(name, label) {
					return cat, domain.CategorySourceFuzzy
				}
			}
		}
	}

	return DefaultCategory(categories), domain.CategorySourceDefault
}

const minFuzzyRunes = 3

// isOffered reports whether the category is one the text service may answer with.
func isOffered(cat domain.Category) bool {
	name := strings.TrimSpace(cat.Name)
	if strings.EqualFold(name, domain.CategoryOther.Label()) {
		return true
	}
	for _, kind := range domain.ClassifiableKinds() {
		if strings.EqualFold(name, kind.Label()) {
			return true
		}
	}
	return false
}

// DefaultCategory is the category named Other when present, else the first one.
// It returns the zero Category for an empty list.
func DefaultCategory(categories []domain.Category) domain.Category {
	other := domain.CategoryOther.Label()
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, other) {
			return cat
		}
	}
	if len(categories) == 0 {
		return domain.Category{}
	}
	return categories[0]
}

func classifiableList() string {
	var b strings.Builder
	for i, k := range domain.ClassifiableKinds() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(k.Label())
	}
	return b.String()
}
