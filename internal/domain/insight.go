package domain

import "github.com/shopspring/decimal"

// ============================================================
// Text service (insights, advice, categorization)
// ============================================================

// TextRequest is a single prompt sent to the text service.
type TextRequest struct {
	Operation   string  `json:"operation"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Context     string  `json:"context,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature,omitempty"`
}

// TextResponse is the body returned by the HTTP text service.
type TextResponse struct {
	Text string `json:"text"`
}

// TextOutcome tells whether a TextResult came from the text service or is a
// fixed fallback.
type TextOutcome string

const (
	TextOK                 TextOutcome = "ok"
	TextServiceUnavailable TextOutcome = "service_unavailable"
)

// TextResult is generated text or, when the service failed, the fallback for
// that operation.
type TextResult struct {
	Text    string      `json:"text"`
	Outcome TextOutcome `json:"outcome"`
}

// Available reports whether the text came from the service.
func (r TextResult) Available() bool {
	return r.Outcome == TextOK
}

// AdviceRequest is the body of POST /v1/insights/advice.
type AdviceRequest struct {
	Question string `json:"question"`
}

// ScenarioRequest is the body of POST /v1/insights/scenario.
type ScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// PurchaseRequest is the body of POST /v1/insights/purchase.
type PurchaseRequest struct {
	Item  string          `json:"item"`
	Price decimal.Decimal `json:"price"`
}

// AllocationRequest is the body of POST /v1/insights/allocation.
type AllocationRequest struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /v1/chat.
type ChatResponse struct {
	Response string      `json:"response"`
	Outcome  TextOutcome `json:"outcome"`
}
