// Package client holds outbound HTTP clients.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/resilience"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

var _ port.TextService = (*TextServiceClient)(nil)

// TextServiceClient calls the text-generation agent over HTTP.
type TextServiceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	guard      *resilience.Guard
}

// NewTextServiceClient creates a new TextServiceClient.
func NewTextServiceClient(httpClient *http.Client, baseURL, apiKey string, guard *resilience.Guard) *TextServiceClient {
	return &TextServiceClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		guard:      guard,
	}
}

// Complete posts req to /v1/complete and returns the generated text.
func (c *TextServiceClient) Complete(ctx context.Context, req *domain.TextRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "TextServiceClient.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("text.operation", req.Operation),
		attribute.Int("text.max_tokens", req.MaxTokens),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var out domain.TextResponse
	err = c.guard.Do(ctx, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/complete", bytes.NewReader(body))
		if err != nil {
			return resilience.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("text service returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return resilience.Permanent(fmt.Errorf("text service returned status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return resilience.Permanent(fmt.Errorf("decode text response: %w", err))
		}
		return nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		span.RecordError(err)
		return "", &domain.ErrCircuitOpen{Service: "text"}
	}
	if err != nil {
		span.RecordError(err)
		return "", &domain.ErrExternalService{Service: "text", Err: err}
	}

	return out.Text, nil
}

// Disabled is the TextService used when no backend is configured. Every
// call fails, so callers always serve their fallbacks.
type Disabled struct{}

var errTextDisabled = errors.New("text service disabled")

func (Disabled) Complete(context.Context, *domain.TextRequest) (string, error) {
	return "", &domain.ErrExternalService{Service: "text", Err: errTextDisabled}
}
