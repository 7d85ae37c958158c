// Package gemini implements port.TextService on Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/resilience"
	"github.com/Shrey257/CashAI/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

var tracer = otel.Tracer("gemini")

var _ port.TextService = (*Client)(nil)

// generator is the subset of *genai.Models the client calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends text requests to Gemini.
type Client struct {
	models generator
	model  string
	guard  *resilience.Guard
}

// New creates a Gemini-backed text service for the Gemini Developer API.
func New(ctx context.Context, apiKey, model string, guard *resilience.Guard) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models, model, guard), nil
}

func newClient(models generator, model string, guard *resilience.Guard) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model, guard: guard}
}

// Complete generates text for req.
func (c *Client) Complete(ctx context.Context, req *domain.TextRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("text.operation", req.Operation),
		attribute.String("gemini.model", c.model),
	)

	contents := genai.Text(composePrompt(req))
	cfg := generationConfig(req)

	var text string
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			return resilience.Permanent(errors.New("empty response from model"))
		}
		return nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		span.RecordError(err)
		return "", &domain.ErrCircuitOpen{Service: "gemini"}
	}
	if err != nil {
		span.RecordError(err)
		return "", &domain.ErrExternalService{Service: "gemini", Err: err}
	}
	return text, nil
}

// composePrompt puts the user data ahead of the question.
func composePrompt(req *domain.TextRequest) string {
	if req.Context == "" {
		return req.Prompt
	}
	return req.Context + "\n\n" + req.Prompt
}

func generationConfig(req *domain.TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	return cfg
}
