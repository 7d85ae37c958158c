// Package supabase implements port.RecordStore over Supabase's PostgREST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// errConflict is returned for 409 responses (unique constraint violations).
var errConflict = errors.New("supabase: conflict")

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	guard          *resilience.Guard
	logger         *zap.Logger
}

// NewClient creates a Supabase client. Every request runs through guard.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, guard *resilience.Guard, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		guard:          guard,
		logger:         logger,
	}
}

// request describes one PostgREST call.
type request struct {
	method string
	table  string
	query  url.Values
	body   any
	prefer string
}

// do executes req through the resilience guard and returns the response body.
// 4xx answers are not retried; 409 maps to errConflict. Transport and 5xx
// failures surface as *domain.ErrExternalService, an open breaker as
// *domain.ErrCircuitOpen.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var body []byte
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		b, err := c.send(ctx, req)
		body = b
		return err
	})

	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, errConflict):
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, &domain.ErrCircuitOpen{Service: "supabase"}
	default:
		return nil, &domain.ErrExternalService{Service: "supabase/" + req.table, Err: err}
	}
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, r.table)
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encode %s body: %w", r.table, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	prefer := r.prefer
	if prefer == "" {
		prefer = "return=representation"
	}
	req.Header.Set("Prefer", prefer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", r.method),
			zap.String("table", r.table),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, resilience.Permanent(errConflict)
	case resp.StatusCode >= 500:
		c.logger.Warn("supabase: server error",
			zap.String("method", r.method),
			zap.String("table", r.table),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("supabase %s %s returned %d: %s", r.method, r.table, resp.StatusCode, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", r.method),
			zap.String("table", r.table),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, resilience.Permanent(fmt.Errorf("supabase %s %s returned %d: %s", r.method, r.table, resp.StatusCode, string(body)))
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", r.method),
		zap.String("table", r.table),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

// selectRows GETs table filtered by query and decodes the JSON array into out.
func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	body, err := c.do(ctx, request{method: http.MethodGet, table: table, query: query})
	if err != nil {
		return err
	}
	if err := decodeRows(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}

func decodeRows(body []byte, out any) error {
	if len(body) == 0 {
		body = []byte("[]")
	}
	return json.Unmarshal(body, out)
}

// Ping checks that PostgREST answers for the categories table.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	_, err := c.do(ctx, request{method: http.MethodGet, table: "categories", query: q})
	return err
}

func eq(v string) string { return "eq." + v }
