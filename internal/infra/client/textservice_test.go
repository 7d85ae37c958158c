package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/Shrey257/CashAI/internal/infra/client"
	"github.com/Shrey257/CashAI/internal/infra/resilience"
)

func testGuard() *resilience.Guard {
	return resilience.NewGuard("text-test", resilience.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxConcurrency: 2,
	})
}

func TestTextServiceClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/complete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization = %q", got)
		}
		var req domain.TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Operation != "categorize" || req.MaxTokens != 50 {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(domain.TextResponse{Text: "Food"})
	}))
	defer srv.Close()

	c := client.NewTextServiceClient(srv.Client(), srv.URL+"/", "k", testGuard())
	got, err := c.Complete(context.Background(), &domain.TextRequest{
		Operation: "categorize",
		Prompt:    "Transaction: pizza - $12",
		MaxTokens: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Food" {
		t.Errorf("got %q, want Food", got)
	}
}

func TestTextServiceClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.TextResponse{Text: "ok"})
	}))
	defer srv.Close()

	c := client.NewTextServiceClient(srv.Client(), srv.URL, "", testGuard())
	got, err := c.Complete(context.Background(), &domain.TextRequest{Operation: "insights"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls.Load() != 3 {
		t.Errorf("got %q after %d calls", got, calls.Load())
	}
}

func TestTextServiceClient_ClientErrorIsExternal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := client.NewTextServiceClient(srv.Client(), srv.URL, "", testGuard())
	_, err := c.Complete(context.Background(), &domain.TextRequest{Operation: "advice"})

	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestTextServiceClient_CircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.NewTextServiceClient(srv.Client(), srv.URL, "", testGuard())
	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = c.Complete(context.Background(), &domain.TextRequest{Operation: "insights"})
	}

	var open *domain.ErrCircuitOpen
	if !errors.As(lastErr, &open) {
		t.Fatalf("expected ErrCircuitOpen after repeated failures, got %v", lastErr)
	}
}

func TestDisabled_AlwaysFails(t *testing.T) {
	_, err := client.Disabled{}.Complete(context.Background(), &domain.TextRequest{})
	if err == nil {
		t.Fatal("expected error from disabled text service")
	}
}
