package observability

import (
	"time"

	"github.com/Shrey257/CashAI/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for CashAI.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	externalErrors     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	textRequests       *prometheus.CounterVec
	textFallbacks      *prometheus.CounterVec
	thresholdCrossings *prometheus.CounterVec
	invalidBudgets     prometheus.Counter
	forecasts          *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashai_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		textRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_text_requests_total",
				Help: "Text service calls by outcome.",
			},
			[]string{"outcome"},
		),
		textFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_text_fallbacks_total",
				Help: "Fixed fallback responses served, by operation.",
			},
			[]string{"operation"},
		),
		thresholdCrossings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_budget_threshold_crossings_total",
				Help: "Budget threshold crossings detected on insert.",
			},
			[]string{"category"},
		),
		invalidBudgets: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cashai_invalid_budgets_total",
				Help: "Evaluations skipped because the budget cap was not positive.",
			},
		),
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashai_forecasts_total",
				Help: "Forecast requests by status.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrTextRequest counts a text service call ("ok" or "service_unavailable").
func (m *Metrics) IncrTextRequest(outcome domain.TextOutcome) {
	m.textRequests.WithLabelValues(string(outcome)).Inc()
}

// IncrTextFallback counts a fallback string served for operation.
func (m *Metrics) IncrTextFallback(operation string) {
	m.textFallbacks.WithLabelValues(operation).Inc()
}

// IncrThresholdCrossed counts a crossed budget threshold.
func (m *Metrics) IncrThresholdCrossed(category string) {
	m.thresholdCrossings.WithLabelValues(category).Inc()
}

// IncrInvalidBudget counts an evaluation against a non-positive cap.
func (m *Metrics) IncrInvalidBudget() {
	m.invalidBudgets.Inc()
}

// IncrForecast counts a forecast request ("computed" or "insufficient_data").
func (m *Metrics) IncrForecast(status string) {
	m.forecasts.WithLabelValues(status).Inc()
}

// GetInsightsSnapshot returns a snapshot of text-service and evaluator
// metrics suitable for the GET /v1/metrics/insights endpoint.
func (m *Metrics) GetInsightsSnapshot() *domain.InsightMetrics {
	ok := getCounterValue(m.textRequests, string(domain.TextOK))
	failed := getCounterValue(m.textRequests, string(domain.TextServiceUnavailable))
	fallbacks := sumCounterVec(m.textFallbacks)
	hits := sumCounterVec(m.cacheHits)
	misses := sumCounterVec(m.cacheMisses)

	fallbackRate := float64(0)
	if ok+failed > 0 {
		fallbackRate = failed / (ok + failed)
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.InsightMetrics{
		TextRequests:       int64(ok + failed),
		TextFallbacks:      int64(fallbacks),
		FallbackRate:       fallbackRate,
		CacheHitRate:       cacheHitRate,
		ThresholdCrossings: int64(sumCounterVec(m.thresholdCrossings)),
		InvalidBudgets:     int64(counterValue(m.invalidBudgets)),
		ForecastsComputed:  int64(getCounterValue(m.forecasts, "computed")),
		ForecastsDeclined:  int64(getCounterValue(m.forecasts, "insufficient_data")),
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination observed so far.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
