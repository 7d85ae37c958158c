package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// InsightMetrics is returned by GET /v1/metrics/insights.
type InsightMetrics struct {
	TextRequests       int64   `json:"textRequests"`
	TextFallbacks      int64   `json:"textFallbacks"`
	FallbackRate       float64 `json:"fallbackRate"`
	CacheHitRate       float64 `json:"cacheHitRate"`
	ThresholdCrossings int64   `json:"thresholdCrossings"`
	InvalidBudgets     int64   `json:"invalidBudgets"`
	ForecastsComputed  int64   `json:"forecastsComputed"`
	ForecastsDeclined  int64   `json:"forecastsDeclined"`
	Period             string  `json:"period"`
}
