package domain

// HealthStatus is the liveness payload of GET /api/health.
type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Version   string  `json:"version"`

	// Request counters gathered from the metrics registry.
	RequestsOK     int64 `json:"requestsOk"`
	RequestsFailed int64 `json:"requestsFailed"`
}
