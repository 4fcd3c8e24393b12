package handler

import (
	"net/http"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/infra/observability"
)

var startTime = time.Now()

// healthHandler answers the liveness probe with uptime and the request
// counters from the metrics registry. It never fails: a dashboard that
// can answer is alive.
func healthHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, failed := metrics.RequestCounts()
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:         "OK",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Uptime:         time.Since(startTime).Seconds(),
			Version:        "1.0.0",
			RequestsOK:     ok,
			RequestsFailed: failed,
		})
	}
}
