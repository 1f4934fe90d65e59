package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// metrics holds request counters exposed on the metrics endpoint.
type metrics struct {
	requestsTotal   atomic.Int64
	responses2xx    atomic.Int64
	responses4xx    atomic.Int64
	responses5xx    atomic.Int64
	rateLimited     atomic.Int64
	totalDurationMs atomic.Int64
}

func newMetrics() *metrics {
	return &metrics{}
}

func (m *metrics) record(statusCode int, duration time.Duration) {
	m.requestsTotal.Add(1)
	m.totalDurationMs.Add(duration.Milliseconds())
	switch {
	case statusCode >= 500:
		m.responses5xx.Add(1)
	case statusCode >= 400:
		m.responses4xx.Add(1)
	default:
		m.responses2xx.Add(1)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "finpulse_http_requests_total %d\n", s.metrics.requestsTotal.Load())
	fmt.Fprintf(w, "finpulse_http_responses_2xx_total %d\n", s.metrics.responses2xx.Load())
	fmt.Fprintf(w, "finpulse_http_responses_4xx_total %d\n", s.metrics.responses4xx.Load())
	fmt.Fprintf(w, "finpulse_http_responses_5xx_total %d\n", s.metrics.responses5xx.Load())
	fmt.Fprintf(w, "finpulse_http_rate_limited_total %d\n", s.metrics.rateLimited.Load())
	fmt.Fprintf(w, "finpulse_http_request_duration_ms_sum %d\n", s.metrics.totalDurationMs.Load())
}
