package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dataentry/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, _, err := s.taxonomy.List(ctx); err != nil {
		checks["options"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["options"] = "ok"
	}

	checks["sessions"] = map[string]any{
		"active": s.sessions.Len(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics writes counters and gauges in the Prometheus text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ErrorResponses)
	writeMetric(w, "http_response_time_microseconds", "gauge", "Mean HTTP response time", traceMetrics.AverageResponseTime)
	writeMetric(w, "sessions_active", "gauge", "Live form sessions", int64(s.sessions.Len()))

	if s.submissions != nil {
		stats := s.submissions.Stats()
		writeMetric(w, "submissions_total", "counter", "Accepted form submissions", stats.Submitted)
		writeMetric(w, "submissions_published_total", "counter", "Submission events published", stats.Published)
		writeMetric(w, "submissions_publish_failed_total", "counter", "Submission events that failed to publish", stats.Failed)
	}

	if s.fetches != nil {
		fm := s.fetches.GetMetrics()
		writeMetric(w, "results_fetch_total", "counter", "Requests sent to the results endpoint", fm.Requests)
		writeMetric(w, "results_fetch_failed_total", "counter", "Failed results requests", fm.Failures)
		writeMetric(w, "results_fetch_cancelled_total", "counter", "Results requests cancelled before completing", fm.Cancelled)
	}

	writeMetric(w, "rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	writeMetric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", time.Since(s.startedAt).Seconds())
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if errResp := RequireMethod(r, http.MethodGet, http.MethodHead); errResp != nil {
		errResp.Write(w)
		return
	}

	v, ok := s.startSession(w, r)
	if !ok {
		return
	}
	state := v.Snapshot()

	data := indexView{
		Form:    s.newFormView(r.Context(), state),
		Results: newResultsView(state),
	}
	s.render(w, r, "index.html", data, NewHTMXResponse())
}

// render executes a template into a buffer so a failure never leaves a
// half-written body, then writes it through the response builder.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, resp *HTMXResponseBuilder) {
	html, err := executeTemplate(s.templates, name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error(),
			"template", name,
			"error_type", log.ErrorTypeInternal,
		)
		InternalServerError("Could not render page").Write(w)
		return
	}
	resp.BodyHTML(html).Write(w)
}
