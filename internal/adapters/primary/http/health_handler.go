package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db         HealthChecker
	reports    ports.ReportSource
	staleAfter time.Duration
	startTime  time.Time
	version    string
}

// NewHealthHandler creates a new health handler. staleAfter 0 disables the
// report staleness check.
func NewHealthHandler(db HealthChecker, reports ports.ReportSource, staleAfter time.Duration, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		reports:    reports,
		staleAfter: staleAfter,
		startTime:  time.Now(),
		version:    version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HandleLiveness handles liveness probe requests (is the service running?)
// Used by Kubernetes to know when to restart a container
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// HandleReadiness handles readiness probe requests (can the service accept traffic?)
// Ready means the upstream store answers and at least one metrics pass has
// completed, so GET endpoints can serve a report.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	overallStatus := "healthy"

	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	reportCheck := h.checkReport()
	checks["metrics_report"] = reportCheck
	if reportCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// checkDatabase checks the database connection
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()

	if h.db == nil {
		return Check{
			Status:  "unhealthy",
			Message: "Database not configured",
		}
	}

	err := h.db.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkReport reports whether a metrics report has been computed yet
func (h *HealthHandler) checkReport() Check {
	if h.reports == nil {
		return Check{
			Status:  "unhealthy",
			Message: "Report source not configured",
		}
	}

	report, ok := h.reports.Latest()
	if !ok {
		return Check{
			Status:  "unhealthy",
			Message: "No metrics report computed yet",
		}
	}

	// A report past the staleness tolerance means the refresh loop is wedged.
	if h.staleAfter > 0 && time.Since(report.GeneratedAt) > h.staleAfter {
		return Check{
			Status:  "unhealthy",
			Message: "last computed " + report.GeneratedAt.Format(time.RFC3339) + " (stale)",
		}
	}

	return Check{
		Status:  "healthy",
		Message: "last computed " + report.GeneratedAt.Format(time.RFC3339),
	}
}
