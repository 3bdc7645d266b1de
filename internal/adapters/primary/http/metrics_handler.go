package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	apperrors "github.com/FifiSALIOU/correction-sub000/internal/core/errors"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// MetricsHandler serves the derived KPI reports.
type MetricsHandler struct {
	reports      ports.ReportSource
	analytics    ports.AnalyticsService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(
	reports ports.ReportSource,
	analytics ports.AnalyticsService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MetricsHandler {
	return &MetricsHandler{
		reports:      reports,
		analytics:    analytics,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "metrics"),
	}
}

// HandleGetMetrics handles GET /metrics. Without query parameters it serves
// the latest cached report; with a filter it runs a dedicated pass, since the
// cache only ever holds the unfiltered portfolio.
func (h *MetricsHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	filter, filtered, err := parseTicketFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if filtered {
		report, err := h.analytics.ComputeReport(r.Context(), filter)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		WriteSuccess(w, report)
		return
	}

	report, ok := h.reports.Latest()
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrReportNotReady)
		return
	}
	WriteSuccess(w, report)
}

// HandleRefresh handles POST /metrics/refresh. The recomputation runs within
// the request so the caller gets the fresh report back.
func (h *MetricsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Refresh(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("metrics recomputed on demand",
		"total_tickets", report.Diagnostics.TotalTickets,
	)
	WriteSuccess(w, report)
}

// HandleTechnicianRollups handles GET /metrics/technicians.
func (h *MetricsHandler) HandleTechnicianRollups(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reports.Latest()
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrReportNotReady)
		return
	}
	WriteList(w, report.Technicians)
}

// parseTicketFilter reads the optional filter query parameters. The second
// return value reports whether any filter was supplied at all.
func parseTicketFilter(r *http.Request) (ports.TicketFilter, bool, error) {
	var filter ports.TicketFilter
	filtered := false
	q := r.URL.Query()

	if raw := q.Get("technician_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, false, apperrors.NewBadRequestError(
				apperrors.ErrInvalidFilter,
				fmt.Sprintf("technician_id is not a valid UUID: %q", raw),
			)
		}
		filter.TechnicianID = &id
		filtered = true
	}

	if raw := q.Get("type"); raw != "" {
		ticketType := domain.TicketType(raw)
		if !ticketType.IsValid() {
			return filter, false, apperrors.NewBadRequestError(
				apperrors.ErrInvalidFilter,
				fmt.Sprintf("unknown ticket type: %q", raw),
			)
		}
		filter.Type = &ticketType
		filtered = true
	}

	if raw := q.Get("created_from"); raw != "" {
		from, err := parseTimeParam(raw)
		if err != nil {
			return filter, false, apperrors.NewBadRequestError(
				apperrors.ErrInvalidFilter,
				fmt.Sprintf("created_from must be RFC3339 or YYYY-MM-DD: %q", raw),
			)
		}
		filter.CreatedFrom = &from
		filtered = true
	}

	if raw := q.Get("created_to"); raw != "" {
		to, err := parseTimeParam(raw)
		if err != nil {
			return filter, false, apperrors.NewBadRequestError(
				apperrors.ErrInvalidFilter,
				fmt.Sprintf("created_to must be RFC3339 or YYYY-MM-DD: %q", raw),
			)
		}
		filter.CreatedTo = &to
		filtered = true
	}

	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return filter, false, apperrors.NewBadRequestError(
			apperrors.ErrInvalidFilter,
			"created_to is before created_from",
		)
	}

	return filter, filtered, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
