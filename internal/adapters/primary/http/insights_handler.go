package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/FifiSALIOU/correction-sub000/internal/adapters/primary/http/middleware"
	apperrors "github.com/FifiSALIOU/correction-sub000/internal/core/errors"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// InsightsHandler serves per-ticket derivations for the dashboard detail view.
type InsightsHandler struct {
	analytics    ports.AnalyticsService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(
	analytics ports.AnalyticsService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *InsightsHandler {
	return &InsightsHandler{
		analytics:    analytics,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "insights"),
	}
}

// RegisterRoutes registers the /tickets routes.
func (h *InsightsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{ticketID}/insights", h.HandleTicketInsights)
}

// HandleTicketInsights handles GET /tickets/{ticketID}/insights.
//
// The delegation attribution needs a dispatcher to attribute to: either the
// dispatcher_id query parameter, or the caller's own identity when the token
// carries the dispatcher role.
func (h *InsightsHandler) HandleTicketInsights(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(
			apperrors.ErrBadRequest,
			"ticket ID is not a valid UUID",
		))
		return
	}

	dispatcherID, err := h.resolveDispatcher(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	insights, err := h.analytics.TicketInsights(r.Context(), ticketID, dispatcherID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, insights)
}

func (h *InsightsHandler) resolveDispatcher(r *http.Request) (*uuid.UUID, error) {
	if raw := r.URL.Query().Get("dispatcher_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.NewBadRequestError(
				apperrors.ErrBadRequest,
				fmt.Sprintf("dispatcher_id is not a valid UUID: %q", raw),
			)
		}
		return &id, nil
	}

	if claims, ok := mw.GetClaims(r.Context()); ok && claims.IsDispatcher() {
		id := claims.UserID
		return &id, nil
	}

	return nil, nil
}
