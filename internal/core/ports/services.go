package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// AnalyticsService derives KPIs from ticket snapshots. Implementations must
// be pure with respect to the upstream store: recomputing at any time is safe
// and has no side effects.
type AnalyticsService interface {
	// ComputeReport runs one full analytics pass over the filtered ticket
	// set. It either returns a complete, self-consistent report or an error
	// (typically context cancellation); it never returns partial results.
	ComputeReport(ctx context.Context, filter TicketFilter) (*domain.MetricsReport, error)

	// TicketInsights computes the per-ticket derivations for the dashboard
	// detail view. When dispatcherID is set, the delegation attribution for
	// that dispatcher is included.
	TicketInsights(ctx context.Context, ticketID uuid.UUID, dispatcherID *uuid.UUID) (*domain.TicketInsights, error)
}

// ReportSource exposes the most recent complete report to the HTTP layer and
// lets it force a recomputation.
type ReportSource interface {
	Latest() (*domain.MetricsReport, bool)
	Refresh(ctx context.Context) (*domain.MetricsReport, error)
}

// ReportBroadcaster pushes a fresh report to connected dashboard clients.
type ReportBroadcaster interface {
	BroadcastReport(report *domain.MetricsReport)
}
