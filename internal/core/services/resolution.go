package services

import (
	"time"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// ResolutionTimestamp picks the moment a ticket was resolved. Sources are
// tried in order of trust: the earliest history event entering a terminal
// state, then the ticket's own closed_at or resolved_at column depending on
// its current status. The second return value is false when no usable
// timestamp exists; such tickets are excluded from resolution-time averages.
func ResolutionTimestamp(t *domain.Ticket, history []*domain.HistoryEvent) (time.Time, bool) {
	for _, e := range history {
		if e.IsResolution() {
			return e.ChangedAt, true
		}
	}
	switch {
	case t.Status == domain.StatusClosed && t.ClosedAt != nil:
		return *t.ClosedAt, true
	case t.Status == domain.StatusResolved && t.ResolvedAt != nil:
		return *t.ResolvedAt, true
	}
	return time.Time{}, false
}

// ResolutionTime returns the elapsed time from creation to resolution. A
// negative elapsed time (clock skew or bad data) is reported as unusable
// rather than clamped to zero, so the caller can count the exclusion.
func ResolutionTime(t *domain.Ticket, history []*domain.HistoryEvent) (time.Duration, bool) {
	ts, ok := ResolutionTimestamp(t, history)
	if !ok {
		return 0, false
	}
	elapsed := ts.Sub(t.CreatedAt)
	if elapsed < 0 {
		return 0, false
	}
	return elapsed, true
}
