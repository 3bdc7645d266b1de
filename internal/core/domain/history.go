package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEvent is one entry of a ticket's append-only status-change log,
// ordered ascending by ChangedAt. OldStatus is absent on the first event of a
// ticket (the creation record).
type HistoryEvent struct {
	TicketID  uuid.UUID
	ActorID   uuid.UUID
	OldStatus *TicketStatus
	NewStatus TicketStatus
	ChangedAt time.Time
	Reason    string // free-text, optional
}

// IsReopening reports whether this transition moved the ticket out of a
// terminal state, i.e. it was resolved or closed and someone changed it again.
func (e *HistoryEvent) IsReopening() bool {
	return e.OldStatus != nil && e.OldStatus.IsTerminal()
}

// IsResolution reports whether this transition put the ticket into a terminal
// state.
func (e *HistoryEvent) IsResolution() bool {
	return e.NewStatus.IsTerminal()
}

// HistoryConsistent checks the invariant that the latest event's NewStatus
// matches the ticket's current status. A violation means the snapshot caught
// the upstream store mid-write or the log is corrupt; callers log it and keep
// computing with whatever is usable.
func HistoryConsistent(t *Ticket, events []*HistoryEvent) bool {
	if len(events) == 0 {
		return true
	}
	return events[len(events)-1].NewStatus == t.Status
}
