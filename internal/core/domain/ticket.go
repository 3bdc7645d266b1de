package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the lifecycle state of a support ticket.
type TicketStatus string

const (
	StatusPendingAnalysis TicketStatus = "pending_analysis"
	StatusAssigned        TicketStatus = "assigned"
	StatusInProgress      TicketStatus = "in_progress"
	StatusResolved        TicketStatus = "resolved"
	StatusClosed          TicketStatus = "closed"
	StatusRejected        TicketStatus = "rejected"
)

// IsValid checks if the status is one of the known lifecycle states.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusPendingAnalysis, StatusAssigned, StatusInProgress,
		StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status counts as resolved for analytics
// purposes (resolved or closed).
func (s TicketStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// IsHandoff reports whether the status means the ticket is in the hands of a
// technician (assigned or in progress).
func (s TicketStatus) IsHandoff() bool {
	return s == StatusAssigned || s == StatusInProgress
}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityCritical TicketPriority = "critical"
	PriorityHigh     TicketPriority = "high"
	PriorityMedium   TicketPriority = "medium"
	PriorityLow      TicketPriority = "low"
)

// IsValid checks if the priority is one of the known levels.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// IsUrgent reports whether the priority belongs to the fastest SLA band.
func (p TicketPriority) IsUrgent() bool {
	return p == PriorityCritical || p == PriorityHigh
}

// TicketType categorizes the nature of the reported problem.
type TicketType string

const (
	TypeHardware TicketType = "hardware"
	TypeSoftware TicketType = "software"
	TypeNetwork  TicketType = "network"
	TypeOther    TicketType = "other"
)

// IsValid checks if the type is one of the known categories.
func (t TicketType) IsValid() bool {
	switch t {
	case TypeHardware, TypeSoftware, TypeNetwork, TypeOther:
		return true
	}
	return false
}

// Ticket is a read-only snapshot of a support request owned by the upstream
// ticketing backend. The analytics engine never mutates it; every derived
// value is recomputed from scratch on each pass.
type Ticket struct {
	ID                  uuid.UUID
	Status              TicketStatus
	Priority            TicketPriority
	Type                TicketType
	CreatedAt           time.Time
	ResolvedAt          *time.Time // may be absent even when status is resolved
	ClosedAt            *time.Time // may be absent even when status is closed
	FeedbackScore       *int       // explicit user rating 1-5, nil when not given
	TechnicianID        *uuid.UUID
	SecondaryAssigneeID *uuid.UUID
}

// IsResolvedOrClosed reports whether the ticket has reached a terminal state.
func (t *Ticket) IsResolvedOrClosed() bool {
	return t.Status.IsTerminal()
}

// IsOpen reports whether the ticket still counts toward a technician's
// workload (neither resolved, closed, nor rejected).
func (t *Ticket) IsOpen() bool {
	return !t.Status.IsTerminal() && t.Status != StatusRejected
}

// IsAssignedTo checks if the ticket is assigned to the given technician.
func (t *Ticket) IsAssignedTo(technicianID uuid.UUID) bool {
	return t.TechnicianID != nil && *t.TechnicianID == technicianID
}

// HasDelegate reports whether the ticket was handed to a secondary assignee.
func (t *Ticket) HasDelegate() bool {
	return t.SecondaryAssigneeID != nil
}

// HasFeedback reports whether the requester left an explicit rating.
func (t *Ticket) HasFeedback() bool {
	return t.FeedbackScore != nil && *t.FeedbackScore > 0
}
