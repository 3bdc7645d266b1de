package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// TicketFilter narrows the ticket set an analytics pass operates on. All
// fields are optional; a zero filter selects the whole portfolio.
type TicketFilter struct {
	TechnicianID *uuid.UUID
	Type         *domain.TicketType
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// TicketRepository reads ticket snapshots from the upstream store. The
// analytics engine never writes through this port.
type TicketRepository interface {
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
}

// HistoryRepository reads a ticket's status-change log, ordered ascending by
// change time.
type HistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.HistoryEvent, error)
}

// TechnicianRepository reads the support staff roster used for rollup
// grouping.
type TechnicianRepository interface {
	List(ctx context.Context) ([]*domain.Technician, error)
}
