package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// HistoryRepository reads the append-only status-change log of tickets.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// Ensure HistoryRepository implements the ports.HistoryRepository interface.
var _ ports.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(pool *pgxpool.Pool) ports.HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// ListByTicket returns the ticket's status changes ordered ascending by
// change time, which is the order every derivation expects.
func (r *HistoryRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.HistoryEvent, error) {
	const query = `
SELECT ticket_id, actor_id, old_status, new_status, changed_at, reason
FROM ticket_history
WHERE ticket_id = $1
ORDER BY changed_at, id
`

	rows, err := r.pool.Query(ctx, query, pgtype.UUID{Bytes: ticketID, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.HistoryEvent, 0)
	for rows.Next() {
		var (
			eventTicketID pgtype.UUID
			actorID       pgtype.UUID
			oldStatus     pgtype.Text
			newStatus     string
			changedAt     pgtype.Timestamptz
			reason        pgtype.Text
		)
		if err := rows.Scan(&eventTicketID, &actorID, &oldStatus, &newStatus, &changedAt, &reason); err != nil {
			return nil, err
		}

		event := &domain.HistoryEvent{
			TicketID:  uuid.UUID(eventTicketID.Bytes),
			ActorID:   uuid.UUID(actorID.Bytes),
			NewStatus: domain.TicketStatus(newStatus),
			ChangedAt: changedAt.Time,
			Reason:    textOrEmpty(reason),
		}
		if oldStatus.Valid {
			value := domain.TicketStatus(oldStatus.String)
			event.OldStatus = &value
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func textOrEmpty(text pgtype.Text) string {
	if text.Valid {
		return text.String
	}
	return ""
}
