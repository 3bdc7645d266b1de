package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	apperrors "github.com/FifiSALIOU/correction-sub000/internal/core/errors"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// TicketRepository reads ticket snapshots from the upstream ticketing store.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, status, priority, type, created_at, resolved_at, closed_at, feedback_score, technician_id, secondary_assignee_id`

// List returns the ticket snapshot matching the filter. Filtering happens in
// SQL so an analytics pass never pulls tickets it will not use.
func (r *TicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`

	var (
		conditions []string
		args       []any
	)
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.TechnicianID != nil {
		addCondition("technician_id = $%d", pgtype.UUID{Bytes: *filter.TechnicianID, Valid: true})
	}
	if filter.Type != nil {
		addCondition("type = $%d", string(*filter.Type))
	}
	if filter.CreatedFrom != nil {
		addCondition("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		addCondition("created_at <= $%d", *filter.CreatedTo)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, pgtype.UUID{Bytes: id, Valid: true})
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// scanTicket maps one row onto the domain model. Nullable columns become nil
// pointers rather than zero values so downstream derivations can tell "absent"
// from "zero".
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		id                  pgtype.UUID
		status              string
		priority            string
		ticketType          string
		createdAt           pgtype.Timestamptz
		resolvedAt          pgtype.Timestamptz
		closedAt            pgtype.Timestamptz
		feedbackScore       pgtype.Int4
		technicianID        pgtype.UUID
		secondaryAssigneeID pgtype.UUID
	)

	if err := row.Scan(
		&id, &status, &priority, &ticketType, &createdAt,
		&resolvedAt, &closedAt, &feedbackScore,
		&technicianID, &secondaryAssigneeID,
	); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:        uuid.UUID(id.Bytes),
		Status:    domain.TicketStatus(status),
		Priority:  domain.TicketPriority(priority),
		Type:      domain.TicketType(ticketType),
		CreatedAt: createdAt.Time,
	}

	if resolvedAt.Valid {
		ticket.ResolvedAt = &resolvedAt.Time
	}
	if closedAt.Valid {
		ticket.ClosedAt = &closedAt.Time
	}
	if feedbackScore.Valid {
		score := int(feedbackScore.Int32)
		ticket.FeedbackScore = &score
	}
	if technicianID.Valid {
		value := uuid.UUID(technicianID.Bytes)
		ticket.TechnicianID = &value
	}
	if secondaryAssigneeID.Valid {
		value := uuid.UUID(secondaryAssigneeID.Bytes)
		ticket.SecondaryAssigneeID = &value
	}

	return ticket, nil
}
