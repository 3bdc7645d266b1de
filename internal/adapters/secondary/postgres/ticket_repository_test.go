package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	apperrors "github.com/FifiSALIOU/correction-sub000/internal/core/errors"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

func seedTechnician(t *testing.T, fullName, specialization string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO technicians (id, full_name, specialization) VALUES ($1, $2, NULLIF($3, ''))`,
		id, fullName, specialization)
	require.NoError(t, err)
	return id
}

type seedTicket struct {
	status              domain.TicketStatus
	priority            domain.TicketPriority
	ticketType          domain.TicketType
	createdAt           time.Time
	resolvedAt          *time.Time
	closedAt            *time.Time
	feedbackScore       *int
	technicianID        *uuid.UUID
	secondaryAssigneeID *uuid.UUID
}

func insertTicket(t *testing.T, s seedTicket) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if s.status == "" {
		s.status = domain.StatusPendingAnalysis
	}
	if s.priority == "" {
		s.priority = domain.PriorityMedium
	}
	if s.ticketType == "" {
		s.ticketType = domain.TypeSoftware
	}
	if s.createdAt.IsZero() {
		s.createdAt = time.Now().UTC()
	}
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO tickets
			(id, status, priority, type, created_at, resolved_at, closed_at,
			 feedback_score, technician_id, secondary_assignee_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, string(s.status), string(s.priority), string(s.ticketType), s.createdAt,
		s.resolvedAt, s.closedAt, s.feedbackScore, s.technicianID, s.secondaryAssigneeID)
	require.NoError(t, err)
	return id
}

func insertHistoryEvent(t *testing.T, ticketID, actorID uuid.UUID, oldStatus *domain.TicketStatus, newStatus domain.TicketStatus, changedAt time.Time, reason string) {
	t.Helper()
	var old *string
	if oldStatus != nil {
		value := string(*oldStatus)
		old = &value
	}
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO ticket_history (ticket_id, actor_id, old_status, new_status, changed_at, reason)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		ticketID, actorID, old, string(newStatus), changedAt, reason)
	require.NoError(t, err)
}

func TestTicketRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	t.Run("empty store yields an empty slice", func(t *testing.T) {
		truncateAll(t)

		tickets, err := repo.List(ctx, ports.TicketFilter{})

		require.NoError(t, err)
		assert.Empty(t, tickets)
	})

	t.Run("returns tickets ordered by creation time", func(t *testing.T) {
		truncateAll(t)
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		second := insertTicket(t, seedTicket{createdAt: base.Add(time.Hour)})
		first := insertTicket(t, seedTicket{createdAt: base})

		tickets, err := repo.List(ctx, ports.TicketFilter{})

		require.NoError(t, err)
		require.Len(t, tickets, 2)
		assert.Equal(t, first, tickets[0].ID)
		assert.Equal(t, second, tickets[1].ID)
	})

	t.Run("filters by technician", func(t *testing.T) {
		truncateAll(t)
		techID := seedTechnician(t, "Awa Diop", "network")
		otherID := seedTechnician(t, "Moussa Ba", "software")
		mine := insertTicket(t, seedTicket{technicianID: &techID})
		insertTicket(t, seedTicket{technicianID: &otherID})
		insertTicket(t, seedTicket{})

		tickets, err := repo.List(ctx, ports.TicketFilter{TechnicianID: &techID})

		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, mine, tickets[0].ID)
	})

	t.Run("filters by type", func(t *testing.T) {
		truncateAll(t)
		network := insertTicket(t, seedTicket{ticketType: domain.TypeNetwork})
		insertTicket(t, seedTicket{ticketType: domain.TypeHardware})

		networkType := domain.TypeNetwork
		tickets, err := repo.List(ctx, ports.TicketFilter{Type: &networkType})

		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, network, tickets[0].ID)
	})

	t.Run("filters by creation window", func(t *testing.T) {
		truncateAll(t)
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		insertTicket(t, seedTicket{createdAt: base.AddDate(0, 0, -10)})
		inside := insertTicket(t, seedTicket{createdAt: base.AddDate(0, 0, 2)})
		insertTicket(t, seedTicket{createdAt: base.AddDate(0, 0, 20)})

		from := base
		to := base.AddDate(0, 0, 7)
		tickets, err := repo.List(ctx, ports.TicketFilter{CreatedFrom: &from, CreatedTo: &to})

		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, inside, tickets[0].ID)
	})

	t.Run("combined filters intersect", func(t *testing.T) {
		truncateAll(t)
		techID := seedTechnician(t, "Awa Diop", "")
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		match := insertTicket(t, seedTicket{
			ticketType:   domain.TypeSoftware,
			technicianID: &techID,
			createdAt:    base,
		})
		// Same technician, wrong type.
		insertTicket(t, seedTicket{
			ticketType:   domain.TypeHardware,
			technicianID: &techID,
			createdAt:    base,
		})

		softwareType := domain.TypeSoftware
		tickets, err := repo.List(ctx, ports.TicketFilter{
			TechnicianID: &techID,
			Type:         &softwareType,
		})

		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, match, tickets[0].ID)
	})
}

func TestTicketRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	t.Run("maps every nullable column", func(t *testing.T) {
		truncateAll(t)
		techID := seedTechnician(t, "Awa Diop", "network")
		delegateID := uuid.New()
		created := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
		resolvedAt := created.Add(20 * time.Hour)
		closedAt := created.Add(30 * time.Hour)
		four := 4

		id := insertTicket(t, seedTicket{
			status:              domain.StatusClosed,
			priority:            domain.PriorityHigh,
			ticketType:          domain.TypeNetwork,
			createdAt:           created,
			resolvedAt:          &resolvedAt,
			closedAt:            &closedAt,
			feedbackScore:       &four,
			technicianID:        &techID,
			secondaryAssigneeID: &delegateID,
		})

		ticket, err := repo.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, ticket.Status)
		assert.Equal(t, domain.PriorityHigh, ticket.Priority)
		assert.Equal(t, domain.TypeNetwork, ticket.Type)
		assert.True(t, ticket.CreatedAt.Equal(created))
		require.NotNil(t, ticket.ResolvedAt)
		assert.True(t, ticket.ResolvedAt.Equal(resolvedAt))
		require.NotNil(t, ticket.ClosedAt)
		assert.True(t, ticket.ClosedAt.Equal(closedAt))
		require.NotNil(t, ticket.FeedbackScore)
		assert.Equal(t, 4, *ticket.FeedbackScore)
		require.NotNil(t, ticket.TechnicianID)
		assert.Equal(t, techID, *ticket.TechnicianID)
		require.NotNil(t, ticket.SecondaryAssigneeID)
		assert.Equal(t, delegateID, *ticket.SecondaryAssigneeID)
	})

	t.Run("absent columns come back nil", func(t *testing.T) {
		truncateAll(t)
		id := insertTicket(t, seedTicket{})

		ticket, err := repo.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Nil(t, ticket.ResolvedAt)
		assert.Nil(t, ticket.ClosedAt)
		assert.Nil(t, ticket.FeedbackScore)
		assert.Nil(t, ticket.TechnicianID)
		assert.Nil(t, ticket.SecondaryAssigneeID)
	})

	t.Run("unknown ID yields the sentinel", func(t *testing.T) {
		truncateAll(t)

		ticket, err := repo.GetByID(ctx, uuid.New())

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}
