package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// AnalyticsOptions tunes how a pass fetches ticket histories.
type AnalyticsOptions struct {
	// HistoryFetchConcurrency bounds the parallel history fetches per pass.
	HistoryFetchConcurrency int
	// HistoryFetchTimeout caps one ticket's history fetch; on expiry the
	// ticket degrades to missing data instead of failing the pass.
	HistoryFetchTimeout time.Duration
}

const (
	defaultFetchConcurrency = 8
	defaultFetchTimeout     = 5 * time.Second
)

// AnalyticsService implements the read-only metrics derivation over ticket
// snapshots. It holds no state between passes.
type AnalyticsService struct {
	ticketRepo  ports.TicketRepository
	historyRepo ports.HistoryRepository
	techRepo    ports.TechnicianRepository
	attributor  *DelegationAttributor
	aggregator  *Aggregator
	logger      *slog.Logger
	opts        AnalyticsOptions
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService creates the analytics engine.
func NewAnalyticsService(
	ticketRepo ports.TicketRepository,
	historyRepo ports.HistoryRepository,
	techRepo ports.TechnicianRepository,
	attributor *DelegationAttributor,
	aggregator *Aggregator,
	logger *slog.Logger,
	opts AnalyticsOptions,
) *AnalyticsService {
	if opts.HistoryFetchConcurrency <= 0 {
		opts.HistoryFetchConcurrency = defaultFetchConcurrency
	}
	if opts.HistoryFetchTimeout <= 0 {
		opts.HistoryFetchTimeout = defaultFetchTimeout
	}
	return &AnalyticsService{
		ticketRepo:  ticketRepo,
		historyRepo: historyRepo,
		techRepo:    techRepo,
		attributor:  attributor,
		aggregator:  aggregator,
		logger:      logger.With("component", "analytics"),
		opts:        opts,
	}
}

// ComputeReport runs one full analytics pass: list tickets once, fetch each
// ticket's history with bounded fan-out, then fold. A cancelled context
// abandons the pass entirely; partial results are never returned, so a
// superseded pass can simply be discarded.
func (s *AnalyticsService) ComputeReport(ctx context.Context, filter ports.TicketFilter) (*domain.MetricsReport, error) {
	tickets, err := s.ticketRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	technicians, err := s.techRepo.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Rollups lose their names but the portfolio metrics stay usable.
		s.logger.Warn("technician roster unavailable", "error", err)
		technicians = nil
	}

	snap := &Snapshot{
		Tickets:     tickets,
		Histories:   make(map[uuid.UUID][]*domain.HistoryEvent, len(tickets)),
		Failed:      make(map[uuid.UUID]bool),
		Technicians: technicians,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.HistoryFetchConcurrency)

	for _, t := range tickets {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			events, err := s.fetchHistory(gctx, t.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Only cancellation of the whole pass is fatal; a single
				// slow or failing fetch degrades that one ticket.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("history fetch failed, ticket degraded",
					"ticket_id", t.ID,
					"error", err,
				)
				snap.Failed[t.ID] = true
				return nil
			}
			snap.Histories[t.ID] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.aggregator.Aggregate(snap), nil
}

// TicketInsights computes the per-ticket derivations for the dashboard
// detail view. A failed history fetch degrades to ticket-level data only,
// flagged via HistoryUnavailable.
func (s *AnalyticsService) TicketInsights(ctx context.Context, ticketID uuid.UUID, dispatcherID *uuid.UUID) (*domain.TicketInsights, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	history, err := s.fetchHistory(ctx, ticketID)
	historyUnavailable := err != nil
	if historyUnavailable {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("history fetch failed for insights",
			"ticket_id", ticketID,
			"error", err,
		)
		history = nil
	}

	insights := &domain.TicketInsights{
		TicketID:           ticket.ID,
		Status:             ticket.Status,
		ResolutionLabel:    domain.UnknownLabel,
		HistoryUnavailable: historyUnavailable,
	}

	if elapsed, ok := ResolutionTime(ticket, history); ok {
		hours := elapsed.Hours()
		insights.ResolutionHours = &hours
		insights.ResolutionLabel = domain.FormatDuration(elapsed)
	}
	if !historyUnavailable || ticket.HasFeedback() {
		if score, ok := SatisfactionScore(ticket, history); ok {
			insights.Score = &score
		}
	}
	if !historyUnavailable {
		insights.Reopened = IsReopened(history)
	}
	if dispatcherID != nil {
		delegated := s.attributor.WasDelegatedBy(ticket, history, *dispatcherID)
		insights.DelegatedByActor = &delegated
	}

	return insights, nil
}

func (s *AnalyticsService) fetchHistory(ctx context.Context, ticketID uuid.UUID) ([]*domain.HistoryEvent, error) {
	fctx, cancel := context.WithTimeout(ctx, s.opts.HistoryFetchTimeout)
	defer cancel()
	return s.historyRepo.ListByTicket(fctx, ticketID)
}
