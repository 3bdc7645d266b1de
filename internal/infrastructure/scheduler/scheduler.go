package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// Scheduler recomputes the portfolio metrics on a fixed interval and caches
// the most recent complete report. Readers always see either the previous
// complete report or the new one, never a half-finished pass.
type Scheduler struct {
	analytics   ports.AnalyticsService
	broadcaster ports.ReportBroadcaster
	interval    time.Duration
	logger      *slog.Logger

	mu     sync.RWMutex
	latest *domain.MetricsReport
}

var _ ports.ReportSource = (*Scheduler)(nil)

// New creates a scheduler. broadcaster may be nil when no live push is wired.
func New(
	analytics ports.AnalyticsService,
	broadcaster ports.ReportBroadcaster,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		analytics:   analytics,
		broadcaster: broadcaster,
		interval:    interval,
		logger:      logger.With("component", "scheduler"),
	}
}

// Run executes passes until ctx is cancelled. The first pass starts
// immediately so the cache warms up without waiting a full interval.
// This MUST be run as a goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass computes one report and publishes it. A pass is bounded by the
// refresh interval: if it cannot finish in time it is abandoned and the next
// tick starts fresh, so a slow upstream never piles up passes.
func (s *Scheduler) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	start := time.Now()
	report, err := s.analytics.ComputeReport(passCtx, ports.TicketFilter{})
	if err != nil {
		// Previous report stays served; the next tick retries.
		s.logger.Error("metrics pass failed",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	s.publish(report)
	s.logger.Info("metrics pass complete",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"total_tickets", report.Diagnostics.TotalTickets,
	)
}

// Latest returns the most recent complete report, or false before the first
// pass has finished.
func (s *Scheduler) Latest() (*domain.MetricsReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Refresh runs a pass immediately, outside the regular schedule, and returns
// the fresh report.
func (s *Scheduler) Refresh(ctx context.Context) (*domain.MetricsReport, error) {
	report, err := s.analytics.ComputeReport(ctx, ports.TicketFilter{})
	if err != nil {
		return nil, err
	}

	s.publish(report)
	return report, nil
}

// publish swaps in the new report if it is newer than the cached one and
// pushes it to connected clients. The timestamp check keeps a slow scheduled
// pass from overwriting the result of a later on-demand refresh.
func (s *Scheduler) publish(report *domain.MetricsReport) {
	s.mu.Lock()
	if s.latest != nil && !report.GeneratedAt.After(s.latest.GeneratedAt) {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded report",
			"generated_at", report.GeneratedAt,
		)
		return
	}
	s.latest = report
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReport(report)
	}
}
