package services

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// Snapshot is one self-consistent view of the ticket portfolio, assembled by
// a single analytics pass. Failed marks tickets whose history could not be
// fetched; they degrade to missing data for every history-dependent metric
// instead of aborting the pass.
type Snapshot struct {
	Tickets     []*domain.Ticket
	Histories   map[uuid.UUID][]*domain.HistoryEvent
	Failed      map[uuid.UUID]bool
	Technicians []*domain.Technician
}

// Aggregator folds per-ticket derivations into portfolio-level KPIs. It is
// stateless: every call recomputes from the snapshot it is given, so running
// it twice on the same snapshot yields the same report.
type Aggregator struct {
	logger     *slog.Logger
	volumeDays int
	now        func() time.Time
}

// DefaultVolumeDays is the width of the volume-by-day window in the report.
const DefaultVolumeDays = 14

// NewAggregator creates an aggregator. volumeDays <= 0 falls back to
// DefaultVolumeDays.
func NewAggregator(logger *slog.Logger, volumeDays int) *Aggregator {
	if volumeDays <= 0 {
		volumeDays = DefaultVolumeDays
	}
	return &Aggregator{
		logger:     logger.With("component", "aggregator"),
		volumeDays: volumeDays,
		now:        time.Now,
	}
}

type rollupAccum struct {
	technician    *domain.Technician
	resolutionSum time.Duration
	resolutionN   int
	scoreSum      int
	scoreN        int
	resolvedCount int
	openWorkload  int
}

// Aggregate runs the fold. Bad records never fail the whole report: a ticket
// that cannot contribute to a metric is excluded from it and counted in the
// diagnostics block so totals stay auditable.
func (a *Aggregator) Aggregate(snap *Snapshot) *domain.MetricsReport {
	report := &domain.MetricsReport{
		GeneratedAt:        a.now().UTC(),
		AvgResolutionLabel: domain.UnknownLabel,
	}
	diag := &report.Diagnostics
	diag.TotalTickets = len(snap.Tickets)

	statusCounts := make(map[domain.TicketStatus]int)
	rollups := make(map[uuid.UUID]*rollupAccum)
	for _, tech := range snap.Technicians {
		rollups[tech.ID] = &rollupAccum{technician: tech}
	}

	var resolutionSum time.Duration
	resolutionN := 0
	scoreSum, scoreN := 0, 0
	reopened := 0

	for _, t := range snap.Tickets {
		statusCounts[t.Status]++

		history := snap.Histories[t.ID]
		fetchFailed := snap.Failed[t.ID]
		if fetchFailed {
			diag.HistoryFetchFailures++
			history = nil
		}
		if len(history) > 0 && !domain.HistoryConsistent(t, history) {
			diag.InconsistentHistories++
			a.logger.Warn("ticket history inconsistent with current status",
				"ticket_id", t.ID,
				"status", t.Status,
			)
		}

		roll := a.rollupFor(rollups, t)
		if roll != nil && t.IsOpen() {
			roll.openWorkload++
		}

		if !t.IsResolvedOrClosed() {
			continue
		}
		diag.ResolvedOrClosed++
		if roll != nil {
			roll.resolvedCount++
		}

		if elapsed, ok := ResolutionTime(t, history); ok {
			resolutionSum += elapsed
			resolutionN++
			if roll != nil {
				roll.resolutionSum += elapsed
				roll.resolutionN++
			}
		} else {
			diag.ExcludedFromResolution++
		}

		// A failed history fetch leaves the implicit heuristic with nothing
		// to look at; only an explicit rating is still trustworthy.
		if fetchFailed && !t.HasFeedback() {
			diag.Unscored++
		} else if score, ok := SatisfactionScore(t, history); ok {
			scoreSum += score.Value
			scoreN++
			if roll != nil {
				roll.scoreSum += score.Value
				roll.scoreN++
			}
		} else {
			diag.Unscored++
		}

		if !fetchFailed && IsReopened(history) {
			reopened++
		}
	}

	if resolutionN > 0 {
		avg := resolutionSum / time.Duration(resolutionN)
		hours := avg.Hours()
		report.AvgResolutionHours = &hours
		report.AvgResolutionLabel = domain.FormatDuration(avg)
	}
	if scoreN > 0 {
		rate := round1(float64(scoreSum) / float64(scoreN))
		report.SatisfactionRate = &rate
	}
	if diag.ResolvedOrClosed > 0 {
		rate := round1(float64(reopened) / float64(diag.ResolvedOrClosed) * 100)
		report.ReopeningRate = &rate
	}
	report.ReopenedCount = reopened

	report.StatusCounts = buildStatusCounts(statusCounts)
	report.Volume = a.buildVolume(snap)
	report.Technicians = buildRollups(rollups)

	return report
}

// rollupFor finds or creates the rollup bucket for the ticket's technician.
// Tickets referencing a technician missing from the roster still get a
// bucket so their work is not silently dropped.
func (a *Aggregator) rollupFor(rollups map[uuid.UUID]*rollupAccum, t *domain.Ticket) *rollupAccum {
	if t.TechnicianID == nil {
		return nil
	}
	roll, ok := rollups[*t.TechnicianID]
	if !ok {
		roll = &rollupAccum{technician: &domain.Technician{ID: *t.TechnicianID}}
		rollups[*t.TechnicianID] = roll
	}
	return roll
}

func buildStatusCounts(counts map[domain.TicketStatus]int) []domain.StatusCount {
	ordered := []domain.TicketStatus{
		domain.StatusPendingAnalysis,
		domain.StatusAssigned,
		domain.StatusInProgress,
		domain.StatusResolved,
		domain.StatusClosed,
		domain.StatusRejected,
	}
	result := make([]domain.StatusCount, 0, len(ordered))
	for _, s := range ordered {
		result = append(result, domain.StatusCount{Status: s, Count: counts[s]})
	}
	return result
}

func (a *Aggregator) buildVolume(snap *Snapshot) []domain.VolumePoint {
	today := a.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(a.volumeDays - 1))

	points := make([]domain.VolumePoint, a.volumeDays)
	index := make(map[time.Time]int, a.volumeDays)
	for i := range points {
		day := start.AddDate(0, 0, i)
		points[i] = domain.VolumePoint{Day: day}
		index[day] = i
	}

	for _, t := range snap.Tickets {
		if i, ok := index[t.CreatedAt.UTC().Truncate(24*time.Hour)]; ok {
			points[i].CreatedCount++
		}
		if ts, ok := ResolutionTimestamp(t, snap.Histories[t.ID]); ok {
			if i, ok := index[ts.UTC().Truncate(24*time.Hour)]; ok {
				points[i].ResolvedCount++
			}
		}
	}
	return points
}

func buildRollups(rollups map[uuid.UUID]*rollupAccum) []domain.TechnicianRollup {
	result := make([]domain.TechnicianRollup, 0, len(rollups))
	for _, roll := range rollups {
		item := domain.TechnicianRollup{
			TechnicianID:       roll.technician.ID,
			FullName:           roll.technician.FullName,
			Specialization:     roll.technician.Specialization,
			AvgResolutionLabel: domain.UnknownLabel,
			ResolvedCount:      roll.resolvedCount,
			OpenWorkload:       roll.openWorkload,
		}
		if roll.resolutionN > 0 {
			avg := roll.resolutionSum / time.Duration(roll.resolutionN)
			hours := avg.Hours()
			item.AvgResolutionHours = &hours
			item.AvgResolutionLabel = domain.FormatDuration(avg)
		}
		if roll.scoreN > 0 {
			rate := round1(float64(roll.scoreSum) / float64(roll.scoreN))
			item.SatisfactionRate = &rate
		}
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].TechnicianID.String() < result[j].TechnicianID.String()
	})
	return result
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
