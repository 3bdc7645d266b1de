package services

import (
	"math"
	"time"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// Weights of the implicit satisfaction sub-scores. They must sum to 1.0.
const (
	weightSpeed         = 0.40
	weightNoReopening   = 0.30
	weightNoEscalation  = 0.20
	weightFirstResponse = 0.10
)

// SatisfactionScore produces a 0-100 satisfaction value for a resolved or
// closed ticket. An explicit user rating always wins: it is rescaled from
// the 1-5 range and tagged explicit. Without a rating the score is a
// weighted heuristic over timing and process signals, tagged implicit with
// its sub-scores attached.
//
// When no resolution timestamp exists at all, the speed sub-score
// contributes 0 and SubScores.SpeedMissing is set: the result is a
// best-effort approximation, not hidden.
//
// The second return value is false for tickets that are not resolved/closed.
func SatisfactionScore(t *domain.Ticket, history []*domain.HistoryEvent) (domain.Score, bool) {
	if !t.IsResolvedOrClosed() {
		return domain.Score{}, false
	}

	if t.HasFeedback() {
		return domain.Score{
			Value: int(math.Round(float64(*t.FeedbackScore) / 5 * 100)),
			Kind:  domain.ScoreExplicit,
		}, true
	}

	sub := domain.SubScores{
		NoReopening:   noReopeningScore(history),
		NoEscalation:  noEscalationScore(history),
		FirstResponse: firstResponseScore(t, history),
	}
	if elapsed, ok := ResolutionTime(t, history); ok {
		sub.Speed = speedScore(t.Priority, elapsed)
	} else {
		sub.SpeedMissing = true
	}

	weighted := weightSpeed*sub.Speed +
		weightNoReopening*sub.NoReopening +
		weightNoEscalation*sub.NoEscalation +
		weightFirstResponse*sub.FirstResponse

	return domain.Score{
		Value: int(math.Round(weighted)),
		Kind:  domain.ScoreImplicit,
		Sub:   &sub,
	}, true
}

// speedScore grades resolution speed against tiered thresholds keyed by
// priority: the more urgent the ticket, the tighter the expectations.
func speedScore(p domain.TicketPriority, elapsed time.Duration) float64 {
	day := 24 * time.Hour

	var tiers [3]time.Duration
	switch {
	case p.IsUrgent():
		tiers = [3]time.Duration{24 * time.Hour, 48 * time.Hour, 72 * time.Hour}
	case p == domain.PriorityMedium:
		tiers = [3]time.Duration{3 * day, 5 * day, 7 * day}
	default:
		tiers = [3]time.Duration{7 * day, 14 * day, 21 * day}
	}

	switch {
	case elapsed < tiers[0]:
		return 100
	case elapsed < tiers[1]:
		return 80
	case elapsed < tiers[2]:
		return 60
	default:
		return 40
	}
}

// noReopeningScore penalizes tickets whose history shows transitions away
// from resolved/closed.
func noReopeningScore(history []*domain.HistoryEvent) float64 {
	count := 0
	for _, e := range history {
		if e.IsReopening() {
			count++
		}
	}
	switch {
	case count == 0:
		return 100
	case count == 1:
		return 70
	default:
		return 40
	}
}

// noEscalationScore penalizes repeated handoffs: each transition into
// assigned or in_progress beyond the first suggests friction.
func noEscalationScore(history []*domain.HistoryEvent) float64 {
	count := 0
	for _, e := range history {
		if e.NewStatus.IsHandoff() {
			count++
		}
	}
	switch {
	case count <= 1:
		return 100
	case count == 2:
		return 50
	default:
		return 20
	}
}

// firstResponseScore grades how quickly the ticket was first picked up. When
// the history records no handoff at all, a neutral 60 is returned rather
// than penalizing the ticket for a gap in the log.
func firstResponseScore(t *domain.Ticket, history []*domain.HistoryEvent) float64 {
	for _, e := range history {
		if !e.NewStatus.IsHandoff() {
			continue
		}
		elapsed := e.ChangedAt.Sub(t.CreatedAt)
		switch {
		case elapsed < 2*time.Hour:
			return 100
		case elapsed < 4*time.Hour:
			return 80
		case elapsed < 8*time.Hour:
			return 60
		default:
			return 40
		}
	}
	return 60
}
