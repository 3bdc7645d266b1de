package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScoreKind distinguishes how a satisfaction score was obtained. Explicit
// scores come from a user rating; implicit scores are a heuristic proxy and
// carry their sub-scores so consumers can judge confidence.
type ScoreKind string

const (
	ScoreExplicit ScoreKind = "explicit"
	ScoreImplicit ScoreKind = "implicit"
)

// SubScores breaks an implicit satisfaction score into its weighted
// components, each on a 0-100 scale before weighting.
type SubScores struct {
	Speed         float64 `json:"speed"`
	SpeedMissing  bool    `json:"speedMissing"` // no resolution timestamp: Speed contributed 0 (approximation)
	NoReopening   float64 `json:"noReopening"`
	NoEscalation  float64 `json:"noEscalation"`
	FirstResponse float64 `json:"firstResponse"`
}

// Score is a 0-100 satisfaction value for one resolved or closed ticket.
type Score struct {
	Value int        `json:"value"`
	Kind  ScoreKind  `json:"kind"`
	Sub   *SubScores `json:"subScores,omitempty"` // nil for explicit scores
}

// StatusCount is the number of tickets currently in one status.
type StatusCount struct {
	Status TicketStatus `json:"status"`
	Count  int          `json:"count"`
}

// VolumePoint is the created/resolved ticket volume for one calendar day.
type VolumePoint struct {
	Day           time.Time `json:"day"`
	CreatedCount  int       `json:"createdCount"`
	ResolvedCount int       `json:"resolvedCount"`
}

// TechnicianRollup holds the portfolio metrics restricted to one technician.
type TechnicianRollup struct {
	TechnicianID       uuid.UUID `json:"technicianId"`
	FullName           string    `json:"fullName"`
	Specialization     string    `json:"specialization"`
	AvgResolutionHours *float64  `json:"avgResolutionHours"` // nil when no resolved ticket is measurable
	AvgResolutionLabel string    `json:"avgResolutionLabel"`
	SatisfactionRate   *float64  `json:"satisfactionRate"` // nil when no ticket could be scored
	ResolvedCount      int       `json:"resolvedCount"`
	OpenWorkload       int       `json:"openWorkload"`
}

// Diagnostics makes aggregate totals auditable: every ticket excluded from a
// metric is counted here so a dashboard can say "N of M excluded".
type Diagnostics struct {
	TotalTickets           int `json:"totalTickets"`
	ResolvedOrClosed       int `json:"resolvedOrClosed"`
	ExcludedFromResolution int `json:"excludedFromResolution"` // no usable resolution timestamp or negative elapsed
	Unscored               int `json:"unscored"`
	HistoryFetchFailures   int `json:"historyFetchFailures"`
	InconsistentHistories  int `json:"inconsistentHistories"`
}

// MetricsReport is the complete output of one analytics pass. Pointer fields
// are nil when the metric could not be computed for any ticket in scope,
// which is distinct from a true zero.
type MetricsReport struct {
	GeneratedAt        time.Time          `json:"generatedAt"`
	AvgResolutionHours *float64           `json:"avgResolutionHours"`
	AvgResolutionLabel string             `json:"avgResolutionLabel"`
	SatisfactionRate   *float64           `json:"satisfactionRate"` // percent, one decimal
	ReopeningRate      *float64           `json:"reopeningRate"`    // percent, one decimal
	ReopenedCount      int                `json:"reopenedCount"`
	StatusCounts       []StatusCount      `json:"statusCounts"`
	Volume             []VolumePoint      `json:"volume"`
	Technicians        []TechnicianRollup `json:"technicians"`
	Diagnostics        Diagnostics        `json:"diagnostics"`
}

// UnknownLabel is shown wherever a metric has no computable value.
const UnknownLabel = "N/A"

// FormatDuration renders an elapsed time the way the dashboard displays
// resolution times: "3 days 4 h 12 mn", "4 h 12 mn" or "12 mn". A zero or
// sub-minute duration renders as "0 mn".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(d.Minutes())
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d days %d h %d mn", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d h %d mn", hours, minutes)
	default:
		return fmt.Sprintf("%d mn", minutes)
	}
}
