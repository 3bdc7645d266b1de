package domain

import "github.com/google/uuid"

// TicketInsights bundles the per-ticket derivations served to the dashboard
// detail view. All values are computed on demand and never persisted.
type TicketInsights struct {
	TicketID           uuid.UUID    `json:"ticketId"`
	Status             TicketStatus `json:"status"`
	ResolutionHours    *float64     `json:"resolutionHours"` // nil when excluded
	ResolutionLabel    string       `json:"resolutionLabel"`
	Score              *Score       `json:"score"` // nil for tickets that are not resolved/closed
	Reopened           bool         `json:"reopened"`
	DelegatedByActor   *bool        `json:"delegatedByActor,omitempty"` // set only when a dispatcher ID was supplied
	HistoryUnavailable bool         `json:"historyUnavailable"`
}
