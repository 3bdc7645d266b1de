package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
)

// DelegationAttributor infers, by replaying a ticket's history, whether a
// given dispatcher handed the ticket to its secondary assignee. The upstream
// data model records delegation only as a side effect of a status transition
// plus a free-text reason, so attribution is a heuristic: reason text with
// unanticipated phrasing produces false negatives. Keep callers behind
// WasDelegatedBy so the heuristic can be swapped without touching them.
type DelegationAttributor struct {
	keywords []string
}

// DefaultDelegationKeywords returns the reason-text fragments that signal a
// delegation. The upstream dashboard is French, hence the locale-specific
// terms; the list is configurable because it is known to be non-exhaustive.
func DefaultDelegationKeywords() []string {
	return []string{"delegat", "deleg", "adjoint"}
}

// NewDelegationAttributor builds an attributor matching the given keyword
// set. Keywords are compared case-insensitively with accents folded, so
// "Délégation" matches "delegat". An empty set falls back to the defaults.
func NewDelegationAttributor(keywords []string) *DelegationAttributor {
	if len(keywords) == 0 {
		keywords = DefaultDelegationKeywords()
	}
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalizeReason(kw)
		if kw != "" {
			folded = append(folded, kw)
		}
	}
	return &DelegationAttributor{keywords: folded}
}

// WasDelegatedBy decides whether dispatcherID performed the delegation of
// this ticket. Rules apply in order, first match wins:
//
//  1. an event by the dispatcher whose reason mentions a delegation keyword;
//  2. an event by the dispatcher moving the ticket into pending_analysis
//     from some other state (a genuine transition, not a no-op);
//  3. otherwise the dispatcher did not delegate this ticket.
//
// Tickets without a secondary assignee were never delegated at all.
func (a *DelegationAttributor) WasDelegatedBy(t *domain.Ticket, history []*domain.HistoryEvent, dispatcherID uuid.UUID) bool {
	if !t.HasDelegate() {
		return false
	}

	for _, e := range history {
		if e.ActorID != dispatcherID || e.Reason == "" {
			continue
		}
		reason := normalizeReason(e.Reason)
		for _, kw := range a.keywords {
			if strings.Contains(reason, kw) {
				return true
			}
		}
	}

	for _, e := range history {
		if e.ActorID != dispatcherID || e.NewStatus != domain.StatusPendingAnalysis {
			continue
		}
		if e.OldStatus == nil || *e.OldStatus != domain.StatusPendingAnalysis {
			return true
		}
	}

	return false
}

// accentFolder maps the French accented characters seen in reason text to
// their ASCII base so keyword matching survives both spellings.
var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
)

func normalizeReason(s string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
}
