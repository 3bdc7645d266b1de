package services

import "github.com/FifiSALIOU/correction-sub000/internal/core/domain"

// IsReopened reports whether a ticket left resolved/closed after first
// reaching it: any event after the first terminal transition whose new
// status falls outside {resolved, closed} counts as a reopening.
func IsReopened(history []*domain.HistoryEvent) bool {
	resolvedSeen := false
	for _, e := range history {
		if resolvedSeen && !e.NewStatus.IsTerminal() {
			return true
		}
		if e.IsResolution() {
			resolvedSeen = true
		}
	}
	return false
}
