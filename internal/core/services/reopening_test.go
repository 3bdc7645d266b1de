package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/services"
)

func TestIsReopened(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	t.Run("no history", func(t *testing.T) {
		assert.False(t, services.IsReopened(nil))
	})

	t.Run("straight to resolved", func(t *testing.T) {
		history := []*domain.HistoryEvent{
			{NewStatus: domain.StatusAssigned, ChangedAt: at(1)},
			{NewStatus: domain.StatusResolved, ChangedAt: at(5)},
		}
		assert.False(t, services.IsReopened(history))
	})

	t.Run("non-terminal after terminal", func(t *testing.T) {
		history := []*domain.HistoryEvent{
			{NewStatus: domain.StatusResolved, ChangedAt: at(5)},
			{NewStatus: domain.StatusInProgress, ChangedAt: at(8)},
		}
		assert.True(t, services.IsReopened(history))
	})

	t.Run("resolved to closed is not a reopening", func(t *testing.T) {
		history := []*domain.HistoryEvent{
			{NewStatus: domain.StatusResolved, ChangedAt: at(5)},
			{NewStatus: domain.StatusClosed, ChangedAt: at(48)},
		}
		assert.False(t, services.IsReopened(history))
	})

	t.Run("reopening after resolved then closed", func(t *testing.T) {
		history := []*domain.HistoryEvent{
			{NewStatus: domain.StatusResolved, ChangedAt: at(5)},
			{NewStatus: domain.StatusClosed, ChangedAt: at(48)},
			{NewStatus: domain.StatusPendingAnalysis, ChangedAt: at(72)},
		}
		assert.True(t, services.IsReopened(history))
	})

	t.Run("non-terminal churn before resolution", func(t *testing.T) {
		history := []*domain.HistoryEvent{
			{NewStatus: domain.StatusAssigned, ChangedAt: at(1)},
			{NewStatus: domain.StatusPendingAnalysis, ChangedAt: at(2)},
			{NewStatus: domain.StatusAssigned, ChangedAt: at(3)},
			{NewStatus: domain.StatusResolved, ChangedAt: at(5)},
		}
		assert.False(t, services.IsReopened(history))
	})
}
