package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/mocks"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
	"github.com/FifiSALIOU/correction-sub000/internal/infrastructure/scheduler"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reportAt(ts time.Time) *domain.MetricsReport {
	return &domain.MetricsReport{
		GeneratedAt:        ts,
		AvgResolutionLabel: domain.UnknownLabel,
	}
}

func TestScheduler_LatestBeforeFirstPass(t *testing.T) {
	analytics := mocks.NewMockAnalyticsService()
	sched := scheduler.New(analytics, nil, time.Minute, discardLogger())

	report, ok := sched.Latest()
	assert.Nil(t, report)
	assert.False(t, ok)
}

func TestScheduler_RefreshStoresAndBroadcasts(t *testing.T) {
	analytics := mocks.NewMockAnalyticsService()
	broadcaster := mocks.NewMockReportBroadcaster()
	sched := scheduler.New(analytics, broadcaster, time.Minute, discardLogger())

	fresh := reportAt(time.Now())
	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(fresh, nil).Once()
	broadcaster.On("BroadcastReport", fresh).Once()

	got, err := sched.Refresh(context.Background())

	require.NoError(t, err)
	assert.Same(t, fresh, got)

	latest, ok := sched.Latest()
	require.True(t, ok)
	assert.Same(t, fresh, latest)

	analytics.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestScheduler_RefreshFailureKeepsPrevious(t *testing.T) {
	analytics := mocks.NewMockAnalyticsService()
	sched := scheduler.New(analytics, nil, time.Minute, discardLogger())

	first := reportAt(time.Now())
	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(first, nil).Once()
	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(nil, errors.New("upstream down")).Once()

	_, err := sched.Refresh(context.Background())
	require.NoError(t, err)

	_, err = sched.Refresh(context.Background())
	require.Error(t, err)

	latest, ok := sched.Latest()
	require.True(t, ok)
	assert.Same(t, first, latest)
}

func TestScheduler_SupersededReportDiscarded(t *testing.T) {
	analytics := mocks.NewMockAnalyticsService()
	broadcaster := mocks.NewMockReportBroadcaster()
	sched := scheduler.New(analytics, broadcaster, time.Minute, discardLogger())

	now := time.Now()
	newer := reportAt(now)
	// A slow pass finishing after a faster one carries an older timestamp.
	older := reportAt(now.Add(-time.Second))

	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(newer, nil).Once()
	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(older, nil).Once()
	broadcaster.On("BroadcastReport", newer).Once()

	_, err := sched.Refresh(context.Background())
	require.NoError(t, err)
	_, err = sched.Refresh(context.Background())
	require.NoError(t, err)

	latest, ok := sched.Latest()
	require.True(t, ok)
	assert.Same(t, newer, latest)

	// The stale report must not reach clients either.
	broadcaster.AssertNumberOfCalls(t, "BroadcastReport", 1)
}

func TestScheduler_RunComputesOnStart(t *testing.T) {
	analytics := mocks.NewMockAnalyticsService()
	sched := scheduler.New(analytics, nil, time.Hour, discardLogger())

	fresh := reportAt(time.Now())
	analytics.On("ComputeReport", mock.Anything, ports.TicketFilter{}).
		Return(fresh, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	require.Eventually(t, func() bool {
		_, ok := sched.Latest()
		return ok
	}, time.Second, 10*time.Millisecond)
}
