package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	apperrors "github.com/FifiSALIOU/correction-sub000/internal/core/errors"
	"github.com/FifiSALIOU/correction-sub000/internal/core/mocks"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

func newMetricsRouter(reports *mocks.MockReportSource, analytics *mocks.MockAnalyticsService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := NewErrorHandler(logger)
	handler := NewMetricsHandler(reports, analytics, errorHandler, logger)

	router := chi.NewRouter()
	router.Get("/metrics", handler.HandleGetMetrics)
	router.Post("/metrics/refresh", handler.HandleRefresh)
	router.Get("/metrics/technicians", handler.HandleTechnicianRollups)
	return router
}

func sampleReport() *domain.MetricsReport {
	return &domain.MetricsReport{
		GeneratedAt:        time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC),
		AvgResolutionLabel: domain.UnknownLabel,
		Technicians: []domain.TechnicianRollup{
			{TechnicianID: uuid.New(), FullName: "Awa Diop", AvgResolutionLabel: domain.UnknownLabel},
		},
	}
}

func TestMetricsHandler_GetMetrics(t *testing.T) {
	t.Run("serves the cached report", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		reports.On("Latest").Return(sampleReport(), true)

		req := httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)

		var response struct {
			Data domain.MetricsReport `json:"data"`
		}
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, domain.UnknownLabel, response.Data.AvgResolutionLabel)
		analytics.AssertNotCalled(t, "ComputeReport")
	})

	t.Run("503 before the first pass", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		reports.On("Latest").Return(nil, false)

		req := httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusServiceUnavailable, recorder.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, "REPORT_NOT_READY", response.Code)
	})

	t.Run("filter triggers a dedicated pass", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		technicianID := uuid.New()
		analytics.On("ComputeReport", mock.Anything, mock.MatchedBy(func(f ports.TicketFilter) bool {
			return f.TechnicianID != nil && *f.TechnicianID == technicianID
		})).Return(sampleReport(), nil)

		req := httptest.NewRequest(stdhttp.MethodGet, "/metrics?technician_id="+technicianID.String(), nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		reports.AssertNotCalled(t, "Latest")
		analytics.AssertExpectations(t)
	})

	t.Run("rejects malformed technician_id", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		req := httptest.NewRequest(stdhttp.MethodGet, "/metrics?technician_id=not-a-uuid", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
		analytics.AssertNotCalled(t, "ComputeReport")
	})

	t.Run("rejects unknown ticket type", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		req := httptest.NewRequest(stdhttp.MethodGet, "/metrics?type=printer", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		req := httptest.NewRequest(stdhttp.MethodGet,
			"/metrics?created_from=2026-03-20&created_to=2026-03-10", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	})
}

func TestMetricsHandler_Refresh(t *testing.T) {
	t.Run("returns the fresh report", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		reports.On("Refresh", mock.Anything).Return(sampleReport(), nil)

		req := httptest.NewRequest(stdhttp.MethodPost, "/metrics/refresh", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		reports.AssertExpectations(t)
	})

	t.Run("upstream failure surfaces as 500", func(t *testing.T) {
		reports := mocks.NewMockReportSource()
		analytics := mocks.NewMockAnalyticsService()
		router := newMetricsRouter(reports, analytics)

		reports.On("Refresh", mock.Anything).Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest(stdhttp.MethodPost, "/metrics/refresh", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusInternalServerError, recorder.Code)
	})
}

func TestMetricsHandler_TechnicianRollups(t *testing.T) {
	reports := mocks.NewMockReportSource()
	analytics := mocks.NewMockAnalyticsService()
	router := newMetricsRouter(reports, analytics)

	reports.On("Latest").Return(sampleReport(), true)

	req := httptest.NewRequest(stdhttp.MethodGet, "/metrics/technicians", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response ListResponse[domain.TechnicianRollup]
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "Awa Diop", response.Data[0].FullName)
}

func TestInsightsHandler(t *testing.T) {
	newRouter := func(analytics *mocks.MockAnalyticsService) *chi.Mux {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		errorHandler := NewErrorHandler(logger)
		handler := NewInsightsHandler(analytics, errorHandler, logger)

		router := chi.NewRouter()
		router.Route("/tickets", handler.RegisterRoutes)
		return router
	}

	t.Run("serves insights with dispatcher attribution", func(t *testing.T) {
		analytics := mocks.NewMockAnalyticsService()
		router := newRouter(analytics)

		ticketID := uuid.New()
		dispatcherID := uuid.New()
		delegated := true
		analytics.On("TicketInsights", mock.Anything, ticketID, &dispatcherID).
			Return(&domain.TicketInsights{
				TicketID:         ticketID,
				Status:           domain.StatusResolved,
				ResolutionLabel:  "20 h 0 mn",
				DelegatedByActor: &delegated,
			}, nil)

		url := "/tickets/" + ticketID.String() + "/insights?dispatcher_id=" + dispatcherID.String()
		req := httptest.NewRequest(stdhttp.MethodGet, url, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)

		var response struct {
			Data domain.TicketInsights `json:"data"`
		}
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, ticketID, response.Data.TicketID)
		require.NotNil(t, response.Data.DelegatedByActor)
		assert.True(t, *response.Data.DelegatedByActor)
		analytics.AssertExpectations(t)
	})

	t.Run("rejects malformed ticket ID", func(t *testing.T) {
		analytics := mocks.NewMockAnalyticsService()
		router := newRouter(analytics)

		req := httptest.NewRequest(stdhttp.MethodGet, "/tickets/not-a-uuid/insights", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
		analytics.AssertNotCalled(t, "TicketInsights")
	})

	t.Run("unknown ticket maps to 404", func(t *testing.T) {
		analytics := mocks.NewMockAnalyticsService()
		router := newRouter(analytics)

		ticketID := uuid.New()
		analytics.On("TicketInsights", mock.Anything, ticketID, (*uuid.UUID)(nil)).
			Return(nil, apperrors.ErrTicketNotFound)

		req := httptest.NewRequest(stdhttp.MethodGet, "/tickets/"+ticketID.String()+"/insights", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, stdhttp.StatusNotFound, recorder.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, "TICKET_NOT_FOUND", response.Code)
	})
}
