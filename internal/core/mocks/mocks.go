package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockHistoryRepository is a mock implementation of ports.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

func (m *MockHistoryRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*domain.HistoryEvent, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryEvent), args.Error(1)
}

// MockTechnicianRepository is a mock implementation of ports.TechnicianRepository
type MockTechnicianRepository struct {
	mock.Mock
}

func NewMockTechnicianRepository() *MockTechnicianRepository {
	return &MockTechnicianRepository{}
}

func (m *MockTechnicianRepository) List(ctx context.Context) ([]*domain.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Technician), args.Error(1)
}

// MockAnalyticsService is a mock implementation of ports.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func NewMockAnalyticsService() *MockAnalyticsService {
	return &MockAnalyticsService{}
}

func (m *MockAnalyticsService) ComputeReport(ctx context.Context, filter ports.TicketFilter) (*domain.MetricsReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MetricsReport), args.Error(1)
}

func (m *MockAnalyticsService) TicketInsights(ctx context.Context, ticketID uuid.UUID, dispatcherID *uuid.UUID) (*domain.TicketInsights, error) {
	args := m.Called(ctx, ticketID, dispatcherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketInsights), args.Error(1)
}

// MockReportSource is a mock implementation of ports.ReportSource
type MockReportSource struct {
	mock.Mock
}

func NewMockReportSource() *MockReportSource {
	return &MockReportSource{}
}

func (m *MockReportSource) Latest() (*domain.MetricsReport, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.MetricsReport), args.Bool(1)
}

func (m *MockReportSource) Refresh(ctx context.Context) (*domain.MetricsReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MetricsReport), args.Error(1)
}

// MockReportBroadcaster is a mock implementation of ports.ReportBroadcaster
type MockReportBroadcaster struct {
	mock.Mock
}

func NewMockReportBroadcaster() *MockReportBroadcaster {
	return &MockReportBroadcaster{}
}

func (m *MockReportBroadcaster) BroadcastReport(report *domain.MetricsReport) {
	m.Called(report)
}
