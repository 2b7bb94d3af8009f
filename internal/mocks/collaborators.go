package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/producer/rabbitmq"
)

// MockClock мок для Clock с фиксированным временем
type MockClock struct {
	Current time.Time
}

func (c *MockClock) Now() time.Time {
	return c.Current
}

// MockTechnicianDirectory мок для TechnicianDirectory
type MockTechnicianDirectory struct {
	mock.Mock
}

func (m *MockTechnicianDirectory) AvailableByRole(ctx context.Context, role string) ([]*domain.Technician, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Technician), args.Error(1)
}

// MockAuditLog мок для AuditLog
type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Query(ctx context.Context, window time.Duration) ([]domain.AuditEvent, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEvent), args.Error(1)
}

// MockAllocationStrategy мок для AllocationStrategy
type MockAllocationStrategy struct {
	mock.Mock
}

func (m *MockAllocationStrategy) SelectTechnician(candidates []*domain.Technician) (string, error) {
	args := m.Called(candidates)
	return args.String(0), args.Error(1)
}

// MockEventProducer мок для EventProducer
type MockEventProducer struct {
	mock.Mock
}

func (m *MockEventProducer) PublishMaintenanceEvent(ctx context.Context, event *rabbitmq.MaintenanceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventProducer) PublishIncidentEvent(ctx context.Context, event *rabbitmq.IncidentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}
