package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/repository"
)

// MockTaskRepository мок для TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.MaintenanceTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, taskID string) (*domain.MaintenanceTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceTask), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.MaintenanceTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceTask), args.Error(1)
}

func (m *MockTaskRepository) ListScheduled(ctx context.Context) ([]*domain.MaintenanceTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceTask), args.Error(1)
}

// MockIncidentRepository мок для IncidentRepository
type MockIncidentRepository struct {
	mock.Mock
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) GetByID(ctx context.Context, incidentID string) (*domain.Incident, error) {
	args := m.Called(ctx, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incident), args.Error(1)
}

func (m *MockIncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.Incident, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Incident), args.Error(1)
}

func (m *MockIncidentRepository) ListByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Incident), args.Error(1)
}

// MockEquipmentRepository мок для EquipmentRepository
type MockEquipmentRepository struct {
	mock.Mock
}

func (m *MockEquipmentRepository) Get(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) UpdateMaintenanceDates(ctx context.Context, equipmentID string, lastDate, nextDate time.Time) error {
	args := m.Called(ctx, equipmentID, lastDate, nextDate)
	return args.Error(0)
}

func (m *MockEquipmentRepository) UpdateStatus(ctx context.Context, equipmentID string, status domain.EquipmentStatus) error {
	args := m.Called(ctx, equipmentID, status)
	return args.Error(0)
}

// MockLockRepository мок для LockRepository
type MockLockRepository struct {
	mock.Mock
}

func (m *MockLockRepository) TryLock(ctx context.Context, resourceID, ownerID string, ttl time.Duration) (*repository.LockInfo, error) {
	args := m.Called(ctx, resourceID, ownerID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.LockInfo), args.Error(1)
}

func (m *MockLockRepository) ReleaseLock(ctx context.Context, resourceID, ownerID string) error {
	args := m.Called(ctx, resourceID, ownerID)
	return args.Error(0)
}

// MockTxManager мок для TxManager, выполняет fn с переданным контекстом
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
