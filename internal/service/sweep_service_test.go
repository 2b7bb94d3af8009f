package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/mocks"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
)

type mockMaintenanceService struct {
	mock.Mock
}

func (m *mockMaintenanceService) Schedule(ctx context.Context, req *ScheduleRequest) (*domain.MaintenanceTask, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceTask), args.Error(1)
}

func (m *mockMaintenanceService) Complete(ctx context.Context, req *CompleteRequest) (*domain.MaintenanceTask, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceTask), args.Error(1)
}

func (m *mockMaintenanceService) Cancel(ctx context.Context, taskID, reason string) (*domain.MaintenanceTask, error) {
	args := m.Called(ctx, taskID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceTask), args.Error(1)
}

func (m *mockMaintenanceService) PlanBulk(ctx context.Context, req *PlanBulkRequest) (*PlanBulkResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlanBulkResult), args.Error(1)
}

func (m *mockMaintenanceService) ClassifySchedule(ctx context.Context, alertWindowDays int) (*domain.ScheduleClassification, error) {
	args := m.Called(ctx, alertWindowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleClassification), args.Error(1)
}

func (m *mockMaintenanceService) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceTask), args.Error(1)
}

type mockIncidentEscalator struct {
	mock.Mock
}

func (m *mockIncidentEscalator) EscalateOverdue(ctx context.Context) ([]*domain.Incident, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Incident), args.Error(1)
}

type sweepFixture struct {
	maintenance *mockMaintenanceService
	escalator   *mockIncidentEscalator
	lockRepo    *mocks.MockLockRepository
	producer    *mocks.MockEventProducer
	sweep       *SweepService
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	log, err := logger.NewLogger("development", "error", "sweep-test")
	require.NoError(t, err)

	f := &sweepFixture{
		maintenance: &mockMaintenanceService{},
		escalator:   &mockIncidentEscalator{},
		lockRepo:    &mocks.MockLockRepository{},
		producer:    &mocks.MockEventProducer{},
	}

	f.sweep = NewSweepService(f.maintenance, f.escalator, f.lockRepo, f.producer, DefaultSweepConfig(), log)

	return f
}

func TestSweepRunOnce(t *testing.T) {
	t.Run("publishes an event per overdue task", func(t *testing.T) {
		f := newSweepFixture(t)

		f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
			Return(&repository.LockInfo{}, nil)
		f.lockRepo.On("ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything).Return(nil)

		classification := &domain.ScheduleClassification{
			Overdue: []*domain.MaintenanceTask{
				{ID: "task-1", EquipmentID: "eq-1", Kind: domain.MaintenanceKindPreventive, Status: domain.TaskStatusScheduled},
				{ID: "task-2", EquipmentID: "eq-2", Kind: domain.MaintenanceKindCalibration, Status: domain.TaskStatusScheduled},
			},
			DueSoon: []*domain.MaintenanceTask{{ID: "task-3"}},
		}
		f.maintenance.On("ClassifySchedule", mock.Anything, 7).Return(classification, nil)
		f.producer.On("PublishMaintenanceEvent", mock.Anything, mock.Anything).Return(nil)
		f.escalator.On("EscalateOverdue", mock.Anything).Return([]*domain.Incident{}, nil)

		result := f.sweep.RunOnce(context.Background())

		require.NotNil(t, result)
		assert.Len(t, result.Overdue, 2)
		f.producer.AssertNumberOfCalls(t, "PublishMaintenanceEvent", 2)
	})

	t.Run("runs the incident escalation pass", func(t *testing.T) {
		f := newSweepFixture(t)

		f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
			Return(&repository.LockInfo{}, nil)
		f.lockRepo.On("ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything).Return(nil)
		f.maintenance.On("ClassifySchedule", mock.Anything, 7).
			Return(&domain.ScheduleClassification{}, nil)
		f.escalator.On("EscalateOverdue", mock.Anything).
			Return([]*domain.Incident{{ID: "inc-1"}}, nil)

		result := f.sweep.RunOnce(context.Background())

		require.NotNil(t, result)
		f.escalator.AssertCalled(t, "EscalateOverdue", mock.Anything)
	})

	t.Run("escalation failure does not fail the sweep", func(t *testing.T) {
		f := newSweepFixture(t)

		f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
			Return(&repository.LockInfo{}, nil)
		f.lockRepo.On("ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything).Return(nil)
		f.maintenance.On("ClassifySchedule", mock.Anything, 7).
			Return(&domain.ScheduleClassification{}, nil)
		f.escalator.On("EscalateOverdue", mock.Anything).
			Return(nil, errors.New(errors.ErrInternal, "listing failed"))

		result := f.sweep.RunOnce(context.Background())

		require.NotNil(t, result)
		f.lockRepo.AssertCalled(t, "ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything)
	})

	t.Run("skips when another instance holds the lock", func(t *testing.T) {
		f := newSweepFixture(t)

		f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
			Return(nil, errors.New(errors.ErrConflict, "lock already acquired"))

		result := f.sweep.RunOnce(context.Background())

		assert.Nil(t, result)
		f.maintenance.AssertNotCalled(t, "ClassifySchedule", mock.Anything, mock.Anything)
		f.producer.AssertNotCalled(t, "PublishMaintenanceEvent", mock.Anything, mock.Anything)
		f.escalator.AssertNotCalled(t, "EscalateOverdue", mock.Anything)
	})

	t.Run("classification failure releases the lock", func(t *testing.T) {
		f := newSweepFixture(t)

		f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
			Return(&repository.LockInfo{}, nil)
		f.lockRepo.On("ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything).Return(nil)
		f.maintenance.On("ClassifySchedule", mock.Anything, 7).
			Return(nil, errors.New(errors.ErrInternal, "listing failed"))

		result := f.sweep.RunOnce(context.Background())

		assert.Nil(t, result)
		f.lockRepo.AssertCalled(t, "ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything)
	})
}

func TestSweepStartStop(t *testing.T) {
	f := newSweepFixture(t)

	f.lockRepo.On("TryLock", mock.Anything, "schedule-sweep", mock.Anything, mock.Anything).
		Return(&repository.LockInfo{}, nil)
	f.lockRepo.On("ReleaseLock", mock.Anything, "schedule-sweep", mock.Anything).Return(nil)
	f.maintenance.On("ClassifySchedule", mock.Anything, 7).
		Return(&domain.ScheduleClassification{}, nil)
	f.producer.On("PublishMaintenanceEvent", mock.Anything, mock.Anything).Return(nil)
	f.escalator.On("EscalateOverdue", mock.Anything).Return([]*domain.Incident{}, nil)

	require.NoError(t, f.sweep.Start())
	f.sweep.Stop()
}

func TestSweepInvalidSchedule(t *testing.T) {
	log, err := logger.NewLogger("development", "error", "sweep-test")
	require.NoError(t, err)

	sweep := NewSweepService(&mockMaintenanceService{}, nil, &mocks.MockLockRepository{}, nil,
		&SweepConfig{Schedule: "not a cron", AlertWindowDays: 7, LockTTL: time.Minute}, log)

	err = sweep.Start()
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
}
