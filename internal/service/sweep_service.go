package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/producer/rabbitmq"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
)

// sweepLockResource разделяемый ресурс блокировки периодического обхода
const sweepLockResource = "schedule-sweep"

// SweepConfig конфигурация периодического обхода расписания
type SweepConfig struct {
	// Cron выражение с секундами
	Schedule string `json:"schedule"`

	// Окно предупреждения в днях
	AlertWindowDays int `json:"alert_window_days"`

	// Время жизни блокировки обхода
	LockTTL time.Duration `json:"lock_ttl"`
}

// DefaultSweepConfig возвращает конфигурацию по умолчанию
func DefaultSweepConfig() *SweepConfig {
	return &SweepConfig{
		Schedule:        "0 */5 * * * *",
		AlertWindowDays: 7,
		LockTTL:         2 * time.Minute,
	}
}

// IncidentEscalator выполняет отложенную эскалацию инцидентов во время обхода
type IncidentEscalator interface {
	EscalateOverdue(ctx context.Context) ([]*domain.Incident, error)
}

// SweepService периодически классифицирует расписание, публикует события
// просроченных задач и эскалирует инциденты с истекшим льготным периодом.
// Блокировка в Redis не дает нескольким экземплярам выполнять обход одновременно.
type SweepService struct {
	maintenance MaintenanceService
	escalator   IncidentEscalator
	lockRepo    repository.LockRepository
	producer    rabbitmq.EventProducer
	config      *SweepConfig
	logger      logger.Logger

	cron    *cron.Cron
	ownerID string
}

// NewSweepService создает новый сервис периодического обхода
func NewSweepService(
	maintenance MaintenanceService,
	escalator IncidentEscalator,
	lockRepo repository.LockRepository,
	producer rabbitmq.EventProducer,
	config *SweepConfig,
	log logger.Logger,
) *SweepService {
	if config == nil {
		config = DefaultSweepConfig()
	}

	return &SweepService{
		maintenance: maintenance,
		escalator:   escalator,
		lockRepo:    lockRepo,
		producer:    producer,
		config:      config,
		logger:      log,
		cron:        cron.New(cron.WithSeconds()),
		ownerID:     uuid.New().String(),
	}
}

// Start запускает периодический обход по расписанию
func (s *SweepService) Start() error {
	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid sweep schedule").
			WithDetails(s.config.Schedule)
	}

	s.cron.Start()
	s.logger.Info("Schedule sweep started",
		logger.String("schedule", s.config.Schedule),
		logger.Int("alert_window_days", s.config.AlertWindowDays))

	return nil
}

// Stop останавливает периодический обход и дожидается текущего прогона
func (s *SweepService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Schedule sweep stopped")
}

// RunOnce выполняет один обход расписания.
// Возвращает классификацию или nil, если обход выполняет другой экземпляр.
func (s *SweepService) RunOnce(ctx context.Context) *domain.ScheduleClassification {
	_, err := s.lockRepo.TryLock(ctx, sweepLockResource, s.ownerID, s.config.LockTTL)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrConflict {
			s.logger.Debug("Schedule sweep already running elsewhere")
			return nil
		}
		s.logger.Error("Failed to acquire sweep lock", logger.Error(err))
		return nil
	}
	defer func() {
		if err := s.lockRepo.ReleaseLock(ctx, sweepLockResource, s.ownerID); err != nil {
			s.logger.Warn("Failed to release sweep lock", logger.Error(err))
		}
	}()

	classification, err := s.maintenance.ClassifySchedule(ctx, s.config.AlertWindowDays)
	if err != nil {
		s.logger.Error("Schedule sweep failed", logger.Error(err))
		return nil
	}

	s.logger.Info("Schedule sweep finished",
		logger.Int("overdue", len(classification.Overdue)),
		logger.Int("due_soon", len(classification.DueSoon)),
		logger.Int("on_track", len(classification.OnTrack)))

	for _, task := range classification.Overdue {
		s.publishOverdue(ctx, task)
	}

	s.escalateIncidents(ctx)

	return classification
}

// escalateIncidents выполняет отложенную эскалацию инцидентов,
// переживших льготный период без назначения
func (s *SweepService) escalateIncidents(ctx context.Context) {
	if s.escalator == nil {
		return
	}

	escalated, err := s.escalator.EscalateOverdue(ctx)
	if err != nil {
		s.logger.Error("Incident escalation pass failed", logger.Error(err))
		return
	}

	if len(escalated) > 0 {
		s.logger.Info("Escalated unassigned incidents", logger.Int("count", len(escalated)))
	}
}

// publishOverdue публикует событие просроченной задачи
func (s *SweepService) publishOverdue(ctx context.Context, task *domain.MaintenanceTask) {
	if s.producer == nil {
		return
	}

	event := &rabbitmq.MaintenanceEvent{
		EventType:     rabbitmq.EventMaintenanceOverdue,
		TaskID:        task.ID,
		EquipmentID:   task.EquipmentID,
		Kind:          string(task.Kind),
		Status:        task.Status,
		ScheduledDate: task.ScheduledDate,
	}

	if err := s.producer.PublishMaintenanceEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish overdue event",
			logger.String("task_id", task.ID),
			logger.Error(err))
	}
}
