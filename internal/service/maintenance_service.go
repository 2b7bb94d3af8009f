package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"AssetCarePlatform/internal/domain"
	enginemetrics "AssetCarePlatform/internal/metrics"
	"AssetCarePlatform/internal/producer/rabbitmq"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/internal/worker"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
	"AssetCarePlatform/pkg/validation"
)

// MaintenanceService интерфейс планировщика обслуживания
type MaintenanceService interface {
	// Schedule создает задачу обслуживания
	Schedule(ctx context.Context, req *ScheduleRequest) (*domain.MaintenanceTask, error)

	// Complete завершает задачу и для планового обслуживания создает следующую
	Complete(ctx context.Context, req *CompleteRequest) (*domain.MaintenanceTask, error)

	// Cancel отменяет задачу с указанием причины
	Cancel(ctx context.Context, taskID, reason string) (*domain.MaintenanceTask, error)

	// PlanBulk создает по одной задаче для каждого оборудования
	PlanBulk(ctx context.Context, req *PlanBulkRequest) (*PlanBulkResult, error)

	// ClassifySchedule классифицирует запланированные задачи по срокам
	ClassifySchedule(ctx context.Context, alertWindowDays int) (*domain.ScheduleClassification, error)

	// ListByEquipment возвращает историю задач по оборудованию
	ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error)
}

// ScheduleRequest параметры создания задачи обслуживания
type ScheduleRequest struct {
	EquipmentID   string    `json:"equipment_id"`
	Kind          string    `json:"kind"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Priority      int       `json:"priority"`
	TechnicianID  string    `json:"technician_id,omitempty"`
}

// CompleteRequest параметры завершения задачи
type CompleteRequest struct {
	TaskID                string   `json:"task_id"`
	ActualCost            *float64 `json:"actual_cost,omitempty"`
	ActualDurationMinutes *int     `json:"actual_duration_minutes,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
}

// PlanBulkRequest параметры пакетного планирования
type PlanBulkRequest struct {
	EquipmentIDs []string  `json:"equipment_ids"`
	Kind         string    `json:"kind"`
	HorizonStart time.Time `json:"horizon_start"`
	Cadence      string    `json:"cadence"`
	Priority     int       `json:"priority"`
}

// PlanBulkItem результат планирования для одного оборудования
type PlanBulkItem struct {
	EquipmentID string                  `json:"equipment_id"`
	Task        *domain.MaintenanceTask `json:"task,omitempty"`
	ErrorCode   errors.ErrorCode        `json:"error_code,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// PlanBulkResult результат пакетного планирования с изоляцией ошибок по позициям
type PlanBulkResult struct {
	Items     []*PlanBulkItem `json:"items"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// MaintenanceConfig конфигурация планировщика обслуживания
type MaintenanceConfig struct {
	// Таймаут обращений к внешним коллабораторам
	UpstreamTimeout time.Duration `json:"upstream_timeout"`

	// Время жизни блокировки задачи
	TaskLockTTL time.Duration `json:"task_lock_ttl"`
}

// DefaultMaintenanceConfig возвращает конфигурацию по умолчанию
func DefaultMaintenanceConfig() *MaintenanceConfig {
	return &MaintenanceConfig{
		UpstreamTimeout: 5 * time.Second,
		TaskLockTTL:     5 * time.Minute,
	}
}

// maintenanceService реализация MaintenanceService
type maintenanceService struct {
	taskRepo      repository.TaskRepository
	equipmentRepo repository.EquipmentRepository
	lockRepo      repository.LockRepository
	txManager     repository.TxManager
	producer      rabbitmq.EventProducer
	pool          *worker.Pool
	clock         Clock
	config        *MaintenanceConfig
	logger        logger.Logger
	metrics       *enginemetrics.EngineMetrics
	validator     *validation.Validator
}

// NewMaintenanceService создает новый планировщик обслуживания
func NewMaintenanceService(
	taskRepo repository.TaskRepository,
	equipmentRepo repository.EquipmentRepository,
	lockRepo repository.LockRepository,
	txManager repository.TxManager,
	producer rabbitmq.EventProducer,
	pool *worker.Pool,
	clock Clock,
	config *MaintenanceConfig,
	log logger.Logger,
	metrics *enginemetrics.EngineMetrics,
) MaintenanceService {
	if config == nil {
		config = DefaultMaintenanceConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &maintenanceService{
		taskRepo:      taskRepo,
		equipmentRepo: equipmentRepo,
		lockRepo:      lockRepo,
		txManager:     txManager,
		producer:      producer,
		pool:          pool,
		clock:         clock,
		config:        config,
		logger:        log,
		metrics:       metrics,
		validator:     validation.NewValidator(),
	}
}

// Schedule создает задачу обслуживания в статусе scheduled
func (s *maintenanceService) Schedule(ctx context.Context, req *ScheduleRequest) (*domain.MaintenanceTask, error) {
	if err := s.validateScheduleRequest(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	// Корректирующие работы допускают прошедшую дату для уже выполненного ремонта
	if req.ScheduledDate.Before(now) && req.Kind != string(domain.MaintenanceKindCorrective) {
		return nil, errors.New(errors.ErrInvalidDate, "scheduled date cannot be in the past").
			WithDetails(fmt.Sprintf("scheduled_date: %s", req.ScheduledDate.Format(time.RFC3339))).
			WithContext(ctx)
	}

	equipment, err := s.getEquipment(ctx, req.EquipmentID)
	if err != nil {
		s.metrics.RecordTaskError("schedule", string(errors.CodeOf(err)))
		return nil, err
	}

	if !domain.IsValidFrequencyCode(equipment.MaintenanceFrequencyCode) {
		// Неизвестный код периодичности трактуется как quarterly при расчетах
		s.logger.Warn("Equipment has unknown maintenance frequency code",
			logger.String("equipment_id", equipment.ID),
			logger.String("frequency_code", equipment.MaintenanceFrequencyCode))
	}

	task := domain.NewMaintenanceTask(
		req.EquipmentID,
		domain.MaintenanceKind(req.Kind),
		req.ScheduledDate,
		req.Priority,
		req.TechnicianID,
	)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.metrics.RecordTaskError("schedule", string(errors.CodeOf(err)))
		return nil, err
	}

	s.metrics.RecordTaskOperation("schedule", req.Kind, string(task.Status))
	s.logger.Info("Maintenance task scheduled",
		logger.String("task_id", task.ID),
		logger.String("equipment_id", task.EquipmentID),
		logger.String("kind", string(task.Kind)),
		logger.Time("scheduled_date", task.ScheduledDate))

	s.publishMaintenanceEvent(ctx, rabbitmq.EventMaintenanceScheduled, task, "")

	return task, nil
}

// Complete завершает задачу обслуживания.
// Для планового обслуживания в той же транзакции создается следующая задача
// и обновляются даты обслуживания оборудования. Сбой любого шага откатывает все.
func (s *maintenanceService) Complete(ctx context.Context, req *CompleteRequest) (*domain.MaintenanceTask, error) {
	if err := s.validator.ValidateUUID(req.TaskID, "task_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid complete request")
	}

	release, err := s.lockTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	defer release()

	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := task.Complete(now, req.ActualCost, req.ActualDurationMinutes, req.Notes); err != nil {
		s.metrics.RecordTaskError("complete", string(errors.CodeOf(err)))
		return nil, err
	}

	var successor *domain.MaintenanceTask

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return err
		}

		// Каждое завершение плановой задачи порождает ровно одну следующую
		if task.Kind == domain.MaintenanceKindPreventive {
			equipment, err := s.getEquipment(txCtx, task.EquipmentID)
			if err != nil {
				return err
			}

			nextDate := domain.NextDueDate(*task.CompletedDate, equipment.MaintenanceFrequencyCode)

			successor = domain.NewMaintenanceTask(
				task.EquipmentID,
				domain.MaintenanceKindPreventive,
				nextDate,
				task.Priority,
				"",
			)
			if err := s.taskRepo.Create(txCtx, successor); err != nil {
				return err
			}

			if err := s.equipmentRepo.UpdateMaintenanceDates(txCtx, task.EquipmentID, *task.CompletedDate, nextDate); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.metrics.RecordTaskError("complete", string(errors.CodeOf(err)))
		return nil, err
	}

	s.metrics.RecordTaskOperation("complete", string(task.Kind), string(task.Status))

	successorID := ""
	if successor != nil {
		successorID = successor.ID
		s.logger.Info("Successor maintenance task created",
			logger.String("task_id", task.ID),
			logger.String("successor_task_id", successor.ID),
			logger.Time("scheduled_date", successor.ScheduledDate))
	}

	s.logger.Info("Maintenance task completed",
		logger.String("task_id", task.ID),
		logger.String("equipment_id", task.EquipmentID),
		logger.String("kind", string(task.Kind)))

	s.publishMaintenanceEvent(ctx, rabbitmq.EventMaintenanceCompleted, task, successorID)

	return task, nil
}

// Cancel отменяет задачу обслуживания
func (s *maintenanceService) Cancel(ctx context.Context, taskID, reason string) (*domain.MaintenanceTask, error) {
	if err := s.validator.ValidateUUID(taskID, "task_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid cancel request")
	}
	if reason == "" {
		return nil, errors.New(errors.ErrValidation, "cancellation reason is required").
			WithContext(ctx)
	}

	release, err := s.lockTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	defer release()

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.Cancel(s.clock.Now(), reason); err != nil {
		s.metrics.RecordTaskError("cancel", string(errors.CodeOf(err)))
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.metrics.RecordTaskError("cancel", string(errors.CodeOf(err)))
		return nil, err
	}

	s.metrics.RecordTaskOperation("cancel", string(task.Kind), string(task.Status))
	s.logger.Info("Maintenance task cancelled",
		logger.String("task_id", task.ID),
		logger.String("reason", reason))

	s.publishMaintenanceEvent(ctx, rabbitmq.EventMaintenanceCancelled, task, "")

	return task, nil
}

// PlanBulk создает по одной задаче на каждое оборудование.
// Ошибки изолированы по позициям, пакет не прерывается на первом сбое.
func (s *maintenanceService) PlanBulk(ctx context.Context, req *PlanBulkRequest) (*PlanBulkResult, error) {
	if len(req.EquipmentIDs) == 0 {
		return nil, errors.New(errors.ErrValidation, "equipment_ids cannot be empty").
			WithContext(ctx)
	}
	if err := s.validator.ValidateEnum(req.Kind, domain.ValidMaintenanceKinds, "kind"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid plan request")
	}
	if err := s.validator.ValidateDate(req.HorizonStart, "horizon_start"); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidDate, "invalid plan request")
	}

	items := make([]*PlanBulkItem, len(req.EquipmentIDs))
	jobs := make([]*worker.Job, len(req.EquipmentIDs))

	for i, equipmentID := range req.EquipmentIDs {
		i, equipmentID := i, equipmentID
		items[i] = &PlanBulkItem{EquipmentID: equipmentID}
		jobs[i] = &worker.Job{
			ID: equipmentID,
			Run: func(jobCtx context.Context) error {
				task, err := s.planOne(jobCtx, equipmentID, req)
				if err != nil {
					items[i].ErrorCode = errors.CodeOf(err)
					items[i].Error = err.Error()
					return err
				}
				items[i].Task = task
				return nil
			},
		}
	}

	results := s.pool.ExecuteBatch(ctx, jobs)

	planResult := &PlanBulkResult{Items: items}
	for _, result := range results {
		if result.Err != nil {
			planResult.Failed++
		} else {
			planResult.Succeeded++
		}
	}

	s.logger.Info("Bulk maintenance planning finished",
		logger.Int("requested", len(req.EquipmentIDs)),
		logger.Int("succeeded", planResult.Succeeded),
		logger.Int("failed", planResult.Failed))

	return planResult, nil
}

// planOne создает одну задачу пакетного планирования
func (s *maintenanceService) planOne(ctx context.Context, equipmentID string, req *PlanBulkRequest) (*domain.MaintenanceTask, error) {
	equipment, err := s.getEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	// Отправная точка это следующий срок от последнего обслуживания,
	// для оборудования без истории это начало горизонта
	startDate := req.HorizonStart
	if equipment.LastMaintenanceDate != nil {
		startDate = domain.NextDueDate(*equipment.LastMaintenanceDate, req.Cadence)
		if startDate.Before(req.HorizonStart) {
			startDate = req.HorizonStart
		}
	}

	task := domain.NewMaintenanceTask(
		equipmentID,
		domain.MaintenanceKind(req.Kind),
		startDate,
		req.Priority,
		"",
	)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordTaskOperation("plan_bulk", req.Kind, string(task.Status))
	s.publishMaintenanceEvent(ctx, rabbitmq.EventMaintenanceScheduled, task, "")

	return task, nil
}

// ClassifySchedule классифицирует все запланированные задачи по срокам
func (s *maintenanceService) ClassifySchedule(ctx context.Context, alertWindowDays int) (*domain.ScheduleClassification, error) {
	if err := s.validator.ValidateWindowDays(alertWindowDays); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid alert window")
	}

	tasks, err := s.taskRepo.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}

	classification := domain.ClassifySchedule(tasks, s.clock.Now(), alertWindowDays)
	s.metrics.SetScheduleGauges(len(classification.Overdue), len(classification.DueSoon))

	return classification, nil
}

// ListByEquipment возвращает историю задач по оборудованию
func (s *maintenanceService) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error) {
	if err := s.validator.ValidateUUID(equipmentID, "equipment_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid request")
	}

	return s.taskRepo.ListByEquipment(ctx, equipmentID)
}

// validateScheduleRequest валидирует параметры создания задачи
func (s *maintenanceService) validateScheduleRequest(req *ScheduleRequest) error {
	if err := s.validator.ValidateUUID(req.EquipmentID, "equipment_id"); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid schedule request")
	}
	if err := s.validator.ValidateEnum(req.Kind, domain.ValidMaintenanceKinds, "kind"); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid schedule request")
	}
	if err := s.validator.ValidateDate(req.ScheduledDate, "scheduled_date"); err != nil {
		return errors.Wrap(err, errors.ErrInvalidDate, "invalid schedule request")
	}
	return nil
}

// getEquipment получает справочник оборудования с таймаутом коллаборатора
func (s *maintenanceService) getEquipment(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	var equipment *domain.Equipment

	err := withUpstreamTimeout(ctx, s.config.UpstreamTimeout, "equipment lookup", func(callCtx context.Context) error {
		var err error
		equipment, err = s.equipmentRepo.Get(callCtx, equipmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return equipment, nil
}

// lockTask захватывает блокировку задачи для взаимоисключающих операций
func (s *maintenanceService) lockTask(ctx context.Context, taskID string) (func(), error) {
	ownerID := uuid.New().String()

	_, err := s.lockRepo.TryLock(ctx, taskID, ownerID, s.config.TaskLockTTL)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrConflict {
			return nil, errors.New(errors.ErrConcurrentModification, "task is being modified by another operation").
				WithDetails(fmt.Sprintf("task_id: %s", taskID)).
				WithContext(ctx)
		}
		return nil, err
	}

	return func() {
		if err := s.lockRepo.ReleaseLock(context.Background(), taskID, ownerID); err != nil {
			s.logger.Warn("Failed to release task lock",
				logger.String("task_id", taskID),
				logger.Error(err))
		}
	}, nil
}

// publishMaintenanceEvent публикует событие задачи, сбой публикации не прерывает операцию
func (s *maintenanceService) publishMaintenanceEvent(ctx context.Context, eventType string, task *domain.MaintenanceTask, successorID string) {
	if s.producer == nil {
		return
	}

	event := &rabbitmq.MaintenanceEvent{
		EventType:       eventType,
		TaskID:          task.ID,
		EquipmentID:     task.EquipmentID,
		Kind:            string(task.Kind),
		Status:          task.Status,
		ScheduledDate:   task.ScheduledDate,
		CompletedDate:   task.CompletedDate,
		SuccessorTaskID: successorID,
		CancelReason:    task.CancelReason,
	}

	if err := s.producer.PublishMaintenanceEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish maintenance event",
			logger.String("event_type", eventType),
			logger.String("task_id", task.ID),
			logger.Error(err))
	}
}
