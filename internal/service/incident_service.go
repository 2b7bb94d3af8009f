package service

import (
	"context"
	"fmt"
	"time"

	"AssetCarePlatform/internal/domain"
	enginemetrics "AssetCarePlatform/internal/metrics"
	"AssetCarePlatform/internal/producer/rabbitmq"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
	"AssetCarePlatform/pkg/validation"
)

// IncidentService интерфейс триажа и жизненного цикла инцидентов
type IncidentService interface {
	// Report регистрирует инцидент, при необходимости с автоэскалацией
	Report(ctx context.Context, req *ReportRequest) (*domain.Incident, error)

	// Assign назначает исполнителя по стратегии распределения
	Assign(ctx context.Context, incidentID, role string) (*domain.Incident, error)

	// StartProgress отмечает начало работ по инциденту
	StartProgress(ctx context.Context, incidentID string) (*domain.Incident, error)

	// Resolve фиксирует решение и возвращает оборудование в эксплуатацию
	Resolve(ctx context.Context, req *ResolveRequest) (*domain.Incident, error)

	// Close выполняет административное закрытие
	Close(ctx context.Context, incidentID string) (*domain.Incident, error)

	// Score вычисляет текущий приоритет инцидента
	Score(ctx context.Context, incidentID string) (int, error)

	// ListByEquipment возвращает историю инцидентов по оборудованию
	ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.Incident, error)

	// EscalateOverdue эскалирует серьезные активные инциденты с истекшим льготным периодом
	EscalateOverdue(ctx context.Context) ([]*domain.Incident, error)
}

// ReportRequest параметры регистрации инцидента
type ReportRequest struct {
	EquipmentID string `json:"equipment_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Impact      string `json:"impact"`
	Category    string `json:"category"`
	ReportedBy  string `json:"reported_by"`
}

// ResolveRequest параметры разрешения инцидента
type ResolveRequest struct {
	IncidentID       string   `json:"incident_id"`
	Solution         string   `json:"solution"`
	ActualCost       *float64 `json:"actual_cost,omitempty"`
	RequiresFollowUp bool     `json:"requires_follow_up"`
}

// IncidentConfig конфигурация сервиса инцидентов
type IncidentConfig struct {
	// Льготный период до автоэскалации, ноль означает немедленную эскалацию
	EscalationGrace time.Duration `json:"escalation_grace"`

	// Таймаут обращений к внешним коллабораторам
	UpstreamTimeout time.Duration `json:"upstream_timeout"`
}

// DefaultIncidentConfig возвращает конфигурацию по умолчанию
func DefaultIncidentConfig() *IncidentConfig {
	return &IncidentConfig{
		EscalationGrace: 0,
		UpstreamTimeout: 5 * time.Second,
	}
}

// incidentService реализация IncidentService
type incidentService struct {
	incidentRepo  repository.IncidentRepository
	equipmentRepo repository.EquipmentRepository
	txManager     repository.TxManager
	directory     TechnicianDirectory
	allocator     AllocationStrategy
	producer      rabbitmq.EventProducer
	clock         Clock
	config        *IncidentConfig
	logger        logger.Logger
	metrics       *enginemetrics.EngineMetrics
	validator     *validation.Validator
}

// NewIncidentService создает новый сервис инцидентов
func NewIncidentService(
	incidentRepo repository.IncidentRepository,
	equipmentRepo repository.EquipmentRepository,
	txManager repository.TxManager,
	directory TechnicianDirectory,
	allocator AllocationStrategy,
	producer rabbitmq.EventProducer,
	clock Clock,
	config *IncidentConfig,
	log logger.Logger,
	metrics *enginemetrics.EngineMetrics,
) IncidentService {
	if config == nil {
		config = DefaultIncidentConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if allocator == nil {
		allocator = NewFirstAvailableAllocator()
	}

	return &incidentService{
		incidentRepo:  incidentRepo,
		equipmentRepo: equipmentRepo,
		txManager:     txManager,
		directory:     directory,
		allocator:     allocator,
		producer:      producer,
		clock:         clock,
		config:        config,
		logger:        log,
		metrics:       metrics,
		validator:     validation.NewValidator(),
	}
}

// Report регистрирует инцидент.
// Для серьезных неназначенных инцидентов создание инцидента и вывод
// оборудования из эксплуатации выполняются в одной транзакции.
func (s *incidentService) Report(ctx context.Context, req *ReportRequest) (*domain.Incident, error) {
	if err := s.validateReportRequest(req); err != nil {
		return nil, err
	}

	equipment, err := s.getEquipment(ctx, req.EquipmentID)
	if err != nil {
		s.metrics.RecordTaskError("report_incident", string(errors.CodeOf(err)))
		return nil, err
	}

	now := s.clock.Now()
	incident := domain.NewIncident(
		req.EquipmentID,
		req.Title,
		req.Description,
		domain.Severity(req.Severity),
		domain.Impact(req.Impact),
		req.Category,
		req.ReportedBy,
		now,
	)

	// При нулевом льготном периоде эскалация немедленная, иначе ее
	// выполняет отложенный проход EscalateOverdue
	escalate := incident.RequiresEscalation() && s.config.EscalationGrace == 0

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if escalate {
			incident.EquipmentSuspended = true
		}

		if err := s.incidentRepo.Create(txCtx, incident); err != nil {
			return err
		}

		// Оборудование выводится из эксплуатации вместе с созданием инцидента,
		// сбой любой записи откатывает обе
		if escalate {
			if err := s.equipmentRepo.UpdateStatus(txCtx, equipment.ID, domain.EquipmentStatusOutOfService); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.metrics.RecordTaskError("report_incident", string(errors.CodeOf(err)))
		return nil, err
	}

	score := domain.TriageScore(incident.Severity, incident.Impact, incident.ReportedAt, now)
	s.metrics.RecordIncidentOperation("report", string(incident.Severity))
	s.metrics.RecordTriageScore(score)

	s.logger.Info("Incident reported",
		logger.String("incident_id", incident.ID),
		logger.String("equipment_id", incident.EquipmentID),
		logger.String("severity", string(incident.Severity)),
		logger.Int("priority", score),
		logger.Bool("equipment_suspended", incident.EquipmentSuspended))

	s.publishIncidentEvent(ctx, rabbitmq.EventIncidentReported, incident, score)
	if escalate {
		s.metrics.RecordEscalation()
		s.publishIncidentEvent(ctx, rabbitmq.EventIncidentEscalated, incident, score)
	}

	return incident, nil
}

// Assign назначает исполнителя по стратегии распределения
func (s *incidentService) Assign(ctx context.Context, incidentID, role string) (*domain.Incident, error) {
	if err := s.validator.ValidateUUID(incidentID, "incident_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid assign request")
	}
	if role == "" {
		return nil, errors.New(errors.ErrValidation, "technician role is required").
			WithContext(ctx)
	}

	incident, err := s.incidentRepo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.availableTechnicians(ctx, role)
	if err != nil {
		return nil, err
	}

	technicianID, err := s.allocator.SelectTechnician(candidates)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUpstreamUnavailable, "no technician available").
			WithDetails(fmt.Sprintf("role: %s", role)).
			WithContext(ctx)
	}

	if err := incident.Assign(technicianID, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.metrics.RecordIncidentOperation("assign", string(incident.Severity))
	s.logger.Info("Incident assigned",
		logger.String("incident_id", incident.ID),
		logger.String("technician_id", technicianID),
		logger.String("role", role))

	s.publishIncidentEvent(ctx, rabbitmq.EventIncidentAssigned, incident, s.scoreOf(incident))

	return incident, nil
}

// StartProgress отмечает начало работ по инциденту
func (s *incidentService) StartProgress(ctx context.Context, incidentID string) (*domain.Incident, error) {
	if err := s.validator.ValidateUUID(incidentID, "incident_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid request")
	}

	incident, err := s.incidentRepo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if err := incident.StartProgress(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.metrics.RecordIncidentOperation("start_progress", string(incident.Severity))

	return incident, nil
}

// Resolve фиксирует решение инцидента.
// Оборудование, выведенное из эксплуатации этим инцидентом, возвращается
// в работу в той же транзакции.
func (s *incidentService) Resolve(ctx context.Context, req *ResolveRequest) (*domain.Incident, error) {
	if err := s.validator.ValidateUUID(req.IncidentID, "incident_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid resolve request")
	}

	incident, err := s.incidentRepo.GetByID(ctx, req.IncidentID)
	if err != nil {
		return nil, err
	}

	if err := incident.Resolve(s.clock.Now(), req.Solution, req.ActualCost, req.RequiresFollowUp); err != nil {
		s.metrics.RecordTaskError("resolve_incident", string(errors.CodeOf(err)))
		return nil, err
	}

	restoreEquipment := incident.EquipmentSuspended

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if restoreEquipment {
			incident.EquipmentSuspended = false
		}

		if err := s.incidentRepo.Update(txCtx, incident); err != nil {
			return err
		}

		if restoreEquipment {
			if err := s.equipmentRepo.UpdateStatus(txCtx, incident.EquipmentID, domain.EquipmentStatusOperative); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.metrics.RecordTaskError("resolve_incident", string(errors.CodeOf(err)))
		return nil, err
	}

	s.metrics.RecordIncidentOperation("resolve", string(incident.Severity))
	s.logger.Info("Incident resolved",
		logger.String("incident_id", incident.ID),
		logger.String("equipment_id", incident.EquipmentID),
		logger.Bool("equipment_restored", restoreEquipment))

	s.publishIncidentEvent(ctx, rabbitmq.EventIncidentResolved, incident, s.scoreOf(incident))

	return incident, nil
}

// Close выполняет административное закрытие разрешенного инцидента
func (s *incidentService) Close(ctx context.Context, incidentID string) (*domain.Incident, error) {
	if err := s.validator.ValidateUUID(incidentID, "incident_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid request")
	}

	incident, err := s.incidentRepo.GetByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if err := incident.Close(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.metrics.RecordIncidentOperation("close", string(incident.Severity))
	s.logger.Info("Incident closed", logger.String("incident_id", incident.ID))

	s.publishIncidentEvent(ctx, rabbitmq.EventIncidentClosed, incident, s.scoreOf(incident))

	return incident, nil
}

// Score вычисляет текущий приоритет инцидента.
// Приоритет не хранится, он всегда пересчитывается от текущего времени.
func (s *incidentService) Score(ctx context.Context, incidentID string) (int, error) {
	if err := s.validator.ValidateUUID(incidentID, "incident_id"); err != nil {
		return 0, errors.Wrap(err, errors.ErrValidation, "invalid request")
	}

	incident, err := s.incidentRepo.GetByID(ctx, incidentID)
	if err != nil {
		return 0, err
	}

	score := s.scoreOf(incident)
	s.metrics.RecordTriageScore(score)

	return score, nil
}

// ListByEquipment возвращает историю инцидентов по оборудованию
func (s *incidentService) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.Incident, error) {
	if err := s.validator.ValidateUUID(equipmentID, "equipment_id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid request")
	}

	return s.incidentRepo.ListByEquipment(ctx, equipmentID)
}

// EscalateOverdue выводит из эксплуатации оборудование серьезных активных
// инцидентов, остающихся без назначения дольше льготного периода.
// Вызывается периодическим обходом, сбой одного инцидента не прерывает остальные.
func (s *incidentService) EscalateOverdue(ctx context.Context) ([]*domain.Incident, error) {
	active, err := s.incidentRepo.ListByStatus(ctx, domain.IncidentStatusActive)
	if err != nil {
		s.metrics.RecordTaskError("escalate_incidents", string(errors.CodeOf(err)))
		return nil, err
	}

	now := s.clock.Now()
	escalated := make([]*domain.Incident, 0)

	for _, incident := range active {
		if !incident.RequiresEscalation() || incident.EquipmentSuspended {
			continue
		}
		if now.Sub(incident.ReportedAt) < s.config.EscalationGrace {
			continue
		}

		if err := s.escalate(ctx, incident); err != nil {
			s.metrics.RecordTaskError("escalate_incidents", string(errors.CodeOf(err)))
			s.logger.Error("Failed to escalate incident",
				logger.String("incident_id", incident.ID),
				logger.String("equipment_id", incident.EquipmentID),
				logger.Error(err))
			continue
		}

		escalated = append(escalated, incident)
	}

	return escalated, nil
}

// escalate выводит оборудование из эксплуатации вместе с отметкой инцидента,
// сбой любой записи откатывает обе
func (s *incidentService) escalate(ctx context.Context, incident *domain.Incident) error {
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		incident.EquipmentSuspended = true

		if err := s.incidentRepo.Update(txCtx, incident); err != nil {
			return err
		}

		return s.equipmentRepo.UpdateStatus(txCtx, incident.EquipmentID, domain.EquipmentStatusOutOfService)
	})
	if err != nil {
		incident.EquipmentSuspended = false
		return err
	}

	s.metrics.RecordEscalation()
	s.logger.Info("Incident escalated",
		logger.String("incident_id", incident.ID),
		logger.String("equipment_id", incident.EquipmentID),
		logger.String("severity", string(incident.Severity)))

	s.publishIncidentEvent(ctx, rabbitmq.EventIncidentEscalated, incident, s.scoreOf(incident))

	return nil
}

// scoreOf вычисляет приоритет инцидента от текущего времени
func (s *incidentService) scoreOf(incident *domain.Incident) int {
	return domain.TriageScore(incident.Severity, incident.Impact, incident.ReportedAt, s.clock.Now())
}

// validateReportRequest валидирует параметры регистрации инцидента
func (s *incidentService) validateReportRequest(req *ReportRequest) error {
	if err := s.validator.ValidateUUID(req.EquipmentID, "equipment_id"); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid report request")
	}
	if err := s.validator.ValidateStringLength(req.Title, "title", 1, 200); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid report request")
	}
	if err := s.validator.ValidateEnum(req.Severity, domain.ValidSeverities, "severity"); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid report request")
	}
	if err := s.validator.ValidateEnum(req.Impact, domain.ValidImpacts, "impact"); err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid report request")
	}
	return nil
}

// getEquipment получает справочник оборудования с таймаутом коллаборатора
func (s *incidentService) getEquipment(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
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

// availableTechnicians запрашивает справочник исполнителей с таймаутом
func (s *incidentService) availableTechnicians(ctx context.Context, role string) ([]*domain.Technician, error) {
	var candidates []*domain.Technician

	err := withUpstreamTimeout(ctx, s.config.UpstreamTimeout, "technician directory lookup", func(callCtx context.Context) error {
		var err error
		candidates, err = s.directory.AvailableByRole(callCtx, role)
		return err
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// publishIncidentEvent публикует событие инцидента, сбой публикации не прерывает операцию
func (s *incidentService) publishIncidentEvent(ctx context.Context, eventType string, incident *domain.Incident, score int) {
	if s.producer == nil {
		return
	}

	event := &rabbitmq.IncidentEvent{
		EventType:          eventType,
		IncidentID:         incident.ID,
		EquipmentID:        incident.EquipmentID,
		Severity:           incident.Severity,
		Impact:             incident.Impact,
		Status:             incident.Status,
		Priority:           score,
		AssignedUserID:     incident.AssignedUserID,
		ReportedAt:         incident.ReportedAt,
		ResolvedAt:         incident.ResolvedAt,
		EquipmentSuspended: incident.EquipmentSuspended,
	}

	if err := s.producer.PublishIncidentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish incident event",
			logger.String("event_type", eventType),
			logger.String("incident_id", incident.ID),
			logger.Error(err))
	}
}
