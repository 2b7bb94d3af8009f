package domain

import (
	"fmt"
	"time"

	apperrors "AssetCarePlatform/pkg/errors"
)

// MaintenanceKind представляет вид работы по обслуживанию
type MaintenanceKind string

const (
	MaintenanceKindPreventive   MaintenanceKind = "preventive"
	MaintenanceKindCorrective   MaintenanceKind = "corrective"
	MaintenanceKindCalibration  MaintenanceKind = "calibration"
	MaintenanceKindVerification MaintenanceKind = "verification"
)

// ValidMaintenanceKinds перечисляет допустимые виды работ
var ValidMaintenanceKinds = []string{
	string(MaintenanceKindPreventive),
	string(MaintenanceKindCorrective),
	string(MaintenanceKindCalibration),
	string(MaintenanceKindVerification),
}

// IsValidMaintenanceKind проверяет допустимость вида работы
func IsValidMaintenanceKind(kind string) bool {
	for _, k := range ValidMaintenanceKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// TaskStatus представляет статус задачи обслуживания
type TaskStatus string

const (
	TaskStatusScheduled  TaskStatus = "scheduled"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// MaintenanceTask представляет запланированную или выполненную работу по обслуживанию
type MaintenanceTask struct {
	ID                    string          `json:"id"`
	EquipmentID           string          `json:"equipment_id"`
	Kind                  MaintenanceKind `json:"kind"`
	ScheduledDate         time.Time       `json:"scheduled_date"`
	CompletedDate         *time.Time      `json:"completed_date,omitempty"`
	Status                TaskStatus      `json:"status"`
	Priority              int             `json:"priority"`
	AssignedTechnicianID  string          `json:"assigned_technician_id,omitempty"`
	ActualCost            *float64        `json:"actual_cost,omitempty"`
	ActualDurationMinutes *int            `json:"actual_duration_minutes,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CancelReason          string          `json:"cancel_reason,omitempty"`
	Version               int64           `json:"version"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// NewMaintenanceTask создает новую задачу обслуживания в статусе scheduled
func NewMaintenanceTask(equipmentID string, kind MaintenanceKind, scheduledDate time.Time, priority int, technicianID string) *MaintenanceTask {
	now := time.Now().UTC()
	return &MaintenanceTask{
		EquipmentID:          equipmentID,
		Kind:                 kind,
		ScheduledDate:        scheduledDate,
		Status:               TaskStatusScheduled,
		Priority:             priority,
		AssignedTechnicianID: technicianID,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// IsTerminal возвращает true для завершенных и отмененных задач
func (t *MaintenanceTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// Complete переводит задачу в статус completed с фиксацией фактических данных
func (t *MaintenanceTask) Complete(now time.Time, actualCost *float64, actualDurationMinutes *int, notes string) error {
	if t.IsTerminal() {
		return apperrors.New(apperrors.ErrAlreadyTerminal, "task is already in a terminal state").
			WithDetails(fmt.Sprintf("task_id: %s, status: %s", t.ID, t.Status))
	}

	completed := now.UTC()
	t.Status = TaskStatusCompleted
	t.CompletedDate = &completed
	t.ActualCost = actualCost
	t.ActualDurationMinutes = actualDurationMinutes
	if notes != "" {
		t.Notes = notes
	}
	t.UpdatedAt = completed
	return nil
}

// Cancel переводит задачу в статус cancelled с обязательной причиной
func (t *MaintenanceTask) Cancel(now time.Time, reason string) error {
	if t.IsTerminal() {
		return apperrors.New(apperrors.ErrAlreadyTerminal, "task is already in a terminal state").
			WithDetails(fmt.Sprintf("task_id: %s, status: %s", t.ID, t.Status))
	}
	if reason == "" {
		return apperrors.New(apperrors.ErrValidation, "cancellation reason is required")
	}

	t.Status = TaskStatusCancelled
	t.CancelReason = reason
	t.UpdatedAt = now.UTC()
	return nil
}

// Validate валидирует задачу обслуживания
func (t *MaintenanceTask) Validate() error {
	if t.EquipmentID == "" {
		return apperrors.New(apperrors.ErrValidation, "equipment_id is required")
	}
	if !IsValidMaintenanceKind(string(t.Kind)) {
		return apperrors.New(apperrors.ErrValidation, "unknown maintenance kind").
			WithDetails(fmt.Sprintf("kind: %s", t.Kind))
	}
	if t.ScheduledDate.IsZero() {
		return apperrors.New(apperrors.ErrInvalidDate, "scheduled_date is required")
	}
	return nil
}

// Severity представляет серьезность инцидента
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverities перечисляет допустимые значения серьезности
var ValidSeverities = []string{
	string(SeverityLow),
	string(SeverityMedium),
	string(SeverityHigh),
	string(SeverityCritical),
}

// Impact представляет влияние инцидента на работу оборудования
type Impact string

const (
	ImpactNone     Impact = "none"
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// ValidImpacts перечисляет допустимые значения влияния
var ValidImpacts = []string{
	string(ImpactNone),
	string(ImpactLow),
	string(ImpactMedium),
	string(ImpactHigh),
	string(ImpactCritical),
}

// IncidentStatus представляет статус инцидента
type IncidentStatus string

const (
	IncidentStatusActive     IncidentStatus = "active"
	IncidentStatusAssigned   IncidentStatus = "assigned"
	IncidentStatusInProgress IncidentStatus = "in_progress"
	IncidentStatusResolved   IncidentStatus = "resolved"
	IncidentStatusClosed     IncidentStatus = "closed"
)

// Incident представляет зарегистрированное происшествие с оборудованием
type Incident struct {
	ID               string         `json:"id"`
	EquipmentID      string         `json:"equipment_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Severity         Severity       `json:"severity"`
	Impact           Impact         `json:"impact"`
	Category         string         `json:"category"`
	ReportedByUserID string         `json:"reported_by_user_id"`
	AssignedUserID   string         `json:"assigned_user_id,omitempty"`
	Status           IncidentStatus `json:"status"`
	ReportedAt       time.Time      `json:"reported_at"`
	AssignedAt       *time.Time     `json:"assigned_at,omitempty"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
	ClosedAt         *time.Time     `json:"closed_at,omitempty"`
	Solution         string         `json:"solution,omitempty"`
	ActualCost       *float64       `json:"actual_cost,omitempty"`
	RequiresFollowUp bool           `json:"requires_follow_up"`
	// EquipmentSuspended фиксирует, что именно этот инцидент вывел оборудование из эксплуатации
	EquipmentSuspended bool      `json:"equipment_suspended"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewIncident создает новый инцидент в статусе active
func NewIncident(equipmentID, title, description string, severity Severity, impact Impact, category, reportedBy string, reportedAt time.Time) *Incident {
	now := reportedAt.UTC()
	return &Incident{
		EquipmentID:      equipmentID,
		Title:            title,
		Description:      description,
		Severity:         severity,
		Impact:           impact,
		Category:         category,
		ReportedByUserID: reportedBy,
		Status:           IncidentStatusActive,
		ReportedAt:       now,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsTerminal возвращает true для разрешенных и закрытых инцидентов
func (i *Incident) IsTerminal() bool {
	return i.Status == IncidentStatusResolved || i.Status == IncidentStatusClosed
}

// RequiresEscalation возвращает true если инцидент подлежит автоэскалации
func (i *Incident) RequiresEscalation() bool {
	return i.Severity == SeverityHigh || i.Severity == SeverityCritical
}

// Assign назначает исполнителя и переводит инцидент в статус assigned
func (i *Incident) Assign(userID string, now time.Time) error {
	if i.Status != IncidentStatusActive {
		return apperrors.New(apperrors.ErrConflict, "incident can only be assigned from active status").
			WithDetails(fmt.Sprintf("incident_id: %s, status: %s", i.ID, i.Status))
	}
	if userID == "" {
		return apperrors.New(apperrors.ErrValidation, "assignee user id is required")
	}

	assignedAt := now.UTC()
	i.AssignedUserID = userID
	i.Status = IncidentStatusAssigned
	i.AssignedAt = &assignedAt
	i.UpdatedAt = assignedAt
	return nil
}

// StartProgress отмечает начало работ по инциденту
func (i *Incident) StartProgress(now time.Time) error {
	if i.Status != IncidentStatusAssigned {
		return apperrors.New(apperrors.ErrConflict, "incident can only move to in_progress from assigned status").
			WithDetails(fmt.Sprintf("incident_id: %s, status: %s", i.ID, i.Status))
	}

	i.Status = IncidentStatusInProgress
	i.UpdatedAt = now.UTC()
	return nil
}

// Resolve фиксирует решение инцидента
func (i *Incident) Resolve(now time.Time, solution string, actualCost *float64, requiresFollowUp bool) error {
	if i.IsTerminal() {
		return apperrors.New(apperrors.ErrAlreadyResolved, "incident is already resolved or closed").
			WithDetails(fmt.Sprintf("incident_id: %s, status: %s", i.ID, i.Status))
	}
	if i.Status != IncidentStatusAssigned && i.Status != IncidentStatusInProgress {
		return apperrors.New(apperrors.ErrConflict, "incident must be assigned or in progress to be resolved").
			WithDetails(fmt.Sprintf("incident_id: %s, status: %s", i.ID, i.Status))
	}
	if solution == "" {
		return apperrors.New(apperrors.ErrValidation, "solution text is required")
	}

	resolvedAt := now.UTC()
	i.Status = IncidentStatusResolved
	i.ResolvedAt = &resolvedAt
	i.Solution = solution
	i.ActualCost = actualCost
	i.RequiresFollowUp = requiresFollowUp
	i.UpdatedAt = resolvedAt
	return nil
}

// Close выполняет административное закрытие разрешенного инцидента
func (i *Incident) Close(now time.Time) error {
	if i.Status == IncidentStatusClosed {
		return apperrors.New(apperrors.ErrAlreadyResolved, "incident is already closed").
			WithDetails(fmt.Sprintf("incident_id: %s", i.ID))
	}
	if i.Status != IncidentStatusResolved {
		return apperrors.New(apperrors.ErrConflict, "incident must be resolved before closing").
			WithDetails(fmt.Sprintf("incident_id: %s, status: %s", i.ID, i.Status))
	}

	closedAt := now.UTC()
	i.Status = IncidentStatusClosed
	i.ClosedAt = &closedAt
	i.UpdatedAt = closedAt
	return nil
}

// Validate валидирует инцидент
func (i *Incident) Validate() error {
	if i.EquipmentID == "" {
		return apperrors.New(apperrors.ErrValidation, "equipment_id is required")
	}
	if i.Title == "" {
		return apperrors.New(apperrors.ErrValidation, "title is required")
	}
	validSeverity := false
	for _, s := range ValidSeverities {
		if string(i.Severity) == s {
			validSeverity = true
			break
		}
	}
	if !validSeverity {
		return apperrors.New(apperrors.ErrValidation, "unknown severity").
			WithDetails(fmt.Sprintf("severity: %s", i.Severity))
	}
	validImpact := false
	for _, im := range ValidImpacts {
		if string(i.Impact) == im {
			validImpact = true
			break
		}
	}
	if !validImpact {
		return apperrors.New(apperrors.ErrValidation, "unknown impact").
			WithDetails(fmt.Sprintf("impact: %s", i.Impact))
	}
	return nil
}

// EquipmentStatus представляет эксплуатационный статус оборудования
type EquipmentStatus string

const (
	EquipmentStatusOperative    EquipmentStatus = "operative"
	EquipmentStatusOutOfService EquipmentStatus = "out_of_service"
)

// Equipment представляет справочные данные об оборудовании из внешнего сервиса
type Equipment struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	MaintenanceFrequencyCode string          `json:"maintenance_frequency_code"`
	LastMaintenanceDate      *time.Time      `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate      *time.Time      `json:"next_maintenance_date,omitempty"`
	RequiresCalibration      bool            `json:"requires_calibration"`
	RiskClass                string          `json:"risk_class"`
	Status                   EquipmentStatus `json:"status"`
}

// AuditRiskLevel представляет уровень риска события аудита
type AuditRiskLevel string

const (
	AuditRiskLow    AuditRiskLevel = "low"
	AuditRiskMedium AuditRiskLevel = "medium"
	AuditRiskHigh   AuditRiskLevel = "high"
)

// AuditEvent представляет событие аудита из внешнего журнала
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	RiskLevel AuditRiskLevel `json:"risk_level"`
	IPAddress string         `json:"ip_address"`
}

// Technician представляет доступного исполнителя из внешнего справочника
type Technician struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Available bool   `json:"available"`
}
