package rabbitmq

import (
	"time"

	"AssetCarePlatform/internal/domain"
)

// Типы событий обслуживания
const (
	EventMaintenanceScheduled = "maintenance.scheduled"
	EventMaintenanceCompleted = "maintenance.completed"
	EventMaintenanceCancelled = "maintenance.cancelled"
	EventMaintenanceOverdue   = "maintenance.overdue"
)

// Типы событий инцидентов
const (
	EventIncidentReported  = "incident.reported"
	EventIncidentAssigned  = "incident.assigned"
	EventIncidentResolved  = "incident.resolved"
	EventIncidentClosed    = "incident.closed"
	EventIncidentEscalated = "incident.escalated"
)

// MaintenanceEvent представляет событие жизненного цикла задачи обслуживания
type MaintenanceEvent struct {
	EventType     string            `json:"event_type"`
	Timestamp     time.Time         `json:"timestamp"`
	Service       string            `json:"service"`
	TaskID        string            `json:"task_id"`
	EquipmentID   string            `json:"equipment_id"`
	Kind          string            `json:"kind"`
	Status        domain.TaskStatus `json:"status"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	CompletedDate *time.Time        `json:"completed_date,omitempty"`
	// SuccessorTaskID заполняется для maintenance.completed при создании следующей задачи
	SuccessorTaskID string `json:"successor_task_id,omitempty"`
	CancelReason    string `json:"cancel_reason,omitempty"`
}

// IncidentEvent представляет событие жизненного цикла инцидента
type IncidentEvent struct {
	EventType      string                `json:"event_type"`
	Timestamp      time.Time             `json:"timestamp"`
	Service        string                `json:"service"`
	IncidentID     string                `json:"incident_id"`
	EquipmentID    string                `json:"equipment_id"`
	Severity       domain.Severity       `json:"severity"`
	Impact         domain.Impact         `json:"impact"`
	Status         domain.IncidentStatus `json:"status"`
	Priority       int                   `json:"priority"`
	AssignedUserID string                `json:"assigned_user_id,omitempty"`
	ReportedAt     time.Time             `json:"reported_at"`
	ResolvedAt     *time.Time            `json:"resolved_at,omitempty"`
	// EquipmentSuspended сообщает подписчикам о выводе оборудования из эксплуатации
	EquipmentSuspended bool `json:"equipment_suspended,omitempty"`
}
