package repository

import (
	"context"
	"time"

	"AssetCarePlatform/internal/domain"
)

// TaskRepository определяет операции хранения задач обслуживания
type TaskRepository interface {
	Create(ctx context.Context, task *domain.MaintenanceTask) error
	GetByID(ctx context.Context, taskID string) (*domain.MaintenanceTask, error)
	// Update выполняет оптимистичное обновление, проверяя версию записи
	Update(ctx context.Context, task *domain.MaintenanceTask) error
	ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error)
	ListScheduled(ctx context.Context) ([]*domain.MaintenanceTask, error)
}

// IncidentRepository определяет операции хранения инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, incidentID string) (*domain.Incident, error)
	// Update выполняет оптимистичное обновление, проверяя версию записи
	Update(ctx context.Context, incident *domain.Incident) error
	ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.Incident, error)
	ListByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error)
}

// EquipmentRepository определяет операции над справочником оборудования
type EquipmentRepository interface {
	Get(ctx context.Context, equipmentID string) (*domain.Equipment, error)
	UpdateMaintenanceDates(ctx context.Context, equipmentID string, lastDate, nextDate time.Time) error
	UpdateStatus(ctx context.Context, equipmentID string, status domain.EquipmentStatus) error
}

// LockRepository определяет распределенные блокировки для взаимоисключающих операций
type LockRepository interface {
	TryLock(ctx context.Context, resourceID, ownerID string, ttl time.Duration) (*LockInfo, error)
	ReleaseLock(ctx context.Context, resourceID, ownerID string) error
}

// LockInfo представляет информацию о захваченной блокировке
type LockInfo struct {
	ResourceID string    `json:"resource_id"`
	OwnerID    string    `json:"owner_id"`
	LockedAt   time.Time `json:"locked_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TxManager выполняет функцию в границах одной транзакции.
// Репозитории внутри fn используют транзакцию из контекста.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
