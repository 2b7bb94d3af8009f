package service

import (
	"context"
	"time"

	"AssetCarePlatform/internal/domain"
)

// Clock поставляет текущее время.
// Выделен в интерфейс для детерминированных тестов без реальных часов.
type Clock interface {
	Now() time.Time
}

// SystemClock реализация Clock на системных часах
type SystemClock struct{}

// Now возвращает текущее время в UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// TechnicianDirectory предоставляет доступных исполнителей из внешнего справочника
type TechnicianDirectory interface {
	AvailableByRole(ctx context.Context, role string) ([]*domain.Technician, error)
}

// AuditLog предоставляет события аудита из внешнего журнала
type AuditLog interface {
	Query(ctx context.Context, window time.Duration) ([]domain.AuditEvent, error)
}

// AllocationStrategy выбирает исполнителя из кандидатов.
// Стратегия подменяема без изменения вызывающего кода.
type AllocationStrategy interface {
	SelectTechnician(candidates []*domain.Technician) (string, error)
}
