package rabbitmq

import (
	"context"
)

// EventProducer определяет интерфейс для публикации событий движка
type EventProducer interface {
	// PublishMaintenanceEvent публикует событие задачи обслуживания
	PublishMaintenanceEvent(ctx context.Context, event *MaintenanceEvent) error

	// PublishIncidentEvent публикует событие инцидента
	PublishIncidentEvent(ctx context.Context, event *IncidentEvent) error

	// Close закрывает producer
	Close() error
}
