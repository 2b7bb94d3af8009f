package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"AssetCarePlatform/pkg/logger"
	"AssetCarePlatform/pkg/rabbitmq"
)

const serviceName = "maintenance-engine"

// EngineProducer публикует события движка обслуживания в RabbitMQ
type EngineProducer struct {
	producer *rabbitmq.Producer
	exchange string
	logger   logger.Logger
}

// NewEngineProducer создает новый producer событий движка
func NewEngineProducer(conn *rabbitmq.Connection, config *rabbitmq.Config, log logger.Logger) *EngineProducer {
	return &EngineProducer{
		producer: rabbitmq.NewProducer(conn, config),
		exchange: config.Exchange,
		logger:   log,
	}
}

// PublishMaintenanceEvent публикует событие задачи обслуживания
func (p *EngineProducer) PublishMaintenanceEvent(ctx context.Context, event *MaintenanceEvent) error {
	if event == nil {
		return fmt.Errorf("maintenance event cannot be nil")
	}

	event.Service = serviceName
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal maintenance event",
			logger.String("event_type", event.EventType),
			logger.String("task_id", event.TaskID),
			logger.Error(err))
		return fmt.Errorf("failed to marshal maintenance event: %w", err)
	}

	routingKey := fmt.Sprintf("%s.%s", event.EventType, event.EquipmentID)

	err = p.producer.Publish(ctx, body,
		rabbitmq.WithExchange(p.exchange),
		rabbitmq.WithRoutingKey(routingKey),
		rabbitmq.WithHeaders(amqp.Table{
			"event_type":   event.EventType,
			"task_id":      event.TaskID,
			"equipment_id": event.EquipmentID,
			"service":      serviceName,
		}),
	)
	if err != nil {
		p.logger.Error("Failed to publish maintenance event",
			logger.String("event_type", event.EventType),
			logger.String("task_id", event.TaskID),
			logger.String("routing_key", routingKey),
			logger.Error(err))
		return fmt.Errorf("failed to publish maintenance event: %w", err)
	}

	p.logger.Info("Maintenance event published",
		logger.String("event_type", event.EventType),
		logger.String("task_id", event.TaskID),
		logger.String("routing_key", routingKey))

	return nil
}

// PublishIncidentEvent публикует событие инцидента
func (p *EngineProducer) PublishIncidentEvent(ctx context.Context, event *IncidentEvent) error {
	if event == nil {
		return fmt.Errorf("incident event cannot be nil")
	}

	event.Service = serviceName
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal incident event",
			logger.String("event_type", event.EventType),
			logger.String("incident_id", event.IncidentID),
			logger.Error(err))
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	routingKey := fmt.Sprintf("%s.%s", event.EventType, event.Severity)

	err = p.producer.Publish(ctx, body,
		rabbitmq.WithExchange(p.exchange),
		rabbitmq.WithRoutingKey(routingKey),
		rabbitmq.WithHeaders(amqp.Table{
			"event_type":   event.EventType,
			"incident_id":  event.IncidentID,
			"equipment_id": event.EquipmentID,
			"severity":     string(event.Severity),
			"service":      serviceName,
		}),
	)
	if err != nil {
		p.logger.Error("Failed to publish incident event",
			logger.String("event_type", event.EventType),
			logger.String("incident_id", event.IncidentID),
			logger.String("routing_key", routingKey),
			logger.Error(err))
		return fmt.Errorf("failed to publish incident event: %w", err)
	}

	p.logger.Info("Incident event published",
		logger.String("event_type", event.EventType),
		logger.String("incident_id", event.IncidentID),
		logger.String("routing_key", routingKey))

	return nil
}

// Close закрывает producer
func (p *EngineProducer) Close() error {
	return nil
}
