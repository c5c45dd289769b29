package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPRebuildEventPublisher publishes rebuild events to a durable RabbitMQ queue
type AMQPRebuildEventPublisher struct {
	conn   *amqp.Connection
	queue  string
	logger logger.Logger
}

// NewAMQPRebuildEventPublisher creates a publisher on an open connection
func NewAMQPRebuildEventPublisher(conn *amqp.Connection, queue string, logger logger.Logger) repository.RebuildEventPublisher {
	return &AMQPRebuildEventPublisher{
		conn:   conn,
		queue:  queue,
		logger: logger,
	}
}

// PublishRebuildCompleted sends event as a persistent JSON message.
// A channel is opened per publish since rebuilds are rare.
func (p *AMQPRebuildEventPublisher) PublishRebuildCompleted(ctx context.Context, event *entity.RebuildEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open amqp channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rebuild event: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.RunID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish rebuild event: %w", err)
	}

	p.logger.Debug("Published rebuild event", "queue", p.queue, "runID", event.RunID)
	return nil
}

// NoopRebuildEventPublisher drops events. Used when AMQP is not configured.
type NoopRebuildEventPublisher struct{}

func (NoopRebuildEventPublisher) PublishRebuildCompleted(context.Context, *entity.RebuildEvent) error {
	return nil
}
