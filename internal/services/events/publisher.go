// Package events publishes generation-completed notifications to RabbitMQ.
// Publishing is fire-and-forget: a broker failure is logged, never surfaced
// to the caller.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"openai-image-gateway/internal/models"
)

const queueName = "image_generations"

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

func New(rabbitmqURL string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, logger: logger}, nil
}

// PublishGeneration sends a generation event. Safe to call on a nil
// Publisher so callers need no broker-configured branch.
func (p *Publisher) PublishGeneration(ev *models.GenerationEvent) {
	if p == nil {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal generation event", zap.Error(err))
		return
	}

	err = p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Warn("failed to publish generation event", zap.Error(err))
		return
	}

	p.logger.Info("generation event published",
		zap.String("request_id", ev.RequestID),
		zap.String("operation", ev.Operation),
		zap.Int("image_count", ev.ImageCount),
	)
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
