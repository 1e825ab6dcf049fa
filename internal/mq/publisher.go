package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/pairalign/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunStarted   MessageType = "run.started"
	MessageTypeRunCompleted MessageType = "run.completed"
	MessageTypeRunFailed    MessageType = "run.failed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload RunEventPayload `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunEventPayload — состояние run на момент события.
type RunEventPayload struct {
	RunID        uuid.UUID        `json:"run_id"`
	Status       domain.RunStatus `json:"status"`
	WorkDir      string           `json:"work_dir"`
	PrimaryBuild string           `json:"primary_build"`
	SpikeBuild   string           `json:"spike_build,omitempty"`
	Pairs        int              `json:"pairs"`
	Outputs      []string         `json:"outputs,omitempty"`
	DurationSec  float64          `json:"duration_sec,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// publishFunc отправляет одно сообщение в exchange.
type publishFunc func(ctx context.Context, exchange Exchange, key RoutingKey, msg amqp.Publishing) error

// Publisher публикует события run в RabbitMQ.
type Publisher struct {
	publish publishFunc
	logger  *slog.Logger
}

// NewPublisher создаёт Publisher поверх соединения.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		publish: func(ctx context.Context, exchange Exchange, key RoutingKey, msg amqp.Publishing) error {
			return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
				return ch.PublishWithContext(ctx, string(exchange), string(key), false, false, msg)
			})
		},
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.publish(ctx, exchange, routingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:    msg.ID,
		Timestamp:    msg.Timestamp,
		Type:         string(msg.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
	}

	p.logger.Debug("published message",
		"exchange", exchange,
		"routing_key", routingKey,
		"message_id", msg.ID,
		"type", msg.Type,
	)
	return nil
}

// PublishRunEvent публикует событие, соответствующее статусу run:
// RUNNING → run.started, SUCCEEDED → run.completed, FAILED → run.failed.
// Для PENDING ничего не публикуется.
func (p *Publisher) PublishRunEvent(ctx context.Context, run *domain.Run) error {
	msgType, ok := messageTypeFor(run.Status)
	if !ok {
		return nil
	}

	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payloadFor(run),
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeRuns, RoutingKey(msgType), msg)
}

func messageTypeFor(status domain.RunStatus) (MessageType, bool) {
	switch status {
	case domain.RunStatusRunning:
		return MessageTypeRunStarted, true
	case domain.RunStatusSucceeded:
		return MessageTypeRunCompleted, true
	case domain.RunStatusFailed:
		return MessageTypeRunFailed, true
	default:
		return "", false
	}
}

func payloadFor(run *domain.Run) RunEventPayload {
	payload := RunEventPayload{
		RunID:        run.ID,
		Status:       run.Status,
		WorkDir:      run.WorkDir,
		PrimaryBuild: run.PrimaryBuild,
		SpikeBuild:   run.SpikeBuild,
		Pairs:        len(run.Sample.Pairs),
		Error:        run.Error,
	}
	if run.Status == domain.RunStatusSucceeded {
		payload.Outputs = run.Sample.Outputs()
	}
	if d := run.Duration(); d > 0 {
		payload.DurationSec = d.Seconds()
	}
	return payload
}
