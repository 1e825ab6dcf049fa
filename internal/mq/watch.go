package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Handler — функция обработки события run.
type Handler func(ctx context.Context, msg *Message) error

// Watch подписывается на события run через временную exclusive очередь
// и вызывает handler для каждого сообщения до отмены ctx.
//
// Некорректные сообщения логируются и пропускаются.
func Watch(ctx context.Context, conn *Connection, logger *slog.Logger, handler Handler) error {
	ch := conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	q, err := ch.QueueDeclare(
		"",    // name (server-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare watch queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, string(RoutingKeyAllRuns), string(ExchangeRuns), false, nil); err != nil {
		return fmt.Errorf("bind watch queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag (auto-generated)
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	logger.Info("watching run events", "exchange", ExchangeRuns, "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}

			msg, err := DecodeMessage(raw.Body)
			if err != nil {
				logger.Warn("failed to decode message", "error", err, "body", string(raw.Body))
				continue
			}
			if err := handler(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// DecodeMessage разбирает тело AMQP сообщения.
func DecodeMessage(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message without type")
	}
	return &msg, nil
}

