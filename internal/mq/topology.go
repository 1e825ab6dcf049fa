package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeRuns — topic exchange событий жизненного цикла run.
const ExchangeRuns Exchange = "pairalign.runs"

// QueueRunEvents — durable очередь для внешних потребителей.
const QueueRunEvents Queue = "pairalign.run-events"

// Routing keys совпадают с типами сообщений.
const (
	RoutingKeyStarted   RoutingKey = RoutingKey(MessageTypeRunStarted)
	RoutingKeyCompleted RoutingKey = RoutingKey(MessageTypeRunCompleted)
	RoutingKeyFailed    RoutingKey = RoutingKey(MessageTypeRunFailed)

	// RoutingKeyAllRuns — все события run.
	RoutingKeyAllRuns RoutingKey = "run.#"
)

// SetupTopology объявляет exchange и очередь событий.
// Повторный вызов безопасен: объявления идемпотентны.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeRuns), // name
			"topic",              // type
			true,                 // durable
			false,                // auto-deleted
			false,                // internal
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeRuns, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueRunEvents), // name
			true,                   // durable
			false,                  // delete when unused
			false,                  // exclusive
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueRunEvents, err)
		}

		err = ch.QueueBind(
			string(QueueRunEvents),    // queue name
			string(RoutingKeyAllRuns), // routing key
			string(ExchangeRuns),      // exchange
			false,                     // no-wait
			nil,                       // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueRunEvents, ExchangeRuns, err)
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  pairalign RabbitMQ topology:

    pairalign.runs (topic)
    ├── pairalign.run-events [routing: run.#]
    │       Consumer: external
    └── <exclusive> [routing: run.#]
            Consumer: pairalign watch
  `
}
