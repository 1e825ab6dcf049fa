package cli

import (
	"context"
	"log/slog"

	"github.com/shaiso/pairalign/internal/config"
	"github.com/shaiso/pairalign/internal/mq"
	"github.com/shaiso/pairalign/internal/orchestrator"
	"github.com/shaiso/pairalign/internal/repo"
)

// Env — окружение команд.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	// AlignRunner заменяет запуск внешних процессов, включая распаковку (тесты).
	// nil — реальные процессы.
	AlignRunner orchestrator.RunnerFactory
}

// sinks — подключённые журнал и публикатор событий.
type sinks struct {
	journal   *repo.Journal
	conn      *mq.Connection
	publisher *mq.Publisher
}

// openSinks подключает журнал и RabbitMQ, если они настроены.
// Недоступность любого из них не мешает run: пишется предупреждение.
func (e *Env) openSinks(ctx context.Context) *sinks {
	s := &sinks{}

	if e.Config.DatabaseURL != "" {
		journal, err := repo.OpenJournal(ctx, e.Config.DatabaseURL)
		if err != nil {
			e.Logger.Warn("run journal unavailable", "error", err)
		} else {
			s.journal = journal
		}
	}

	if e.Config.AMQPURL != "" {
		conn, err := mq.NewConnection(e.Config.AMQPURL, e.Logger)
		if err != nil {
			e.Logger.Warn("event bus unavailable", "error", err)
			return s
		}
		if err := mq.SetupTopology(ctx, conn); err != nil {
			e.Logger.Warn("event bus topology setup failed", "error", err)
			conn.Close()
			return s
		}
		s.conn = conn
		s.publisher = mq.NewPublisher(conn, e.Logger)
	}

	return s
}

// apply подставляет подключённые sinks в конфигурацию orchestrator'а.
// Typed nil не должен попасть в интерфейс.
func (s *sinks) apply(cfg *orchestrator.Config) {
	if s.journal != nil {
		cfg.Journal = s.journal
	}
	if s.publisher != nil {
		cfg.Publisher = s.publisher
	}
}

func (s *sinks) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.journal != nil {
		s.journal.Close()
	}
}
