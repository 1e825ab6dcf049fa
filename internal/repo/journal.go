package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/pairalign/internal/domain"
)

// Journal — журнал запусков в PostgreSQL.
// Записывает каждое изменение статуса run и invocation.
type Journal struct {
	Runs        *RunRepo
	Invocations *InvocationRepo

	pool *pgxpool.Pool
}

// NewJournal создаёт журнал поверх произвольного DBTX.
func NewJournal(db DBTX) *Journal {
	return &Journal{
		Runs:        NewRunRepo(db),
		Invocations: NewInvocationRepo(db),
	}
}

// OpenJournal подключается к БД и создаёт схему.
func OpenJournal(ctx context.Context, dsn string) (*Journal, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	j := NewJournal(pool)
	j.pool = pool
	return j, nil
}

// RecordRun сохраняет текущее состояние run.
func (j *Journal) RecordRun(ctx context.Context, run *domain.Run) error {
	return j.Runs.Save(ctx, run)
}

// RecordInvocation сохраняет текущее состояние invocation.
func (j *Journal) RecordInvocation(ctx context.Context, inv *domain.Invocation) error {
	return j.Invocations.Save(ctx, inv)
}

// Close закрывает пул, если журнал его открыл.
func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}
