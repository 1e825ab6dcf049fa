package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/pairalign/internal/domain"
)

// InvocationRepo — репозиторий для работы с invocations.
type InvocationRepo struct {
	db DBTX
}

// NewInvocationRepo создаёт новый InvocationRepo.
func NewInvocationRepo(db DBTX) *InvocationRepo {
	return &InvocationRepo{db: db}
}

// Save создаёт invocation или обновляет его результат.
func (r *InvocationRepo) Save(ctx context.Context, inv *domain.Invocation) error {
	query := `
		INSERT INTO invocations (id, run_id, pass, lane, tool, args, output, append,
		                         status, started_at, finished_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    started_at = EXCLUDED.started_at,
		    finished_at = EXCLUDED.finished_at,
		    error = EXCLUDED.error
	`
	args := inv.Args
	if args == nil {
		args = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		inv.ID,
		inv.RunID,
		inv.Pass,
		inv.Lane,
		inv.Tool,
		args,
		inv.Output,
		inv.Append,
		inv.Status,
		inv.StartedAt,
		inv.FinishedAt,
		nullString(inv.Error),
	)
	if err != nil {
		return fmt.Errorf("save invocation: %w", err)
	}
	return nil
}

// ListByRunID возвращает вызовы run'а в порядке выполнения.
func (r *InvocationRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.Invocation, error) {
	query := `
		SELECT id, run_id, pass, lane, tool, args, output, append,
		       status, started_at, finished_at, error
		FROM invocations
		WHERE run_id = $1
		ORDER BY started_at NULLS LAST, pass, lane
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var invs []domain.Invocation
	for rows.Next() {
		var inv domain.Invocation
		var invError *string
		if err := rows.Scan(
			&inv.ID,
			&inv.RunID,
			&inv.Pass,
			&inv.Lane,
			&inv.Tool,
			&inv.Args,
			&inv.Output,
			&inv.Append,
			&inv.Status,
			&inv.StartedAt,
			&inv.FinishedAt,
			&invError,
		); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		if invError != nil {
			inv.Error = *invError
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
