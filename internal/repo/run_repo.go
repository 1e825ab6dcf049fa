package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shaiso/pairalign/internal/domain"
)

// RunRepo — репозиторий для работы с runs.
type RunRepo struct {
	db DBTX
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(db DBTX) *RunRepo {
	return &RunRepo{db: db}
}

// Save создаёт run или обновляет его статус.
func (r *RunRepo) Save(ctx context.Context, run *domain.Run) error {
	sampleJSON, err := json.Marshal(run.Sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	query := `
		INSERT INTO runs (id, status, work_dir, primary_build, spike_build, sample,
		                  started_at, finished_at, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    sample = EXCLUDED.sample,
		    started_at = EXCLUDED.started_at,
		    finished_at = EXCLUDED.finished_at,
		    error = EXCLUDED.error
	`
	_, err = r.db.Exec(ctx, query,
		run.ID,
		run.Status,
		run.WorkDir,
		run.PrimaryBuild,
		nullString(run.SpikeBuild),
		sampleJSON,
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, status, work_dir, primary_build, spike_build, sample,
		       started_at, finished_at, error, created_at
		FROM runs
		WHERE id = $1
	`
	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// ListRecent возвращает последние runs, новые первыми.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `
		SELECT id, status, work_dir, primary_build, spike_build, sample,
		       started_at, finished_at, error, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanRun сканирует одну строку в Run.
// pgx.Rows тоже реализует pgx.Row.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var sampleJSON []byte
	var spikeBuild *string
	var runError *string

	err := row.Scan(
		&run.ID,
		&run.Status,
		&run.WorkDir,
		&run.PrimaryBuild,
		&spikeBuild,
		&sampleJSON,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if sampleJSON != nil {
		if err := json.Unmarshal(sampleJSON, &run.Sample); err != nil {
			return nil, fmt.Errorf("unmarshal sample: %w", err)
		}
	}
	if spikeBuild != nil {
		run.SpikeBuild = *spikeBuild
	}
	if runError != nil {
		run.Error = *runError
	}

	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
