package repo

import (
	"context"
	"fmt"
)

// schema — таблицы журнала. Создаются при первом подключении.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            uuid PRIMARY KEY,
	status        text NOT NULL,
	work_dir      text NOT NULL,
	primary_build text NOT NULL,
	spike_build   text,
	sample        jsonb NOT NULL,
	started_at    timestamptz,
	finished_at   timestamptz,
	error         text,
	created_at    timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS invocations (
	id          uuid PRIMARY KEY,
	run_id      uuid NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	pass        text NOT NULL,
	lane        integer NOT NULL,
	tool        text NOT NULL,
	args        text[] NOT NULL,
	output      text NOT NULL,
	append      boolean NOT NULL,
	status      text NOT NULL,
	started_at  timestamptz,
	finished_at timestamptz,
	error       text
);

CREATE INDEX IF NOT EXISTS invocations_run_id_idx ON invocations (run_id, pass, lane);
`

// EnsureSchema создаёт таблицы журнала, если их нет.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
