package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — одно выполнение пайплайна для одного образца.
//
// Run живёт в пределах одного запуска CLI. Сохраняется только
// в журнал (если он настроен).
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// WorkDir — рабочая директория, в которой лежат входные файлы.
	WorkDir string `json:"work_dir"`

	// PrimaryBuild — основная сборка генома.
	PrimaryBuild string `json:"primary_build"`

	// SpikeBuild — spike-in сборка. Пусто, если spike-in отключён.
	SpikeBuild string `json:"spike_build,omitempty"`

	// Sample — пары и выходные файлы.
	Sample Sample `json:"sample"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт run в статусе PENDING.
func NewRun(workDir string) *Run {
	return &Run{
		ID:        uuid.New(),
		Status:    RunStatusPending,
		WorkDir:   workDir,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	if r.StartedAt == nil {
		r.StartedAt = &now
	}
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
