package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invocation — один вызов внешнего процесса внутри run.
//
// Invocation строится планировщиком до запуска чего-либо и
// исполняется Runner'ом строго в порядке Lane внутри прохода.
type Invocation struct {
	// ID — уникальный идентификатор вызова.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на родительский run.
	RunID uuid.UUID `json:"run_id"`

	// Pass — проход: primary, spike или decompress.
	Pass Pass `json:"pass"`

	// Lane — номер пары (для decompress — номер файла).
	Lane int `json:"lane"`

	// Tool — исполняемый файл, например "bowtie2" или "zcat".
	Tool string `json:"tool"`

	// Args — аргументы без имени программы.
	Args []string `json:"args"`

	// Output — файл, в который перенаправляется stdout.
	Output string `json:"output"`

	// Append — дописывать в Output вместо перезаписи.
	Append bool `json:"append"`

	// Status — результат вызова.
	Status InvocationStatus `json:"status"`

	// StartedAt — время запуска процесса.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения процесса.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`
}

// CommandLine возвращает вызов в виде строки shell, как его увидел бы пользователь.
// Используется только для логов и dry-run; процессы запускаются без shell.
func (inv *Invocation) CommandLine() string {
	var b strings.Builder
	b.WriteString(inv.Tool)
	for _, a := range inv.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	if inv.Output != "" {
		if inv.Append {
			b.WriteString(" >> ")
		} else {
			b.WriteString(" > ")
		}
		b.WriteString(inv.Output)
	}
	return b.String()
}

// Duration возвращает продолжительность выполнения.
func (inv *Invocation) Duration() time.Duration {
	if inv.StartedAt == nil || inv.FinishedAt == nil {
		return 0
	}
	return inv.FinishedAt.Sub(*inv.StartedAt)
}

// MarkStarted фиксирует время запуска.
func (inv *Invocation) MarkStarted() {
	now := time.Now()
	inv.StartedAt = &now
}

// MarkSucceeded переводит вызов в статус SUCCEEDED.
func (inv *Invocation) MarkSucceeded() {
	now := time.Now()
	inv.Status = InvocationStatusSucceeded
	inv.FinishedAt = &now
}

// MarkFailed переводит вызов в статус FAILED с ошибкой.
func (inv *Invocation) MarkFailed(err string) {
	now := time.Now()
	inv.Status = InvocationStatusFailed
	inv.FinishedAt = &now
	inv.Error = err
}
