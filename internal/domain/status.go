package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
type RunStatus string

const (
	// RunStatusPending — run создан, валидация ещё идёт.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — запущены внешние процессы.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — оба прохода выполнены, файлы размещены.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — run завершился с ошибкой.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed:
		return true
	default:
		return false
	}
}

// InvocationStatus — статус вызова внешнего процесса.
type InvocationStatus string

const (
	// InvocationStatusPlanned — вызов построен, но не запущен.
	InvocationStatusPlanned InvocationStatus = "PLANNED"

	// InvocationStatusSucceeded — процесс завершился с кодом 0.
	InvocationStatusSucceeded InvocationStatus = "SUCCEEDED"

	// InvocationStatusFailed — процесс не запустился или вернул ненулевой код.
	InvocationStatusFailed InvocationStatus = "FAILED"
)

// Pass — проход выравнивания.
type Pass string

const (
	// PassPrimary — выравнивание на основную сборку.
	PassPrimary Pass = "primary"

	// PassSpike — выравнивание на spike-in сборку.
	PassSpike Pass = "spike"

	// PassDecompress — распаковка входных файлов.
	PassDecompress Pass = "decompress"
)
