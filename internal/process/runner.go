package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// stderrTailSize — сколько последних байт stderr хранить для сообщения об ошибке.
const stderrTailSize = 4096

// Runner — интерфейс для запуска одного внешнего процесса.
type Runner interface {
	Run(ctx context.Context, inv *domain.Invocation) error
}

// ExecRunner запускает процессы через os/exec в заданной директории.
type ExecRunner struct {
	dir    string
	logger *slog.Logger
}

// NewExecRunner создаёт ExecRunner для рабочей директории dir.
func NewExecRunner(dir string, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{dir: dir, logger: logger}
}

// Run запускает процесс и ждёт его завершения.
//
// stdout перенаправляется в inv.Output (перезапись или дозапись по inv.Append).
// Таймаута нет; процесс прерывается только отменой ctx.
func (r *ExecRunner) Run(ctx context.Context, inv *domain.Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = r.dir

	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr

	var out *os.File
	if inv.Output != "" {
		f, err := openOutput(r.Path(inv.Output), inv.Append)
		if err != nil {
			return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(), "open output", err)
		}
		defer f.Close()
		out = f
		cmd.Stdout = f
	}

	r.logger.Debug("starting process", "command", inv.CommandLine(), "dir", r.dir)

	if err := cmd.Run(); err != nil {
		return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(),
			strings.TrimSpace(stderr.String()), err)
	}

	if out != nil {
		if err := out.Close(); err != nil {
			return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(), "close output", err)
		}
	}

	// bowtie2 пишет сводку выравнивания в stderr
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		r.logger.Info("process stderr", "tool", inv.Tool, "output", msg)
	}

	return nil
}

// Path возвращает путь относительно рабочей директории.
func (r *ExecRunner) Path(name string) string {
	return ResolvePath(r.dir, name)
}

// ResolvePath разрешает name относительно dir.
// Абсолютные имена и пустой dir оставляют name как есть.
func ResolvePath(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// openOutput открывает файл для stdout: ">" или ">>".
func openOutput(path string, appendMode bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// tailBuffer хранит только последние n байт записанных данных.
type tailBuffer struct {
	buf []byte
	n   int
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{n: n}
}

// Write реализует io.Writer.
func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.n {
		b.buf = b.buf[len(b.buf)-b.n:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
