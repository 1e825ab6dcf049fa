package decompress

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/shaiso/pairalign/internal/domain"
)

// GzipRunner распаковывает файл внутри процесса.
//
// Источник — последний аргумент вызова, назначение — inv.Output.
// Реализует process.Runner.
type GzipRunner struct {
	dir string
}

// NewGzipRunner создаёт GzipRunner для рабочей директории dir.
func NewGzipRunner(dir string) *GzipRunner {
	return &GzipRunner{dir: dir}
}

// Run распаковывает inv.Args[len-1] в inv.Output.
func (r *GzipRunner) Run(ctx context.Context, inv *domain.Invocation) error {
	if len(inv.Args) == 0 || inv.Output == "" {
		return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(), "missing source or destination", nil)
	}
	src := r.path(inv.Args[len(inv.Args)-1])
	dst := r.path(inv.Output)

	if err := gunzip(ctx, src, dst); err != nil {
		return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(), "", err)
	}
	return nil
}

func (r *GzipRunner) path(name string) string {
	if filepath.IsAbs(name) || r.dir == "" {
		return name
	}
	return filepath.Join(r.dir, name)
}

// gunzip распаковывает src в dst, перезаписывая dst.
func gunzip(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("gzip reader %s: %w", src, err)
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, ctxReader{ctx: ctx, r: zr}); err != nil {
		out.Close()
		return fmt.Errorf("decompress %s: %w", src, err)
	}
	return out.Close()
}

// ctxReader прерывает чтение при отмене контекста.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
