// Package placement копирует готовые SAM файлы в директорию назначения.
//
// Назначение — локальная директория (должна существовать, не создаётся)
// или объектное хранилище gs://bucket/prefix. Размещение выполняется
// после обоих проходов выравнивания; ошибки не подавляются.
package placement

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// Placer копирует файлы в назначение и возвращает их новые адреса.
type Placer interface {
	Place(ctx context.Context, files []string, destination string) ([]string, error)
}

// Router выбирает Placer по схеме назначения.
type Router struct {
	local     Placer
	newRemote func(ctx context.Context) (Placer, func() error, error)
}

// NewRouter создаёт Router: локальные директории и gs://.
func NewRouter() *Router {
	return &Router{
		local:     LocalPlacer{},
		newRemote: newGCSPlacer,
	}
}

// Place реализует Placer.
func (r *Router) Place(ctx context.Context, files []string, destination string) ([]string, error) {
	if !IsGCS(destination) {
		return r.local.Place(ctx, files, destination)
	}

	remote, closeFn, err := r.newRemote(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	defer closeFn()

	return remote.Place(ctx, files, destination)
}

// LocalPlacer копирует файлы в существующую локальную директорию.
type LocalPlacer struct{}

// Place реализует Placer.
func (LocalPlacer) Place(ctx context.Context, files []string, destination string) ([]string, error) {
	info, err := os.Stat(destination)
	if err != nil {
		return nil, domain.NewError(domain.ErrDestinationNotFound, destination,
			"output directory must already exist", err)
	}
	if !info.IsDir() {
		return nil, domain.NewError(domain.ErrDestinationNotFound, destination, "not a directory", nil)
	}

	placed := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return placed, err
		}

		dst := filepath.Join(destination, filepath.Base(f))
		if err := copyFile(f, dst); err != nil {
			return placed, fmt.Errorf("copy %s to %s: %w", f, destination, err)
		}
		placed = append(placed, dst)
	}
	return placed, nil
}

// copyFile копирует содержимое и права доступа файла.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// IsGCS возвращает true для назначений вида gs://bucket[/prefix].
func IsGCS(destination string) bool {
	return strings.HasPrefix(destination, gcsScheme)
}
