package placement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/shaiso/pairalign/internal/domain"
)

const gcsScheme = "gs://"

// GCSPlacer загружает файлы в Google Cloud Storage.
type GCSPlacer struct {
	client *storage.Client
}

// NewGCSPlacer создаёт GCSPlacer поверх готового клиента.
func NewGCSPlacer(client *storage.Client) *GCSPlacer {
	return &GCSPlacer{client: client}
}

// newGCSPlacer создаёт клиента с учётными данными по умолчанию.
func newGCSPlacer(ctx context.Context) (Placer, func() error, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewGCSPlacer(client), client.Close, nil
}

// Place реализует Placer. Бакет должен существовать.
func (p *GCSPlacer) Place(ctx context.Context, files []string, destination string) ([]string, error) {
	bucketName, prefix, err := ParseGCS(destination)
	if err != nil {
		return nil, err
	}

	bucket := p.client.Bucket(bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return nil, domain.NewError(domain.ErrDestinationNotFound, destination, "bucket does not exist", err)
		}
		return nil, fmt.Errorf("bucket %s attrs: %w", bucketName, err)
	}

	placed := make([]string, 0, len(files))
	for _, f := range files {
		name := path.Join(prefix, filepath.Base(f))
		if err := upload(ctx, bucket.Object(name), f); err != nil {
			return placed, fmt.Errorf("upload %s to %s: %w", f, destination, err)
		}
		placed = append(placed, gcsScheme+bucketName+"/"+name)
	}
	return placed, nil
}

// upload копирует локальный файл в объект.
func upload(ctx context.Context, obj *storage.ObjectHandle, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	w := obj.NewWriter(ctx)
	w.ContentType = "text/plain"
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ParseGCS разбирает gs://bucket/prefix.
func ParseGCS(destination string) (bucket, prefix string, err error) {
	if !IsGCS(destination) {
		return "", "", fmt.Errorf("not a gs:// destination: %s", destination)
	}
	rest := strings.TrimPrefix(destination, gcsScheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", domain.NewError(domain.ErrDestinationNotFound, destination, "empty bucket name", nil)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
