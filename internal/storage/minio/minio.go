// minio реализует storage.MediaObjects на базе MinIO/S3: байты вложений
// кладутся в бакет, наружу отдаётся публичная ссылка на объект.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-microblog/internal/config"
	"github.com/pribylovaa/go-microblog/internal/storage"
)

// MediaObjects — адаптер MinIO для байтов вложений.
type MediaObjects struct {
	client  *mclient.Client
	bucket  string
	baseURL string
}

// New создаёт клиент MinIO. Endpoint может быть со схемой: Secure выбирается
// по ней. Отсутствующий бакет создаётся.
func New(ctx context.Context, cfg config.S3Config) (*MediaObjects, error) {
	const op = "storage.minio.New"

	endpoint := cfg.Endpoint
	secure := false

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket %q: %w", op, cfg.Bucket, err)
		}
	}

	return &MediaObjects{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// PutObject загружает объект и возвращает его публичную ссылку.
func (m *MediaObjects) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	const op = "storage.minio.PutObject"

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return m.Link(key), nil
}

// RemoveObject удаляет объект. Отсутствующий объект ошибкой не считается.
func (m *MediaObjects) RemoveObject(ctx context.Context, key string) error {
	const op = "storage.minio.RemoveObject"

	if err := m.client.RemoveObject(ctx, m.bucket, key, mclient.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Link собирает публичную ссылку на объект.
func (m *MediaObjects) Link(key string) string {
	return m.baseURL + "/" + key
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.MediaObjects = (*MediaObjects)(nil)
