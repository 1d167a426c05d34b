package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/pkg/log"
)

var mediaExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadMedia кладёт картинку в объектное хранилище и сохраняет её метаданные.
// Возвращает ID вложения, который потом передаётся в CreateTweet.
//
// Ошибки:
// - *ValidationError — пустой файл, превышен размер или тип не разрешён;
// - прочие ошибки хранилищ — обёрнутые и прокинуты наверх.
func (s *Service) UploadMedia(ctx context.Context, ownerID uuid.UUID, r io.Reader, size int64, contentType string) (int64, error) {
	const op = "service.media.UploadMedia"

	lg := log.From(ctx)

	contentType = strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case size <= 0:
		return 0, fmt.Errorf("%s: %w", op, invalid("file", "file is empty"))
	case size > s.media.MaxSizeBytes:
		return 0, fmt.Errorf("%s: %w", op, invalid("file", fmt.Sprintf("file exceeds %d bytes", s.media.MaxSizeBytes)))
	case !slices.Contains(s.media.AllowedContentTypes, contentType):
		return 0, fmt.Errorf("%s: %w", op, invalid("file", "unsupported content type "+contentType))
	}

	key := fmt.Sprintf("media/%s/%s%s", ownerID, uuid.NewString(), mediaExt[contentType])

	link, err := s.objects.PutObject(ctx, key, r, size, contentType)
	if err != nil {
		lg.Error("media_put_failed",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	m := &models.Media{
		OwnerID:     ownerID,
		ObjectKey:   key,
		Link:        link,
		ContentType: contentType,
		Size:        size,
	}

	if err := s.storage.CreateMedia(ctx, m); err != nil {
		lg.Error("media_save_failed",
			slog.String("op", op),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)

		// Объект без метаданных недостижим: удаляем, даже если запрос уже отменён.
		if rmErr := s.objects.RemoveObject(context.WithoutCancel(ctx), key); rmErr != nil {
			lg.Warn("media_cleanup_failed",
				slog.String("op", op),
				slog.String("key", key),
				slog.String("err", rmErr.Error()),
			)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("media_upload_ok",
		slog.String("op", op),
		slog.Int64("media_id", m.ID),
		slog.Int64("size", size),
	)

	return m.ID, nil
}
