package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateMedia сохраняет метаданные вложения и проставляет m.ID и m.CreatedAt.
func (s *Storage) CreateMedia(ctx context.Context, m *models.Media) error {
	const op = "storage.postgres.CreateMedia"

	err := s.db.QueryRow(ctx, `
		INSERT INTO media(owner_id, object_key, link, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.OwnerID, m.ObjectKey, m.Link, m.ContentType, m.Size).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if pgCode(err) == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
