package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateFollow подписывает followerID на followedID.
// Повторная подписка ничего не меняет, подписка на себя — ErrSelfReference.
func (s *Storage) CreateFollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const op = "storage.postgres.CreateFollow"

	if followerID == followedID {
		return fmt.Errorf("%s: %w", op, storage.ErrSelfReference)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO followers(follower_id, followed_id) VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`, followerID, followedID)

	if err != nil {
		switch pgCode(err) {
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%s: %w", op, storage.ErrSelfReference)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteFollow отменяет подписку. Отсутствующая подписка — ErrNotFound.
func (s *Storage) DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const op = "storage.postgres.DeleteFollow"

	tag, err := s.db.Exec(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
