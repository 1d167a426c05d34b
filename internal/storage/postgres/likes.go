package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateLike ставит лайк. Повторный лайк той же пары ничего не меняет.
func (s *Storage) CreateLike(ctx context.Context, tweetID, userID uuid.UUID) error {
	const op = "storage.postgres.CreateLike"

	_, err := s.db.Exec(ctx, `
		INSERT INTO likes(tweet_id, user_id) VALUES ($1, $2)
		ON CONFLICT (tweet_id, user_id) DO NOTHING
	`, tweetID, userID)

	if err != nil {
		if pgCode(err) == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteLike снимает лайк. Отсутствующий лайк — ErrNotFound.
func (s *Storage) DeleteLike(ctx context.Context, tweetID, userID uuid.UUID) error {
	const op = "storage.postgres.DeleteLike"

	tag, err := s.db.Exec(ctx,
		`DELETE FROM likes WHERE tweet_id = $1 AND user_id = $2`, tweetID, userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
