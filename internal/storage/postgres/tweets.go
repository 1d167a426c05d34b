package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateTweet сохраняет твит и в той же транзакции привязывает вложения.
// Вложение должно принадлежать автору и ещё не быть привязанным к другому твиту.
func (s *Storage) CreateTweet(ctx context.Context, tweet *models.Tweet, mediaIDs []int64) error {
	const op = "storage.postgres.CreateTweet"

	ids := slices.Clone(mediaIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO tweets(id, author_id, content)
			VALUES ($1, $2, $3)
			RETURNING created_at
		`, tweet.ID, tweet.AuthorID, tweet.Content).Scan(&tweet.CreatedAt)
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			return nil
		}

		tag, err := tx.Exec(ctx, `
			UPDATE media SET tweet_id = $1
			WHERE id = ANY($2) AND owner_id = $3 AND tweet_id IS NULL
		`, tweet.ID, ids, tweet.AuthorID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() != int64(len(ids)) {
			return storage.ErrNotFound
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteTweet удаляет твит, если его автор — requesterID.
func (s *Storage) DeleteTweet(ctx context.Context, id, requesterID uuid.UUID) error {
	const op = "storage.postgres.DeleteTweet"

	tag, err := s.db.Exec(ctx,
		`DELETE FROM tweets WHERE id = $1 AND author_id = $2`, id, requesterID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tweets WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		return fmt.Errorf("%s: %w", op, storage.ErrForbidden)
	}

	return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// Feed возвращает твиты зрителя и тех, на кого он подписан.
// Порядок: число лайков по убыванию, затем время создания по убыванию.
func (s *Storage) Feed(ctx context.Context, q models.FeedQuery) ([]models.FeedItem, error) {
	const op = "storage.postgres.Feed"

	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.author_id, t.content, t.created_at, u.name, u.created_at,
		       COALESCE(
		           (SELECT array_agg(m.link ORDER BY m.id) FROM media m WHERE m.tweet_id = t.id),
		           '{}'
		       ) AS attachments
		FROM tweets t
		JOIN users u ON u.id = t.author_id
		LEFT JOIN likes l ON l.tweet_id = t.id
		WHERE t.author_id = $1
		   OR t.author_id IN (SELECT followed_id FROM followers WHERE follower_id = $1)
		GROUP BY t.id, u.id
		ORDER BY COUNT(l.id) DESC, t.created_at DESC, t.id
		LIMIT $2 OFFSET $3
	`, q.ViewerID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeedItem, error) {
		var it models.FeedItem
		err := row.Scan(
			&it.Tweet.ID,
			&it.Tweet.AuthorID,
			&it.Tweet.Content,
			&it.Tweet.CreatedAt,
			&it.Author.Name,
			&it.Author.CreatedAt,
			&it.Attachments,
		)
		it.Author.ID = it.Tweet.AuthorID
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(items) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].Tweet.ID
	}

	likes, err := s.likesByTweets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range items {
		items[i].Likes = likes[items[i].Tweet.ID]
		if items[i].Likes == nil {
			items[i].Likes = []models.Like{}
		}
	}

	return items, nil
}

func (s *Storage) likesByTweets(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Like, error) {
	rows, err := s.db.Query(ctx, `
		SELECT l.tweet_id, l.user_id, u.name
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.tweet_id = ANY($1)
		ORDER BY l.id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Like, len(ids))
	for rows.Next() {
		var (
			tweetID uuid.UUID
			like    models.Like
		)
		if err := rows.Scan(&tweetID, &like.UserID, &like.Name); err != nil {
			return nil, err
		}
		out[tweetID] = append(out[tweetID], like)
	}

	return out, rows.Err()
}
