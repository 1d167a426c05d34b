package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/pkg/log"
	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateTweet публикует твит автора и привязывает к нему вложения.
//
// Ошибки:
// - *ValidationError — пустой или слишком длинный текст;
// - ErrNotFound — вложение не найдено, чужое или уже привязано;
// - прочие ошибки стораджа — обёрнутые и прокинуты наверх.
func (s *Service) CreateTweet(ctx context.Context, authorID uuid.UUID, content string, mediaIDs []int64) (uuid.UUID, error) {
	const op = "service.tweets.CreateTweet"

	lg := log.From(ctx)

	content, err := validateContent(content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	tweet := &models.Tweet{ID: uuid.New(), AuthorID: authorID, Content: content}

	if err := s.storage.CreateTweet(ctx, tweet, mediaIDs); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("create_tweet_media_not_found",
				slog.String("op", op),
				slog.Any("media_ids", mediaIDs),
			)
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("create_tweet_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("create_tweet_ok",
		slog.String("op", op),
		slog.String("tweet_id", tweet.ID.String()),
		slog.Int("media", len(mediaIDs)),
	)

	return tweet.ID, nil
}

// DeleteTweet удаляет твит. Удалить можно только свой твит.
//
// Ошибки: ErrNotFound — твита нет; ErrForbidden — твит чужой.
func (s *Service) DeleteTweet(ctx context.Context, id, requesterID uuid.UUID) error {
	const op = "service.tweets.DeleteTweet"

	if err := s.storage.DeleteTweet(ctx, id, requesterID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return nil
}

// Like ставит лайк. Повторный лайк успешен и дубликата не создаёт.
func (s *Service) Like(ctx context.Context, tweetID, userID uuid.UUID) error {
	const op = "service.tweets.Like"

	if err := s.storage.CreateLike(ctx, tweetID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return nil
}

// Unlike снимает лайк. Отсутствующий лайк — ErrNotFound.
func (s *Service) Unlike(ctx context.Context, tweetID, userID uuid.UUID) error {
	const op = "service.tweets.Unlike"

	if err := s.storage.DeleteLike(ctx, tweetID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return nil
}

// Feed возвращает ленту зрителя с нормализацией limit/offset.
func (s *Service) Feed(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]models.FeedItem, error) {
	const op = "service.tweets.Feed"

	lg := log.From(ctx)

	l, o := normalizePage(limit, offset)

	items, err := s.storage.Feed(ctx, models.FeedQuery{ViewerID: viewerID, Limit: l, Offset: o})
	if err != nil {
		lg.Error("feed_storage_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Debug("feed_ok",
		slog.String("op", op),
		slog.Int("items", len(items)),
		slog.Int("limit", int(l)),
		slog.Int("offset", int(o)),
	)

	return items, nil
}

// mapStorageErr переводит ожидаемые ошибки стораджа в сентинелы сервиса,
// а остальные логирует как сбой инфраструктуры.
func (s *Service) mapStorageErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrForbidden):
		return ErrForbidden
	case errors.Is(err, storage.ErrSelfReference):
		return invalid("user_id", "cannot follow yourself")
	}

	log.From(ctx).Error("storage_failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)

	return err
}
