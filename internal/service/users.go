package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
)

// Profile возвращает пользователя с подписчиками и подписками.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const op = "service.users.Profile"

	p, err := s.storage.ProfileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return p, nil
}

// Follow подписывает followerID на followedID.
//
// Ошибки:
// - *ValidationError — подписка на себя;
// - ErrNotFound — целевого пользователя нет.
func (s *Service) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const op = "service.users.Follow"

	if followerID == followedID {
		return fmt.Errorf("%s: %w", op, invalid("user_id", "cannot follow yourself"))
	}

	if err := s.storage.CreateFollow(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return nil
}

// Unfollow отменяет подписку. Отсутствующая подписка — ErrNotFound.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	const op = "service.users.Unfollow"

	if err := s.storage.DeleteFollow(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapStorageErr(ctx, op, err))
	}

	return nil
}
