// storage задаёт контракты слоя хранения, которые потребляет сервисный слой.
//
// Каждый метод возвращает либо результат, либо ошибку. Ошибка, обёртывающая
// ErrNotFound, означает отсутствие сущности (HTTP 404). ErrAlreadyExists и
// ErrForbidden — ожидаемые бизнес-исходы. Любая другая ошибка — сбой
// инфраструктуры (HTTP 500).
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/твит/лайк/подписка/вложение).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden — запись существует, но принадлежит другому пользователю.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfReference — пользователь пытается подписаться сам на себя.
	ErrSelfReference = errors.New("self reference")
)

// UserStorage выполняет операции над пользователями и их учётными данными.
type UserStorage interface {
	// CreateCredential атомарно создаёт пользователя и его учётные данные.
	// Занятый email — ErrAlreadyExists.
	CreateCredential(ctx context.Context, user *models.User, cred *models.Credential) error
	// EmailExists сообщает, занят ли email.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CredentialByEmail находит учётные данные по email.
	CredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ProfileByID возвращает пользователя с подписчиками и подписками.
	ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// TweetStorage выполняет операции над твитами и лентой.
type TweetStorage interface {
	// CreateTweet сохраняет твит и привязывает к нему вложения автора.
	// Чужое, уже привязанное или несуществующее вложение — ErrNotFound.
	CreateTweet(ctx context.Context, tweet *models.Tweet, mediaIDs []int64) error
	// DeleteTweet удаляет твит автора. Чужой твит — ErrForbidden.
	DeleteTweet(ctx context.Context, id, requesterID uuid.UUID) error
	// Feed возвращает твиты пользователя и тех, на кого он подписан,
	// по убыванию числа лайков, затем по убыванию времени создания.
	Feed(ctx context.Context, q models.FeedQuery) ([]models.FeedItem, error)
}

// LikeStorage выполняет операции над лайками. Повторный лайк не создаёт дубликат.
type LikeStorage interface {
	CreateLike(ctx context.Context, tweetID, userID uuid.UUID) error
	DeleteLike(ctx context.Context, tweetID, userID uuid.UUID) error
}

// FollowStorage выполняет операции над подписками. Повторная подписка не создаёт дубликат.
type FollowStorage interface {
	CreateFollow(ctx context.Context, followerID, followedID uuid.UUID) error
	DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error
}

// MediaStorage хранит метаданные загруженных вложений.
type MediaStorage interface {
	// CreateMedia сохраняет метаданные и проставляет m.ID.
	CreateMedia(ctx context.Context, m *models.Media) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	TweetStorage
	LikeStorage
	FollowStorage
	MediaStorage
	Close()
}

// MediaObjects — объектное хранилище байтов вложений.
type MediaObjects interface {
	// PutObject загружает объект и возвращает публичную ссылку на него.
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// RemoveObject удаляет объект (компенсация при неудачной записи метаданных).
	RemoveObject(ctx context.Context, key string) error
}
