package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/storage"
)

// CreateCredential атомарно создаёт пользователя и его учётные данные.
func (s *Storage) CreateCredential(ctx context.Context, user *models.User, cred *models.Credential) error {
	const op = "storage.postgres.CreateCredential"

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users(id, name, created_at) VALUES ($1, $2, $3)`,
			user.ID, user.Name, user.CreatedAt,
		); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO users_auth(user_id, email, hashed_password, created_at)
			VALUES ($1, $2, $3, $4)
		`, user.ID, cred.Email, cred.PasswordHash, cred.CreatedAt)

		return err
	})

	if err != nil {
		if pgCode(err) == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	cred.UserID = user.ID

	return nil
}

// EmailExists сообщает, занят ли email (сравнение без учёта регистра, CITEXT).
func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.postgres.EmailExists"

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users_auth WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// CredentialByEmail находит учётные данные по email.
func (s *Storage) CredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	const op = "storage.postgres.CredentialByEmail"

	query := `
		SELECT user_id, email, hashed_password, created_at
		FROM users_auth
		WHERE email = $1
	`

	var cred models.Credential
	err := s.db.QueryRow(ctx, query, email).Scan(
		&cred.UserID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cred, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	var user models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// ProfileByID возвращает пользователя с подписчиками и подписками.
func (s *Storage) ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const op = "storage.postgres.ProfileByID"

	user, err := s.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	followers, err := s.collectUsers(ctx, `
		SELECT u.id, u.name, u.created_at
		FROM followers f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY f.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: followers: %w", op, err)
	}

	following, err := s.collectUsers(ctx, `
		SELECT u.id, u.name, u.created_at
		FROM followers f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: following: %w", op, err)
	}

	return &models.Profile{
		User:      *user,
		Followers: followers,
		Following: following,
	}, nil
}

func (s *Storage) collectUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.User])
}
