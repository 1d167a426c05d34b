package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/pkg/log"
	"github.com/pribylovaa/go-microblog/internal/pkg/redact"
	"github.com/pribylovaa/go-microblog/internal/storage"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// Register регистрирует нового пользователя и возвращает его ID.
//
// Ошибки:
// - *ValidationError (ErrValidation) — имя, email или пароль не проходят проверку;
// - ErrEmailTaken — email уже занят;
// - прочие ошибки стораджа — обёрнутые и прокинуты наверх.
func (s *Service) Register(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	const op = "service.auth.Register"

	lg := log.From(ctx)

	in, err := in.validate()
	if err != nil {
		lg.Debug("register_invalid_input",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	taken, err := s.storage.EmailExists(ctx, in.Email)
	if err != nil {
		lg.Error("register_email_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if taken {
		lg.Warn("register_email_taken",
			slog.String("op", op),
			slog.String("email", redact.Email(in.Email)),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{ID: uuid.New(), Name: in.Name, CreatedAt: now}
	cred := &models.Credential{Email: in.Email, PasswordHash: hashed, CreatedAt: now}

	if err := s.storage.CreateCredential(ctx, user, cred); err != nil {
		// Гонка двух регистраций с одним email: уникальный индекс решает спор.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("register_save_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("register_ok",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(in.Email)),
	)

	return user.ID, nil
}

// Login выполняет вход по email+пароль и выпускает пару токенов.
//
// Ошибки:
// - ErrInvalidCredentials — email некорректен, не найден или пароль не совпал;
// - прочие ошибки стораджа/подписи — обёрнутые и прокинуты наверх.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	normEmail, ok := normalizeEmail(email)
	if !ok || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	cred, err := s.storage.CredentialByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login_unknown_email",
				slog.String("op", op),
				slog.String("email", redact.Email(normEmail)),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("login_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(cred.PasswordHash, password) {
		lg.Warn("login_wrong_password",
			slog.String("op", op),
			slog.String("user_id", cred.UserID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByID(ctx, cred.UserID)
	if err != nil {
		lg.Error("login_user_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issuer.IssuePair(user.ID, user.Name)
	if err != nil {
		lg.Error("login_issue_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
	)

	return pair, nil
}

// Refresh выпускает новую пару по payload проверенного refresh-токена.
// Ротируются оба токена. Сервер токены не хранит, поэтому хранилище не опрашивается.
func (s *Service) Refresh(ctx context.Context, p token.Payload) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	uid, err := uuid.Parse(p.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, token.ErrInvalidToken)
	}

	pair, err := s.issuer.IssuePair(uid, p.Username)
	if err != nil {
		log.From(ctx).Error("refresh_issue_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("refresh_ok",
		slog.String("op", op),
		slog.String("user_id", uid.String()),
	)

	return pair, nil
}
