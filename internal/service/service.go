// service содержит бизнес-логику микроблога: регистрацию и вход,
// ротацию токенов, твиты, лайки, подписки и загрузку вложений.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования, если хранилища потокобезопасны.
//   - Ошибки хранилища переводятся в сентинелы ниже; всё, что не является
//     сентинелом, считается сбоем инфраструктуры (HTTP 500).
package service

import (
	"errors"

	"github.com/pribylovaa/go-microblog/internal/config"
	"github.com/pribylovaa/go-microblog/internal/storage"
	"github.com/pribylovaa/go-microblog/internal/token"
)

var (
	// ErrInvalidCredentials — пара email/пароль неверна или пользователь не найден.
	// Транспорт: HTTP 401 + WWW-Authenticate: Bearer.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: HTTP 422.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotFound — твит, пользователь, лайк, подписка или вложение не найдены.
	// Транспорт: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — попытка изменить чужой твит. Транспорт: HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation — некорректные входные данные. Транспорт: HTTP 422.
	// Конкретная причина передаётся через *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError описывает, какое поле не прошло проверку.
// errors.Is(err, ErrValidation) для неё истинно.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Service описывает бизнес-логику микроблога.
type Service struct {
	storage storage.Storage
	objects storage.MediaObjects
	issuer  *token.Issuer
	media   config.MediaConfig
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, objects storage.MediaObjects, issuer *token.Issuer, media config.MediaConfig) *Service {
	return &Service{
		storage: st,
		objects: objects,
		issuer:  issuer,
		media:   media,
	}
}
