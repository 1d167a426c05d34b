package models

import (
	"time"

	"github.com/google/uuid"
)

// User — публичный профиль пользователя.
type User struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Credential — учётные данные пользователя (1:1 к User).
type Credential struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile — пользователь вместе с подписчиками и подписками.
type Profile struct {
	User      User
	Followers []User
	Following []User
}
