package models

import (
	"time"

	"github.com/google/uuid"
)

// Tweet — короткое сообщение пользователя.
type Tweet struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

// Like — отметка «нравится» пользователя на твите.
type Like struct {
	UserID uuid.UUID
	Name   string
}

// FeedItem — твит ленты с автором, вложениями и лайками.
type FeedItem struct {
	Tweet       Tweet
	Author      User
	Attachments []string
	Likes       []Like
}

// FeedQuery — параметры выборки ленты.
type FeedQuery struct {
	ViewerID uuid.UUID
	Limit    int32
	Offset   int32
}
