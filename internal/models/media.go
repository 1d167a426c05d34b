package models

import (
	"time"

	"github.com/google/uuid"
)

// Media — загруженная картинка. TweetID пуст, пока вложение не привязано к твиту.
type Media struct {
	ID          int64
	OwnerID     uuid.UUID
	ObjectKey   string
	Link        string
	ContentType string
	Size        int64
	TweetID     *uuid.UUID
	CreatedAt   time.Time
}
