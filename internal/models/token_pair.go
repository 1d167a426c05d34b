package models

import "time"

// TokenPair — access/refresh токены, выпущенные одним событием входа.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
