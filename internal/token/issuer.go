package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-microblog/internal/models"
)

// Issuer выпускает токены конкретного вида и проверяет вид при разборе.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer создаёт Issuer поверх Codec.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateToken проставляет вид токена и подписывает его.
// Для access-токена override > 0 заменяет срок по умолчанию;
// refresh-токен всегда живёт refreshTTL и override игнорирует.
func (i *Issuer) CreateToken(p Payload, kind Kind, override time.Duration) (string, error) {
	tok, _, err := i.create(p, kind, override)
	return tok, err
}

func (i *Issuer) create(p Payload, kind Kind, override time.Duration) (string, Payload, error) {
	const op = "token.issuer.CreateToken"

	var ttl time.Duration
	switch kind {
	case KindAccess:
		ttl = i.accessTTL
		if override > 0 {
			ttl = override
		}
	case KindRefresh:
		ttl = i.refreshTTL
	default:
		return "", Payload{}, fmt.Errorf("%s: unknown kind %q", op, kind)
	}

	p.Kind = kind
	tok, stamped, err := i.codec.encode(p, ttl)
	if err != nil {
		return "", Payload{}, fmt.Errorf("%s: %w", op, err)
	}

	return tok, stamped, nil
}

// IssuePair выпускает access и refresh токены из одного базового payload,
// так что оба относятся к одному событию входа.
func (i *Issuer) IssuePair(subjectID uuid.UUID, username string) (*models.TokenPair, error) {
	const op = "token.issuer.IssuePair"

	base := Payload{Subject: subjectID.String(), Username: username}

	access, ap, err := i.create(base, KindAccess, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, rp, err := i.create(base, KindRefresh, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  ap.ExpiresAt,
		RefreshExpiresAt: rp.ExpiresAt,
	}, nil
}

// Verify разбирает токен и требует, чтобы его вид совпадал с want.
// Несовпадение вида возвращает ErrKindMismatch.
func (i *Issuer) Verify(tokenStr string, want Kind) (Payload, error) {
	const op = "token.issuer.Verify"

	p, err := i.codec.Decode(tokenStr)
	if err != nil {
		return Payload{}, fmt.Errorf("%s: %w", op, err)
	}

	if p.Kind != want {
		return Payload{}, fmt.Errorf("%s: %w", op, ErrKindMismatch)
	}

	return p, nil
}
