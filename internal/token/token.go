// token выпускает и проверяет подписанные JWT для аутентификации.
//
// Основные аспекты:
//   - Подпись асимметричная: приватный ключ подписывает, публичный проверяет
//     (RS256 по умолчанию, ключи в PEM).
//   - Токен несёт sub (id пользователя), username, type (вид токена), iat и exp.
//     Сервер токены не хранит: отзыв до истечения срока не поддерживается.
//   - Codec отвечает за подпись/проверку, Issuer — за виды токенов, их сроки
//     и выпуск пары access+refresh.
package token

import (
	"errors"
	"time"
)

// Kind — дискриминатор вида токена (claim "type").
type Kind string

const (
	KindAccess  Kind = "access_token"
	KindRefresh Kind = "refresh_token"
)

var (
	// ErrInvalidToken — подпись неверна, токен повреждён или подписан другим алгоритмом.
	// Транспорт: HTTP 401 + WWW-Authenticate.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrKindMismatch — подпись валидна, но вид токена не тот, что ждёт эндпойнт.
	// Клиенту отдаётся так же, как ErrInvalidToken; различается только в логах.
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Payload — содержимое токена.
type Payload struct {
	Subject   string
	Username  string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// WithoutKind возвращает копию без дискриминатора вида: из неё выпускается
// новая пара при ротации.
func (p Payload) WithoutKind() Payload {
	p.Kind = ""
	return p
}
