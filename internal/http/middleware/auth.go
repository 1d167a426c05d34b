package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/pkg/log"
	"github.com/pribylovaa/go-microblog/internal/pkg/redact"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// RefreshCookie — имя HttpOnly-cookie с refresh-токеном.
const RefreshCookie = "refresh_token"

// Значения WWW-Authenticate для отказов по refresh-токену и для выхода.
const (
	RealmRefreshExpired = `Bearer realm="Refresh token expired"`
	RealmLogout         = `Bearer realm="logout"`
)

// TokenVerifier проверяет подпись, срок действия и вид токена.
type TokenVerifier interface {
	Verify(tok string, want token.Kind) (token.Payload, error)
}

type payloadKey struct{}

// PayloadFrom возвращает payload проверенного токена, положенный RequireAccess/RequireRefresh.
func PayloadFrom(ctx context.Context) (token.Payload, bool) {
	p, ok := ctx.Value(payloadKey{}).(token.Payload)
	return p, ok
}

// SubjectFrom возвращает ID пользователя из проверенного токена.
func SubjectFrom(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PayloadFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(p.Subject)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// RequireAccess пропускает запрос только с валидным access-токеном
// в Authorization: Bearer. Иначе 401 + WWW-Authenticate: Bearer.
func RequireAccess(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, token.ErrInvalidToken)
				return
			}

			p, err := verify(r.Context(), v, raw, token.KindAccess)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPayload(r.Context(), p)))
		})
	}
}

// RequireRefresh пропускает запрос только с валидным refresh-токеном
// в cookie refresh_token. В контекст кладётся payload без вида токена.
// Любой отказ — 401 + WWW-Authenticate: Bearer realm="Refresh token expired".
func RequireRefresh(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(RefreshCookie)
			if err != nil || c.Value == "" {
				w.Header().Set("WWW-Authenticate", RealmRefreshExpired)
				apierrors.WriteError(w, r, token.ErrInvalidToken)
				return
			}

			p, err := verify(r.Context(), v, c.Value, token.KindRefresh)
			if err != nil {
				w.Header().Set("WWW-Authenticate", RealmRefreshExpired)
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPayload(r.Context(), p.WithoutKind())))
		})
	}
}

func verify(ctx context.Context, v TokenVerifier, raw string, want token.Kind) (token.Payload, error) {
	const op = "http.middleware.verify"

	p, err := v.Verify(raw, want)
	if err != nil {
		lg := log.From(ctx)
		attrs := []any{
			slog.String("op", op),
			slog.String("kind", string(want)),
			slog.String("token", redact.Token(raw)),
			slog.String("err", err.Error()),
		}

		if errors.Is(err, token.ErrKindMismatch) {
			lg.Warn("auth_kind_mismatch", attrs...)
		} else {
			lg.Debug("auth_rejected", attrs...)
		}

		return token.Payload{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := uuid.Parse(p.Subject); err != nil {
		return token.Payload{}, fmt.Errorf("%s: %w", op, token.ErrInvalidToken)
	}

	return p, nil
}

func withPayload(ctx context.Context, p token.Payload) context.Context {
	ctx = context.WithValue(ctx, payloadKey{}, p)
	return log.With(ctx, slog.String("user_id", p.Subject))
}

// bearerToken извлекает токен из Authorization: Bearer <token>.
// Схема сравнивается без учёта регистра.
func bearerToken(r *http.Request) (string, bool) {
	scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
