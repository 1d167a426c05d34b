package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-microblog/internal/token"
)

// fakeVerifier отвечает заранее заданным payload/ошибкой на каждый токен.
type fakeVerifier map[string]token.Payload

func (f fakeVerifier) Verify(tok string, want token.Kind) (token.Payload, error) {
	switch tok {
	case "expired":
		return token.Payload{}, fmt.Errorf("verify: %w", token.ErrTokenExpired)
	}

	p, ok := f[tok]
	if !ok {
		return token.Payload{}, fmt.Errorf("verify: %w", token.ErrInvalidToken)
	}

	if p.Kind != want {
		return token.Payload{}, fmt.Errorf("verify: %w", token.ErrKindMismatch)
	}

	return p, nil
}

var (
	uid      = uuid.New()
	verifier = fakeVerifier{
		"acc":     {Subject: uid.String(), Username: "alice", Kind: token.KindAccess},
		"ref":     {Subject: uid.String(), Username: "alice", Kind: token.KindRefresh},
		"bad-sub": {Subject: "not-uuid", Kind: token.KindAccess},
	}
)

func TestRequireAccess(t *testing.T) {
	var seen token.Payload
	var seenID uuid.UUID

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PayloadFrom(r.Context())
		seenID, _ = SubjectFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(final, RequireAccess(verifier))

	t.Run("ok", func(t *testing.T) {
		req := makeReq("/x")
		req.Header.Set("Authorization", "bearer acc")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "alice", seen.Username)
		require.Equal(t, uid, seenID)
	})

	cases := []struct {
		name     string
		header   string
		wantType string
	}{
		{"missing", "", "invalid_token"},
		{"wrong scheme", "Basic acc", "invalid_token"},
		{"empty token", "Bearer   ", "invalid_token"},
		{"unknown", "Bearer nope", "invalid_token"},
		{"refresh as access", "Bearer ref", "invalid_token"},
		{"expired", "Bearer expired", "token_expired"},
		{"subject not uuid", "Bearer bad-sub", "invalid_token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := makeReq("/x")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			require.Equal(t, tc.wantType, decodeErr(t, rr).ErrorType)
		})
	}
}

func TestRequireAccess_KindMismatchLoggedAsWarn(t *testing.T) {
	ch := &capHandler{}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Chain(final, Logging(slog.New(ch)), RequireAccess(verifier))

	req := makeReq("/x")
	req.Header.Set("Authorization", "Bearer ref")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Contains(t, ch.msgs, "auth_kind_mismatch")
}

func TestRequireRefresh(t *testing.T) {
	var seen token.Payload
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PayloadFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(final, RequireRefresh(verifier))

	t.Run("ok strips kind", func(t *testing.T) {
		req := makeReq("/refresh")
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "ref"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, uid.String(), seen.Subject)
		require.Empty(t, seen.Kind)
	})

	for name, cookie := range map[string]string{
		"no cookie": "",
		"access":    "acc",
		"expired":   "expired",
		"garbage":   "zzz",
	} {
		t.Run(name, func(t *testing.T) {
			req := makeReq("/refresh")
			if cookie != "" {
				req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: cookie})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, RealmRefreshExpired, rr.Header().Get("WWW-Authenticate"))
		})
	}
}
