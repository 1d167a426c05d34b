package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/token"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("service.x: %w", err) }

	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantType   string
	}{
		{"credentials", wrap(service.ErrInvalidCredentials), http.StatusUnauthorized, "invalid_credentials"},
		{"invalid_token", wrap(token.ErrInvalidToken), http.StatusUnauthorized, "invalid_token"},
		{"kind_mismatch", wrap(token.ErrKindMismatch), http.StatusUnauthorized, "invalid_token"},
		{"expired", wrap(token.ErrTokenExpired), http.StatusUnauthorized, "token_expired"},
		{"email_taken", wrap(service.ErrEmailTaken), http.StatusUnprocessableEntity, "duplicate_email"},
		{"validation", wrap(service.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
		{"bad_request", wrap(ErrBadRequest), http.StatusUnprocessableEntity, "validation_error"},
		{"not_found", wrap(service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"forbidden", wrap(service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"rate_limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"backend failure", errors.New("pq: connection refused"), http.StatusInternalServerError, "backend_failure"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantType, resp.ErrorType)
			require.False(t, resp.Result)
			require.NotEmpty(t, resp.ErrorMessage)
		})
	}
}

func TestToHTTP_ValidationMessage(t *testing.T) {
	err := fmt.Errorf("op: %w", &service.ValidationError{Field: "name", Message: "too short"})

	status, resp := ToHTTP(err)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "name: too short", resp.ErrorMessage)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "backend_failure", resp.ErrorType)
	require.Equal(t, "internal error", resp.ErrorMessage)
}

func TestToHTTP_InternalDoesNotLeak(t *testing.T) {
	_, resp := ToHTTP(errors.New("password=hunter2 host=db"))
	require.Equal(t, "internal error", resp.ErrorMessage)
}

func TestWriteError(t *testing.T) {
	t.Run("401 sets challenge", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), token.ErrInvalidToken)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
		require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, false, body["result"])
		require.Equal(t, "invalid_token", body["error_type"])
	})

	t.Run("401 keeps realm", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rr.Header().Set("WWW-Authenticate", `Bearer realm="Refresh token expired"`)
		WriteError(rr, httptest.NewRequest(http.MethodPost, "/", nil), token.ErrTokenExpired)

		require.Equal(t, `Bearer realm="Refresh token expired"`, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("404 has no challenge", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrNotFound)

		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Empty(t, rr.Header().Get("WWW-Authenticate"))
	})
}
