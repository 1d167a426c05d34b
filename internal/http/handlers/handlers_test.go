package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-microblog/internal/http/middleware"
	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// fakeService записывает аргументы и отвечает заданными значениями.
// Не переопределённые методы паникуют через встроенный nil-интерфейс.
type fakeService struct {
	Service

	loginEmail, loginPassword string
	pair                      *models.TokenPair
	feedLimit, feedOffset     int
}

func (f *fakeService) Login(_ context.Context, email, password string) (*models.TokenPair, error) {
	f.loginEmail, f.loginPassword = email, password
	if password != "secret123" {
		return nil, service.ErrInvalidCredentials
	}
	return f.pair, nil
}

func (f *fakeService) Feed(_ context.Context, _ uuid.UUID, limit, offset int) ([]models.FeedItem, error) {
	f.feedLimit, f.feedOffset = limit, offset
	return nil, nil
}

func (f *fakeService) UploadMedia(context.Context, uuid.UUID, io.Reader, int64, string) (int64, error) {
	return 1, nil
}

func TestLoginUser_JSONEmailAlias(t *testing.T) {
	exp := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	svc := &fakeService{pair: &models.TokenPair{AccessToken: "acc", RefreshToken: "ref", RefreshExpiresAt: exp}}
	h := New(svc, Options{CookieSecure: true})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.LoginUser(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "a@b.com", svc.loginEmail)
	require.JSONEq(t, `{"access_token":"acc","token_type":"Bearer"}`, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "ref")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "refresh_token", cookies[0].Name)
	require.Equal(t, "ref", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.True(t, exp.Equal(cookies[0].Expires))
}

func TestLoginUser_Failure(t *testing.T) {
	h := New(&fakeService{}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=a%40b.com&password=nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.LoginUser(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"result":false,"error_type":"invalid_credentials","error_message":"invalid email or password"}`, rr.Body.String())
}

func TestFeed_QueryValidation(t *testing.T) {
	svc := &fakeService{}
	h := New(svc, Options{})

	// Без токена — 401.
	rr := httptest.NewRecorder()
	h.Feed(rr, httptest.NewRequest(http.MethodGet, "/tweets", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	authed := func(target string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		return req.WithContext(withSubject(req.Context(), uuid.New()))
	}

	rr = httptest.NewRecorder()
	h.Feed(rr, authed("/tweets?limit=abc"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	h.Feed(rr, authed("/tweets?limit=7&offset=3"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"result":true,"tweets":[]}`, rr.Body.String())
	require.Equal(t, 7, svc.feedLimit)
	require.Equal(t, 3, svc.feedOffset)

	// Отрицательные значения не отклоняются: их приводит к норме сервис.
	rr = httptest.NewRecorder()
	h.Feed(rr, authed("/tweets?limit=-1&offset=-5"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, -1, svc.feedLimit)
	require.Equal(t, -5, svc.feedOffset)
}

func TestPathUUID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nope")
	req := httptest.NewRequest(http.MethodGet, "/users/nope", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	_, err := pathUUID(req, "id")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestUploadMedia_MissingFile(t *testing.T) {
	h := New(&fakeService{}, Options{MaxUploadBytes: 1024})

	req := httptest.NewRequest(http.MethodPost, "/media", strings.NewReader("--x--\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req = req.WithContext(withSubject(req.Context(), uuid.New()))
	rr := httptest.NewRecorder()
	h.UploadMedia(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

// withSubject кладёт payload так же, как это делает RequireAccess.
func withSubject(ctx context.Context, id uuid.UUID) context.Context {
	v := stubVerifier{p: token.Payload{Subject: id.String(), Kind: token.KindAccess}}
	var out context.Context
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { out = r.Context() })

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer x")
	middleware.RequireAccess(v)(next).ServeHTTP(httptest.NewRecorder(), req)
	return out
}

type stubVerifier struct{ p token.Payload }

func (s stubVerifier) Verify(string, token.Kind) (token.Payload, error) { return s.p, nil }
