// handlers — REST-обработчики публичного API микроблога.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/http/middleware"
	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// maxJSONBody — предел тела для JSON и форм.
const maxJSONBody = 1 << 20

// Service — бизнес-операции, которые вызывают обработчики.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, p token.Payload) (*models.TokenPair, error)

	CreateTweet(ctx context.Context, authorID uuid.UUID, content string, mediaIDs []int64) (uuid.UUID, error)
	DeleteTweet(ctx context.Context, id, requesterID uuid.UUID) error
	Like(ctx context.Context, tweetID, userID uuid.UUID) error
	Unlike(ctx context.Context, tweetID, userID uuid.UUID) error
	Feed(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]models.FeedItem, error)

	Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error

	UploadMedia(ctx context.Context, ownerID uuid.UUID, r io.Reader, size int64, contentType string) (int64, error)
}

// Options — параметры транспорта, не относящиеся к бизнес-логике.
type Options struct {
	// CookieSecure выставляет Secure у cookie refresh_token.
	CookieSecure bool
	// MaxUploadBytes — предел размера загружаемого файла.
	MaxUploadBytes int64
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc  Service
	opts Options
}

func New(svc Service, opts Options) *Handlers {
	return &Handlers{svc: svc, opts: opts}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}
	return nil
}

// isForm сообщает, пришло ли тело формой, а не JSON.
func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// parseForm разбирает urlencoded или multipart форму с ограничением размера.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if ct == "multipart/form-data" {
		err = r.ParseMultipartForm(maxJSONBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}
	return nil
}

// pathUUID читает UUID из параметра пути. Некорректный — ValidationError (422).
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

// queryInt читает целое из query; отсутствие — def.
// Диапазон не проверяется: limit/offset нормализует сервис.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// subject возвращает ID пользователя из проверенного access-токена.
// Маршрут без RequireAccess — ошибка сборки роутера, отвечаем 401.
func subject(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.SubjectFrom(r.Context())
	if !ok {
		return uuid.Nil, token.ErrInvalidToken
	}
	return id, nil
}

type resultResponse struct {
	Result bool `json:"result"`
}

var okResp = resultResponse{Result: true}
