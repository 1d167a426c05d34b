// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя, токенов или мидлвара,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - тело {result:false, error_type, error_message} без утечки деталей.
//
// Источник истинности по сентинелам: internal/service и internal/token.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// ErrRateLimited — клиент превысил лимит запросов. Транспорт: HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// ErrBadRequest — тело или параметры запроса не разбираются. Транспорт: HTTP 422.
var ErrBadRequest = errors.New("bad request")

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrorResponse — единый формат ошибки для фронта.
// ErrorType — короткий стабильный код для машиночитаемой обработки.
// ErrorMessage — безопасное человекочитаемое описание.
type ErrorResponse struct {
	Result       bool   `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/backend_failure, чтобы не послать
//     "200 OK" с телом ошибки;
//   - *service.ValidationError - 422, в сообщении поле и причина;
//   - известные сентинелы - по таблице ниже;
//   - прочее - 500/backend_failure без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, resp("backend_failure", "internal error")
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, resp("validation_error", ve.Error())
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, resp("invalid_credentials", "invalid email or password")
	case errors.Is(err, token.ErrTokenExpired):
		return http.StatusUnauthorized, resp("token_expired", "token expired")
	case errors.Is(err, token.ErrInvalidToken), errors.Is(err, token.ErrKindMismatch):
		return http.StatusUnauthorized, resp("invalid_token", "invalid token")
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusUnprocessableEntity, resp("duplicate_email", "email already taken")
	case errors.Is(err, service.ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusUnprocessableEntity, resp("validation_error", "invalid request")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, resp("not_found", "not found")
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, resp("forbidden", "forbidden")
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, resp("rate_limited", "too many requests")
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, resp("canceled", "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp("deadline_exceeded", "deadline exceeded")
	default:
		return http.StatusInternalServerError, resp("backend_failure", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров и мидлваров.
// Для 401 добавляет WWW-Authenticate: Bearer, если заголовок ещё не выставлен.
func WriteError(w http.ResponseWriter, _ *http.Request, err error) {
	status, body := ToHTTP(err)

	if status == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func resp(typ, msg string) ErrorResponse {
	return ErrorResponse{Result: false, ErrorType: typ, ErrorMessage: msg}
}
