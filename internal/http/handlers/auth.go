package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/http/middleware"
	"github.com/pribylovaa/go-microblog/internal/models"
	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/token"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordControl string `json:"password_control"`
}

// loginRequest: username — это email; поле email принимается как синоним.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in loginRequest) login() string {
	if in.Username != "" {
		return in.Username
	}
	return in.Email
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterUser — POST /auth/users. Принимает JSON или форму.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in registerRequest

	if isForm(r) {
		if err := parseForm(w, r); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		in = registerRequest{
			Name:            r.PostFormValue("name"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			PasswordControl: r.PostFormValue("password_control"),
		}
	} else if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	_, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		PasswordControl: in.PasswordControl,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, okResp)
}

// LoginUser — POST /auth/login. username — это email пользователя.
// Access-токен уходит в теле, refresh — в HttpOnly-cookie.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in loginRequest

	if isForm(r) {
		if err := parseForm(w, r); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		in = loginRequest{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	} else if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.Login(r.Context(), in.login(), in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeTokens(w, pair)
}

// RefreshToken — POST /auth/refresh. Выпускает новую пару по refresh-cookie.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	p, found := middleware.PayloadFrom(r.Context())
	if !found {
		w.Header().Set("WWW-Authenticate", middleware.RealmRefreshExpired)
		apierrors.WriteError(w, r, token.ErrInvalidToken)
		return
	}

	pair, err := h.svc.Refresh(r.Context(), p)
	if err != nil {
		w.Header().Set("WWW-Authenticate", middleware.RealmRefreshExpired)
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeTokens(w, pair)
}

// Logout — DELETE /auth/logout. Требует access-токен и наличие refresh-cookie.
// Сервер токены не хранит: выход сводится к удалению cookie у клиента.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.RefreshCookie); err != nil || c.Value == "" {
		apierrors.WriteError(w, r, token.ErrInvalidToken)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("WWW-Authenticate", middleware.RealmLogout)

	writeJSON(w, http.StatusOK, okResp)
}

func (h *Handlers) writeTokens(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: pair.AccessToken, TokenType: "Bearer"})
}
