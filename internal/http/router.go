package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pribylovaa/go-microblog/internal/cache"
	"github.com/pribylovaa/go-microblog/internal/http/handlers"
	"github.com/pribylovaa/go-microblog/internal/http/middleware"
	"github.com/pribylovaa/go-microblog/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.

	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics

	// Cache и параметры cache-aside для GET-эндпойнтов.
	Cache       cache.Store
	CachePrefix string
	CacheTTL    time.Duration

	// LoginLimiter ограничивает попытки входа по IP; nil — без ограничения.
	LoginLimiter middleware.RateLimiter

	Handlers handlers.Options
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		chimw.RealIP,                    // IP клиента из X-Forwarded-For/X-Real-IP для лимитера
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, opts.Handlers)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	access := middleware.RequireAccess(opts.Verifier)
	refresh := middleware.RequireRefresh(opts.Verifier)

	cached := func(name string, vary bool) func(http.Handler) http.Handler {
		if opts.Cache == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.CacheAside(opts.Cache, middleware.CacheOptions{
			Prefix:        opts.CachePrefix,
			Name:          name,
			TTL:           opts.CacheTTL,
			VaryBySubject: vary,
			Metrics:       opts.Metrics,
		})
	}

	// auth
	r.Post("/auth/users", h.RegisterUser)
	if opts.LoginLimiter != nil {
		r.With(middleware.RateLimit(opts.LoginLimiter)).Post("/auth/login", h.LoginUser)
	} else {
		r.Post("/auth/login", h.LoginUser)
	}
	r.With(refresh).Post("/auth/refresh", h.RefreshToken)
	r.With(access).Delete("/auth/logout", h.Logout)

	// tweets
	r.With(access, cached("feed", true)).Get("/tweets", h.Feed)
	r.With(access).Post("/tweets", h.CreateTweet)
	r.With(access).Delete("/tweets/{id}", h.DeleteTweet)
	r.With(access).Post("/tweets/{id}/like", h.LikeTweet)
	r.With(access).Delete("/tweets/{id}/like", h.UnlikeTweet)

	// users
	r.With(access, cached("me", true)).Get("/users/me", h.Me)
	r.With(access, cached("user", false)).Get("/users/{id}", h.GetUser)
	r.With(access).Post("/users/{id}/follow", h.Follow)
	r.With(access).Delete("/users/{id}/follow", h.Unfollow)

	// media
	r.With(access).Post("/media", h.UploadMedia)
}
