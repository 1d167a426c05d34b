package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/go-microblog/internal/cache"
	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/metrics"
	"github.com/pribylovaa/go-microblog/internal/pkg/log"
)

// CacheOptions — параметры cache-aside для одного маршрута.
type CacheOptions struct {
	// Prefix — общий префикс ключей (cache.prefix).
	Prefix string
	// Name — имя маршрута в ключе и в метриках, например "feed".
	Name string
	TTL  time.Duration
	// VaryBySubject добавляет ID пользователя из токена в ключ.
	// Нужен для ответов, зависящих от того, кто спрашивает.
	VaryBySubject bool
	Metrics       *metrics.Metrics
}

// CacheAside отдаёт GET-ответ из кэша, а при промахе вызывает обработчик
// и сохраняет тело ответа 200 на TTL. Прочие методы проходят насквозь.
//
// Заголовки: Cache-Control: max-age, слабый ETag, X-Cache: HIT|MISS.
// Совпавший If-None-Match даёт 304 без тела.
// Ошибка чтения или записи кэша — 500 backend_failure, ответ без кэша не отдаётся.
func CacheAside(store cache.Store, opts CacheOptions) Middleware {
	const op = "http.middleware.CacheAside"

	maxAge := "max-age=" + strconv.Itoa(int(opts.TTL/time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			var subject string
			if opts.VaryBySubject {
				id, ok := SubjectFrom(r.Context())
				if !ok {
					next.ServeHTTP(w, r)
					return
				}
				subject = id.String()
			}

			lg := log.From(r.Context())
			key := cache.Key(opts.Prefix, opts.Name, r.URL.Path, r.URL.Query(), subject)

			body, ok, err := store.Get(r.Context(), key)
			if err != nil {
				lg.Error("cache_get_failed",
					slog.String("op", op),
					slog.String("route", opts.Name),
					slog.String("err", err.Error()),
				)
				opts.Metrics.ObserveCache(opts.Name, metrics.CacheError)
				apierrors.WriteError(w, r, err)
				return
			}

			if ok {
				if serveCached(w, r, body, maxAge, "HIT") {
					opts.Metrics.ObserveCache(opts.Name, metrics.CacheNotModified)
				} else {
					opts.Metrics.ObserveCache(opts.Name, metrics.CacheHit)
				}
				return
			}

			opts.Metrics.ObserveCache(opts.Name, metrics.CacheMiss)

			bw := newBufferWriter(w)
			next.ServeHTTP(bw, r)

			if bw.code() != http.StatusOK {
				w.WriteHeader(bw.code())
				_, _ = w.Write(bw.body.Bytes())
				return
			}

			body = bw.body.Bytes()
			if err := store.Set(r.Context(), key, body, opts.TTL); err != nil {
				lg.Error("cache_set_failed",
					slog.String("op", op),
					slog.String("route", opts.Name),
					slog.String("err", err.Error()),
				)
				opts.Metrics.ObserveCache(opts.Name, metrics.CacheError)
				apierrors.WriteError(w, r, err)
				return
			}

			serveCached(w, r, body, maxAge, "MISS")
		})
	}
}

// serveCached пишет тело с заголовками кэша. Возвращает true, если ответ 304.
func serveCached(w http.ResponseWriter, r *http.Request, body []byte, maxAge, xcache string) bool {
	etag := cache.ETag(body)

	h := w.Header()
	h.Set("Cache-Control", maxAge)
	h.Set("ETag", etag)
	h.Set("X-Cache", xcache)

	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		h.Del("Content-Type")
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return false
}

// etagMatch — слабое сравнение по RFC 9110: W/ игнорируется, "*" совпадает с любым.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}

	want := strings.TrimPrefix(etag, "W/")
	for _, c := range strings.Split(header, ",") {
		c = strings.TrimSpace(c)
		if c == "*" || strings.TrimPrefix(c, "W/") == want {
			return true
		}
	}

	return false
}
