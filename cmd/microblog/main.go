package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pribylovaa/go-microblog/internal/cache"
	"github.com/pribylovaa/go-microblog/internal/config"
	mbhttp "github.com/pribylovaa/go-microblog/internal/http"
	"github.com/pribylovaa/go-microblog/internal/http/handlers"
	"github.com/pribylovaa/go-microblog/internal/http/middleware"
	"github.com/pribylovaa/go-microblog/internal/metrics"
	"github.com/pribylovaa/go-microblog/internal/service"
	"github.com/pribylovaa/go-microblog/internal/storage/minio"
	"github.com/pribylovaa/go-microblog/internal/storage/postgres"
	"github.com/pribylovaa/go-microblog/internal/token"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting microblog", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(rootCtx context.Context, cfg *config.Config, log *slog.Logger) error {
	initCtx, initCancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer initCancel()

	store, err := postgres.New(initCtx, cfg.DB.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("postgres_connected")

	if cfg.DB.Migrate {
		if err := store.Migrate(initCtx); err != nil {
			return err
		}
		log.Info("migrations_applied")
	}

	respCache, err := cache.NewRedisStore(initCtx, cfg.Redis.RedisURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := respCache.Close(); cerr != nil {
			log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
		}
	}()
	log.Info("redis_connected")

	objects, err := minio.New(initCtx, cfg.S3)
	if err != nil {
		return err
	}
	log.Info("minio_connected", slog.String("bucket", cfg.S3.Bucket))

	issuer, err := token.NewFromConfig(cfg.Auth)
	if err != nil {
		return err
	}

	svc := service.New(store, objects, issuer, cfg.Media)
	log.Info("service_initialized")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	apiHandler := mbhttp.NewRouter(svc, mbhttp.Options{
		Logger:       log,
		Timeout:      cfg.Timeouts.Service,
		BasePath:     cfg.HTTP.BasePath,
		Verifier:     issuer,
		Metrics:      m,
		Cache:        respCache,
		CachePrefix:  cfg.Cache.Prefix,
		CacheTTL:     cfg.Cache.TTL,
		LoginLimiter: middleware.NewIPRateLimiter(cfg.Limits.LoginRPS, cfg.Limits.LoginBurst, cfg.Limits.VisitorTTL),
		Handlers: handlers.Options{
			CookieSecure:   cfg.Auth.CookieSecure,
			MaxUploadBytes: cfg.Media.MaxSizeBytes,
		},
	})

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if ready.Load() && store.Ping(ctx) == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/", apiHandler)

	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := &http.Server{Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}

	serveErrCh := make(chan error, 2)
	if err := serve(log, httpSrv, cfg.HTTP.Addr(), "http", serveErrCh); err != nil {
		return err
	}
	if err := serve(log, metricsSrv, cfg.Metrics.Addr(), "metrics", serveErrCh); err != nil {
		_ = httpSrv.Close()
		return err
	}

	ready.Store(true)
	log.Info("microblog_ready")

	var serveErr error
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	for name, srv := range map[string]*http.Server{"http": httpSrv, "metrics": metricsSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown_incomplete", slog.String("server", name), slog.String("err", err.Error()))
		} else {
			log.Info("server_stopped", slog.String("server", name))
		}
	}

	return serveErr
}

// serve слушает addr и обслуживает srv в отдельной горутине.
// Ошибка Serve (кроме штатного закрытия) уходит в errCh.
func serve(log *slog.Logger, srv *http.Server, addr, name string, errCh chan<- error) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen_failed", slog.String("server", name), slog.String("addr", addr), slog.String("err", err.Error()))
		return err
	}

	log.Info("listen_start", slog.String("server", name), slog.String("addr", addr))

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
