package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/blog"
	"github.com/geocoder89/inkwell/internal/cache"
	"github.com/geocoder89/inkwell/internal/config"
	"github.com/geocoder89/inkwell/internal/db"
	httpx "github.com/geocoder89/inkwell/internal/http"
	"github.com/geocoder89/inkwell/internal/notifications"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/geocoder89/inkwell/internal/repo/memory"
	"github.com/geocoder89/inkwell/internal/repo/postgres"
	"github.com/geocoder89/inkwell/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	blog.UserStore
	db.AdminSeedStore
}

// storage is the Content Store picked by STORAGE_DRIVER.
type storage struct {
	users    userStore
	posts    blog.PostStore
	comments blog.CommentStore
	refresh  auth.RefreshTokenStore
	ping     func(ctx context.Context) error
	close    func()
}

func openStorage(cfg config.Config, prom *observability.Prom, log *slog.Logger) (storage, error) {
	switch cfg.StorageDriver {
	case "memory":
		s := memory.NewStore()
		log.Warn("using in-memory storage; data is lost on restart")
		return storage{
			users:    s.Users,
			posts:    s.Posts,
			comments: s.Comments,
			refresh:  s.RefreshTokens,
			ping:     s.Ping,
			close:    func() {},
		}, nil

	case "postgres":
		if err := db.MigrateUp(cfg.DBURL, log); err != nil {
			return storage{}, fmt.Errorf("migrate: %w", err)
		}

		pool, err := db.NewPool(cfg.DBURL, db.PoolConfig{
			MaxConns:        int32(cfg.DBMaxConns),
			MaxConnIdleTime: 5 * time.Minute,
		})
		if err != nil {
			return storage{}, fmt.Errorf("db connect: %w", err)
		}

		return storage{
			users:    postgres.NewUsersRepo(pool, prom),
			posts:    postgres.NewPostsRepo(pool, prom),
			comments: postgres.NewCommentsRepo(pool, prom),
			refresh:  postgres.NewRefreshTokensRepo(pool, prom),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	}

	return storage{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

func newCache(cfg config.Config, prom *observability.Prom, log *slog.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.WithObserver(cache.NewMemory(cfg.CacheTTL), prom.ObserveCache), func() {}
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})

	ctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// reads fall through to the store while redis is down
		log.Warn("redis not reachable", "addr", cfg.RedisAddr, "err", err)
	}

	return cache.WithObserver(rc, prom.ObserveCache), func() { _ = rc.Close() }
}

func newMailer(cfg config.Config, prom *observability.Prom, log *slog.Logger) notifications.Mailer {
	var inner notifications.Mailer = notifications.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		inner = notifications.NewSMTPMailer(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.MailTimeout,
		})
	} else {
		log.Warn("SMTP_HOST not set; contact messages are logged, not sent")
	}

	return notifications.NewProtectedMailer(inner, notifications.ProtectedMailerConfig{
		Timeout:     cfg.MailTimeout,
		MaxAttempts: cfg.MailMaxAttempts,
		Observe:     prom.ObserveMail,
	})
}

func main() {
	// Load the config set up
	config.LoadDotEnv()
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if cfg.OTelEnabled {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "inkwell-api",
			Environment: cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		cancel()
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	store, err := openStorage(cfg, prom, log)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer store.close()

	hasher := security.NewHasher(bcrypt.DefaultCost)

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)
	err = db.EnsureAdminUser(seedCtx, store.users, hasher, cfg, log)
	cancelSeed()
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	postCache, closeCache := newCache(cfg, prom, log)
	defer closeCache()

	sessions := auth.NewSessions(auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL), store.refresh)
	posts := blog.NewPosts(store.posts, postCache, log)

	// set up routers with the log
	router := httpx.NewRouter(log, httpx.Options{
		Env:            cfg.Env,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Tracing:        cfg.OTelEnabled,
		LoginLimit:     cfg.LoginRateLimit,
		ContactLimit:   cfg.ContactRateLimit,
	}, httpx.Deps{
		Accounts: blog.NewAccounts(store.users, hasher, log),
		Sessions: sessions,
		Posts:    posts,
		Comments: blog.NewComments(store.comments, store.posts, log),
		Contact:  blog.NewContact(newMailer(cfg, prom, log), cfg.ContactFrom, cfg.ContactTo, log),
		Ping:     store.ping,
		Prom:     prom,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// contact submissions may retry delivery for a while
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
