package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"smartcampus/portal/internal/cache"
	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/config"
	"smartcampus/portal/internal/database"
	"smartcampus/portal/internal/handlers"
	"smartcampus/portal/internal/jobs"
	"smartcampus/portal/internal/log"
	"smartcampus/portal/internal/repository"
	"smartcampus/portal/internal/server"
	"smartcampus/portal/internal/service"
	"smartcampus/portal/internal/storage"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply the session schema and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, os.Stdout)

	if cfg.Security.JWTAccessSecret == "" {
		logger.Fatal().Msg("security.jwtaccesssecret is required")
	}

	fallback, err := service.ParseFallbackPolicy(cfg.Events.Fallback)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid events fallback policy")
	}

	ctx := context.Background()

	var (
		dbPool   *pgxpool.Pool
		sessions service.SessionStore
		dbCheck  handlers.HealthCheck
	)
	if cfg.Postgres.DSN != "" {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate postgres")
		}
		sessions = repository.NewSessionRepository(dbPool)
		dbCheck = dbPool.Ping
	} else {
		logger.Warn().Msg("postgres dsn not set, sessions are kept in memory")
		sessions = repository.NewMemorySessionStore()
	}
	if *migrateOnly {
		if dbPool == nil {
			logger.Fatal().Msg("-migrate-only needs postgres.dsn")
		}
		dbPool.Close()
		logger.Info().Msg("migrations applied")
		return
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	var cacheCheck handlers.HealthCheck
	if redisClient != nil {
		cacheCheck = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("redis addr not set, login throttling disabled")
	}

	var avatars service.AvatarStore
	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure avatar bucket failed")
		}
		avatars = objectStore
	} else {
		logger.Warn().Msg("storage endpoint not set, avatar uploads disabled")
	}

	campus := campusapi.New(cfg.Upstream, logger)
	projector := service.NewProjector(cfg.Locale.Location())
	sessionService := service.NewSessionService(sessions, cfg.Security, logger)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:       logger,
		Config:    cfg,
		Auth:      service.NewAuthService(campus, nil, projector, fallback, logger),
		Sessions:  sessionService,
		Profiles:  service.NewProfileService(campus, avatars, cfg.Storage.MaxAvatarSize, logger),
		Reference: service.NewReferenceService(campus),
		Throttle:  cache.NewLoginThrottle(redisClient, cfg.Security.LoginAttempts, cfg.Security.LoginWindow),
		Database:  dbCheck,
		Cache:     cacheCheck,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(sessionService, cfg.Jobs.SessionCleanup, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
