package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/authz"
	"github.com/yukikurage/enterprise-core-api/internal/cache"
	"github.com/yukikurage/enterprise-core-api/internal/catalog"
	"github.com/yukikurage/enterprise-core-api/internal/config"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/handlers"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = "enterprise-core:"
)

func main() {
	// Load configuration. Invalid signing settings abort startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := obs.NewLogger(cfg.LogLevel, cfg.GinMode == gin.ReleaseMode)
	gin.SetMode(cfg.GinMode)
	obs.Init()

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations and seed the permission catalog
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	ctx := context.Background()
	if err := catalog.Seed(ctx, db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed permission catalog")
	}

	store, closeCache := newCache(ctx, cfg, logger)
	defer closeCache()

	codec, err := auth.NewCodec(cfg.JWT)
	if err != nil {
		logger.WithError(err).Fatal("Invalid credential settings")
	}

	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewActivityLogRepository(db)

	permService := services.NewPermissionService(permRepo, store, cfg.PermissionCacheTTL, logger)
	// The seed may have changed the catalog.
	if err := permService.Invalidate(ctx); err != nil {
		logger.WithError(err).Warn("Failed to invalidate permission cache")
	}

	router := handlers.NewRouter(handlers.Deps{
		Log:         logger,
		DB:          db,
		Codec:       codec,
		Engine:      authz.NewEngine(),
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRateLimitPerSecond, cfg.AuthRateLimitBurst),
		Auth:        services.NewAuthService(db, tenantRepo, userRepo, roleRepo, services.NewPermissionResolver(permRepo), codec),
		Roles:       services.NewRoleService(db, roleRepo, permRepo, logRepo),
		Users:       services.NewUserService(db, userRepo, roleRepo, logRepo),
		Permissions: permService,
		Projects:    services.NewProjectService(db, projectRepo, taskRepo),
		Tasks:       services.NewTaskService(taskRepo, projectRepo),
		Activity:    services.NewActivityService(logRepo),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newCache builds the configured permission cache backend.
func newCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (cache.Cache, func()) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		logger.WithField("addr", cfg.RedisAddr()).Info("Using Redis cache")
		return cache.NewRedis(client, redisKeyPrefix), func() { client.Close() }
	case "none":
		return cache.Null{}, func() {}
	default:
		return cache.NewMemory(cfg.CacheSize, cfg.PermissionCacheTTL), func() {}
	}
}
