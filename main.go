package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"prompteria-api/cache"
	"prompteria-api/config"
	"prompteria-api/database"
	"prompteria-api/jobs"
	"prompteria-api/logger"
	"prompteria-api/metrics"
	"prompteria-api/middleware"
	"prompteria-api/repositories"
	"prompteria-api/routes"
	"prompteria-api/services"
)

const (
	shutdownTimeout        = 10 * time.Second
	limiterCleanupInterval = 5 * time.Minute
	listCachePrefix        = "prompteria:lists"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("prompteria-api: %v", err)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Mode == config.DebugMode,
	})
	if err != nil {
		return err
	}
	defer func() { _ = appLog.Sync() }()

	gin.SetMode(cfg.Mode)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		appLog.Warn("JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	store := database.NewHandle(cfg.DatabaseURL, database.RetryConfig{
		MaxAttempts: cfg.DBMaxRetries,
		BaseDelay:   cfg.DBRetryDelay,
		MaxDelay:    cfg.DBRetryMaxWait,
	}, appLog)
	defer func() { _ = store.Close() }()

	db, err := store.DB(ctx)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if cfg.Mode == config.DebugMode {
		if err := database.SeedData(ctx, db, appLog); err != nil {
			appLog.Warn("Failed to seed database", logger.Error(err))
		}
	}

	// List cache
	listCache := newListCache(cfg, appLog)

	m := metrics.New()

	// Repositories
	promptRepo := repositories.NewPromptRepository(store)
	userRepo := repositories.NewUserRepository(store)

	// Services
	lists := services.NewListService(promptRepo, listCache, m, appLog)
	emailService := services.NewEmailService(cfg, appLog)
	if !emailService.Enabled() {
		appLog.Info("SMTP_HOST not set, welcome emails are disabled")
	}
	authService := services.NewAuthService(userRepo, services.NewGoogleVerifier(cfg.GoogleClientID), emailService, cfg.JWTSecret, appLog)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	go cleanupLimiters(ctx, limiter)

	monitor := jobs.NewConnectionMonitorJob(store, cfg.DBPingInterval, appLog)
	monitor.Start(ctx)
	defer monitor.Stop()

	router := routes.NewRouter(routes.Dependencies{
		Config:  cfg,
		Log:     appLog,
		Store:   store,
		Metrics: m,
		Limiter: limiter,
		Auth:    authService,
		Prompts: services.NewPromptService(promptRepo, listCache, appLog),
		Likes:   services.NewLikeService(promptRepo, listCache, m, appLog),
		Views:   services.NewViewService(promptRepo, m),
		Lists:   lists,
		Users:   services.NewUserService(userRepo, lists),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("Starting Prompteria API server", logger.String("port", cfg.Port), logger.String("mode", cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		appLog.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newListCache connects to Redis when configured. Listing works without it,
// so a connection failure only disables caching.
func newListCache(cfg *config.Config, log logger.Logger) cache.ListCache {
	if cfg.RedisAddress == "" {
		log.Info("REDIS_ADDRESS not set, list cache disabled")
		return cache.NopListCache{}
	}

	client, err := cache.NewClient(cache.Config{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn("Redis unavailable, list cache disabled", logger.Error(err))
		return cache.NopListCache{}
	}
	return cache.NewRedisListCache(client, listCachePrefix, cfg.ListCacheTTL)
}

func cleanupLimiters(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters(limiterCleanupInterval)
		}
	}
}
