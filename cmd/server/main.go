package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"social_backend/internal/app/di"
	"social_backend/internal/app/router"
	"social_backend/internal/feature/user/adapters"
	userhandler "social_backend/internal/feature/user/transport/handler"
	"social_backend/internal/feature/user/usecase"
	"social_backend/internal/platform/config"
	"social_backend/internal/platform/db"
	platformhandler "social_backend/internal/platform/http/handler"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/platform/logging"
	platformredis "social_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close db", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable, falling back to in-memory rate limiting")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	if cfg.JWT.Secret == "" {
		slog.Warn("JWT_SECRET is not set; login and protected routes will fail")
	}

	// Repository
	userRepo := adapters.NewUserGorm(gdb)

	// Usecase
	userSvc := usecase.NewUserService(userRepo, cfg.BcryptCost)
	authSvc := usecase.NewAuthService(userRepo, jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiry))

	// Handler
	userH := userhandler.NewUserHandler(userSvc)
	authH := userhandler.NewAuthHandler(authSvc)
	healthH := platformhandler.NewHealthHandler(sqlDB, 2*time.Second)

	r := router.NewRouter(logger, healthH, userH, authH, di.NewLimiter(rdb, cfg.RateLimit), cfg.JWT.Secret)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
