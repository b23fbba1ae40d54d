package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "taskmaster.com/taskmaster/internal/configs"
	httpapi "taskmaster.com/taskmaster/internal/http"
	"taskmaster.com/taskmaster/internal/limiter"
	"taskmaster.com/taskmaster/internal/logging"
	repository "taskmaster.com/taskmaster/internal/repositories"
	"taskmaster.com/taskmaster/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the schema and starts the TaskMaster HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.LogLevel, cfg.LogFormat)

		database, err := config.NewDatabaseClient(cfg.DatabaseDriver, cfg.DatabaseDSN, logging.GormLevel(cfg.IsDevelopment()))
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := config.Migrate(database); err != nil {
			return err
		}

		rateLimiter, closeLimiter, err := newLimiter(cfg, logger)
		if err != nil {
			return err
		}
		defer closeLimiter()

		userRepo := repository.NewUserRepository(database)
		taskRepo := repository.NewTaskRepository(database)

		tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
		authService, err := services.NewAuthService(userRepo, tokenService, cfg.BcryptCost, logger)
		if err != nil {
			return err
		}
		taskService := services.NewTaskService(taskRepo, logger)

		e := httpapi.NewServer(httpapi.NewHandler(authService, taskService), httpapi.ServerOptions{
			Development:      cfg.IsDevelopment(),
			CORSAllowOrigins: cfg.CORSAllowOrigins,
			TrustedProxies:   cfg.TrustedProxies,
			Limiter:          rateLimiter,
			Logger:           logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			logger.WithFields(logrus.Fields{
				"addr": cfg.AppURL,
				"env":  cfg.AppEnv,
			}).Info("HTTP server listening")
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
			return err
		}

		logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func newLimiter(cfg config.Config, logger *logrus.Logger) (limiter.Limiter, func(), error) {
	if cfg.RateLimitBackend != "redis" {
		return limiter.NewMemoryLimiter(cfg.RateLimit, time.Minute), func() {}, nil
	}

	redisClient, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("addr", cfg.RedisAddr).Info("rate limiter counters stored in redis")
	return limiter.NewRedisLimiter(redisClient, cfg.RedisKeyPrefix, cfg.RateLimit, time.Minute), redisClient.Close, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
