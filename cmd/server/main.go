package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/account-recovery/config"
	"github.com/ErlanBelekov/account-recovery/internal/email"
	"github.com/ErlanBelekov/account-recovery/internal/health"
	"github.com/ErlanBelekov/account-recovery/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/account-recovery/internal/infrastructure/redisstore"
	ctxlog "github.com/ErlanBelekov/account-recovery/internal/log"
	"github.com/ErlanBelekov/account-recovery/internal/metrics"
	"github.com/ErlanBelekov/account-recovery/internal/ratelimit"
	"github.com/ErlanBelekov/account-recovery/internal/token"
	httptransport "github.com/ErlanBelekov/account-recovery/internal/transport/http"
	"github.com/ErlanBelekov/account-recovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-recovery/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// Redis backs the rate guard and the consumed-token denylist. ENV=local
	// may run without it, on in-process equivalents.
	var redisClient *redis.Client
	var guard ratelimit.Guard
	var denylist token.Denylist
	if cfg.RedisURL != "" {
		redisClient, err = redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		guard = ratelimit.NewRedisGuard(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
		denylist = redisstore.NewDenylist(redisClient)
	} else {
		guard = ratelimit.NewMemoryGuard(cfg.RateLimitMax, cfg.RateLimitWindow)
		denylist = token.NewMemoryDenylist()
	}

	accountRepo := postgres.NewAccountRepository(pool)
	eventRepo := postgres.NewResetEventRepository(pool)

	codec := token.NewCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	dispatcher := email.NewDispatcher(sender, cfg.MailTimeout, logger)

	recoveryUsecase := usecase.NewRecoveryUsecase(
		accountRepo, eventRepo, guard, codec, denylist, dispatcher,
		usecase.RecoveryConfig{
			BaseURL:           cfg.ResetBaseURL,
			TokenTTL:          cfg.TokenTTL,
			MinPasswordLength: cfg.MinPasswordLength,
			BcryptCost:        cfg.BcryptCost,
		},
		logger,
	)
	recoveryHandler := handler.NewRecoveryHandler(recoveryUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, redisClient, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, recoveryHandler, []byte(cfg.TokenSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	// Hourly audit pruning keeps the reset_events table bounded.
	pruner := cron.New()
	_, err = pruner.AddFunc("@hourly", func() {
		pruneCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deleted, err := eventRepo.PruneOlderThan(pruneCtx, time.Now().Add(-cfg.AuditRetention))
		if err != nil {
			logger.Error("prune reset events", "error", err)
			return
		}
		if deleted > 0 {
			logger.Info("pruned reset events", "deleted", deleted)
		}
	})
	if err != nil {
		stop()
		log.Fatalf("cron: %v", err)
	}
	pruner.Start()
	defer pruner.Stop()

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
