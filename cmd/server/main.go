package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"caixapos/internal/config"
	"caixapos/internal/infra"
	"caixapos/internal/realtime"
	"caixapos/internal/repository"
	"caixapos/internal/router"
	"caixapos/internal/service"
	"caixapos/internal/worker"
)

// @title CaixaPOS API
// @version 1.0
// @description Backoffice de pedidos, caixa e fidelidade para lojas de alimentação.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Realtime feed: hub fans events out to websocket panels, the Redis
	// bridge carries events between API instances.
	hub := realtime.NewHub()
	go hub.Run(ctx)
	feed := realtime.NewRedisFeed(rdb)
	go feed.Run(ctx, hub)

	// Background alert delivery.
	queue := worker.NewQueue(rdb)
	notifier := infra.NewWebhookNotifier(cfg.AlertWebhookURL)
	pool := worker.NewPool(rdb, notifier, infra.CircuitBreakerConfig{
		FailureThreshold: cfg.AlertCBFailures,
		SuccessThreshold: cfg.AlertCBSuccesses,
		OpenTimeout:      time.Duration(cfg.AlertCBOpenSeconds) * time.Second,
	}, cfg.WorkerPoolSize)
	pool.Start(ctx)

	orderRepo := repository.NewOrderRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)

	summarySvc := service.NewSummaryService()
	authSvc := service.NewAuthService(userRepo, cfg)
	orderSvc := service.NewOrderService(orderRepo, loyaltyRepo, settingsRepo, feed, queue)
	caixaSvc := service.NewCaixaService(caixaRepo, orderRepo, settingsRepo, summarySvc, queue)
	loyaltySvc := service.NewLoyaltyService(loyaltyRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)

	engine := router.New(cfg, db, rdb, hub, authSvc, orderSvc, caixaSvc, loyaltySvc, settingsSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("bye")
}
