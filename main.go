package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"lavanderia/internal/notifications"
	"lavanderia/internal/reports"
	"lavanderia/internal/repositories"
	"lavanderia/internal/server"
	"lavanderia/internal/services"
	"lavanderia/pkg/cache"
	"lavanderia/pkg/config"
	"lavanderia/pkg/database"
	"lavanderia/pkg/logger"
	"lavanderia/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	appLogger := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// --- Database ---
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to open database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get database handle")
	}
	defer sqlDB.Close()

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	serviceRepo := repositories.NewGORMServiceRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	checks := map[string]server.HealthCheck{
		"database": sqlDB.Ping,
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient

		notifier := notifications.NewNotifier(appLogger)
		if err := mqClient.ConsumeOrderEvents(notifier.HandleDelivery); err != nil {
			log.Error().Err(err).Msg("failed to start order event consumer")
		}
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are disabled")
	}

	// --- Redis report cache (optional) ---
	var reportCache services.ReportCache
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("report cache disabled")
		} else {
			defer redisCache.Close()
			reportCache = redisCache
			checks["redis"] = func() error { return redisCache.Ping(context.Background()) }
		}
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	orderService := services.NewOrderService(orderRepo, serviceRepo, userRepo, publisher)
	catalogService := services.NewCatalogService(serviceRepo)
	userService := services.NewUserService(userRepo)
	reportService := services.NewReportService(orderRepo, userRepo, serviceRepo, reportCache, reports.Placeholders{
		Name:  cfg.Reports.UnknownName,
		Email: cfg.Reports.UnknownEmail,
	})

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(seedCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to seed administrator")
	}
	cancelSeed()

	// --- HTTP ---
	app := server.New(server.Deps{
		Auth:      authService,
		Orders:    orderService,
		Catalog:   catalogService,
		Users:     userService,
		Reports:   reportService,
		Checks:    checks,
		AccessLog: true,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting server")
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
