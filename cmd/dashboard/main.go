package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resto-dashboard/internal/config"
	"github.com/noah-isme/resto-dashboard/internal/database"
	"github.com/noah-isme/resto-dashboard/internal/handler"
	"github.com/noah-isme/resto-dashboard/internal/middleware"
	"github.com/noah-isme/resto-dashboard/internal/observability"
	"github.com/noah-isme/resto-dashboard/internal/router"
	"github.com/noah-isme/resto-dashboard/internal/service"
	"github.com/noah-isme/resto-dashboard/internal/session"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	storage, redisClient, err := sessionStorage(cfg)
	if err != nil {
		log.Fatalf("failed to prepare session storage: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	recorder := observability.NewRecorder()

	sessions := session.NewManager(storage, logger)
	sessions.Subscribe(func(s session.Session) {
		if s.Authenticated() {
			recorder.ObserveSessionEvent("login")
			return
		}
		recorder.ObserveSessionEvent("logout")
	})
	if _, err := sessions.Restore(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("could not restore previous session")
	}

	client, err := restoapi.New(restoapi.Config{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.BackendTimeout,
		RequestID: middleware.CorrelationIDFromContext,
		Observer:  recorder,
	}, restoapi.TokenFunc(sessions.Token), func(ctx context.Context) {
		if err := sessions.Logout(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to clear rejected session")
		}
	}, logger)
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(client, sessions, validate, logger)
	dashboardService := service.NewDashboardService(client, sessions, validate, service.DashboardOptions{
		RangeDays:       cfg.DashboardRangeDays,
		OrdersPerPage:   cfg.OrdersPerPage,
		TopLimit:        cfg.TopRestaurantsLimit,
		ValidateFilters: cfg.ValidateFilters,
		Observer:        recorder,
	}, logger)

	authHandler := handler.NewAuthHandler(authService, middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow), logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv != "production"})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		Sessions:         sessions,
		Metrics:          true,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, dashboardService)
}

func sessionStorage(cfg config.Config) (session.Storage, *redis.Client, error) {
	switch cfg.SessionStorage {
	case config.SessionStorageRedis:
		client, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStorage(client, cfg.SessionKey, cfg.SessionTTL), client, nil
	case config.SessionStorageMemory:
		return session.NewMemoryStorage(""), nil, nil
	default:
		return session.NewFileStorage(cfg.SessionFile), nil, nil
	}
}

func waitForShutdown(app *fiber.App, dashboard service.DashboardService) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	dashboard.Close()

	log.Println("server stopped")
}
