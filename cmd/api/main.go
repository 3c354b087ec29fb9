// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/reservation-api/internal/admin"
	"github.com/carterperez-dev/templates/reservation-api/internal/auth"
	"github.com/carterperez-dev/templates/reservation-api/internal/config"
	"github.com/carterperez-dev/templates/reservation-api/internal/core"
	"github.com/carterperez-dev/templates/reservation-api/internal/events"
	"github.com/carterperez-dev/templates/reservation-api/internal/health"
	"github.com/carterperez-dev/templates/reservation-api/internal/middleware"
	"github.com/carterperez-dev/templates/reservation-api/internal/reservation"
	"github.com/carterperez-dev/templates/reservation-api/internal/server"
	"github.com/carterperez-dev/templates/reservation-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	if err := core.InitSentry(cfg.Sentry, cfg.App); err != nil {
		logger.Warn("failed to initialize sentry", "error", err)
	}
	defer core.FlushSentry()

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		applied, migErr := db.Migrate(ctx)
		if migErr != nil {
			return migErr
		}
		logger.Info("migrations applied", "versions", applied)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis, cfg.App.Name)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	publisher, err := events.New(cfg.Broker, logger)
	if err != nil {
		logger.Warn("broker unavailable, events disabled", "error", err)
		publisher = events.NoopPublisher{}
	}

	codec, err := auth.NewTokenCodec(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token codec initialized",
		"algorithm", "HS256",
		"access_expiry", cfg.JWT.AccessTokenExpire,
		"refresh_expiry", cfg.JWT.RefreshTokenExpire,
	)

	validate := core.NewValidator()
	hasher := core.NewPasswordHasher(core.DefaultArgon2Params)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userSvc, validate)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, codec, userSvc, hasher, cfg.Auth, logger)
	authHandler := auth.NewHandler(authSvc, validate, auth.CookieConfig{
		Name:   cfg.Auth.RefreshCookieName,
		Path:   cfg.Auth.RefreshCookiePath,
		Secure: cfg.IsProduction(),
	})

	reservationRepo := reservation.NewRepository(db.DB)
	reservationSvc := reservation.NewService(reservationRepo, publisher, logger)
	reservationHandler := reservation.NewHandler(reservationSvc, validate)

	checks := []health.Check{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if amqp, ok := publisher.(*events.AMQPPublisher); ok {
		checks = append(checks, health.Check{Name: "broker", Checker: amqp})
	}
	healthHandler := health.NewHandler(checks...)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		Users:        userSvc.Count,
		Sessions:     authRepo.CountActive,
		Reservations: reservationSvc.Count,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
			BypassFunc: func(r *http.Request) bool {
				switch r.URL.Path {
				case "/healthz", "/livez", "/readyz":
					return true
				}
				return false
			},
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(codec)
	authorize := middleware.Authorizer(userSvc)

	router.Route(cfg.Server.BasePath, func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator, authorize)
		reservationHandler.RegisterRoutes(r, authenticator, authorize)
		adminHandler.RegisterRoutes(r, authenticator, authorize)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := publisher.Close(); err != nil {
		logger.Error("broker close error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
