package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	api "github.com/safeguardhq/safeguard/internal/api/http"
	"github.com/safeguardhq/safeguard/internal/config"
	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	"github.com/safeguardhq/safeguard/internal/logger"
	"github.com/safeguardhq/safeguard/internal/notifier"
	personrepo "github.com/safeguardhq/safeguard/internal/repository/person"
	"github.com/safeguardhq/safeguard/internal/service/watchdog"
	"github.com/safeguardhq/safeguard/internal/version"
)

// Options controls the safeguard-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
	// StateFile specifies the path to persist person records JSON.
	StateFile string
}

// shutdownTimeout bounds the graceful HTTP shutdown on exit.
const shutdownTimeout = 10 * time.Second

// Run starts the HTTP server and blocks until the context is canceled or the
// server stops. Loads configuration first, then wires the store, the
// delivery provider and the watchdog engine.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "safeguard-server")
	ctx = logger.WithKV(ctx, "version", version.Short())

	// Load configuration first to get server settings.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Command line options override config values.
	listenAddress := cfg.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	stateFile := cfg.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	// Initialize the person store for record persistence.
	repo, err := newRepository(ctx, cfg, stateFile)
	if err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}

	sender := notifier.NewCallMeBot(cfg.NotifierBaseURL, cfg.NotifierTimeout)

	// Create the watchdog engine with the configured defaults.
	service := watchdog.NewService(repo, sender, &watchdog.Options{
		DefaultWindow:      domain.Window{Start: cfg.WindowStart, End: cfg.WindowEnd},
		CountryCallingCode: cfg.CountryCallingCode,
	})

	e := newEcho(ctx, service)

	// Optional in-process evaluation trigger. Most deployments leave this
	// off and let an external scheduler hit /api/check-all instead.
	if cfg.CheckInterval > 0 {
		scheduler := startScheduler(ctx, service, cfg.CheckInterval)
		defer scheduler.Stop()
	}

	logger.InfoKV(ctx, "Safeguard server listening",
		"listen_address", listenAddress, "store_backend", cfg.StoreBackend, "state_file", stateFile)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.ErrorKV(ctx, "Shutdown failed", "error", shutdownErr)
		}

		close(done)
	}()

	if err = e.Start(listenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// newRepository builds the person store selected by configuration.
func newRepository(ctx context.Context, cfg *config.Config, stateFile string) (personrepo.Repository, error) {
	if cfg.StoreBackend != "redis" {
		return personrepo.NewFileRepository(stateFile), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return personrepo.NewRedisRepository(client, cfg.Redis.Key), nil
}

// newEcho builds the HTTP server with recovery, request logging and the API routes.
func newEcho(ctx context.Context, service api.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.DebugKV(ctx, "Request handled",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", c.RealIP(),
			)

			return nil
		},
	}))

	api.NewHandler(service).Register(e)

	return e
}

// startScheduler runs the evaluation pass on a fixed interval in-process.
func startScheduler(ctx context.Context, service *watchdog.Service, interval time.Duration) *cron.Cron {
	scheduler := cron.New()

	scheduler.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if _, err := service.RunPass(ctx); err != nil {
			logger.ErrorKV(ctx, "Scheduled evaluation pass failed", "error", err)
		}
	}))

	scheduler.Start()
	logger.InfoKV(ctx, "In-process evaluation trigger enabled", "interval", interval.String())

	return scheduler
}
