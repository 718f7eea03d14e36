package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/talentpulse/server/internal/api"
	"github.com/talentpulse/server/internal/config"
	"github.com/talentpulse/server/internal/domain/users"
	"github.com/talentpulse/server/internal/email"
	"github.com/talentpulse/server/internal/metrics"
	"github.com/talentpulse/server/internal/ratelimit"
	"github.com/talentpulse/server/internal/storage/postgres"
	"github.com/talentpulse/server/internal/storage/redis"
	"github.com/talentpulse/server/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TalentPulse HTTP server",
	Long: `Start the TalentPulse HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Bootstrap an admin account if ADMIN_* env vars are set
- Connect to PostgreSQL and (optionally) Redis
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  talentpulse serve

  # Start on a specific host and port
  talentpulse serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  talentpulse serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting TalentPulse server")

	metrics.Init(Version, GitCommit, BuildDate)

	tracingShutdown, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize tracing")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracingShutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("tracing shutdown error")
			}
		}()
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(poolCtx, cfg.Database.URL)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdmin(bootstrapCtx, pool, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootstrapCancel()

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 10*time.Second)
	cache, err := redis.New(redisCtx, cfg.Redis.URL)
	redisCancel()
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; profile cache and shared rate limiting disabled")
		cache = nil
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	var limiter ratelimit.Limiter
	if cache != nil {
		limiter = ratelimit.NewRedisLimiter(cache.Client)
		logger.Info().Msg("using redis rate limiter")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		defer memLimiter.Stop()
		limiter = memLimiter
		logger.Info().Msg("using in-memory rate limiter")
	}

	emailService, err := email.NewService(cfg.Email, logger)
	if err != nil {
		if cfg.Email.Enabled {
			return fmt.Errorf("email service init: %w", err)
		}
		logger.Warn().Err(err).Msg("email service unavailable; outreach email endpoint disabled")
		emailService = nil
	}

	handler, err := api.NewRouter(cfg, logger, api.Dependencies{
		Pool:      pool,
		Cache:     cache,
		Limiter:   limiter,
		Email:     emailService,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})
	if err != nil {
		return fmt.Errorf("router init: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func bootstrapAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		logger.Debug().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	service := users.NewService(repo.Users(), logger)
	if err := service.EnsureAdmin(ctx, bootstrap.Username, bootstrap.Email, bootstrap.Password); err != nil {
		return err
	}

	// Redact the email outside development to avoid PII in logs.
	if cfg.Environment == "production" {
		logger.Info().Str("username", bootstrap.Username).Msg("admin account ensured")
	} else {
		logger.Info().Str("username", bootstrap.Username).Str("email", bootstrap.Email).Msg("admin account ensured")
	}
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
