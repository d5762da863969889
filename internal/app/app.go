package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/DaniAlencarrr/Athletix/internal/auth"
	"github.com/DaniAlencarrr/Athletix/internal/config"
	"github.com/DaniAlencarrr/Athletix/internal/event"
	"github.com/DaniAlencarrr/Athletix/internal/gate"
	handler "github.com/DaniAlencarrr/Athletix/internal/handler/http"
	"github.com/DaniAlencarrr/Athletix/internal/repository/postgres"
	redisrepo "github.com/DaniAlencarrr/Athletix/internal/repository/redis"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	"github.com/DaniAlencarrr/Athletix/migrations"
	"github.com/DaniAlencarrr/Athletix/pkg/breaker"
	"github.com/DaniAlencarrr/Athletix/pkg/database"
	"github.com/DaniAlencarrr/Athletix/pkg/health"
	pkgkafka "github.com/DaniAlencarrr/Athletix/pkg/kafka"
	"github.com/DaniAlencarrr/Athletix/pkg/middleware"
	"github.com/DaniAlencarrr/Athletix/pkg/tracing"
)

// App wires together all dependencies and runs the server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, cfg.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if t := cfg.SlowQueryThreshold(); t > 0 {
		database.SetSlowQueryLogging(t, logger)
	}

	// Redis backs the status cache only; the gate falls through to
	// PostgreSQL when it is down.
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, status cache degraded",
			slog.String("addr", cfg.Redis().Addr()),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	// Kafka is optional; without it domain events are dropped.
	var producer *pkgkafka.Producer
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	legacyKey, err := cfg.LegacyKey()
	if err != nil {
		return nil, err
	}
	var legacy *auth.LegacyCipher
	if legacyKey != nil {
		if legacy, err = auth.NewLegacyCipher(legacyKey); err != nil {
			return nil, fmt.Errorf("legacy credential cipher: %w", err)
		}
	}

	// Build the dependency graph.
	accountRepo := postgres.NewAccountRepository(pool)
	onboardingRepo := postgres.NewOnboardingRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	statusCache := redisrepo.NewStatusCache(rdb, cfg.StatusCacheTTL)
	eventProducer := event.NewProducer(producer, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	verifier := auth.NewVerifier(accountRepo, legacy, logger)
	sessions := service.NewSessionService(accountRepo, verifier, tokens, eventProducer, logger)
	statuses := service.NewStatusLookup(accountRepo, statusCache, breaker.DefaultConfig("onboarding-status"), logger)
	onboarding := service.NewOnboardingService(onboardingRepo, statuses, eventProducer, logger)
	directory := service.NewDirectoryService(directoryRepo)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	var frontend http.Handler
	if cfg.FrontendURL != "" {
		target, err := url.Parse(cfg.FrontendURL)
		if err != nil {
			return nil, fmt.Errorf("parse frontend url: %w", err)
		}
		frontend = handler.NewFrontendProxy(target, logger)
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.ExposedHeaders = append(cors.ExposedHeaders, gate.RefreshedTokenHeader)
	cors.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:  cfg.ServiceName,
		Sessions:     sessions,
		Onboarding:   onboarding,
		Directory:    directory,
		Gate:         gate.New(statuses, cfg.GateLookupTimeout, logger),
		Cookie:       gate.Cookie{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure},
		Health:       healthHandler,
		LoginLimiter: limiter,
		Frontend:     frontend,
		CORS:         cors,

		DirectoryMaxAge:   cfg.DirectoryMaxAge,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		Logger:            logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP server first so
// in-flight requests finish, then tracer, Kafka, Redis and PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.limiter.Close()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
