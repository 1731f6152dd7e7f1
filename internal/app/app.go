package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/VishalYadav30301/wishlist-service/internal/cache"
	"github.com/VishalYadav30301/wishlist-service/internal/client"
	"github.com/VishalYadav30301/wishlist-service/internal/config"
	"github.com/VishalYadav30301/wishlist-service/internal/event"
	handler "github.com/VishalYadav30301/wishlist-service/internal/handler/http"
	"github.com/VishalYadav30301/wishlist-service/internal/repository/postgres"
	"github.com/VishalYadav30301/wishlist-service/internal/service"
	"github.com/VishalYadav30301/wishlist-service/migrations"
	"github.com/VishalYadav30301/wishlist-service/pkg/database"
	"github.com/VishalYadav30301/wishlist-service/pkg/health"
	"github.com/VishalYadav30301/wishlist-service/pkg/httpclient"
	pkgkafka "github.com/VishalYadav30301/wishlist-service/pkg/kafka"
	"github.com/VishalYadav30301/wishlist-service/pkg/tracing"
)

// redisConfigFromAddr splits a "host:port" address into a RedisConfig.
func redisConfigFromAddr(addr, password string, db int) (database.RedisConfig, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("split %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("port %q: %w", portStr, err)
	}
	return database.RedisConfig{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       db,
	}, nil
}

// App wires together all dependencies and runs the wishlist service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "wishlist",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPassword,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSLMode,
		MaxConns:        cfg.PostgresMaxConns,
		MinConns:        cfg.PostgresMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "wishlist")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Select the cache backend. Redis is shared across replicas; the in-process
	// backend is per-replica and empties on restart.
	var (
		wishlistCache cache.Cache
		rdb           *redis.Client
	)
	switch cfg.CacheBackend {
	case "redis":
		redisCfg, cfgErr := redisConfigFromAddr(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if cfgErr != nil {
			pool.Close()
			return nil, fmt.Errorf("parse redis address: %w", cfgErr)
		}
		rdb, err = database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		wishlistCache = cache.NewRedis(rdb, cfg.CacheTTL(), logger)
	default:
		wishlistCache = cache.NewMemory(cfg.CacheTTL())
	}
	logger.Info("cache initialized",
		slog.String("backend", cfg.CacheBackend),
		slog.Duration("ttl", cfg.CacheTTL()),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// HTTP clients for downstream services, each behind its own circuit
	// breaker so a product outage does not trip the cart path.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.ClientTimeout(),
		MaxRetries:      cfg.ClientMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})

	productCB := httpclient.DefaultCircuitBreakerConfig("wishlist-product")
	productCB.Timeout = cfg.BreakerTimeout()
	productDoer := httpclient.NewCircuitBreakerClient(baseClient, productCB, logger)

	cartCB := httpclient.DefaultCircuitBreakerConfig("wishlist-cart")
	cartCB.Timeout = cfg.BreakerTimeout()
	cartDoer := httpclient.NewCircuitBreakerClient(baseClient, cartCB, logger)

	productClient := client.NewProductHTTPClient(productDoer, cfg.ProductServiceURL)
	cartClient := client.NewCartHTTPClient(cartDoer, cfg.CartServiceURL)

	// Build the dependency graph.
	repo := postgres.NewWishlistRepository(pool)
	eventProducer := event.NewProducer(producer, logger)
	wishlistService := service.NewWishlistService(
		repo,
		wishlistCache,
		productClient,
		cartClient,
		eventProducer,
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if rdb != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(wishlistService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
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
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client (when the redis cache backend is active)
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
