// Package app wires together all dependencies and runs the service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fairlane/careerfair/internal/auth"
	"github.com/fairlane/careerfair/internal/config"
	"github.com/fairlane/careerfair/internal/engine"
	esengine "github.com/fairlane/careerfair/internal/engine/elasticsearch"
	"github.com/fairlane/careerfair/internal/engine/memory"
	"github.com/fairlane/careerfair/internal/event"
	handler "github.com/fairlane/careerfair/internal/handler/http"
	"github.com/fairlane/careerfair/internal/repository/postgres"
	redisrepo "github.com/fairlane/careerfair/internal/repository/redis"
	"github.com/fairlane/careerfair/internal/service"
	"github.com/fairlane/careerfair/internal/stream"
	"github.com/fairlane/careerfair/migrations"
	"github.com/fairlane/careerfair/pkg/database"
	"github.com/fairlane/careerfair/pkg/health"
	pkgkafka "github.com/fairlane/careerfair/pkg/kafka"
	"github.com/fairlane/careerfair/pkg/middleware"
	"github.com/fairlane/careerfair/pkg/tracing"
)

const (
	accessTokenExpiry = 24 * time.Hour
	summaryCacheTTL   = 5 * time.Minute

	// Reconnect delay bounds for the change feed listener.
	notifierBaseBackoff = time.Second
	notifierMaxBackoff  = 30 * time.Second
)

// App wires together all dependencies and runs the career fair service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *pkgkafka.Producer
	consumers   []*pkgkafka.Consumer
	hub         *stream.Hub
	notifierDSN string
	httpServer  *http.Server

	shutdownTracing func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Tracing.
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "careerfair",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TraceSampleRate,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Postgres.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPassword
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB

	redisClient, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// Search engine.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case config.EngineElasticsearch:
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = memory.New()
		logger.Info("in-memory search engine initialized")
	}

	// Repositories and caches.
	reviewRepo := postgres.NewReviewRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	summaryCache := redisrepo.NewSummaryCache(redisClient, summaryCacheTTL)

	// Kafka producer and review event publisher.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	eventProducer := event.NewProducer(producer, logger)

	// Services.
	reviewService := service.NewReviewService(reviewRepo, summaryCache, eventProducer, logger)
	searchService := service.NewSearchService(eng, reviewRepo, logger)
	profileService := service.NewProfileService(profileRepo, logger)
	companyService := service.NewCompanyService(companyRepo, logger)
	matchService := service.NewMatchService(profileRepo, companyRepo, logger)

	// Populate the search index from the database before serving traffic.
	if count, err := searchService.Reindex(ctx); err != nil {
		logger.Warn("startup reindex failed, search degrades to database fallback",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("startup reindex complete", slog.Int("reviews", count))
	}

	// Kafka consumers keeping the index in sync.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaConsumersOff {
		logger.Info("kafka consumers disabled")
	} else {
		eventConsumer := event.NewConsumer(eng, logger)
		topics := []string{
			event.TopicReviewCreated,
			event.TopicReviewUpdated,
			event.TopicReviewDeleted,
		}
		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Live review stream.
	hub := stream.NewHub()

	// Auth.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, accessTokenExpiry)
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Reviews:        reviewService,
		Search:         searchService,
		Profiles:       profileService,
		Companies:      companyService,
		Matches:        matchService,
		Hub:            hub,
		Health:         healthHandler,
		TokenValidator: tokenValidator,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout must stay disabled; SSE connections outlive any
		// sane value. Non-stream routes are bounded by chi's Timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		producer:        producer,
		consumers:       consumers,
		hub:             hub,
		notifierDSN:     pgCfg.DSN(),
		httpServer:      httpServer,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run starts the HTTP server, Kafka consumers, and the change feed listener,
// blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2+len(a.consumers))

	for _, c := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}(c)
	}

	go a.runNotifier(ctx)

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

// runNotifier keeps a change feed listener alive. Each listener failure is
// terminal for connected stream subscribers; reconnecting serves only new
// subscribers, so the restart loop backs off without bound on attempts.
func (a *App) runNotifier(ctx context.Context) {
	backoff := notifierBaseBackoff

	for {
		notifier := stream.NewNotifier(a.notifierDSN, a.hub, a.logger)

		start := time.Now()
		err := notifier.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("listener exited unexpectedly")
		}

		// A listener that survived a while gets a fresh backoff window.
		if time.Since(start) > time.Minute {
			backoff = notifierBaseBackoff
		}

		a.logger.Error("change feed listener died, restarting",
			slog.String("error", err.Error()),
			slog.Duration("backoff", backoff),
		)
		stream.NotifierRestarts.Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > notifierMaxBackoff {
			backoff = notifierMaxBackoff
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	if err := a.shutdownTracing(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
