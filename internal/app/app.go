package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/maxcasase/BDPW-Back-End/internal/auth"
	"github.com/maxcasase/BDPW-Back-End/internal/catalog"
	"github.com/maxcasase/BDPW-Back-End/internal/config"
	"github.com/maxcasase/BDPW-Back-End/internal/event"
	handler "github.com/maxcasase/BDPW-Back-End/internal/handler/http"
	mongorepo "github.com/maxcasase/BDPW-Back-End/internal/repository/mongo"
	"github.com/maxcasase/BDPW-Back-End/internal/repository/postgres"
	"github.com/maxcasase/BDPW-Back-End/internal/service"
	"github.com/maxcasase/BDPW-Back-End/pkg/database"
	"github.com/maxcasase/BDPW-Back-End/pkg/health"
	pkgkafka "github.com/maxcasase/BDPW-Back-End/pkg/kafka"
	"github.com/maxcasase/BDPW-Back-End/pkg/tracing"
)

// App wires together all dependencies and runs the review service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongo          *mongo.Client
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
	cancelRouter   context.CancelFunc
}

// NewApp creates a new application instance, connecting to every backing
// store. Partially opened connections are closed on failure.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.shutdownTracer, err = tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	// MongoDB holds reviews and notifications.
	mongoMetrics := database.NewMongoPoolMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)
	a.mongo, err = database.NewMongoClient(ctx, cfg.Mongo(), mongoMetrics.Monitor(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	db := a.mongo.Database(cfg.MongoDatabase)
	if err = mongorepo.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))

	// PostgreSQL is the read-only user directory.
	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.pool, cfg.ServiceName)
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	scheme := cfg.IdentityScheme()
	reviewRepo := mongorepo.NewReviewRepository(db.Collection(mongorepo.ReviewsCollection))
	notificationRepo := mongorepo.NewNotificationRepository(db.Collection(mongorepo.NotificationsCollection))
	directoryRepo := postgres.NewDirectoryRepository(a.pool, scheme.User)

	albums := catalog.New(catalog.Config{
		BaseURL: cfg.CatalogBaseURL,
		Timeout: cfg.CatalogTimeout,
		Form:    scheme.Item,
	}, logger)

	reviewService := service.NewReviewService(scheme, reviewRepo, directoryRepo, cfg.StoreTimeout, logger).
		WithAlbums(albums)
	notificationService := service.NewNotificationService(scheme, notificationRepo, cfg.StoreTimeout, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("mongo", health.MongoCheck(a.mongo))
	healthHandler.RegisterCritical("postgres", health.PingCheck("postgres", a.pool))

	if cfg.Events() {
		if err = a.initEvents(ctx, reviewService, notificationService, healthHandler); err != nil {
			return nil, err
		}
	} else {
		logger.Info("event publishing and consumption disabled")
	}

	routerCtx, cancelRouter := context.WithCancel(context.Background())
	a.cancelRouter = cancelRouter
	validator := auth.NewValidator(cfg.JWTSecret)
	router := handler.NewRouter(routerCtx, handler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		Reviews:        reviewService,
		Notifications:  notificationService,
		Health:         healthHandler,
		ValidateToken:  validator.Validate,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// initEvents connects Redis and Kafka, attaches the review event producer
// and builds the notification consumer.
func (a *App) initEvents(
	ctx context.Context,
	reviews *service.ReviewService,
	notifications *service.NotificationService,
	h *health.Handler,
) error {
	if a.cfg.RedisAddr != "" {
		var err error
		a.redis, err = database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		h.RegisterCritical("redis", health.RedisCheck(a.redis))
	} else {
		a.logger.Warn("REDIS_ADDR empty, event deduplication is process-local")
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.dlq = pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)
	reviews.WithEvents(event.NewProducer(a.producer, a.logger))

	consumerHandler := event.NewConsumerHandler(notifications, a.logger)
	a.consumer = event.NewNotificationConsumer(
		a.cfg.KafkaBrokers,
		a.cfg.KafkaConsumerGroup,
		consumerHandler,
		a.redis,
		a.cfg.EventIdempotencyTTL,
		a.dlq,
		a.logger,
	)

	// Review writes succeed without Kafka, so the broker only degrades readiness.
	h.RegisterNonCritical("kafka", health.PingCheck("kafka", a.producer))
	a.logger.Info("kafka initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.String("consumer_group", a.cfg.KafkaConsumerGroup),
	)
	return nil
}

// Run starts the HTTP server and the Kafka consumer, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}()
	}

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
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

// close releases every opened resource. Fields left nil by a failed NewApp
// are skipped.
func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.cancelRouter != nil {
		a.cancelRouter()
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
