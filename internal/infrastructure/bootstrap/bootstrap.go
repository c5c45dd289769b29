package bootstrap

import (
	"context"
	"fmt"

	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/internal/infrastructure/config"
	"invoice-reconciliation-service/internal/infrastructure/persistence"
	repo "invoice-reconciliation-service/internal/interface/repository"
	"invoice-reconciliation-service/internal/usecase"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// App holds the wired usecases and the connections they depend on
type App struct {
	Reconciliation *usecase.ReconciliationService
	Dispatcher     *usecase.FilterDispatcher
	Exporter       *usecase.ExportService
	Metrics        *metrics.Metrics

	db          *gorm.DB
	mongoClient *mongo.Client
	redisClient *redis.Client
	amqpConn    *amqp.Connection
	logger      logger.Logger
}

// New connects to the configured backends and wires the usecases.
// PostgreSQL is required. MongoDB, Redis and RabbitMQ are optional and
// fall back to no-op or in-process implementations when unset or unreachable.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, reg prometheus.Registerer) (*App, error) {
	app := &App{logger: log}

	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgresDB(cfg.PostgresDSN, persistence.PostgresOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, err
	}
	app.db = db

	if cfg.AutoMigrate {
		log.Info("Running database migrations")
		if err := repo.AutoMigrate(db); err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	var runRepo repository.RebuildRunRepository = repo.NoopRebuildRunRepository{}
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Warn("MongoDB unavailable, rebuild runs will not be recorded", "error", err)
		} else {
			app.mongoClient = client
			runRepo = repo.NewMongoRebuildRunRepository(persistence.GetDatabase(client, cfg.MongoDB))
		}
	}

	locker := repo.NewLocalRebuildLocker()
	if cfg.RedisAddr != "" {
		log.Info("Connecting to Redis", "addr", cfg.RedisAddr)
		client, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis unavailable, using in-process rebuild lock", "error", err)
		} else {
			app.redisClient = client
			locker = repo.NewRedisRebuildLocker(client, cfg.RebuildLockTTL, log)
		}
	}

	var publisher repository.RebuildEventPublisher = repo.NoopRebuildEventPublisher{}
	if cfg.AMQPURL != "" {
		log.Info("Connecting to RabbitMQ")
		conn, err := persistence.NewAMQPConnection(cfg.AMQPURL)
		if err != nil {
			log.Warn("RabbitMQ unavailable, rebuild events will not be published", "error", err)
		} else {
			app.amqpConn = conn
			publisher = repo.NewAMQPRebuildEventPublisher(conn, cfg.RebuildEventQueue, log)
		}
	}

	airRepo := repo.NewGormAirInvoiceRepository(db)
	cateringRepo := repo.NewGormCateringInvoiceRepository(db)
	reconciliationRepo := repo.NewGormReconciliationRepository(db, cfg.InsertBatchSize)

	app.Metrics = metrics.NewMetrics(cfg.MetricsNamespace, reg)

	loader := usecase.NewSnapshotLoader(airRepo, cateringRepo, log)
	engine := usecase.NewMatchingEngine(loader, log)
	calculator := usecase.NewDiscrepancyCalculator(reconciliationRepo, log)

	app.Reconciliation = usecase.NewReconciliationService(
		reconciliationRepo,
		runRepo,
		publisher,
		locker,
		engine,
		calculator,
		app.Metrics,
		log,
	)
	app.Dispatcher = usecase.NewFilterDispatcher(reconciliationRepo, app.Metrics, log)
	app.Exporter = usecase.NewExportService(reconciliationRepo, cfg.ExportBatchSize, log)

	return app, nil
}

// Close releases every open connection
func (a *App) Close(ctx context.Context) {
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("RabbitMQ close error", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Redis close error", "error", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Error("MongoDB disconnect error", "error", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
