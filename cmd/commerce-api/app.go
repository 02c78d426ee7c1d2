package main

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/egannguyen/go-commerce-api/internal/config"
	"github.com/egannguyen/go-commerce-api/internal/logging"
	"github.com/egannguyen/go-commerce-api/internal/messaging"
	"github.com/egannguyen/go-commerce-api/internal/messaging/kafka"
	"github.com/egannguyen/go-commerce-api/internal/repository"
	"github.com/egannguyen/go-commerce-api/internal/repository/memory"
	"github.com/egannguyen/go-commerce-api/internal/repository/postgres"
)

// repositories is one storage backend.
type repositories struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	clients  repository.ClientRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   repository.EventStore
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		users:    postgres.NewUserRepository(db),
		tokens:   postgres.NewTokenRepository(db),
		clients:  postgres.NewClientRepository(db),
		products: postgres.NewProductRepository(db),
		orders:   postgres.NewOrderRepository(db),
		events:   postgres.NewEventStore(db),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		users:    memory.NewUserRepository(store),
		tokens:   memory.NewTokenRepository(store),
		clients:  memory.NewClientRepository(store),
		products: memory.NewProductRepository(store),
		orders:   memory.NewOrderRepository(store),
		events:   memory.NewEventStore(store),
	}
}

// setup loads the configuration and builds the process logger.
func setup(c *cli.Context) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openDatabase connects to Postgres and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := postgres.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newPublisher publishes to Kafka when brokers are configured and to the
// log otherwise.
func newPublisher(cfg *config.Config, logger *log.Logger) (messaging.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, order events are only logged")
		return messaging.NewLogPublisher(logger), nil
	}
	pub, err := kafka.NewKafkaBroker(kafka.Config{
		Brokers:     cfg.KafkaBrokers,
		ClientID:    "commerce-api",
		TopicPrefix: cfg.KafkaTopicPrefix,
	}, kafka.NewLogrusAdapter(logger))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to kafka")
	}
	return pub, nil
}

func closeQuietly(logger log.FieldLogger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.WithError(err).WithField("resource", name).Error("Failed to close")
	}
}
