package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/migrations"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/database"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	pkgredis "github.com/theoboldt/juvem-sub001/pkg/redis"
)

// OpenRepositories returns the repositories selected by cfg.Driver. The
// returned database is nil for the memory driver.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*repository.Repositories, *database.PostgresDB, error) {
	if cfg.Driver == "memory" {
		log.Warn("Using in-memory repositories, data is lost on restart")
		return repository.NewMemoryRepositories(), nil, nil
	}

	if cfg.AutoMigrate {
		result, err := database.RunMigrations(migrations.FS, ".", cfg.URL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database schema ready",
			zap.Uint("version", result.Version),
			zap.Bool("applied", result.Applied),
		)
	}

	db, err := database.NewPostgres(ctx, database.FromConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return repository.NewPostgresRepositories(db.Pool()), db, nil
}

// OpenRedis connects to Redis when it is enabled and returns nil otherwise
func OpenRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*pkgredis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	return client, nil
}

// OpenPublisher connects the Kafka producer when it is enabled and falls back
// to a publisher that drops events otherwise
func OpenPublisher(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger) (messaging.Publisher, error) {
	if !cfg.Enabled {
		return messaging.NewNoopPublisher(), nil
	}
	publisher, err := messaging.NewKafkaPublisher(ctx, messaging.KafkaConfig{
		Brokers:  cfg.Brokers,
		ClientID: cfg.ClientID,
		Topic:    cfg.Topic,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to Kafka", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return publisher, nil
}
