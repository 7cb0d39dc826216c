package database

import (
	"context"
	"fmt"
	"time"

	"beatsbook/internal/shared/config"
	"beatsbook/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// DB is the global database instance
	DB *gorm.DB

	// RedisClient is the global Redis client
	RedisClient *redis.Client
)

// Connect establishes the Postgres connection and configures the pool.
func Connect(cfg *config.Config) error {
	var gormLogLevel gormlogger.LogLevel
	if cfg.IsProduction() {
		gormLogLevel = gormlogger.Error
	} else {
		gormLogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	logger.GetDefault().Info("database connection established",
		"host", cfg.Database.Host,
		"database", cfg.Database.Name,
	)
	return nil
}

// ConnectRedis establishes the Redis connection used for caching and
// rate limiting.
func ConnectRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	RedisClient = client
	logger.GetDefault().Info("redis connection established", "addr", cfg.Redis.Addr)
	return nil
}

// Close closes the database and Redis connections.
func Close() error {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis connection: %w", err)
		}
	}
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}
	return nil
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// GetRedisClient returns the global Redis client
func GetRedisClient() *redis.Client {
	return RedisClient
}
