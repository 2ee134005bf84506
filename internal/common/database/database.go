// Package database wires up the GORM/Postgres and go-redis/v8 clients
// shared by the server and batch driver.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/twoechelon/alns-solver/internal/common/logging"
	"github.com/twoechelon/alns-solver/pkg/models"
)

// SlowQueryThreshold is the duration above which a query is logged as
// slow by the SlowQueryLogger installed in Connect.
const SlowQueryThreshold = 100 * time.Millisecond

// Connect opens a GORM connection to Postgres and runs the auto-migration
// for the optimization-run model. Queries are logged through log, which
// may be nil to fall back to GORM's default logger (used by callers that
// have not yet constructed a logging.Logger, e.g. tests).
func Connect(databaseURL string, log *logging.Logger) (*gorm.DB, error) {
	var dbLogger gormlogger.Interface
	if log != nil {
		dbLogger = logging.NewSlowQueryLogger(log, SlowQueryThreshold)
	} else {
		dbLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.OptimizationRun{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

// Close releases the underlying SQL connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ConnectRedis opens a go-redis/v8 client from a redis:// URL and verifies
// connectivity with a PING.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
