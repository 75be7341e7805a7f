package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"creator-performance-ledger/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxConnectAttempts = 6

// InitDB opens the database with retries, tunes the pool and runs migrations.
func InitDB(cfg *Config, lg *logrus.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; ; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{Logger: gormLogger()})
		if err == nil {
			break
		}
		if attempt == maxConnectAttempts {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		sleep := time.Second * time.Duration(1<<attempt)
		lg.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).Warn("failed to connect database")
		time.Sleep(sleep)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(intFromEnv("DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(intFromEnv("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxLifetime(time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second)

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		lg.WithError(err).Warn("db connected but failed to install otelgorm plugin")
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	lg.Info("connected to database")
	return db, nil
}

func gormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}
