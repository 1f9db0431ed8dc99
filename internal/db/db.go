package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bridge-be/internal/config"
	"bridge-be/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// NewDatabase opens and pings a PostgreSQL connection pool.
func NewDatabase(cfg *config.Config) (*sql.DB, error) {
	return newDatabaseWithDriver(cfg, "postgres")
}

func newDatabaseWithDriver(cfg *config.Config, driver string) (*sql.DB, error) {
	db, err := sql.Open(driver, buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.L().Info("database connection established",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName),
	)
	return db, nil
}
