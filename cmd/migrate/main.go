package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"bridge-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	mode := flag.String("mode", "up", "migration mode: up, down or status")
	dir := flag.String("dir", "./migrations", "directory holding *.sql migrations")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		logger.L().Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.L().Fatal("failed to connect db", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, db, *mode, *dir); err != nil {
		logger.L().Error("migration failed", zap.String("mode", *mode), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, db *sql.DB, mode, migrationsDir string) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	slices.Sort(files)

	switch mode {
	case "up":
		return runMigrationsUp(ctx, db, files)
	case "down":
		return runMigrationsDown(ctx, db, files)
	case "status":
		return printStatus(ctx, db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'status')", mode)
	}
}

func isApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// runMigrationsUp applies each pending file in its own transaction so a
// failing statement leaves no partial schema and no version row.
func runMigrationsUp(ctx context.Context, db *sql.DB, files []string) error {
	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		exists, err := isApplied(ctx, db, version)
		if err != nil {
			return err
		}
		if exists {
			logger.L().Debug("skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		upSQL := extractMigrationPart(string(content), "Up")
		if strings.TrimSpace(upSQL) == "" {
			return fmt.Errorf("migration %s has no Up section", version)
		}

		logger.L().Info("applying migration", zap.String("version", version))
		if err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, upSQL); err != nil {
				return fmt.Errorf("migration failed (%s): %w", version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("failed to record migration version: %w", err)
			}
			return nil
		}); err != nil {
			return err
		}
		applied++
	}

	logger.L().Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

func runMigrationsDown(ctx context.Context, db *sql.DB, files []string) error {
	var lastVersion string
	err := db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		logger.L().Warn("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	idx := slices.IndexFunc(files, func(f string) bool { return filepath.Base(f) == lastVersion })
	if idx < 0 {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(files[idx])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", files[idx], err)
	}
	downSQL := extractMigrationPart(string(content), "Down")

	logger.L().Info("rolling back migration", zap.String("version", lastVersion))
	return inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, downSQL); err != nil {
			return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
}

func printStatus(ctx context.Context, db *sql.DB, files []string) error {
	for _, file := range files {
		version := filepath.Base(file)
		exists, err := isApplied(ctx, db, version)
		if err != nil {
			return err
		}
		state := "pending"
		if exists {
			state = "applied"
		}
		fmt.Printf("%-40s %s\n", version, state)
	}
	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// extractMigrationPart returns the lines between "-- +migrate <section>"
// and the next marker.
func extractMigrationPart(content string, section string) string {
	var part strings.Builder
	inPart := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "-- +migrate "+section) {
			inPart = true
			continue
		}
		if inPart && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
