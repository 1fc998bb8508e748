// Package postgres provides PostgreSQL implementations of the storage ports
// for hosted deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Storage implements ports.Storage on a pgx connection pool.
type Storage struct {
	pool    *pgxpool.Pool
	habits  *habitRepository
	records *recordRepository
	logger  *zap.Logger
}

var _ ports.Storage = (*Storage)(nil)

// New connects to dsn and migrates the schema.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := &Storage{
		pool:    pool,
		habits:  &habitRepository{pool: pool, logger: logger},
		records: &recordRepository{pool: pool, logger: logger},
		logger:  logger,
	}
	if err := s.Migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Habits returns the habit repository.
func (s *Storage) Habits() ports.HabitRepository {
	return s.habits
}

// Records returns the record repository.
func (s *Storage) Records() ports.RecordRepository {
	return s.records
}

// Close releases the pool.
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the database schema.
func (s *Storage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		frequency TEXT NOT NULL DEFAULT 'daily',
		color TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_habits_name ON habits (lower(name));

	CREATE TABLE IF NOT EXISTS habit_records (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		day DATE NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (habit_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_habit_records_day ON habit_records (day);
	`

	if _, err := s.pool.Exec(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
