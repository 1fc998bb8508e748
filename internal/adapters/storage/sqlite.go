// Package storage provides SQLite implementations of the storage ports.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"

	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

const (
	sqliteConstraintForeignKey = 787  // SQLITE_CONSTRAINT_FOREIGNKEY
	sqliteConstraintUnique     = 2067 // SQLITE_CONSTRAINT_UNIQUE
)

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db         *sql.DB
	habitRepo  ports.HabitRepository
	recordRepo ports.RecordRepository
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a new SQLite storage instance.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: pragmas are per connection, and ":memory:" databases
	// are per connection too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	storage := &sqliteStorage{
		db:         db,
		habitRepo:  newHabitRepository(db),
		recordRepo: newRecordRepository(db),
	}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Habits returns the habit repository.
func (s *sqliteStorage) Habits() ports.HabitRepository {
	return s.habitRepo
}

// Records returns the record repository.
func (s *sqliteStorage) Records() ports.RecordRepository {
	return s.recordRepo
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE,
		category TEXT NOT NULL DEFAULT 'general',
		frequency TEXT NOT NULL DEFAULT 'daily',
		color TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_habits_active ON habits(is_active);

	CREATE TABLE IF NOT EXISTS habit_records (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL,
		day TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL,
		UNIQUE (habit_id, day),
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_habit_records_day ON habit_records(day);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return sqliteCode(err) == sqliteConstraintUnique
}

// isForeignKeyError checks if an error is a foreign key violation.
func isForeignKeyError(err error) bool {
	return sqliteCode(err) == sqliteConstraintForeignKey
}

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}
