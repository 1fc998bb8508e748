// Package ports defines the interfaces (driven and driving ports)
// between the habit engine and the infrastructure around it.
package ports

import (
	"context"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// RecordStore is the persistence collaborator the consistency engine talks to.
// This is a driven port (implemented by adapters).
type RecordStore interface {
	// FetchRecords returns every record of a habit in no particular order.
	FetchRecords(ctx context.Context, habitID string) ([]domain.HabitRecord, error)

	// UpsertRecord creates or updates the single record for (habitID, day).
	// A nil notes leaves existing notes untouched.
	UpsertRecord(ctx context.Context, habitID string, day domain.Day, isCompleted bool, notes *string) (*domain.HabitRecord, error)
}

// HabitRepository defines the interface for habit persistence.
// This is a driven port (implemented by adapters).
type HabitRepository interface {
	// Save persists a new habit.
	Save(ctx context.Context, habit *domain.Habit) error

	// FindByID retrieves a habit by its unique identifier.
	FindByID(ctx context.Context, id string) (*domain.Habit, error)

	// FindByName retrieves a habit by exact, case-insensitive name.
	FindByName(ctx context.Context, name string) (*domain.Habit, error)

	// FindAll retrieves habits, archived ones only when includeArchived is set.
	FindAll(ctx context.Context, includeArchived bool) ([]*domain.Habit, error)

	// Update modifies an existing habit.
	Update(ctx context.Context, habit *domain.Habit) error

	// Delete removes a habit and all of its records.
	Delete(ctx context.Context, id string) error
}

// RecordRepository defines the interface for habit record persistence.
// This is a driven port (implemented by adapters).
type RecordRepository interface {
	RecordStore

	// FindRange returns records of every habit whose day lies in [from, to].
	FindRange(ctx context.Context, from, to domain.Day) ([]domain.HabitRecord, error)

	// Delete removes the record for (habitID, day).
	Delete(ctx context.Context, habitID string, day domain.Day) error
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Habits provides access to habit operations.
	Habits() HabitRepository

	// Records provides access to record operations.
	Records() RecordRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
