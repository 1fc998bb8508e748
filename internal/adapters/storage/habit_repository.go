package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// habitRepository implements ports.HabitRepository using SQLite.
type habitRepository struct {
	db *sql.DB
}

// newHabitRepository creates a new habit repository.
func newHabitRepository(db *sql.DB) ports.HabitRepository {
	return &habitRepository{db: db}
}

const habitColumns = `id, name, category, frequency, color, is_active, created_at`

// Save persists a habit to storage.
func (r *habitRepository) Save(ctx context.Context, habit *domain.Habit) error {
	query := `
		INSERT INTO habits (id, name, category, frequency, color, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		habit.ID,
		habit.Name,
		habit.Category,
		string(habit.Frequency),
		habit.Color,
		habit.IsActive,
		habit.CreatedAt,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateHabit, habit.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}

	return nil
}

// FindByID retrieves a habit by its unique identifier.
func (r *habitRepository) FindByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = ?`
	return r.findOne(ctx, query, id)
}

// FindByName retrieves a habit by exact name, ignoring case.
func (r *habitRepository) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE name = ? COLLATE NOCASE`
	return r.findOne(ctx, query, name)
}

func (r *habitRepository) findOne(ctx context.Context, query string, arg any) (*domain.Habit, error) {
	habit, err := scanHabit(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find habit: %w", err)
	}
	return habit, nil
}

// FindAll retrieves habits ordered by name.
func (r *habitRepository) FindAll(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE is_active = 1 ORDER BY name`
	if includeArchived {
		query = `SELECT ` + habitColumns + ` FROM habits ORDER BY name`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	return habits, rows.Err()
}

// Update modifies an existing habit.
func (r *habitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	query := `
		UPDATE habits
		SET name = ?, category = ?, frequency = ?, color = ?, is_active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		habit.Name,
		habit.Category,
		string(habit.Frequency),
		habit.Color,
		habit.IsActive,
		habit.ID,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateHabit, habit.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// Delete removes a habit together with its records.
func (r *habitRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_records WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete habit records: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var habit domain.Habit
	var frequency string

	err := row.Scan(
		&habit.ID,
		&habit.Name,
		&habit.Category,
		&frequency,
		&habit.Color,
		&habit.IsActive,
		&habit.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	habit.Frequency = domain.Frequency(frequency)
	habit.Records = []domain.HabitRecord{}
	return &habit, nil
}
