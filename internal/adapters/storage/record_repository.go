package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// recordRepository implements ports.RecordRepository using SQLite.
type recordRepository struct {
	db *sql.DB
}

// newRecordRepository creates a new record repository.
func newRecordRepository(db *sql.DB) ports.RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `id, habit_id, day, is_completed, notes, updated_at`

// FetchRecords returns every record of a habit.
func (r *recordRepository) FetchRecords(ctx context.Context, habitID string) ([]domain.HabitRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM habit_records WHERE habit_id = ?`
	return r.query(ctx, query, habitID)
}

// FindRange returns records of all habits with day in [from, to].
// Days are stored as zero-padded text so lexical order is calendar order.
func (r *recordRepository) FindRange(ctx context.Context, from, to domain.Day) ([]domain.HabitRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM habit_records
		WHERE day >= ? AND day <= ?
		ORDER BY day, habit_id
	`
	return r.query(ctx, query, from, to)
}

// UpsertRecord writes the single record for (habitID, day).
func (r *recordRepository) UpsertRecord(ctx context.Context, habitID string, day domain.Day, isCompleted bool, notes *string) (*domain.HabitRecord, error) {
	query := `
		INSERT INTO habit_records (id, habit_id, day, is_completed, notes, updated_at)
		VALUES (?1, ?2, ?3, ?4, COALESCE(?5, ''), ?6)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			is_completed = excluded.is_completed,
			notes = COALESCE(?5, habit_records.notes),
			updated_at = excluded.updated_at
		RETURNING ` + recordColumns

	rec := domain.NewHabitRecord(habitID, day, isCompleted, "")
	var rawNotes any
	if notes != nil {
		rawNotes = *notes
	}

	saved, err := scanRecord(r.db.QueryRowContext(ctx, query,
		rec.ID,
		habitID,
		day,
		isCompleted,
		rawNotes,
		time.Now(),
	))
	if isForeignKeyError(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrHabitNotFound, habitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert record: %w", err)
	}

	return saved, nil
}

// Delete removes the record for (habitID, day).
func (r *recordRepository) Delete(ctx context.Context, habitID string, day domain.Day) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM habit_records WHERE habit_id = ? AND day = ?`, habitID, day)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) query(ctx context.Context, query string, args ...any) ([]domain.HabitRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []domain.HabitRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

func scanRecord(row rowScanner) (*domain.HabitRecord, error) {
	var rec domain.HabitRecord
	err := row.Scan(
		&rec.ID,
		&rec.HabitID,
		&rec.Date,
		&rec.IsCompleted,
		&rec.Notes,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
