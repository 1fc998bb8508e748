package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

type recordRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

const recordColumns = `id, habit_id, day, is_completed, notes, updated_at`

func (r *recordRepository) FetchRecords(ctx context.Context, habitID string) ([]domain.HabitRecord, error) {
	return r.query(ctx, `SELECT `+recordColumns+` FROM habit_records WHERE habit_id = $1`, habitID)
}

func (r *recordRepository) FindRange(ctx context.Context, from, to domain.Day) ([]domain.HabitRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM habit_records
		WHERE day BETWEEN $1::date AND $2::date
		ORDER BY day, habit_id
	`
	return r.query(ctx, query, from.String(), to.String())
}

func (r *recordRepository) UpsertRecord(ctx context.Context, habitID string, day domain.Day, isCompleted bool, notes *string) (*domain.HabitRecord, error) {
	query := `
		INSERT INTO habit_records (id, habit_id, day, is_completed, notes, updated_at)
		VALUES ($1, $2, $3::date, $4, COALESCE($5, ''), $6)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			notes = COALESCE($5, habit_records.notes),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + recordColumns

	rec := domain.NewHabitRecord(habitID, day, isCompleted, "")
	saved, err := scanRecord(r.pool.QueryRow(ctx, query,
		rec.ID,
		habitID,
		day.String(),
		isCompleted,
		notes,
		time.Now(),
	))
	if pgCode(err) == pgForeignKeyViolation {
		return nil, fmt.Errorf("%w: %s", domain.ErrHabitNotFound, habitID)
	}
	if err != nil {
		r.logger.Error("Failed to upsert record",
			zap.String("habit_id", habitID),
			zap.Stringer("day", day),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upsert record: %w", err)
	}
	return saved, nil
}

func (r *recordRepository) Delete(ctx context.Context, habitID string, day domain.Day) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM habit_records WHERE habit_id = $1 AND day = $2::date`, habitID, day.String())
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepository) query(ctx context.Context, query string, args ...any) ([]domain.HabitRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

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

// scanRecord reads a DATE column as UTC midnight, so DayOf recovers the stored day.
func scanRecord(row pgx.Row) (*domain.HabitRecord, error) {
	var rec domain.HabitRecord
	var day time.Time
	err := row.Scan(
		&rec.ID,
		&rec.HabitID,
		&day,
		&rec.IsCompleted,
		&rec.Notes,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Date = domain.DayOf(day)
	return &rec, nil
}
