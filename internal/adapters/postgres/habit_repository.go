package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

type habitRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

const habitColumns = `id, name, category, frequency, color, is_active, created_at`

func (r *habitRepository) Save(ctx context.Context, habit *domain.Habit) error {
	query := `
		INSERT INTO habits (id, name, category, frequency, color, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		habit.ID,
		habit.Name,
		habit.Category,
		string(habit.Frequency),
		habit.Color,
		habit.IsActive,
		habit.CreatedAt,
	)
	if pgCode(err) == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateHabit, habit.Name)
	}
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.String("name", habit.Name), zap.Error(err))
		return fmt.Errorf("failed to save habit: %w", err)
	}

	r.logger.Debug("Habit inserted", zap.String("id", habit.ID), zap.String("name", habit.Name))
	return nil
}

func (r *habitRepository) FindByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.findOne(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)
}

func (r *habitRepository) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	return r.findOne(ctx, `SELECT `+habitColumns+` FROM habits WHERE lower(name) = lower($1)`, name)
}

func (r *habitRepository) findOne(ctx context.Context, query string, arg any) (*domain.Habit, error) {
	habit, err := scanHabit(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find habit: %w", err)
	}
	return habit, nil
}

func (r *habitRepository) FindAll(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE is_active ORDER BY lower(name)`
	if includeArchived {
		query = `SELECT ` + habitColumns + ` FROM habits ORDER BY lower(name)`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

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

func (r *habitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	query := `
		UPDATE habits
		SET name = $1, category = $2, frequency = $3, color = $4, is_active = $5
		WHERE id = $6
	`
	tag, err := r.pool.Exec(ctx, query,
		habit.Name,
		habit.Category,
		string(habit.Frequency),
		habit.Color,
		habit.IsActive,
		habit.ID,
	)
	if pgCode(err) == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateHabit, habit.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *habitRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	r.logger.Info("Habit deleted", zap.String("id", id))
	return nil
}

func scanHabit(row pgx.Row) (*domain.Habit, error) {
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
