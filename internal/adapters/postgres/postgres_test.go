package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// newTestStorage connects to LIFE_TEST_POSTGRES_DSN or skips.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("LIFE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LIFE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `TRUNCATE habit_records, habits`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgres_HabitLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	habit, err := domain.NewHabit("Read", "mind", domain.FrequencyDaily)
	require.NoError(t, err)
	require.NoError(t, s.Habits().Save(ctx, habit))

	dup, _ := domain.NewHabit("read", "mind", domain.FrequencyDaily)
	assert.True(t, errors.Is(s.Habits().Save(ctx, dup), domain.ErrDuplicateHabit))

	found, err := s.Habits().FindByName(ctx, "READ")
	require.NoError(t, err)
	assert.Equal(t, habit.ID, found.ID)

	require.NoError(t, s.Habits().Delete(ctx, habit.ID))
	_, err = s.Habits().FindByID(ctx, habit.ID)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestPostgres_UpsertRecord(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	habit, _ := domain.NewHabit("Run", "body", domain.FrequencyDaily)
	require.NoError(t, s.Habits().Save(ctx, habit))
	day := domain.NewDay(2024, 1, 14)

	first, err := s.Records().UpsertRecord(ctx, habit.ID, day, true, nil)
	require.NoError(t, err)
	assert.Equal(t, day, first.Date)

	second, err := s.Records().UpsertRecord(ctx, habit.ID, day, false, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsCompleted)

	records, err := s.Records().FetchRecords(ctx, habit.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = s.Records().UpsertRecord(ctx, "missing", day, true, nil)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}
