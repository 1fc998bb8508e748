package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// Mock implementations for testing interfaces.

type mockRecordStore struct {
	records map[string][]domain.HabitRecord
}

func (m *mockRecordStore) FetchRecords(ctx context.Context, habitID string) ([]domain.HabitRecord, error) {
	return m.records[habitID], nil
}

func (m *mockRecordStore) UpsertRecord(ctx context.Context, habitID string, day domain.Day, isCompleted bool, notes *string) (*domain.HabitRecord, error) {
	records := m.records[habitID]
	for i := range records {
		if records[i].Date == day {
			records[i].IsCompleted = isCompleted
			if notes != nil {
				records[i].Notes = *notes
			}
			rec := records[i]
			return &rec, nil
		}
	}

	rec := domain.NewHabitRecord(habitID, day, isCompleted, "")
	if notes != nil {
		rec.Notes = *notes
	}
	m.records[habitID] = append(records, rec)
	return &rec, nil
}

type mockHabitRepository struct {
	habits map[string]*domain.Habit
}

func (m *mockHabitRepository) Save(ctx context.Context, habit *domain.Habit) error {
	m.habits[habit.ID] = habit
	return nil
}

func (m *mockHabitRepository) FindByID(ctx context.Context, id string) (*domain.Habit, error) {
	habit, ok := m.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (m *mockHabitRepository) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	for _, habit := range m.habits {
		if habit.Name == name {
			return habit, nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

func (m *mockHabitRepository) FindAll(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	var result []*domain.Habit
	for _, habit := range m.habits {
		if includeArchived || habit.IsActive {
			result = append(result, habit)
		}
	}
	return result, nil
}

func (m *mockHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	m.habits[habit.ID] = habit
	return nil
}

func (m *mockHabitRepository) Delete(ctx context.Context, id string) error {
	delete(m.habits, id)
	return nil
}

var (
	_ RecordStore     = (*mockRecordStore)(nil)
	_ HabitRepository = (*mockHabitRepository)(nil)
)

func TestMockHabitRepository(t *testing.T) {
	repo := &mockHabitRepository{habits: make(map[string]*domain.Habit)}
	ctx := context.Background()

	t.Run("save and find habit", func(t *testing.T) {
		habit, _ := domain.NewHabit("Read", "mind", domain.FrequencyDaily)
		if err := repo.Save(ctx, habit); err != nil {
			t.Errorf("Save() error = %v", err)
		}

		found, err := repo.FindByID(ctx, habit.ID)
		if err != nil {
			t.Errorf("FindByID() error = %v", err)
		}
		if found.Name != habit.Name {
			t.Errorf("Found habit name = %v, want %v", found.Name, habit.Name)
		}
	})

	t.Run("find non-existent habit", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "non-existent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("archived habits are hidden by default", func(t *testing.T) {
		habit, _ := domain.NewHabit("Run", "body", domain.FrequencyDaily)
		habit.Archive()
		_ = repo.Save(ctx, habit)

		active, _ := repo.FindAll(ctx, false)
		all, _ := repo.FindAll(ctx, true)
		if len(active) != 1 || len(all) != 2 {
			t.Errorf("FindAll() active = %d, all = %d, want 1 and 2", len(active), len(all))
		}
	})
}

func TestMockRecordStore_UpsertKeepsOneRecordPerDay(t *testing.T) {
	store := &mockRecordStore{records: make(map[string][]domain.HabitRecord)}
	ctx := context.Background()
	day := domain.NewDay(2024, 1, 14)

	if _, err := store.UpsertRecord(ctx, "h1", day, true, nil); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	rec, err := store.UpsertRecord(ctx, "h1", day, false, nil)
	if err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	if rec.IsCompleted {
		t.Error("UpsertRecord() did not update existing record")
	}

	records, _ := store.FetchRecords(ctx, "h1")
	if len(records) != 1 {
		t.Errorf("FetchRecords() returned %d records, want 1", len(records))
	}
}
