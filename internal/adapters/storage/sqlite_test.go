package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

func newTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func saveHabit(t *testing.T, storage ports.Storage, name string) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(name, "", domain.FrequencyDaily)
	if err != nil {
		t.Fatalf("NewHabit() error = %v", err)
	}
	if err := storage.Habits().Save(context.Background(), habit); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return habit
}

func TestNewMemory(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage == nil {
		t.Error("NewMemory() returned nil storage")
	}
}

func TestNew_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.db")
	storage, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	habit := saveHabit(t, storage, "Read")
	_ = storage.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if _, err := reopened.Habits().FindByID(context.Background(), habit.ID); err != nil {
		t.Errorf("FindByID() after reopen error = %v", err)
	}
}

func TestHabitRepository_SaveAndFind(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Habits()

	habit := saveHabit(t, storage, "Read")

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, habit.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Name != "Read" || found.Category != "general" || found.Frequency != domain.FrequencyDaily {
			t.Errorf("FindByID() = %+v", found)
		}
		if !found.IsActive {
			t.Error("FindByID() returned inactive habit")
		}
	})

	t.Run("find by name ignores case", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "read")
		if err != nil {
			t.Fatalf("FindByName() error = %v", err)
		}
		if found.ID != habit.ID {
			t.Errorf("FindByName() id = %v, want %v", found.ID, habit.ID)
		}
	})

	t.Run("find non-existent", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		if !errors.Is(err, domain.ErrHabitNotFound) {
			t.Errorf("FindByID() error = %v, want ErrHabitNotFound", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup, _ := domain.NewHabit("READ", "", domain.FrequencyDaily)
		err := repo.Save(ctx, dup)
		if !errors.Is(err, domain.ErrDuplicateHabit) {
			t.Errorf("Save() error = %v, want ErrDuplicateHabit", err)
		}
	})
}

func TestHabitRepository_FindAllAndArchive(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Habits()

	saveHabit(t, storage, "Run")
	archived := saveHabit(t, storage, "Meditate")
	archived.Archive()
	if err := repo.Update(ctx, archived); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	active, err := repo.FindAll(ctx, false)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(active) != 1 || active[0].Name != "Run" {
		t.Errorf("FindAll(false) = %v habits", len(active))
	}

	all, _ := repo.FindAll(ctx, true)
	if len(all) != 2 {
		t.Errorf("FindAll(true) returned %d habits, want 2", len(all))
	}
	if all[0].Name != "Meditate" {
		t.Errorf("FindAll() not ordered by name: first = %v", all[0].Name)
	}
}

func TestRecordRepository_UpsertKeepsOneRowPerDay(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	records := storage.Records()
	habit := saveHabit(t, storage, "Read")
	day := domain.NewDay(2024, 1, 14)

	notes := "chapter 3"
	first, err := records.UpsertRecord(ctx, habit.ID, day, true, &notes)
	if err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	if !first.IsCompleted || first.Notes != notes || first.Date != day {
		t.Errorf("UpsertRecord() = %+v", first)
	}

	second, err := records.UpsertRecord(ctx, habit.ID, day, false, nil)
	if err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("UpsertRecord() created a new row: %v != %v", second.ID, first.ID)
	}
	if second.IsCompleted {
		t.Error("UpsertRecord() did not update completion")
	}
	if second.Notes != notes {
		t.Errorf("UpsertRecord() with nil notes changed notes to %q", second.Notes)
	}

	all, err := records.FetchRecords(ctx, habit.ID)
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("FetchRecords() returned %d records, want 1", len(all))
	}
}

func TestRecordRepository_ConcurrentUpserts(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	habit := saveHabit(t, storage, "Read")
	start := domain.NewDay(2024, 1, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.Records().UpsertRecord(ctx, habit.ID, start.AddDays(i%10), true, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("UpsertRecord() error = %v", err)
		}
	}
	all, _ := storage.Records().FetchRecords(ctx, habit.ID)
	if len(all) != 10 {
		t.Errorf("FetchRecords() returned %d records, want 10", len(all))
	}
}

func TestRecordRepository_UnknownHabit(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Records().UpsertRecord(context.Background(), "missing", domain.NewDay(2024, 1, 1), true, nil)
	if !errors.Is(err, domain.ErrHabitNotFound) {
		t.Errorf("UpsertRecord() error = %v, want ErrHabitNotFound", err)
	}
}

func TestRecordRepository_FindRange(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	a := saveHabit(t, storage, "A")
	b := saveHabit(t, storage, "B")

	for _, d := range []domain.Day{domain.NewDay(2024, 1, 9), domain.NewDay(2024, 1, 10), domain.NewDay(2024, 1, 12)} {
		_, _ = storage.Records().UpsertRecord(ctx, a.ID, d, true, nil)
	}
	_, _ = storage.Records().UpsertRecord(ctx, b.ID, domain.NewDay(2024, 1, 11), true, nil)

	got, err := storage.Records().FindRange(ctx, domain.NewDay(2024, 1, 10), domain.NewDay(2024, 1, 11))
	if err != nil {
		t.Fatalf("FindRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindRange() returned %d records, want 2", len(got))
	}
	if got[0].Date != domain.NewDay(2024, 1, 10) || got[1].HabitID != b.ID {
		t.Errorf("FindRange() order = %v, %v", got[0].Date, got[1].Date)
	}
}

func TestHabitRepository_DeleteCascades(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	habit := saveHabit(t, storage, "Read")
	_, _ = storage.Records().UpsertRecord(ctx, habit.ID, domain.NewDay(2024, 1, 1), true, nil)

	if err := storage.Habits().Delete(ctx, habit.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	all, _ := storage.Records().FetchRecords(ctx, habit.ID)
	if len(all) != 0 {
		t.Errorf("records survived habit delete: %d", len(all))
	}
	if err := storage.Habits().Delete(ctx, habit.ID); !errors.Is(err, domain.ErrHabitNotFound) {
		t.Errorf("second Delete() error = %v, want ErrHabitNotFound", err)
	}
}

func TestRecordRepository_Delete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	habit := saveHabit(t, storage, "Read")
	day := domain.NewDay(2024, 1, 1)
	_, _ = storage.Records().UpsertRecord(ctx, habit.ID, day, true, nil)

	if err := storage.Records().Delete(ctx, habit.ID, day); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := storage.Records().Delete(ctx, habit.ID, day); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("Delete() error = %v, want ErrRecordNotFound", err)
	}
}
