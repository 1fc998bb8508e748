package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// HabitService handles habit lifecycle use cases.
type HabitService struct {
	storage ports.Storage
	engine  *Engine
	logger  *zap.Logger
}

// NewHabitService creates a new habit service.
func NewHabitService(storage ports.Storage, engine *Engine, logger *zap.Logger) *HabitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitService{storage: storage, engine: engine, logger: logger}
}

// AddHabitRequest contains the data needed to create a new habit.
type AddHabitRequest struct {
	Name      string
	Category  string
	Frequency string
	Color     string
}

// AddHabit creates a new habit.
func (s *HabitService) AddHabit(ctx context.Context, req AddHabitRequest) (*domain.Habit, error) {
	freq, err := domain.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, fmt.Errorf("invalid habit: %w", err)
	}
	habit, err := domain.NewHabit(req.Name, strings.TrimSpace(req.Category), freq)
	if err != nil {
		return nil, fmt.Errorf("invalid habit: %w", err)
	}
	habit.Color = req.Color

	if err := s.storage.Habits().Save(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to save habit: %w", err)
	}

	s.logger.Info("habit created",
		zap.String("id", habit.ID),
		zap.String("name", habit.Name),
		zap.String("frequency", string(habit.Frequency)),
	)
	return habit, nil
}

// ListHabits returns habits without records.
func (s *HabitService) ListHabits(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.storage.Habits().FindAll(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// ListWithRecords returns habits with their records loaded.
func (s *HabitService) ListWithRecords(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.ListHabits(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	for _, habit := range habits {
		if err := s.engine.Load(ctx, habit); err != nil {
			return nil, err
		}
	}
	return habits, nil
}

// Resolve finds a habit by ID, unique ID prefix, exact name or fuzzy name,
// in that order, and loads its records.
func (s *HabitService) Resolve(ctx context.Context, ref string) (*domain.Habit, error) {
	habit, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Load(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// ResolveAll resolves several references, failing on the first miss.
func (s *HabitService) ResolveAll(ctx context.Context, refs []string) ([]*domain.Habit, error) {
	habits := make([]*domain.Habit, 0, len(refs))
	for _, ref := range refs {
		habit, err := s.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, nil
}

func (s *HabitService) resolve(ctx context.Context, ref string) (*domain.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrEmptyHabitName
	}

	habit, err := s.storage.Habits().FindByID(ctx, ref)
	if err == nil {
		return habit, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	habit, err = s.storage.Habits().FindByName(ctx, ref)
	if err == nil {
		return habit, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	all, err := s.storage.Habits().FindAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	var byPrefix []*domain.Habit
	for _, h := range all {
		if len(ref) >= 4 && strings.HasPrefix(h.ID, ref) {
			byPrefix = append(byPrefix, h)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}

	matches := s.Search(all, ref)
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %q", domain.ErrHabitNotFound, ref)
	case len(matches) == 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, fmt.Errorf("%w: %q matches %s", domain.ErrAmbiguousHabit, ref, strings.Join(names, ", "))
	}
}

// Search does a fuzzy search over habit names, best match first.
func (s *HabitService) Search(habits []*domain.Habit, query string) []*domain.Habit {
	names := make([]string, len(habits))
	for i, habit := range habits {
		names[i] = habit.Name
	}

	var result []*domain.Habit
	for _, match := range fuzzy.Find(query, names) {
		if match.Score > 0 {
			result = append(result, habits[match.Index])
		}
	}
	return result
}

// ArchiveHabit deactivates a habit; its records stay.
func (s *HabitService) ArchiveHabit(ctx context.Context, ref string) (*domain.Habit, error) {
	habit, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	habit.Archive()
	if err := s.storage.Habits().Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to archive habit: %w", err)
	}
	s.logger.Info("habit archived", zap.String("id", habit.ID), zap.String("name", habit.Name))
	return habit, nil
}

// DeleteHabit removes a habit and its records.
func (s *HabitService) DeleteHabit(ctx context.Context, ref string) (*domain.Habit, error) {
	habit, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Habits().Delete(ctx, habit.ID); err != nil {
		return nil, fmt.Errorf("failed to delete habit: %w", err)
	}
	s.engine.Overlay().Forget(habit.ID, s.engine.Overlay().Mark())
	s.logger.Info("habit deleted", zap.String("id", habit.ID), zap.String("name", habit.Name))
	return habit, nil
}

// Summaries returns a Summary per habit as of today, optimistic values included.
func (s *HabitService) Summaries(ctx context.Context, includeArchived bool) ([]domain.Summary, error) {
	habits, err := s.ListWithRecords(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Summary, 0, len(habits))
	for _, habit := range habits {
		out = append(out, s.engine.Summarize(habit))
	}
	return out, nil
}
