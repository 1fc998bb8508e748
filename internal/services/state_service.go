package services

import (
	"context"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// StateService implements the MCPHabitProvider interface.
type StateService struct {
	habits  *HabitService
	engine  *Engine
	reports *ReportService
	alerts  *AlertService
}

// NewStateService creates a new state service.
func NewStateService(habits *HabitService, engine *Engine, reports *ReportService, alerts *AlertService) *StateService {
	return &StateService{habits: habits, engine: engine, reports: reports, alerts: alerts}
}

// ListHabits implements ports.MCPHabitProvider.
func (s *StateService) ListHabits(ctx context.Context, includeArchived bool) ([]domain.Summary, error) {
	return s.habits.Summaries(ctx, includeArchived)
}

// HabitStatus implements ports.MCPHabitProvider.
func (s *StateService) HabitStatus(ctx context.Context, ref string, days int) (*ports.HabitStatus, error) {
	habit, err := s.habits.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		days = 7
	}

	today := s.engine.Today()
	view := s.engine.View(habit)
	return &ports.HabitStatus{
		Summary: s.engine.Summarize(habit),
		Days:    domain.DayStatuses(view, domain.Trailing(today, days)),
	}, nil
}

// ToggleHabit implements ports.MCPHabitProvider.
func (s *StateService) ToggleHabit(ctx context.Context, ref string, day domain.Day) (domain.ToggleResult, error) {
	habit, err := s.habits.Resolve(ctx, ref)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	return s.engine.ToggleWait(ctx, habit, day), nil
}

// LogHabits implements ports.MCPHabitProvider.
func (s *StateService) LogHabits(ctx context.Context, refs []string, days []domain.Day) ([]domain.ToggleResult, error) {
	habits, err := s.habits.ResolveAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	return s.engine.BulkToggle(ctx, habits, days), nil
}

// Report implements ports.MCPHabitProvider.
func (s *StateService) Report(ctx context.Context, period string) (*domain.Report, error) {
	return s.reports.Report(ctx, ReportRequest{Period: period})
}

// StreakAlerts implements ports.MCPHabitProvider.
func (s *StateService) StreakAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.alerts.StreakAlerts(ctx)
}

// Today implements ports.MCPHabitProvider.
func (s *StateService) Today() domain.Day {
	return s.engine.Today()
}

// Ensure StateService implements MCPHabitProvider.
var _ ports.MCPHabitProvider = (*StateService)(nil)
