package services

import (
	"context"
	"fmt"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// ReportService computes consistency reports across habits.
type ReportService struct {
	habits *HabitService
	engine *Engine
}

// NewReportService creates a new report service.
func NewReportService(habits *HabitService, engine *Engine) *ReportService {
	return &ReportService{habits: habits, engine: engine}
}

// ReportRequest selects the window of a report. When From and To are both
// set they win over Period.
type ReportRequest struct {
	Period          string
	From            *domain.Day
	To              *domain.Day
	IncludeArchived bool
}

// Window resolves the request against today.
func (s *ReportService) Window(req ReportRequest) (domain.Window, error) {
	if req.From != nil || req.To != nil {
		to := s.engine.Today()
		if req.To != nil {
			to = *req.To
		}
		from := to
		if req.From != nil {
			from = *req.From
		}
		return domain.NewWindow(from, to)
	}

	period := req.Period
	if period == "" {
		period = "month"
	}
	n, err := domain.PeriodDays(period)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.Trailing(s.engine.Today(), n), nil
}

// Report builds the leaderboard, category rollup and daily trend.
func (s *ReportService) Report(ctx context.Context, req ReportRequest) (*domain.Report, error) {
	w, err := s.Window(req)
	if err != nil {
		return nil, fmt.Errorf("invalid report window: %w", err)
	}

	habits, err := s.views(ctx, req.IncludeArchived)
	if err != nil {
		return nil, err
	}

	return &domain.Report{
		Window:      w,
		Leaderboard: domain.Leaderboard(habits, w),
		Categories:  domain.CategoryRollup(habits, w),
		Trend:       domain.DailyTrend(habits, w, s.engine.Calendar()),
	}, nil
}

// Heatmap returns per-day statuses of every active habit over w.
func (s *ReportService) Heatmap(ctx context.Context, w domain.Window) (map[string][]domain.DayStatus, []*domain.Habit, error) {
	habits, err := s.views(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string][]domain.DayStatus, len(habits))
	for _, habit := range habits {
		out[habit.ID] = domain.DayStatuses(habit, w)
	}
	return out, habits, nil
}

func (s *ReportService) views(ctx context.Context, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.habits.ListWithRecords(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	views := make([]*domain.Habit, len(habits))
	for i, habit := range habits {
		views[i] = s.engine.View(habit)
	}
	return views, nil
}
