package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// AlertService finds streaks that break tonight and optionally notifies.
type AlertService struct {
	habits   *HabitService
	engine   *Engine
	notifier ports.Notifier
	logger   *zap.Logger
}

// NewAlertService creates a new alert service. notifier may be nil.
func NewAlertService(habits *HabitService, engine *Engine, notifier ports.Notifier, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{habits: habits, engine: engine, notifier: notifier, logger: logger}
}

// StreakAlerts lists active daily habits with a live streak and no
// completion today, longest streak first.
func (s *AlertService) StreakAlerts(ctx context.Context) ([]domain.Alert, error) {
	habits, err := s.habits.ListWithRecords(ctx, false)
	if err != nil {
		return nil, err
	}

	today := s.engine.Today()
	cal := s.engine.Calendar()
	var alerts []domain.Alert
	for _, habit := range habits {
		if streak, ok := domain.AtRisk(s.engine.View(habit), today, cal); ok {
			alerts = append(alerts, domain.Alert{HabitID: habit.ID, Name: habit.Name, Streak: streak})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Streak > alerts[j].Streak })
	return alerts, nil
}

// Notify sends one desktop notification per alert and returns how many went out.
func (s *AlertService) Notify(alerts []domain.Alert) int {
	if s.notifier == nil || !s.notifier.IsEnabled() {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := s.notifier.Notify("Streak at risk", alert.Message()); err != nil {
			s.logger.Warn("notification failed", zap.String("habit", alert.Name), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
