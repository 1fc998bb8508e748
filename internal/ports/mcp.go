package ports

import (
	"context"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// HabitStatus is the detailed view of one habit over a trailing window.
type HabitStatus struct {
	Summary domain.Summary
	Days    []domain.DayStatus
}

// MCPHabitProvider exposes habit state and actions to the MCP server.
// This is a driven port (implemented by services layer).
type MCPHabitProvider interface {
	// ListHabits returns a summary of each habit as of today.
	ListHabits(ctx context.Context, includeArchived bool) ([]domain.Summary, error)

	// HabitStatus returns the summary and last days of per-day status for one habit.
	HabitStatus(ctx context.Context, ref string, days int) (*HabitStatus, error)

	// ToggleHabit flips one habit on one day and waits for the write to settle.
	ToggleHabit(ctx context.Context, ref string, day domain.Day) (domain.ToggleResult, error)

	// LogHabits toggles every (habit, day) pair and reports each outcome.
	LogHabits(ctx context.Context, refs []string, days []domain.Day) ([]domain.ToggleResult, error)

	// Report computes leaderboard, category and trend views for a named period.
	Report(ctx context.Context, period string) (*domain.Report, error)

	// StreakAlerts lists daily habits whose streak breaks tonight.
	StreakAlerts(ctx context.Context) ([]domain.Alert, error)

	// Today is the current calendar day in the configured zone.
	Today() domain.Day
}
