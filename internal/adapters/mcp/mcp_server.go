// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server   *server.MCPServer
	provider ports.MCPHabitProvider
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(provider ports.MCPHabitProvider, version string) *Server {
	s := &Server{
		provider: provider,
	}

	s.server = server.NewMCPServer(
		"life-habits",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"list_habits",
			mcp.WithDescription("List habits with today's status, streaks and 7/30 day completion rates"),
			mcp.WithBoolean(
				"include_archived",
				mcp.Description("Include archived habits (default: false)"),
			),
		),
		s.handleListHabits,
	)

	s.server.AddTool(
		mcp.NewTool(
			"habit_status",
			mcp.WithDescription("Get one habit's streaks and per-day completion for the last N days"),
			mcp.WithString(
				"habit",
				mcp.Required(),
				mcp.Description("Habit ID, ID prefix or name"),
			),
			mcp.WithNumber(
				"days",
				mcp.Description("Number of trailing days to include (default: 7)"),
			),
		),
		s.handleHabitStatus,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_habit",
			mcp.WithDescription("Flip a habit's completion for a day and wait for the write to settle"),
			mcp.WithString(
				"habit",
				mcp.Required(),
				mcp.Description("Habit ID, ID prefix or name"),
			),
			mcp.WithString(
				"date",
				mcp.Description("Day as YYYY-MM-DD (default: today)"),
			),
		),
		s.handleToggleHabit,
	)

	s.server.AddTool(
		mcp.NewTool(
			"log_habits",
			mcp.WithDescription("Toggle several habits across several days in one call"),
			mcp.WithArray(
				"habits",
				mcp.Required(),
				mcp.Description("Habit IDs or names"),
				mcp.WithStringItems(),
			),
			mcp.WithArray(
				"dates",
				mcp.Description("Days as YYYY-MM-DD (default: today)"),
				mcp.WithStringItems(),
			),
		),
		s.handleLogHabits,
	)

	s.server.AddTool(
		mcp.NewTool(
			"habit_report",
			mcp.WithDescription("Leaderboard, category rollup and daily trend for a period"),
			mcp.WithString(
				"period",
				mcp.Description("Report period (default: month)"),
				mcp.Enum("week", "month", "quarter", "year"),
			),
		),
		s.handleReport,
	)

	s.server.AddTool(
		mcp.NewTool(
			"streak_alerts",
			mcp.WithDescription("List daily habits whose streak breaks unless completed today"),
		),
		s.handleStreakAlerts,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

func summaryData(sum domain.Summary) map[string]interface{} {
	h := sum.Habit
	data := map[string]interface{}{
		"id":              h.ID,
		"name":            h.Name,
		"category":        h.Category,
		"frequency":       string(h.Frequency),
		"active":          h.IsActive,
		"completed_today": sum.CompletedToday,
		"current_streak":  sum.CurrentStreak,
		"longest_streak":  sum.LongestStreak,
		"rate_7d":         sum.Rate7,
		"rate_30d":        sum.Rate30,
	}
	if h.Frequency == domain.FrequencyWeekly {
		data["week_streak"] = sum.WeekStreak
	}
	return data
}

func resultData(r domain.ToggleResult) map[string]interface{} {
	data := map[string]interface{}{
		"habit_id":  r.HabitID,
		"habit":     r.HabitName,
		"date":      r.Day.String(),
		"completed": r.Value,
		"ok":        r.OK(),
	}
	if r.Err != nil {
		data["error"] = r.Err.Error()
	}
	return data
}

func textResult(v interface{}, what string) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseDays parses YYYY-MM-DD values, defaulting to today when raw is empty.
func (s *Server) parseDays(raw []string) ([]domain.Day, error) {
	if len(raw) == 0 {
		return []domain.Day{s.provider.Today()}, nil
	}
	days := make([]domain.Day, 0, len(raw))
	for _, r := range raw {
		d, err := domain.ParseDay(strings.TrimSpace(r))
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

// handleListHabits handles the list_habits tool.
func (s *Server) handleListHabits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived := request.GetBool("include_archived", false)

	summaries, err := s.provider.ListHabits(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	habits := make([]map[string]interface{}, 0, len(summaries))
	for _, sum := range summaries {
		habits = append(habits, summaryData(sum))
	}

	result := map[string]interface{}{
		"date":        s.provider.Today().String(),
		"habits":      habits,
		"total_count": len(habits),
	}
	return textResult(result, "habits")
}

// handleHabitStatus handles the habit_status tool.
func (s *Server) handleHabitStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("habit")
	if err != nil {
		return mcp.NewToolResultError("habit is required: " + err.Error()), nil
	}
	days := int(request.GetFloat("days", 7))

	status, err := s.provider.HabitStatus(ctx, ref, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get habit status: %v", err)), nil
	}

	history := make([]map[string]interface{}, 0, len(status.Days))
	for _, d := range status.Days {
		history = append(history, map[string]interface{}{
			"date":      d.Day.String(),
			"completed": d.Completed,
			"recorded":  d.Recorded,
		})
	}

	result := summaryData(status.Summary)
	result["days"] = history
	return textResult(result, "habit status")
}

// handleToggleHabit handles the toggle_habit tool.
func (s *Server) handleToggleHabit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("habit")
	if err != nil {
		return mcp.NewToolResultError("habit is required: " + err.Error()), nil
	}

	var raw []string
	if d := request.GetString("date", ""); d != "" {
		raw = []string{d}
	}
	days, err := s.parseDays(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.provider.ToggleHabit(ctx, ref, days[0])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle habit: %v", err)), nil
	}
	if res.Err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("toggle rolled back: %v", res.Err)), nil
	}
	return textResult(resultData(res), "toggle result")
}

// handleLogHabits handles the log_habits tool.
func (s *Server) handleLogHabits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := request.GetStringSlice("habits", nil)
	if len(refs) == 0 {
		return mcp.NewToolResultError("habits is required: provide at least one habit"), nil
	}
	days, err := s.parseDays(request.GetStringSlice("dates", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.provider.LogHabits(ctx, refs, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log habits: %v", err)), nil
	}

	failed := 0
	list := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			failed++
		}
		list = append(list, resultData(r))
	}

	result := map[string]interface{}{
		"results":   list,
		"total":     len(list),
		"failed":    failed,
		"succeeded": len(list) - failed,
	}
	return textResult(result, "log results")
}

// handleReport handles the habit_report tool.
func (s *Server) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period := request.GetString("period", "month")

	report, err := s.provider.Report(ctx, period)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build report: %v", err)), nil
	}

	leaderboard := make([]map[string]interface{}, 0, len(report.Leaderboard))
	for _, r := range report.Leaderboard {
		leaderboard = append(leaderboard, map[string]interface{}{
			"habit":     r.Name,
			"category":  r.Category,
			"completed": r.Completed,
			"eligible":  r.Eligible,
			"rate":      r.Rate,
		})
	}

	categories := make([]map[string]interface{}, 0, len(report.Categories))
	for _, c := range report.Categories {
		categories = append(categories, map[string]interface{}{
			"category":  c.Category,
			"habits":    c.Habits,
			"completed": c.Completed,
			"eligible":  c.Eligible,
			"rate":      c.Rate,
		})
	}

	trend := make([]map[string]interface{}, 0, len(report.Trend))
	for _, p := range report.Trend {
		trend = append(trend, map[string]interface{}{
			"date":      p.Day.String(),
			"completed": p.Completed,
			"eligible":  p.Eligible,
			"rate":      p.Rate,
		})
	}

	result := map[string]interface{}{
		"period":      period,
		"from":        report.Window.Start.String(),
		"to":          report.Window.End.String(),
		"leaderboard": leaderboard,
		"categories":  categories,
		"trend":       trend,
	}
	return textResult(result, "report")
}

// handleStreakAlerts handles the streak_alerts tool.
func (s *Server) handleStreakAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alerts, err := s.provider.StreakAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak alerts: %w", err)
	}

	list := make([]map[string]interface{}, 0, len(alerts))
	for _, a := range alerts {
		list = append(list, map[string]interface{}{
			"habit_id": a.HabitID,
			"habit":    a.Name,
			"streak":   a.Streak,
			"message":  a.Message(),
		})
	}

	result := map[string]interface{}{
		"date":   s.provider.Today().String(),
		"alerts": list,
		"count":  len(list),
	}
	return textResult(result, "alerts")
}
