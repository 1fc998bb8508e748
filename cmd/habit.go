package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/adapters/tui"
	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/services"
)

var (
	addCategory  string
	addFrequency string
	addColor     string
	listAll      bool
)

var errAborted = errors.New("aborted")

func validHabitName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrEmptyHabitName
	}
	return nil
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a habit",
	Long: `Create a daily or weekly habit. Without a name, prompts for one
and for the frequency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		frequency := addFrequency

		if name == "" {
			res := tui.RunPrompt("Habit name:", "e.g. Read 20 pages", validHabitName, &app.config.Theme)
			if res.Aborted {
				return errAborted
			}
			name = res.Text

			if !cmd.Flags().Changed("frequency") {
				choices := []tui.Choice{
					{Label: "Daily", Hint: "every calendar day counts"},
					{Label: "Weekly", Hint: "once per ISO week counts"},
				}
				picked := tui.RunChoice("Frequency:", choices, 0, &app.config.Theme)
				if picked.Aborted {
					return errAborted
				}
				frequency = []string{"daily", "weekly"}[picked.Index]
			}
		}

		habit, err := app.habits.AddHabit(cmd.Context(), services.AddHabitRequest{
			Name:      name,
			Category:  addCategory,
			Frequency: frequency,
			Color:     addColor,
		})
		if err != nil {
			return fmt.Errorf("failed to add habit: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, habitData(habit))
		}
		fmt.Fprintf(out, "✅ Habit created: %s (ID: %s)\n", habit.Name, shortID(habit.ID))
		fmt.Fprintf(out, "   Frequency: %s\n", habit.Frequency)
		if habit.Category != "" {
			fmt.Fprintf(out, "   Category: %s\n", habit.Category)
		}
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with today's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := app.habits.Summaries(cmd.Context(), listAll)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(summaries))
			for _, s := range summaries {
				list = append(list, summaryData(s))
			}
			return printJSON(out, map[string]interface{}{
				"date":   app.engine.Today().String(),
				"habits": list,
				"count":  len(list),
			})
		}

		if len(summaries) == 0 {
			fmt.Fprintln(out, "No habits yet. Create one with: life habit add <name>")
			return nil
		}

		fmt.Fprintf(out, "📋 Habits (%d) · %s\n\n", len(summaries), app.engine.Today())
		for _, s := range summaries {
			h := s.Habit
			name := h.Name
			if !h.IsActive {
				name += " (archived)"
			}
			fmt.Fprintf(out, "%s %-24s %s  🔥 %s  7d %5.1f%%  30d %5.1f%%\n",
				checkmark(s.CompletedToday), name, shortID(h.ID), streakLabel(s), s.Rate7, s.Rate30)
		}
		return nil
	},
}

var habitShowCmd = &cobra.Command{
	Use:   "show <habit>",
	Short: "Show a habit's streaks and recent days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := app.state.HabitStatus(cmd.Context(), args[0], 14)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			data := summaryData(status.Summary)
			days := make([]map[string]interface{}, 0, len(status.Days))
			for _, d := range status.Days {
				days = append(days, map[string]interface{}{
					"date":      d.Day.String(),
					"completed": d.Completed,
				})
			}
			data["days"] = days
			return printJSON(out, data)
		}

		s := status.Summary
		h := s.Habit
		fmt.Fprintf(out, "%s (ID: %s)\n", h.Name, h.ID)
		fmt.Fprintf(out, "   Frequency: %s", h.Frequency)
		if h.Category != "" {
			fmt.Fprintf(out, " · Category: %s", h.Category)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "   Streak: %s (longest %d)\n", streakLabel(s), s.LongestStreak)
		fmt.Fprintf(out, "   Rate: 7d %.1f%% · 30d %.1f%%\n\n", s.Rate7, s.Rate30)
		for _, d := range status.Days {
			fmt.Fprintf(out, "   %s %s %s\n", d.Day, d.Day.Weekday().String()[:3], checkmark(d.Completed))
		}
		return nil
	},
}

var habitArchiveCmd = &cobra.Command{
	Use:   "archive <habit>",
	Short: "Archive a habit, keeping its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		habit, err := app.habits.ArchiveHabit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to archive habit: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), habitData(habit))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📦 Archived: %s\n", habit.Name)
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:     "delete <habit>",
	Aliases: []string{"rm"},
	Short:   "Delete a habit and all of its records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		habit, err := app.habits.DeleteHabit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"id":      habit.ID,
				"name":    habit.Name,
				"deleted": true,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted: %s\n", habit.Name)
		return nil
	},
}

func init() {
	habitAddCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category used to group habits in reports")
	habitAddCmd.Flags().StringVarP(&addFrequency, "frequency", "f", "daily", "Frequency: daily or weekly")
	habitAddCmd.Flags().StringVar(&addColor, "color", "", "Display color (hex)")
	habitListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include archived habits")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitShowCmd, habitArchiveCmd, habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func streakLabel(s domain.Summary) string {
	if s.Habit.Frequency == domain.FrequencyWeekly {
		return fmt.Sprintf("%dw", s.WeekStreak)
	}
	return fmt.Sprintf("%dd", s.CurrentStreak)
}

func habitData(h *domain.Habit) map[string]interface{} {
	return map[string]interface{}{
		"id":         h.ID,
		"name":       h.Name,
		"category":   h.Category,
		"frequency":  string(h.Frequency),
		"color":      h.Color,
		"active":     h.IsActive,
		"created_at": h.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

func summaryData(s domain.Summary) map[string]interface{} {
	data := habitData(s.Habit)
	data["completed_today"] = s.CompletedToday
	data["current_streak"] = s.CurrentStreak
	data["longest_streak"] = s.LongestStreak
	data["rate_7d"] = s.Rate7
	data["rate_30d"] = s.Rate30
	if s.Habit.Frequency == domain.FrequencyWeekly {
		data["week_streak"] = s.WeekStreak
	}
	return data
}
