package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/overlay"
)

var (
	toggleDate string
	logHabits  []string
	logDates   []string
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <habit>",
	Short: "Flip a habit's completion for a day",
	Long: `Flip a habit's completion for a day (default: today). The new value
is shown immediately and confirmed once the write settles; a failed write
is reverted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		day, err := dayOrToday(toggleDate)
		if err != nil {
			return err
		}
		habit, err := app.habits.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		ch, err := app.engine.Toggle(ctx, habit, day)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var last overlay.State
		for st := range ch {
			last = st
			if st.Phase == overlay.Pending && !jsonOutput {
				fmt.Fprintf(out, "%s %s on %s … saving\n", checkmark(st.Value), habit.Name, day)
			}
		}

		result := domain.ToggleResult{HabitID: habit.ID, HabitName: habit.Name, Day: day, Value: last.Value, Err: last.Err}
		if jsonOutput {
			if err := printJSON(out, toggleData(result)); err != nil {
				return err
			}
			return result.Err
		}
		if result.Err != nil {
			return fmt.Errorf("couldn't save, reverted: %w", result.Err)
		}
		printToggle(out, result)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Toggle several habits across several days at once",
	Long: `Toggle every combination of --habit and --date. Each pair is reported
separately; a failure on one pair does not undo the others.`,
	Example: `  life log -H read -H run -d 2024-01-13 -d 2024-01-14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(logHabits) == 0 {
			return fmt.Errorf("at least one --habit is required")
		}

		days := make([]domain.Day, 0, len(logDates))
		for _, raw := range logDates {
			d, err := domain.ParseDay(raw)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
		if len(days) == 0 {
			days = append(days, app.engine.Today())
		}

		habits, err := app.habits.ResolveAll(ctx, logHabits)
		if err != nil {
			return err
		}
		results := app.engine.BulkToggle(ctx, habits, days)

		failed := 0
		for _, r := range results {
			if !r.OK() {
				failed++
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(results))
			for _, r := range results {
				list = append(list, toggleData(r))
			}
			if err := printJSON(out, map[string]interface{}{
				"results":   list,
				"total":     len(results),
				"failed":    failed,
				"succeeded": len(results) - failed,
			}); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				printToggle(out, r)
			}
			fmt.Fprintf(out, "\n%d saved, %d failed\n", len(results)-failed, failed)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d toggles failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	toggleCmd.Flags().StringVarP(&toggleDate, "date", "d", "", "Day to toggle as YYYY-MM-DD (default: today)")
	logCmd.Flags().StringSliceVarP(&logHabits, "habit", "H", nil, "Habit ID or name (repeatable)")
	logCmd.Flags().StringSliceVarP(&logDates, "date", "d", nil, "Day as YYYY-MM-DD (repeatable, default: today)")

	rootCmd.AddCommand(toggleCmd, logCmd)
}

func printToggle(out io.Writer, r domain.ToggleResult) {
	if r.Err != nil {
		fmt.Fprintf(out, "❌ %s on %s: %v\n", r.HabitName, r.Day, r.Err)
		return
	}
	state := "not done"
	if r.Value {
		state = "done"
	}
	fmt.Fprintf(out, "%s %s on %s: %s\n", checkmark(r.Value), r.HabitName, r.Day, state)
}

func toggleData(r domain.ToggleResult) map[string]interface{} {
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
