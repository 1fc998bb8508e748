package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

var streakRef string

var streakCmd = &cobra.Command{
	Use:   "streak <habit>",
	Short: "Show current and longest streaks",
	Long: `Show a habit's current streak as of a reference day (default: today),
its longest streak ever, and its week streak for weekly habits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ref, err := dayOrToday(streakRef)
		if err != nil {
			return err
		}
		habit, err := app.habits.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		current := app.engine.CurrentStreak(habit, &ref)
		longest := app.engine.LongestStreak(habit)
		var weeks int
		if habit.Frequency == domain.FrequencyWeekly {
			weeks = app.engine.WeekStreak(habit, &ref)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			data := map[string]interface{}{
				"habit":          habit.Name,
				"reference_date": ref.String(),
				"current_streak": current,
				"longest_streak": longest,
			}
			if habit.Frequency == domain.FrequencyWeekly {
				data["week_streak"] = weeks
			}
			return printJSON(out, data)
		}

		fmt.Fprintf(out, "🔥 %s as of %s\n", habit.Name, ref)
		fmt.Fprintf(out, "   Current: %d days\n", current)
		fmt.Fprintf(out, "   Longest: %d days\n", longest)
		if habit.Frequency == domain.FrequencyWeekly {
			fmt.Fprintf(out, "   Weeks:   %d\n", weeks)
		}
		return nil
	},
}

func init() {
	streakCmd.Flags().StringVarP(&streakRef, "date", "d", "", "Reference day as YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(streakCmd)
}
