package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/adapters/tui"
	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

var boardDay string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive check-in board",
	Long: `Open a full-screen board with one row per habit and one column per
recent day. Space toggles the selected cell; pending writes are shown
until they settle, and failed writes are reverted with a status message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var end domain.Day
		if day, err := optionalDay(boardDay); err != nil {
			return err
		} else if day != nil {
			end = *day
		}
		serveMetrics(ctx)

		reload := func() ([]*domain.Habit, error) {
			habits, err := app.habits.ListHabits(ctx, false)
			if err != nil {
				return nil, err
			}
			for _, habit := range habits {
				if err := app.engine.Refresh(ctx, habit); err != nil {
					return nil, err
				}
			}
			return habits, nil
		}

		habits, err := reload()
		if err != nil {
			return err
		}
		return tui.RunBoard(ctx, app.engine, habits, reload, end, &app.config.Theme)
	},
}

func init() {
	boardCmd.Flags().StringVarP(&boardDay, "date", "d", "", "Newest day shown (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(boardCmd)
}
