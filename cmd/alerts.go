package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var alertsNotify bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List daily streaks that break unless completed today",
	RunE: func(cmd *cobra.Command, args []string) error {
		alerts, err := app.alerts.StreakAlerts(cmd.Context())
		if err != nil {
			return err
		}

		sent := 0
		if alertsNotify {
			sent = app.alerts.Notify(alerts)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(alerts))
			for _, a := range alerts {
				list = append(list, map[string]interface{}{
					"habit_id": a.HabitID,
					"habit":    a.Name,
					"streak":   a.Streak,
					"message":  a.Message(),
				})
			}
			return printJSON(out, map[string]interface{}{
				"date":     app.engine.Today().String(),
				"alerts":   list,
				"count":    len(list),
				"notified": sent,
			})
		}

		if len(alerts) == 0 {
			fmt.Fprintln(out, "No streaks at risk today.")
			return nil
		}
		for _, a := range alerts {
			fmt.Fprintf(out, "⚠️  %s\n", a.Message())
		}
		if alertsNotify {
			fmt.Fprintf(out, "\n%d notification(s) sent\n", sent)
		}
		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVarP(&alertsNotify, "notify", "n", false, "Also send a desktop notification per alert")
	rootCmd.AddCommand(alertsCmd)
}
