package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/services"
)

var (
	statsPeriod   string
	statsFrom     string
	statsTo       string
	statsArchived bool
)

const (
	heatmapNameWidth = 16
	defaultTermWidth = 80
	barWidth         = 20
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard of habit consistency",
	Long: `Display a leaderboard of completion rates, a per-category rollup, the
daily trend and a heatmap for the chosen period.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		from, err := optionalDay(statsFrom)
		if err != nil {
			return err
		}
		to, err := optionalDay(statsTo)
		if err != nil {
			return err
		}

		report, err := app.reports.Report(ctx, services.ReportRequest{
			Period:          statsPeriod,
			From:            from,
			To:              to,
			IncludeArchived: statsArchived,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, reportData(report))
		}

		heatmap, habits, err := app.reports.Heatmap(ctx, report.Window)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		renderDashboard(out, report, heatmap, habits, terminalWidth())
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "month", "Time period: week, month, quarter or year")
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "First day as YYYY-MM-DD (overrides --period)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "Last day as YYYY-MM-DD (default: today)")
	statsCmd.Flags().BoolVarP(&statsArchived, "all", "a", false, "Include archived habits")
	rootCmd.AddCommand(statsCmd)
}

func terminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func renderDashboard(out io.Writer, report *domain.Report, heatmap map[string][]domain.DayStatus, habits []*domain.Habit, width int) {
	theme := app.config.Theme
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorTitle))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHelp))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorDone))
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorDone))
	missStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorMissed))

	w := report.Window
	fmt.Fprintf(out, "  %s\n", titleStyle.Render(fmt.Sprintf("Consistency %s → %s (%d days)", w.Start, w.End, w.Days())))
	fmt.Fprintln(out)

	if len(report.Leaderboard) == 0 {
		fmt.Fprintf(out, "  %s\n", dimStyle.Render("No habits to report on."))
		return
	}

	fmt.Fprintf(out, "  %s\n", titleStyle.Render("Leaderboard"))
	for _, r := range report.Leaderboard {
		filled := int(r.Rate / 100 * barWidth)
		bar := doneStyle.Render(strings.Repeat("█", filled)) + missStyle.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(out, "  %-*s %s %s %s\n", heatmapNameWidth, truncateName(r.Name, heatmapNameWidth), bar,
			valueStyle.Render(fmt.Sprintf("%5.1f%%", r.Rate)), dimStyle.Render(fmt.Sprintf("%d/%d", r.Completed, r.Eligible)))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %s\n", titleStyle.Render("Categories"))
	for _, c := range report.Categories {
		fmt.Fprintf(out, "  %-*s %s %s\n", heatmapNameWidth, truncateName(c.Category, heatmapNameWidth),
			valueStyle.Render(fmt.Sprintf("%5.1f%%", c.Rate)), dimStyle.Render(fmt.Sprintf("%d habits", c.Habits)))
	}
	fmt.Fprintln(out)

	// One column per day, most recent on the right, as many as fit.
	cols := width - heatmapNameWidth - 4
	if cols < 7 {
		cols = 7
	}
	fmt.Fprintf(out, "  %s\n", titleStyle.Render("Heatmap"))
	for _, h := range habits {
		days := heatmap[h.ID]
		if len(days) > cols {
			days = days[len(days)-cols:]
		}
		var row strings.Builder
		for _, d := range days {
			if d.Completed {
				row.WriteString(doneStyle.Render(theme.IconDone))
			} else {
				row.WriteString(missStyle.Render(theme.IconMissed))
			}
		}
		fmt.Fprintf(out, "  %-*s %s\n", heatmapNameWidth, truncateName(h.Name, heatmapNameWidth), row.String())
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %s\n", titleStyle.Render("Trend (last 7 days)"))
	trend := report.Trend
	if len(trend) > 7 {
		trend = trend[len(trend)-7:]
	}
	for _, p := range trend {
		fmt.Fprintf(out, "  %s %s %s\n", p.Day, dimStyle.Render(p.Day.Weekday().String()[:3]),
			valueStyle.Render(fmt.Sprintf("%5.1f%%", p.Rate)))
	}
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func reportData(report *domain.Report) map[string]interface{} {
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
	return map[string]interface{}{
		"from":        report.Window.Start.String(),
		"to":          report.Window.End.String(),
		"leaderboard": leaderboard,
		"categories":  categories,
		"trend":       trend,
	}
}
