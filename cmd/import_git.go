package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/services"
)

var (
	importRepo   string
	importAuthor string
	importSince  string
)

var importGitCmd = &cobra.Command{
	Use:   "import-git <habit>",
	Short: "Mark a habit done on every day with a commit",
	Long: `Walk a repository's history and mark the habit completed on each
calendar day that has a matching commit. Days already completed are left
alone, so the import can be re-run safely.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		since, err := optionalDay(importSince)
		if err != nil {
			return err
		}
		habit, err := app.habits.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		result, err := app.gitImport.Import(ctx, habit, services.ImportRequest{
			RepoPath: importRepo,
			Author:   importAuthor,
			Since:    since,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			days := make([]string, 0, len(result.Days))
			for _, d := range result.Days {
				days = append(days, d.String())
			}
			return printJSON(out, map[string]interface{}{
				"habit":   habit.Name,
				"commits": result.Commits,
				"days":    days,
				"created": result.Created,
			})
		}
		fmt.Fprintf(out, "📥 %s: %d commits on %d days, %d newly completed\n",
			habit.Name, result.Commits, len(result.Days), result.Created)
		return nil
	},
}

func init() {
	importGitCmd.Flags().StringVar(&importRepo, "repo", ".", "Path inside the repository")
	importGitCmd.Flags().StringVar(&importAuthor, "author", "", "Only commits by this author email or name")
	importGitCmd.Flags().StringVar(&importSince, "since", "", "Ignore commits before this day (YYYY-MM-DD)")
	rootCmd.AddCommand(importGitCmd)
}
