// Package cmd provides the CLI commands for the life habit tracker.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	cfgFile    string
	dbPath     string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "life",
	Short: "life - a habit tracker built around streaks and consistency",
	Long: `life tracks daily and weekly habits, their streaks and completion rates.

Toggles show up immediately and are written in the background; a failed
write is reverted and reported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = cleanupServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the config file (default: ~/.life/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database file (default: <data_dir>/life.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("life\nVersion: {{.Version}}\n")
}

// printJSON writes data as indented JSON.
func printJSON(w io.Writer, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// dayOrToday parses a YYYY-MM-DD flag value, defaulting to today.
func dayOrToday(raw string) (domain.Day, error) {
	if raw == "" {
		return app.engine.Today(), nil
	}
	return domain.ParseDay(raw)
}

// optionalDay parses raw, returning nil when it is empty.
func optionalDay(raw string) (*domain.Day, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDay(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func checkmark(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}
