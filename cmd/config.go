package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit the configuration file",
	// Only the file is needed, not storage.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), app.configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := app.config
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]interface{}{
				"path":                    app.configPath,
				"storage.driver":          c.Storage.Driver,
				"storage.data_dir":        c.Storage.DataDir,
				"storage.db_path":         config.GetDBPath(c),
				"calendar.timezone":       c.Calendar.Timezone,
				"engine.streak_limit":     c.Engine.StreakLimit,
				"engine.bulk_concurrency": c.Engine.BulkConcurrency,
				"engine.persist_timeout":  c.Engine.PersistTimeout.String(),
				"notifications.enabled":   c.Notifications.Enabled,
				"notifications.sound":     c.Notifications.Sound,
				"log.level":               c.Log.Level,
				"log.file":                c.Log.File,
				"metrics.enabled":         c.Metrics.Enabled,
				"metrics.addr":            c.Metrics.Addr,
				"mcp.enabled":             c.MCP.Enabled,
			})
		}

		tz := c.Calendar.Timezone
		if tz == "" {
			tz = "local"
		}
		fmt.Fprintf(out, "  Config file:      %s\n\n", app.configPath)
		fmt.Fprintf(out, "  Storage:          %s (%s)\n", c.Storage.Driver, storageTarget(c))
		fmt.Fprintf(out, "  Timezone:         %s\n", tz)
		fmt.Fprintf(out, "  Streak limit:     %d days\n", c.Engine.StreakLimit)
		fmt.Fprintf(out, "  Bulk concurrency: %d\n", c.Engine.BulkConcurrency)
		fmt.Fprintf(out, "  Persist timeout:  %s\n", c.Engine.PersistTimeout)
		fmt.Fprintf(out, "  Notifications:    %s\n", onOff(c.Notifications.Enabled))
		fmt.Fprintf(out, "  Log:              %s → %s\n", c.Log.Level, c.Log.File)
		fmt.Fprintf(out, "  Metrics:          %s (%s)\n", onOff(c.Metrics.Enabled), c.Metrics.Addr)
		fmt.Fprintf(out, "  MCP server:       %s\n", onOff(c.MCP.Enabled))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a single configuration value",
	Example: `  life config set calendar.timezone Asia/Tokyo`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetValue(app.configPath, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func storageTarget(c *config.Config) string {
	if c.Storage.Driver == config.DriverPostgres {
		return "dsn set"
	}
	if dbPath != "" {
		return dbPath
	}
	return config.GetDBPath(c)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
