package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shajanthanx/life-v2-sub002/internal/services"
)

var (
	exportFormat string
	exportPeriod string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export habit records",
	Long:  "Export habit records in CSV, markdown or YAML format.",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := app.reports.Window(services.ReportRequest{Period: exportPeriod})
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return app.export.Export(cmd.Context(), out, exportFormat, w)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", services.FormatCSV, "Output format: csv, md or yaml")
	exportCmd.Flags().StringVarP(&exportPeriod, "period", "p", "year", "Time period: week, month, quarter or year")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
