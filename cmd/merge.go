package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ridoystarlord/reportmerge/database"
	"github.com/ridoystarlord/reportmerge/export"
	"github.com/ridoystarlord/reportmerge/extract"
	"github.com/ridoystarlord/reportmerge/loader"
	"github.com/ridoystarlord/reportmerge/report"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Load the report tables and write one merged dataset per master table",
	Long: `Load every table of a report from the database, merge them along the
report's join trees and write one file per master table.

Examples:
  reportmerge merge --report database_dashboard
  reportmerge merge --report leads --out ./out --format json
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMerge(); err != nil {
			color.Red("❌ Merge failed: %v", err)
			os.Exit(1)
		}
	},
}

var (
	mergeReportName string
	mergeOutDir     string
	mergeFormat     string
	mergeTimeout    time.Duration
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeReportName, "report", "r", "", "Report to merge")
	mergeCmd.Flags().StringVarP(&mergeOutDir, "out", "o", "out", "Output directory")
	mergeCmd.Flags().StringVarP(&mergeFormat, "format", "f", "csv", "Output format ("+strings.Join(export.Formats, ", ")+")")
	mergeCmd.Flags().DurationVarP(&mergeTimeout, "timeout", "t", 5*time.Minute, "Timeout for loading tables")
	_ = mergeCmd.MarkFlagRequired("report")
}

func runMerge() error {
	if !slices.Contains(export.Formats, mergeFormat) {
		return fmt.Errorf("unsupported output format %q", mergeFormat)
	}

	rep, err := loader.LoadReportFromYAML(configFile, mergeReportName)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, mergeTimeout)
	defer cancel()

	pool, err := database.GetPool(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database pool: %w", err)
	}
	defer database.ClosePool()

	src := extract.NewPostgresSource(pool, logger)
	result, err := report.Generate(ctx, rep.Tables, src, logger)
	if err != nil {
		return err
	}

	paths, err := export.WriteFiles(mergeOutDir, mergeFormat, result.Datasets)
	if err != nil {
		return err
	}

	color.Green("✅ Report %s merged (run %s)", rep.Name, result.RunID)
	for i, path := range paths {
		ds := result.Datasets[i]
		fmt.Printf("   - %s: %d rows, %d columns -> %s\n", ds.Name, ds.Len(), len(ds.Columns), path)
	}
	if len(result.Residual) > 0 {
		color.Yellow("⚠️  Tables left unmerged: %s", strings.Join(result.Residual, ", "))
	}
	return nil
}
