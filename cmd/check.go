package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ridoystarlord/reportmerge/database"
	"github.com/ridoystarlord/reportmerge/extract"
	"github.com/ridoystarlord/reportmerge/loader"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database connectivity and report tables",
	Long: `Check that the database is reachable and, with --report, that every
table of the report exists.

Examples:
  reportmerge check                               # Ping the database
  reportmerge check --report database_dashboard   # Also look for the tables
  reportmerge check --timeout 10s                 # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabase(); err != nil {
			fmt.Printf("❌ Database check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database check completed successfully")
	},
}

var (
	checkTimeout    time.Duration
	checkReportName string
)

func init() {
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", 10*time.Second, "Timeout for database check")
	checkCmd.Flags().StringVarP(&checkReportName, "report", "r", "", "Report whose tables should exist")
}

func checkDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	pool, err := database.GetPool(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database pool: %w", err)
	}
	defer database.ClosePool()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if checkReportName == "" {
		return nil
	}

	rep, err := loader.LoadReportFromYAML(configFile, checkReportName)
	if err != nil {
		return err
	}

	missing := 0
	for _, t := range rep.Tables {
		cols, err := extract.ExistingColumns(ctx, pool, t.Name)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			fmt.Printf("⚠️  table %s not found\n", t.Name)
			missing++
		}
	}

	fmt.Printf("📊 Found %d of %d report tables\n", len(rep.Tables)-missing, len(rep.Tables))
	if missing > 0 {
		return fmt.Errorf("%d tables missing", missing)
	}
	return nil
}
