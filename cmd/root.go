package cmd

import (
	"fmt"
	"os"

	"github.com/ridoystarlord/reportmerge/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	verbose    bool
	logger     *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "reportmerge",
	Short: "Merge report tables into one dataset per master table",
	Long: `reportmerge loads the tables of a report from Postgres and left-joins them,
following the join trees declared in the report configuration, into one
denormalized dataset per master table.

Examples:

  reportmerge init
  reportmerge validate --report database_dashboard
  reportmerge tree --report database_dashboard
  reportmerge merge --report database_dashboard --out ./out
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "report.yaml", "Report configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mergeCmd)
}
