package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ridoystarlord/reportmerge/database"
	"github.com/ridoystarlord/reportmerge/loader"
	"github.com/ridoystarlord/reportmerge/utils"
	"github.com/ridoystarlord/reportmerge/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a report configuration",
	Long: `Validate a report configuration before running it.

This command checks:
- Table and column naming (PostgreSQL identifier rules)
- Join columns are part of the loaded columns on both sides
- Every join target exists and is not a master table
- No table is joined twice or from two master tables
- No join path loops back on itself
- Configured tables and columns exist (when connected to database)

The validator works in two modes:
- Offline: Validates the configuration only (no database required)
- Online: Also checks against the database (requires DATABASE_URL)

Examples:
  reportmerge validate --report database_dashboard
  reportmerge validate --report leads --format json
  DATABASE_URL=postgres://... reportmerge validate --report leads
`,
	Run: func(cmd *cobra.Command, args []string) {
		valid, err := validateReport(cmd.OutOrStdout())
		if err != nil {
			fmt.Printf("❌ Report validation failed: %v\n", err)
			os.Exit(1)
		}
		if !valid {
			os.Exit(1)
		}
	},
}

var (
	validateReportName string
	validateFormat     string
	validateTimeout    time.Duration
)

func init() {
	validateCmd.Flags().StringVarP(&validateReportName, "report", "r", "", "Report to validate")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
	validateCmd.Flags().DurationVarP(&validateTimeout, "timeout", "t", 30*time.Second, "Timeout for database checks")
	_ = validateCmd.MarkFlagRequired("report")
}

func validateReport(w io.Writer) (bool, error) {
	rep, err := loader.LoadReportFromYAML(configFile, validateReportName)
	if err != nil {
		return false, fmt.Errorf("failed to load config: %w", err)
	}

	var result *validator.ValidationResult
	if _, err := utils.GetDatabaseURL(); err != nil {
		logger.Debug("DATABASE_URL not set, using offline validation")
		result = validator.NewReportValidator(nil).ValidateReportWithoutDB(rep)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()

		pool, err := database.GetPool(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to get database pool: %w", err)
		}
		defer database.ClosePool()

		result, err = validator.NewReportValidator(pool).ValidateReport(ctx, rep)
		if err != nil {
			return false, err
		}
	}

	if validateFormat == "json" {
		return result.Valid, outputJSON(w, result)
	}
	outputText(w, result)
	return result.Valid, nil
}

func outputJSON(w io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *validator.ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if result.Valid {
		green.Fprintln(w, "✅ Report validation passed!")
	} else {
		red.Fprintln(w, "❌ Report validation failed!")
	}

	printIssues(w, "🔴 Errors", result.Errors)
	printIssues(w, "🟡 Warnings", result.Warnings)
	printIssues(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Your report is ready to merge!\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before running the merge.\n")
	}
}

func printIssues(w io.Writer, title string, issues []validator.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(issues))
	for i, issue := range issues {
		fmt.Fprintf(w, "  %d. ", i+1)
		if issue.Table != "" {
			fmt.Fprintf(w, "[%s]", issue.Table)
		}
		if issue.Column != "" {
			fmt.Fprintf(w, ".%s", issue.Column)
		}
		fmt.Fprintf(w, ": %s\n", issue.Message)
	}
}
