package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const sampleConfig = `# Report definitions. Every report lists the tables to load and how they join.
# Tables flagged master_table become the root of a join tree; each produces one
# merged dataset. Joins point from a table towards the tables hanging off it.
reports:
  database_dashboard:
    tables:
      - name: users
        columns: [id, created_at]
        master_table: true
        parse_dates: [created_at]
        inner_joins:
          - on: id
            join_with: profile
            join_with_on: user_id
          - on: id
            join_with: user_given_to
            join_with_on: user_id

      - name: profile
        columns: [user_id, age, country_id, email_confirmed]
        inner_joins:
          - on: country_id
            join_with: country
            join_with_on: id

      - name: user_given_to
        columns: [user_id, given_to, given_at]
        parse_dates: [given_at]

      - name: country
        columns: [id, name]
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample report configuration",
	Long: `Create a sample report configuration file to start from.

Examples:
  reportmerge init                      # Writes report.yaml
  reportmerge init --config dash.yaml   # Writes dash.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeSampleConfig(configFile); err != nil {
			color.Red("❌ %v", err)
			os.Exit(1)
		}
		color.Green("✅ Created %s", configFile)
		fmt.Println("📝 Edit it, then run 'reportmerge validate --report database_dashboard'")
	},
}

func writeSampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
