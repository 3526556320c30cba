package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/ridoystarlord/reportmerge/loader"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the reports defined in the configuration",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := loader.ListReports(configFile)
		if err != nil {
			color.Red("❌ %v", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("⚠️  No reports defined in", configFile)
			return
		}
		fmt.Printf("📋 Reports in %s:\n", configFile)
		for _, name := range names {
			fmt.Println("   -", name)
		}
	},
}
