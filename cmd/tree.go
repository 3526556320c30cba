package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ridoystarlord/reportmerge/jointree"
	"github.com/ridoystarlord/reportmerge/loader"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the join trees of a report",
	Long: `Print the join tree built for every master table of a report, in the
order the merges run against it.

Examples:
  reportmerge tree --report database_dashboard
`,
	Run: func(cmd *cobra.Command, args []string) {
		rep, err := loader.LoadReportFromYAML(configFile, treeReportName)
		if err != nil {
			color.Red("❌ %v", err)
			os.Exit(1)
		}

		trees, err := jointree.Build(rep.Tables)
		if err != nil {
			color.Red("❌ %v", err)
			os.Exit(1)
		}

		for _, tree := range trees {
			printTree(cmd.OutOrStdout(), tree)
		}
		for _, name := range jointree.Unreachable(rep.Tables, trees) {
			color.Yellow("⚠️  %s is not joined to any master table", name)
		}
	},
}

var treeReportName string

func init() {
	treeCmd.Flags().StringVarP(&treeReportName, "report", "r", "", "Report to print")
	_ = treeCmd.MarkFlagRequired("report")
}

func printTree(w io.Writer, tree *jointree.Tree) {
	fmt.Fprintf(w, "%s (depth %d)\n", tree.Name(), tree.Depth())
	printChildren(w, tree.Root, "")
}

func printChildren(w io.Writer, n *jointree.Node, prefix string) {
	for i, child := range n.Children {
		branch, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, next = "└── ", "    "
		}

		edge, _ := n.Spec.Join(child.Name())
		fmt.Fprintf(w, "%s%s%s (%s = %s.%s)\n", prefix, branch, child.Name(), edge.On, child.Name(), edge.JoinWithOn)
		printChildren(w, child, prefix+next)
	}
}
