package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <bundle-dir>",
	Short: "Run union-hygiene checks across every schema in the bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		var total int
		for _, n := range engine.Graph.Nodes() {
			for _, w := range engine.Graph.LintUnions(n.Id) {
				fmt.Fprintf(cmdOut, "%s: %s: %s\n", w.Kind, w.Id, w.Detail)
				total++
			}
		}
		if total == 0 {
			fmt.Fprintln(cmdOut, "no union-hygiene warnings")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
