package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <bundle-dir>",
	Short: "Load a schema bundle and report diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmdOut, "%d schema nodes, %d edges\n", len(engine.Graph.Nodes()), len(engine.Graph.Edges()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
