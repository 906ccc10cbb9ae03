package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/agentic-research/familiar-registry/internal/graph"
	"github.com/spf13/cobra"
)

var (
	asJSON    bool
	maxDepth  int
	searchMax int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a built schema graph",
}

var queryResolveCmd = &cobra.Command{
	Use:   "resolve <bundle-dir> <id>",
	Short: "Resolve an id, path, or title to a canonical schema id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		id, ok := engine.Graph.Resolve(args[1])
		if !ok {
			return fmt.Errorf("no schema resolves %q", args[1])
		}
		return printResult(id)
	},
}

var queryClosureCmd = &cobra.Command{
	Use:   "closure <bundle-dir> <id>",
	Short: "Outgoing transitive closure from id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		id, ok := engine.Graph.Resolve(args[1])
		if !ok {
			return fmt.Errorf("no schema resolves %q", args[1])
		}
		return printResult(engine.Graph.Closure(id, graph.Outgoing, maxDepth))
	},
}

var queryBlastRadiusCmd = &cobra.Command{
	Use:   "blast-radius <bundle-dir> <id>",
	Short: "Everything that transitively depends on id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		id, ok := engine.Graph.Resolve(args[1])
		if !ok {
			return fmt.Errorf("no schema resolves %q", args[1])
		}
		return printResult(engine.Graph.BlastRadius(id, nil))
	},
}

var querySearchCmd = &cobra.Command{
	Use:   "search <bundle-dir> <query>",
	Short: "Fuzzy-search schema titles and file-name stems",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		return printResult(engine.Graph.Search(args[1], searchMax))
	},
}

func init() {
	queryCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of a plain value")
	queryClosureCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "closure depth limit (0 = unlimited)")
	querySearchCmd.Flags().IntVar(&searchMax, "limit", 10, "max search hits to return")

	queryCmd.AddCommand(queryResolveCmd, queryClosureCmd, queryBlastRadiusCmd, querySearchCmd)
	rootCmd.AddCommand(queryCmd)
}

func printResult(v any) error {
	if asJSON {
		enc := json.NewEncoder(cmdOut)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintf(cmdOut, "%v\n", v)
	return nil
}
