package cmd

import (
	"fmt"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/spf13/cobra"
)

var edgeKindNames []string

var dotCmd = &cobra.Command{
	Use:   "dot <bundle-dir>",
	Short: "Print the schema graph as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		kinds, err := parseEdgeKinds(edgeKindNames)
		if err != nil {
			return err
		}
		fmt.Fprint(cmdOut, engine.Graph.ToDotFiltered(kinds))
		return nil
	},
}

func init() {
	dotCmd.Flags().StringSliceVar(&edgeKindNames, "edge-kinds", nil, "comma-separated edge kinds to include (default: all)")
	rootCmd.AddCommand(dotCmd)
}

// parseEdgeKinds maps the String() form of api.EdgeKind back to its value,
// matching names case-insensitively (spec.md §4.4 "to_dot_filtered").
func parseEdgeKinds(names []string) ([]api.EdgeKind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []api.EdgeKind
	for _, name := range names {
		kind, ok := lookupEdgeKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown edge kind %q", name)
		}
		out = append(out, kind)
	}
	return out, nil
}

func lookupEdgeKind(name string) (api.EdgeKind, bool) {
	for k := api.TypeRef; k <= api.Output; k++ {
		if strings.EqualFold(k.String(), name) {
			return k, true
		}
	}
	return 0, false
}
