package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
)

// kindPalette supplies DOT node fill colors per x-familiar-kind. Each kind
// present in the graph takes the palette entry at its sorted-kind index
// (wrapping around), so re-runs over the same bundle stay stable; nodes
// with no kind are filled white.
var kindPalette = []string{
	"#E3F2FD", "#E8F5E9", "#FFF3E0", "#F3E5F5", "#FCE4EC", "#E0F7FA", "#FFFDE7",
}

// ToDot serializes the full graph to Graphviz DOT (spec.md §4.4 "to_dot").
func (g *Graph) ToDot() string {
	return g.ToDotFiltered(nil)
}

// ToDotFiltered serializes only edges whose kind is in edgeKinds (nil/empty
// means all), coloring each edge by EdgeKind.Color() and each node by
// x-familiar-kind (spec.md §4.4 "to_dot_filtered").
func (g *Graph) ToDotFiltered(edgeKinds []api.EdgeKind) string {
	var allow map[api.EdgeKind]bool
	if len(edgeKinds) > 0 {
		allow = make(map[api.EdgeKind]bool, len(edgeKinds))
		for _, k := range edgeKinds {
			allow[k] = true
		}
	}

	kindColor := g.assignKindColors()

	var b strings.Builder
	b.WriteString("digraph familiar {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, n := range g.nodes {
		color := "#FFFFFF"
		if c, ok := kindColor[n.Kind]; ok {
			color = c
		}
		label := n.Title
		if label == "" {
			label = string(n.Id)
		}
		fmt.Fprintf(&b, "  %q [label=%q style=filled fillcolor=%q];\n", n.Id, label, color)
	}

	for _, e := range g.edges {
		if allow != nil && !allow[e.Kind] {
			continue
		}
		fmt.Fprintf(&b, "  %q -> %q [label=%q color=%q];\n", e.From, e.To, e.Kind.Label(), e.Kind.Color())
	}

	b.WriteString("}\n")
	return b.String()
}

func (g *Graph) assignKindColors() map[string]string {
	kinds := g.AllKinds()
	sort.Strings(kinds)
	out := make(map[string]string, len(kinds))
	for i, k := range kinds {
		out[k] = kindPalette[i%len(kindPalette)]
	}
	return out
}
