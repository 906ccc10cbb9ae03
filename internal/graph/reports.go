package graph

import (
	"sort"

	"github.com/agentic-research/familiar-registry/api"
)

// SCCReportEntry summarizes one retained cycle group (spec.md §4.4
// "scc_report").
type SCCReportEntry struct {
	Members     []api.SchemaId
	BreakEdge   *api.Edge // first intra-SCC edge in traversal order, nil if none found
	HasUnionRepr bool      // true if any member carries a union representation facet
}

// SCCReport returns one entry per retained cycle group.
func (g *Graph) SCCReport() []SCCReportEntry {
	out := make([]SCCReportEntry, 0, len(g.sccNodes))
	for _, members := range g.sccNodes {
		inSCC := make(map[api.SchemaId]bool, len(members))
		for _, m := range members {
			inSCC[m] = true
		}

		entry := SCCReportEntry{Members: members}
		for _, m := range members {
			for _, e := range g.out[m] {
				if inSCC[e.To] {
					edge := e
					entry.BreakEdge = &edge
					break
				}
			}
			if entry.BreakEdge != nil {
				break
			}
		}

		for _, m := range members {
			if n, ok := g.Get(m); ok && n.Codegen != nil && n.Codegen.EnumRepr != "" {
				entry.HasUnionRepr = true
				break
			}
		}

		out = append(out, entry)
	}
	return out
}

// HubReportEntry is one top-in-degree node with its derive suggestion
// (spec.md §4.4 "hub_report").
type HubReportEntry struct {
	Id              api.SchemaId
	InDegree        int
	SuggestDerive   []string
}

// unsafeInlineKinds are the JSON Schema inline "type" strings excluded from
// "Eq/Hash safe" (spec.md §4.4 "Safety excludes floating-point numbers,
// schema-less objects, and map types"); "object" covers both schema-less
// objects and map-typed fields. Fields with a $ref are not checked.
var unsafeInlineKinds = map[string]bool{
	"number": true, "object": true,
}

// HubReport returns the topN nodes by in-degree, each annotated with a
// derive suggestion when every field type is "Eq/Hash safe" (spec.md §4.4).
func (g *Graph) HubReport(topN int) []HubReportEntry {
	type scored struct {
		id     api.SchemaId
		degree int
	}
	scoredNodes := make([]scored, 0, len(g.nodes))
	for _, n := range g.nodes {
		scoredNodes = append(scoredNodes, scored{id: n.Id, degree: g.InDegree(n.Id)})
	}
	sort.Slice(scoredNodes, func(i, j int) bool {
		if scoredNodes[i].degree != scoredNodes[j].degree {
			return scoredNodes[i].degree > scoredNodes[j].degree
		}
		return scoredNodes[i].id < scoredNodes[j].id
	})

	if topN > 0 && len(scoredNodes) > topN {
		scoredNodes = scoredNodes[:topN]
	}

	out := make([]HubReportEntry, 0, len(scoredNodes))
	for _, s := range scoredNodes {
		entry := HubReportEntry{Id: s.id, InDegree: s.degree}
		if s.degree >= 3 {
			if n, ok := g.Get(s.id); ok && allFieldsEqHashSafe(n) {
				entry.SuggestDerive = []string{"Eq", "Hash"}
			}
		}
		out = append(out, entry)
	}
	return out
}

func allFieldsEqHashSafe(n *api.SchemaNode) bool {
	for _, f := range n.Fields {
		if f.InlineKind != "" && unsafeInlineKinds[f.InlineKind] {
			return false
		}
	}
	return true
}
