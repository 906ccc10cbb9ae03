package graph

import (
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
)

// expectedRootDirs are infrastructure sinks expected to be unreferenced
// (spec.md §4.4 "orphans_by_category").
var expectedRootDirs = map[string]bool{
	"ecs": true, "queues": true, "nodes": true, "systems": true, "resources": true,
}

// OrphanCategory groups orphans (in-degree 0 nodes) by their first path
// segment, and flags categories that are "expected roots".
type OrphanCategory struct {
	Category string
	Expected bool
	Nodes    []api.SchemaId
}

// OrphansByCategory returns every in-degree-0 node grouped by the first
// path segment of its file, sorted by category name.
func (g *Graph) OrphansByCategory() []OrphanCategory {
	byCategory := map[string][]api.SchemaId{}
	for _, n := range g.nodes {
		if g.InDegree(n.Id) != 0 {
			continue
		}
		byCategory[firstSegment(n.FilePath)] = append(byCategory[firstSegment(n.FilePath)], n.Id)
	}

	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	out := make([]OrphanCategory, 0, len(cats))
	for _, c := range cats {
		ids := byCategory[c]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, OrphanCategory{Category: c, Expected: expectedRootDirs[c], Nodes: ids})
	}
	return out
}

// TrulyIsolatedSchemas returns orphans that also have out-degree 0.
func (g *Graph) TrulyIsolatedSchemas() []api.SchemaId {
	var out []api.SchemaId
	for _, n := range g.nodes {
		if g.InDegree(n.Id) == 0 && g.OutDegree(n.Id) == 0 {
			out = append(out, n.Id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ConsumerOnlySchemas returns orphans with out-degree > 0.
func (g *Graph) ConsumerOnlySchemas() []api.SchemaId {
	var out []api.SchemaId
	for _, n := range g.nodes {
		if g.InDegree(n.Id) == 0 && g.OutDegree(n.Id) > 0 {
			out = append(out, n.Id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func firstSegment(path string) string {
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}
