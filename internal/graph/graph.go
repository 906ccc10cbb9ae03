// Package graph implements the Graph Engine (spec.md §4.4): a directed
// multigraph over SchemaNode values, built once from the C2/C3 outputs and
// queried read-only for the rest of its lifetime.
package graph

import (
	"errors"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/familiar-registry/api"
)

// ErrNotFound is the sentinel error for a missing node. Get and Resolve do
// not return it; they report a miss through their boolean result.
var ErrNotFound = errors.New("graph: node not found")

// Graph is the immutable, queryable node/edge table built by Build. Once
// constructed it never mutates, so unlike the teacher's MemoryStore it
// carries no mutex: concurrent reads are safe because there are never
// concurrent writes (spec.md §5 "post-construction immutability").
type Graph struct {
	nodes []*api.SchemaNode
	edges []api.Edge

	byID   map[api.SchemaId]int // SchemaId -> index into nodes
	byPath map[string]api.SchemaId
	byName map[string][]api.SchemaId // title or path stem, collisions kept

	out map[api.SchemaId][]api.Edge // insertion order
	in  map[api.SchemaId][]api.Edge

	// Roaring bitmaps over node index marking nodes with at least one
	// outgoing/incoming edge (same idiom as the teacher's
	// fileToNodes/nodeIntID index). InDegree/OutDegree count the edge
	// lists above instead of reading these.
	hasOut *roaring.Bitmap
	hasIn  *roaring.Bitmap

	sccOf    map[api.SchemaId]int // SchemaId -> component id
	sccNodes [][]api.SchemaId     // component id -> members, in discovery order
}

// Build constructs a Graph from every known node and the edges C3 produced
// for each of them. Nodes must already carry unique Ids; Build does not
// validate that (internal/ingest's DuplicateSchemaId check covers it
// upstream).
func Build(nodes []*api.SchemaNode, edges []api.Edge) *Graph {
	g := &Graph{
		nodes:  nodes,
		edges:  edges,
		byID:   make(map[api.SchemaId]int, len(nodes)),
		byPath: make(map[string]api.SchemaId, len(nodes)),
		byName: make(map[string][]api.SchemaId),
		out:    make(map[api.SchemaId][]api.Edge),
		in:     make(map[api.SchemaId][]api.Edge),
		hasOut: roaring.New(),
		hasIn:  roaring.New(),
	}

	for i, n := range nodes {
		g.byID[n.Id] = i
		if !n.IsLocalDefinition() {
			g.byPath[n.FilePath] = n.Id
		}
		name := n.Title
		if name == "" {
			name = stem(n.FilePath)
		}
		g.byName[name] = append(g.byName[name], n.Id)
	}

	for _, e := range edges {
		g.out[e.From] = append(g.out[e.From], e)
		g.in[e.To] = append(g.in[e.To], e)
		if idx, ok := g.byID[e.From]; ok {
			g.hasOut.Add(uint32(idx))
		}
		if idx, ok := g.byID[e.To]; ok {
			g.hasIn.Add(uint32(idx))
		}
	}

	g.computeSCCs()
	return g
}

func stem(path string) string {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".json")
	name = strings.TrimSuffix(name, ".schema")
	return name
}

// Get is a pure lookup (spec.md §4.4 "get").
func (g *Graph) Get(id api.SchemaId) (*api.SchemaNode, bool) {
	idx, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// Resolve tries, in order, a direct id match, a path match, an exact-title
// match, then a case-insensitive title match. First hit wins (spec.md §4.4
// "resolve").
func (g *Graph) Resolve(query string) (api.SchemaId, bool) {
	if _, ok := g.byID[api.SchemaId(query)]; ok {
		return api.SchemaId(query), true
	}
	if id, ok := g.byPath[query]; ok {
		return id, true
	}
	if ids, ok := g.byName[query]; ok && len(ids) > 0 {
		return ids[0], true
	}
	lower := strings.ToLower(query)
	names := make([]string, 0, len(g.byName))
	for name := range g.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := g.byName[name]; strings.ToLower(name) == lower && len(ids) > 0 {
			return ids[0], true
		}
	}
	return "", false
}

// RefsOut returns id's immediate outgoing neighbors in insertion order.
func (g *Graph) RefsOut(id api.SchemaId) []api.Edge {
	return g.out[id]
}

// RefsIn returns id's immediate incoming neighbors in insertion order.
func (g *Graph) RefsIn(id api.SchemaId) []api.Edge {
	return g.in[id]
}

// AllKinds returns the distinct x-familiar-kind values present, sorted.
func (g *Graph) AllKinds() []string {
	seen := map[string]bool{}
	for _, n := range g.nodes {
		if n.Kind != "" {
			seen[n.Kind] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ListByKind returns every node whose Kind equals kind, sorted by id.
func (g *Graph) ListByKind(kind string) []*api.SchemaNode {
	var out []*api.SchemaNode
	for _, n := range g.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// InDegree and OutDegree back hub_report / orphan classification.
func (g *Graph) InDegree(id api.SchemaId) int  { return len(g.in[id]) }
func (g *Graph) OutDegree(id api.SchemaId) int { return len(g.out[id]) }

// Nodes returns every node, in construction order.
func (g *Graph) Nodes() []*api.SchemaNode { return g.nodes }

// Edges returns every edge, in construction order.
func (g *Graph) Edges() []api.Edge { return g.edges }
