package graph

import "github.com/agentic-research/familiar-registry/api"

// Direction selects which edge table closure walks.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// ClosureEntry is one node reached by a closure walk.
type ClosureEntry struct {
	Id          api.SchemaId
	Depth       int
	SCCBoundary bool
}

// Closure performs a breadth-first walk from id (spec.md §4.4 "closure"): a
// node is emitted at the first depth it is reached, which a FIFO frontier
// guarantees is its shortest directed distance from the root (spec.md §8
// Property 4), and the returned slice is therefore in ascending-depth
// order. maxDepth of 0 means unlimited, matching Blast Radius and
// TransitiveDepsFiltered callers that pass through "∞".
func (g *Graph) Closure(id api.SchemaId, dir Direction, maxDepth int) []ClosureEntry {
	return g.closureFiltered([]api.SchemaId{id}, dir, maxDepth, nil)
}

// TransitiveDepsFiltered is Closure seeded from multiple roots and
// restricted to an edge-kind allow-list (spec.md §4.4
// "transitive_deps_filtered"); nil/empty allow means no restriction.
func (g *Graph) TransitiveDepsFiltered(roots []api.SchemaId, allow []api.EdgeKind) []ClosureEntry {
	return g.closureFiltered(roots, Outgoing, 0, allow)
}

// BlastRadius is Closure(id, Incoming, unlimited) restricted to
// edgeKindFilter (spec.md §4.4 "blast_radius"): "if this fails, who is
// affected?"
func (g *Graph) BlastRadius(id api.SchemaId, edgeKindFilter []api.EdgeKind) []ClosureEntry {
	return g.closureFiltered([]api.SchemaId{id}, Incoming, 0, edgeKindFilter)
}

func (g *Graph) closureFiltered(roots []api.SchemaId, dir Direction, maxDepth int, allow []api.EdgeKind) []ClosureEntry {
	var allowSet map[api.EdgeKind]bool
	if len(allow) > 0 {
		allowSet = make(map[api.EdgeKind]bool, len(allow))
		for _, k := range allow {
			allowSet[k] = true
		}
	}

	depthOf := make(map[api.SchemaId]int)
	var order []api.SchemaId

	type frame struct {
		id    api.SchemaId
		depth int
	}
	queue := make([]frame, 0, len(roots))
	for _, r := range roots {
		if _, seen := depthOf[r]; seen {
			continue
		}
		depthOf[r] = 0
		order = append(order, r)
		queue = append(queue, frame{id: r, depth: 0})
	}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && f.depth >= maxDepth {
			continue
		}

		for _, e := range g.neighbors(f.id, dir) {
			if allowSet != nil && !allowSet[e.Kind] {
				continue
			}
			target := otherEnd(e, dir)
			if _, seen := depthOf[target]; seen {
				continue
			}
			depthOf[target] = f.depth + 1
			order = append(order, target)
			queue = append(queue, frame{id: target, depth: f.depth + 1})
		}
	}

	out := make([]ClosureEntry, 0, len(order))
	for _, id := range order {
		out = append(out, ClosureEntry{Id: id, Depth: depthOf[id], SCCBoundary: g.SCCBoundary(id)})
	}
	return out
}

func (g *Graph) neighbors(id api.SchemaId, dir Direction) []api.Edge {
	if dir == Incoming {
		return g.in[id]
	}
	return g.out[id]
}

func otherEnd(e api.Edge, dir Direction) api.SchemaId {
	if dir == Incoming {
		return e.From
	}
	return e.To
}
