package graph

import "github.com/agentic-research/familiar-registry/api"

// computeSCCs runs Kosaraju's algorithm over g's node/edge tables and
// populates sccOf/sccNodes, keeping only components of size ≥ 2 plus
// single-node components with a self-loop (spec.md §4.4 "Construction").
// Both passes use an explicit stack, never recursion, so an adversarial
// bundle with deep composition chains cannot blow the goroutine stack
// (the same discipline the teacher's internal/ingest walkers apply).
func (g *Graph) computeSCCs() {
	order := g.finishOrder()

	visited := make(map[api.SchemaId]bool, len(g.nodes))
	var components [][]api.SchemaId

	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if visited[root] {
			continue
		}
		comp := g.collectComponent(root, visited)
		components = append(components, comp)
	}

	sccOf := make(map[api.SchemaId]int, len(g.nodes))
	var kept [][]api.SchemaId
	for _, comp := range components {
		retain := len(comp) >= 2
		if len(comp) == 1 && g.hasSelfLoop(comp[0]) {
			retain = true
		}
		if !retain {
			continue
		}
		id := len(kept)
		kept = append(kept, comp)
		for _, n := range comp {
			sccOf[n] = id
		}
	}

	g.sccOf = sccOf
	g.sccNodes = kept
}

// finishOrder is Kosaraju's first pass: an iterative post-order DFS over
// the forward graph, returning nodes in finish order.
func (g *Graph) finishOrder() []api.SchemaId {
	visited := make(map[api.SchemaId]bool, len(g.nodes))
	order := make([]api.SchemaId, 0, len(g.nodes))

	type frame struct {
		id      api.SchemaId
		edgeIdx int
	}

	for _, n := range g.nodes {
		if visited[n.Id] {
			continue
		}
		stack := []frame{{id: n.Id}}
		visited[n.Id] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.out[top.id]
			advanced := false
			for top.edgeIdx < len(edges) {
				next := edges[top.edgeIdx].To
				top.edgeIdx++
				if !visited[next] {
					visited[next] = true
					stack = append(stack, frame{id: next})
					advanced = true
					break
				}
			}
			if advanced {
				continue
			}
			order = append(order, top.id)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// collectComponent walks the reverse graph from root (iteratively) to find
// root's strongly connected component, marking every member visited.
func (g *Graph) collectComponent(root api.SchemaId, visited map[api.SchemaId]bool) []api.SchemaId {
	var comp []api.SchemaId
	stack := []api.SchemaId{root}
	visited[root] = true

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, id)

		for _, e := range g.in[id] {
			if !visited[e.From] {
				visited[e.From] = true
				stack = append(stack, e.From)
			}
		}
	}
	return comp
}

func (g *Graph) hasSelfLoop(id api.SchemaId) bool {
	for _, e := range g.out[id] {
		if e.To == id {
			return true
		}
	}
	return false
}

// SCCBoundary reports whether id belongs to a retained cycle group.
func (g *Graph) SCCBoundary(id api.SchemaId) bool {
	_, ok := g.sccOf[id]
	return ok
}

// SCCOf returns the component members containing id, or nil if id is not
// part of a retained cycle group.
func (g *Graph) SCCOf(id api.SchemaId) []api.SchemaId {
	idx, ok := g.sccOf[id]
	if !ok {
		return nil
	}
	return g.sccNodes[idx]
}

// SCCs returns every retained cycle group.
func (g *Graph) SCCs() [][]api.SchemaId { return g.sccNodes }
