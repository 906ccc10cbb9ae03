package graph

import "github.com/agentic-research/familiar-registry/api"

// TopologicalOrder returns a standard Kahn's-algorithm toposort, or nil if
// any cycle exists — callers must break cycles through scc_report's
// suggested break edges before ordering (spec.md §4.4 "topological_order").
func (g *Graph) TopologicalOrder() []api.SchemaId {
	indegree := make(map[api.SchemaId]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n.Id] = 0
	}
	for _, e := range g.edges {
		indegree[e.To]++
	}

	queue := make([]api.SchemaId, 0, len(g.nodes))
	for _, n := range g.nodes {
		if indegree[n.Id] == 0 {
			queue = append(queue, n.Id)
		}
	}

	var order []api.SchemaId
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, e := range g.out[id] {
			indegree[e.To]--
			if indegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil
	}
	return order
}
