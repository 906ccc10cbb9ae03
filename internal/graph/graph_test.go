package graph

import (
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(id, path, title, kind string) *api.SchemaNode {
	return &api.SchemaNode{Id: api.SchemaId(id), FilePath: path, Title: title, Kind: kind, Raw: map[string]any{}}
}

func TestBuildResolve(t *testing.T) {
	a := n("a.json", "a.json", "Order", "event")
	b := n("b.json", "b.json", "Customer", "entity")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{{From: "a.json", To: "b.json", Kind: api.FieldType}})

	t.Run("direct id", func(t *testing.T) {
		id, ok := g.Resolve("a.json")
		require.True(t, ok)
		assert.Equal(t, api.SchemaId("a.json"), id)
	})

	t.Run("title match", func(t *testing.T) {
		id, ok := g.Resolve("Customer")
		require.True(t, ok)
		assert.Equal(t, api.SchemaId("b.json"), id)
	})

	t.Run("case-insensitive title", func(t *testing.T) {
		id, ok := g.Resolve("customer")
		require.True(t, ok)
		assert.Equal(t, api.SchemaId("b.json"), id)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := g.Resolve("nope")
		assert.False(t, ok)
	})
}

func TestResolveCaseInsensitiveCollisionIsDeterministic(t *testing.T) {
	order1 := n("z.json", "z.json", "Widget", "")
	order2 := n("a.json", "a.json", "WIDGET", "")
	g := Build([]*api.SchemaNode{order1, order2}, nil)

	id, ok := g.Resolve("widget")
	require.True(t, ok)

	idAgain, ok := g.Resolve("widget")
	require.True(t, ok)
	assert.Equal(t, id, idAgain, "repeated resolves of the same ambiguous query must pick the same node")
}

func TestRefsOutIn(t *testing.T) {
	a, b := n("a.json", "a.json", "A", ""), n("b.json", "b.json", "B", "")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{{From: "a.json", To: "b.json", Kind: api.TypeRef}})

	assert.Len(t, g.RefsOut("a.json"), 1)
	assert.Len(t, g.RefsIn("b.json"), 1)
	assert.Empty(t, g.RefsOut("b.json"))
}

func TestSCCRetainsCyclesOnly(t *testing.T) {
	a, b, c := n("a.json", "a.json", "", ""), n("b.json", "b.json", "", ""), n("c.json", "c.json", "", "")
	edges := []api.Edge{
		{From: "a.json", To: "b.json", Kind: api.TypeRef},
		{From: "b.json", To: "a.json", Kind: api.TypeRef},
		{From: "a.json", To: "c.json", Kind: api.TypeRef},
	}
	g := Build([]*api.SchemaNode{a, b, c}, edges)

	assert.True(t, g.SCCBoundary("a.json"))
	assert.True(t, g.SCCBoundary("b.json"))
	assert.False(t, g.SCCBoundary("c.json"))
	assert.Len(t, g.SCCs(), 1)
}

func TestSCCSelfLoopRetained(t *testing.T) {
	a := n("a.json", "a.json", "", "")
	g := Build([]*api.SchemaNode{a}, []api.Edge{{From: "a.json", To: "a.json", Kind: api.TypeRef}})
	assert.True(t, g.SCCBoundary("a.json"))
}

func TestClosureDepthMonotonic(t *testing.T) {
	a, b, c := n("a.json", "a.json", "", ""), n("b.json", "b.json", "", ""), n("c.json", "c.json", "", "")
	edges := []api.Edge{
		{From: "a.json", To: "b.json", Kind: api.TypeRef},
		{From: "a.json", To: "c.json", Kind: api.TypeRef},
		{From: "b.json", To: "c.json", Kind: api.TypeRef},
	}
	g := Build([]*api.SchemaNode{a, b, c}, edges)

	entries := g.Closure("a.json", Outgoing, 0)
	byID := map[api.SchemaId]int{}
	for _, e := range entries {
		byID[e.Id] = e.Depth
	}
	assert.Equal(t, 0, byID["a.json"])
	assert.Equal(t, 1, byID["b.json"])
	assert.Equal(t, 1, byID["c.json"]) // reached first at depth 1 via a->c, not 2 via b->c
}

// TestClosureShortestPathNotDiscoveryOrder exercises a shape where the
// shortest path to the deepest node is NOT through the edge that would be
// relaxed last in a depth-first, stack-driven walk: r->a, r->b, a->d, b->c,
// c->d. A LIFO frontier pops b before a and discovers d via r->b->c->d
// (depth 3); the correct shortest distance is r->a->d (depth 2).
func TestClosureShortestPathNotDiscoveryOrder(t *testing.T) {
	r := n("r.json", "r.json", "", "")
	a := n("a.json", "a.json", "", "")
	b := n("b.json", "b.json", "", "")
	c := n("c.json", "c.json", "", "")
	d := n("d.json", "d.json", "", "")
	edges := []api.Edge{
		{From: "r.json", To: "a.json", Kind: api.TypeRef},
		{From: "r.json", To: "b.json", Kind: api.TypeRef},
		{From: "a.json", To: "d.json", Kind: api.TypeRef},
		{From: "b.json", To: "c.json", Kind: api.TypeRef},
		{From: "c.json", To: "d.json", Kind: api.TypeRef},
	}
	g := Build([]*api.SchemaNode{r, a, b, c, d}, edges)

	entries := g.Closure("r.json", Outgoing, 0)
	byID := map[api.SchemaId]int{}
	for _, e := range entries {
		byID[e.Id] = e.Depth
	}
	assert.Equal(t, 2, byID["d.json"])

	var depths []int
	for _, e := range entries {
		depths = append(depths, e.Depth)
	}
	for i := 1; i < len(depths); i++ {
		assert.GreaterOrEqual(t, depths[i], depths[i-1], "closure entries must be sorted by ascending depth")
	}
}

func TestBlastRadius(t *testing.T) {
	a, b := n("a.json", "a.json", "", ""), n("b.json", "b.json", "", "")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{{From: "a.json", To: "b.json", Kind: api.TypeRef}})

	entries := g.BlastRadius("b.json", nil)
	require.Len(t, entries, 2)
}

func TestSearchExactBeatsFuzzy(t *testing.T) {
	a := n("a.json", "a.json", "Order", "")
	b := n("b.json", "b.json", "Orderr", "")
	g := Build([]*api.SchemaNode{a, b}, nil)

	hits := g.Search("Order", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, api.SchemaId("a.json"), hits[0].Id)
}

func TestListByKindAndAllKinds(t *testing.T) {
	a, b := n("a.json", "a.json", "", "event"), n("b.json", "b.json", "", "entity")
	g := Build([]*api.SchemaNode{a, b}, nil)

	assert.Equal(t, []string{"entity", "event"}, g.AllKinds())
	assert.Len(t, g.ListByKind("event"), 1)
}

func TestTopologicalOrderNilOnCycle(t *testing.T) {
	a, b := n("a.json", "a.json", "", ""), n("b.json", "b.json", "", "")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{
		{From: "a.json", To: "b.json", Kind: api.TypeRef},
		{From: "b.json", To: "a.json", Kind: api.TypeRef},
	})
	assert.Nil(t, g.TopologicalOrder())
}

func TestTopologicalOrderAcyclic(t *testing.T) {
	a, b := n("a.json", "a.json", "", ""), n("b.json", "b.json", "", "")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{{From: "a.json", To: "b.json", Kind: api.TypeRef}})
	order := g.TopologicalOrder()
	require.Len(t, order, 2)
	assert.Equal(t, api.SchemaId("a.json"), order[0])
}

func TestOrphansByCategory(t *testing.T) {
	q := n("queue.json", "queues/orders.json", "", "")
	g := Build([]*api.SchemaNode{q}, nil)

	cats := g.OrphansByCategory()
	require.Len(t, cats, 1)
	assert.Equal(t, "queues", cats[0].Category)
	assert.True(t, cats[0].Expected)
}

func TestTrulyIsolatedAndConsumerOnly(t *testing.T) {
	isolated := n("isolated.json", "isolated.json", "", "")
	consumer := n("consumer.json", "consumer.json", "", "")
	target := n("target.json", "target.json", "", "")
	g := Build([]*api.SchemaNode{isolated, consumer, target}, []api.Edge{
		{From: "consumer.json", To: "target.json", Kind: api.TypeRef},
	})

	assert.Equal(t, []api.SchemaId{"isolated.json"}, g.TrulyIsolatedSchemas())
	assert.Equal(t, []api.SchemaId{"consumer.json"}, g.ConsumerOnlySchemas())
}

func TestLintUnionsUntagged(t *testing.T) {
	a := n("a.json", "a.json", "", "")
	a.Raw["oneOf"] = []any{map[string]any{"type": "string"}}
	g := Build([]*api.SchemaNode{a}, nil)

	warnings := g.LintUnions("a.json")
	var kinds []LintWarningKind
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, UntaggedUnion)
	assert.Contains(t, kinds, MissingKind)
}

func TestHubReportSuggestsDerive(t *testing.T) {
	hub := n("hub.json", "hub.json", "", "")
	hub.Fields = []api.FieldRef{{Name: "id", InlineKind: "string"}}
	consumers := []*api.SchemaNode{hub}
	var edges []api.Edge
	for i := 0; i < 3; i++ {
		id := "c" + string(rune('0'+i)) + ".json"
		c := n(id, id, "", "")
		consumers = append(consumers, c)
		edges = append(edges, api.Edge{From: c.Id, To: hub.Id, Kind: api.TypeRef})
	}
	g := Build(consumers, edges)

	report := g.HubReport(5)
	require.NotEmpty(t, report)
	assert.Equal(t, hub.Id, report[0].Id)
	assert.Equal(t, []string{"Eq", "Hash"}, report[0].SuggestDerive)
}

func TestToDotContainsNodesAndEdges(t *testing.T) {
	a, b := n("a.json", "a.json", "A", "event"), n("b.json", "b.json", "B", "")
	g := Build([]*api.SchemaNode{a, b}, []api.Edge{{From: "a.json", To: "b.json", Kind: api.TypeRef}})

	dot := g.ToDot()
	assert.Contains(t, dot, "digraph familiar")
	assert.Contains(t, dot, "a.json")
	assert.Contains(t, dot, "b.json")
}
