package artifacts

import (
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/agentic-research/familiar-registry/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func known(ids ...api.SchemaId) map[api.SchemaId]bool {
	m := make(map[api.SchemaId]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestRegisterArtifactUnknownSchema(t *testing.T) {
	x := NewIndex(known("order.json"))
	err := x.RegisterArtifact("nope.json", api.GeneratedArtifact{Lang: "rust", TypeName: "Order"})
	assert.Error(t, err)
}

func TestRegisterArtifactIndexesAllFive(t *testing.T) {
	x := NewIndex(known("order.json"))
	artifact := api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", Line: 10, TypeName: "Order", TypeKind: api.TypeKindStruct}
	require.NoError(t, x.RegisterArtifact("order.json", artifact))

	id := artifact.ID()
	assert.Equal(t, []string{id}, x.GetArtifacts("order.json"))
	assert.Equal(t, []string{id}, x.GetFileArtifacts("src/order.rs"))
	assert.Equal(t, []string{id}, x.GetLangArtifacts("rust"))

	schemaID, ok := x.GetArtifactSchema(id)
	require.True(t, ok)
	assert.Equal(t, api.SchemaId("order.json"), schemaID)

	got, ok := x.GetArtifact("order.json", "rust")
	require.True(t, ok)
	assert.Equal(t, artifact, got)
}

func TestRegisterArtifactIdempotentReplace(t *testing.T) {
	x := NewIndex(known("order.json"))
	first := api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", TypeName: "Order"}
	require.NoError(t, x.RegisterArtifact("order.json", first))

	second := api.GeneratedArtifact{Lang: "rust", File: "src/order_v2.rs", TypeName: "Order"}
	require.NoError(t, x.RegisterArtifact("order.json", second))

	assert.Len(t, x.GetArtifacts("order.json"), 1)
	assert.Empty(t, x.GetFileArtifacts("src/order.rs"))
	assert.Equal(t, []string{second.ID()}, x.GetFileArtifacts("src/order_v2.rs"))
}

func TestColocatedArtifacts(t *testing.T) {
	x := NewIndex(known("order.json", "customer.json"))
	a := api.GeneratedArtifact{Lang: "rust", File: "src/model.rs", TypeName: "Order"}
	b := api.GeneratedArtifact{Lang: "rust", File: "src/model.rs", TypeName: "Customer"}
	require.NoError(t, x.RegisterArtifact("order.json", a))
	require.NoError(t, x.RegisterArtifact("customer.json", b))

	assert.Equal(t, []string{b.ID()}, x.ColocatedArtifacts(a.ID()))
}

func TestArtifactCoverage(t *testing.T) {
	x := NewIndex(known("order.json", "customer.json"))
	require.NoError(t, x.RegisterArtifact("order.json", api.GeneratedArtifact{Lang: "rust", TypeName: "Order"}))

	cov := x.ArtifactCoverage()
	require.Contains(t, cov, "rust")
	assert.Equal(t, CoverageStat{Present: 1, Total: 2}, cov["rust"])
}

func TestLoadManifestResolvesAndDiagnoses(t *testing.T) {
	x := NewIndex(known("order.json"))
	resolve := func(path string) (api.SchemaId, bool) {
		if path == "order.json" {
			return "order.json", true
		}
		return "", false
	}

	manifest := []byte(`[
		{"schema_path":"order.json","lang":"rust","file":"src/order.rs","line":5,"type_name":"Order","type_kind":"struct"},
		{"schema_path":"missing.json","lang":"rust","file":"src/missing.rs","line":1,"type_name":"Missing","type_kind":"struct"}
	]`)

	diags := x.LoadManifest(manifest, resolve)
	require.Len(t, diags, 1)
	assert.Equal(t, api.KindArtifactForUnknownSchema, diags[0].Kind)
	assert.Equal(t, "missing.json", diags[0].Path)

	assert.Len(t, x.GetArtifacts("order.json"), 1)
}

func TestLoadManifestParseError(t *testing.T) {
	x := NewIndex(known())
	diags := x.LoadManifest([]byte("not json"), func(string) (api.SchemaId, bool) { return "", false })
	require.Len(t, diags, 1)
	assert.Equal(t, api.KindParseError, diags[0].Kind)
}

func TestAffectedArtifacts(t *testing.T) {
	order := &api.SchemaNode{Id: "order.json", FilePath: "order.json"}
	lineItem := &api.SchemaNode{Id: "line_item.json", FilePath: "line_item.json"}
	g := graph.Build([]*api.SchemaNode{order, lineItem}, []api.Edge{
		{From: "line_item.json", To: "order.json", Kind: api.TypeRef},
	})

	x := NewIndex(known("order.json", "line_item.json"))
	require.NoError(t, x.RegisterArtifact("line_item.json", api.GeneratedArtifact{Lang: "rust", TypeName: "LineItem"}))

	affected := x.AffectedArtifacts(g, "order.json")
	assert.Contains(t, affected, "rust:LineItem")
}

func TestArtifactDependencies(t *testing.T) {
	order := &api.SchemaNode{Id: "order.json", FilePath: "order.json"}
	customer := &api.SchemaNode{Id: "customer.json", FilePath: "customer.json"}
	g := graph.Build([]*api.SchemaNode{order, customer}, []api.Edge{
		{From: "order.json", To: "customer.json", Kind: api.FieldType},
	})

	x := NewIndex(known("order.json", "customer.json"))
	artifact := api.GeneratedArtifact{Lang: "rust", TypeName: "Order"}
	require.NoError(t, x.RegisterArtifact("order.json", artifact))

	deps := x.ArtifactDependencies(g, artifact.ID())
	assert.ElementsMatch(t, []api.SchemaId{"order.json", "customer.json"}, deps)
}
